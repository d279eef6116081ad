package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/RMahshie/fluxloop/internal/sensor"
)

// DecodeDesign reads a YAML sensor design. Unknown keys are rejected so a
// misspelled parameter cannot silently fall back to zero.
func DecodeDesign(r io.Reader) (sensor.Design, error) {
	var d sensor.Design
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return d, fmt.Errorf("%w: empty design file", sensor.ErrInvalidConfig)
		}
		return d, fmt.Errorf("%w: %w", sensor.ErrInvalidConfig, err)
	}
	return d, nil
}

// LoadDesign reads a YAML sensor design from path
func LoadDesign(path string) (sensor.Design, error) {
	f, err := os.Open(path)
	if err != nil {
		return sensor.Design{}, fmt.Errorf("failed to open design: %w", err)
	}
	defer f.Close()
	return DecodeDesign(f)
}

// SaveDesign writes d to path as YAML
func SaveDesign(path string, d sensor.Design) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("failed to encode design: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
