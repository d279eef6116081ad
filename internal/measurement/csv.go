package measurement

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/RMahshie/fluxloop/pkg/units"
)

// ErrNoData is returned when an export holds no numeric readings.
var ErrNoData = errors.New("no readings in export")

// CSVOptions selects the columns of an instrument export.
type CSVOptions struct {
	Name  string
	Scale Scale
	// Columns are zero-based. Header names, when set, take precedence and
	// are matched case-insensitively against the first row containing both.
	FrequencyColumn int
	LevelColumn     int
	FrequencyHeader string
	LevelHeader     string
	// FrequencyUnit scales the frequency column. Zero means Hz.
	FrequencyUnit units.Unit
	Comma         rune
}

// ReadTraceCSV parses an instrument export. Preamble rows before the first
// numeric reading are skipped and the first non-numeric row after it ends
// the data block.
func ReadTraceCSV(r io.Reader, opts CSVOptions) (Trace, error) {
	if _, err := ParseScale(string(opts.Scale)); err != nil {
		return Trace{}, err
	}
	scale := 1.0
	if opts.FrequencyUnit.Scale != 0 {
		if err := units.New(1, opts.FrequencyUnit).Check("frequency column", units.Hertz); err != nil {
			return Trace{}, err
		}
		scale = opts.FrequencyUnit.Scale
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.Comment = '#'
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}

	fcol, lcol := opts.FrequencyColumn, opts.LevelColumn
	byHeader := opts.FrequencyHeader != "" || opts.LevelHeader != ""
	if byHeader && (opts.FrequencyHeader == "" || opts.LevelHeader == "") {
		return Trace{}, fmt.Errorf("%w: both column headers are needed", ErrNoData)
	}
	t := Trace{Name: opts.Name, Scale: opts.Scale}
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Trace{}, fmt.Errorf("read %s line %d: %w", opts.Name, line, err)
		}
		if byHeader {
			f, l := headerIndex(rec, opts.FrequencyHeader), headerIndex(rec, opts.LevelHeader)
			if f >= 0 && l >= 0 {
				fcol, lcol, byHeader = f, l, false
			}
			continue
		}
		freq, lvl, ok := numericRow(rec, fcol, lcol)
		if !ok {
			if len(t.Points) > 0 {
				break
			}
			continue
		}
		t.Points = append(t.Points, Point{Frequency: freq * scale, Level: lvl})
	}
	if byHeader {
		return Trace{}, fmt.Errorf("%w: %s has no header with %q and %q", ErrNoData, opts.Name, opts.FrequencyHeader, opts.LevelHeader)
	}
	if len(t.Points) == 0 {
		return Trace{}, fmt.Errorf("%w: %s", ErrNoData, opts.Name)
	}
	if err := t.Validate(); err != nil {
		return Trace{}, err
	}
	return t, nil
}

// ReadTraceFile opens path and parses it with ReadTraceCSV. An empty Name
// defaults to the path.
func ReadTraceFile(path string, opts CSVOptions) (Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return Trace{}, err
	}
	defer f.Close()
	if opts.Name == "" {
		opts.Name = path
	}
	return ReadTraceCSV(f, opts)
}

func headerIndex(rec []string, name string) int {
	for i, h := range rec {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func numericRow(rec []string, fcol, lcol int) (float64, float64, bool) {
	if fcol >= len(rec) || lcol >= len(rec) || fcol < 0 || lcol < 0 {
		return 0, 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(rec[fcol]), 64)
	if err != nil {
		return 0, 0, false
	}
	l, err := strconv.ParseFloat(strings.TrimSpace(rec[lcol]), 64)
	if err != nil {
		return 0, 0, false
	}
	return f, l, true
}
