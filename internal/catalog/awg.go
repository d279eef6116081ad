package catalog

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/RMahshie/fluxloop/pkg/units"
)

//go:embed awg.csv
var defaultAWG []byte

// AWGEntry is one row of the wire gauge table.
type AWGEntry struct {
	Gauge             int            `json:"gauge"`
	ConductorDiameter units.Quantity `json:"conductor_diameter"`
	TotalDiameter     units.Quantity `json:"total_diameter"` // including insulation
}

// AWGTable maps gauge numbers to diameters. Coverage is sparse: only the rows
// present in the source file are known. Safe for concurrent reads.
type AWGTable struct {
	entries map[int]AWGEntry
}

var awgColumns = []string{"awg", "diameter_mm", "diameter_uncertainty_mm", "total_diameter_mm"}

// LoadAWGTable parses a CSV table with the columns awg, diameter_mm,
// diameter_uncertainty_mm and total_diameter_mm, in any order.
func LoadAWGTable(r io.Reader) (*AWGTable, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read awg header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range awgColumns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("awg table: missing column %q", c)
		}
	}

	table := &AWGTable{entries: make(map[int]AWGEntry)}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("awg table line %d: %w", line, err)
		}
		gauge, err := strconv.Atoi(strings.TrimSpace(rec[idx["awg"]]))
		if err != nil {
			return nil, fmt.Errorf("awg table line %d: gauge: %w", line, err)
		}
		vals := make([]float64, 3)
		for i, c := range awgColumns[1:] {
			vals[i], err = strconv.ParseFloat(strings.TrimSpace(rec[idx[c]]), 64)
			if err != nil {
				return nil, fmt.Errorf("awg table line %d: %s: %w", line, c, err)
			}
		}
		table.entries[gauge] = AWGEntry{
			Gauge:             gauge,
			ConductorDiameter: units.NewWithUncertainty(vals[0], vals[1], units.Millimetre),
			TotalDiameter:     units.New(vals[2], units.Millimetre),
		}
	}
	return table, nil
}

// LoadAWGFile reads the table at path. A missing file yields an empty table
// on which every lookup reports ErrNotFound.
func LoadAWGFile(path string) (*AWGTable, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return &AWGTable{entries: map[int]AWGEntry{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open awg table: %w", err)
	}
	defer f.Close()
	return LoadAWGTable(f)
}

// DefaultAWGTable returns the table compiled into the binary.
func DefaultAWGTable() *AWGTable {
	t, err := LoadAWGTable(bytes.NewReader(defaultAWG))
	if err != nil {
		panic(fmt.Sprintf("embedded awg table: %v", err))
	}
	return t
}

// Get returns the entry for gauge.
func (t *AWGTable) Get(gauge int) (AWGEntry, error) {
	if t != nil {
		if e, ok := t.entries[gauge]; ok {
			return e, nil
		}
	}
	return AWGEntry{}, &LookupError{Kind: "awg gauge", Key: strconv.Itoa(gauge), Err: ErrNotFound}
}

// Gauges returns the known gauges in ascending order.
func (t *AWGTable) Gauges() []int {
	if t == nil {
		return nil
	}
	out := make([]int, 0, len(t.entries))
	for g := range t.entries {
		out = append(out, g)
	}
	sort.Ints(out)
	return out
}
