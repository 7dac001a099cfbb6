// Package seed bulk-loads pairings from YAML or XLSX files into the
// store. Rows that fail validation are skipped with a warning so one bad
// entry never aborts an import.
package seed

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/twinmaps/twinmap/internal/model"
	"github.com/twinmaps/twinmap/internal/store"
)

// File is the YAML seed document shape.
type File struct {
	Pairings []Entry `yaml:"pairings"`
}

// Entry is one pairing to create: a city-keyed location map.
type Entry struct {
	Locations map[string]model.RawLocation `yaml:"locations"`
}

// ImportFile loads pairings from path (by extension: .yaml/.yml or
// .xlsx) and creates them through the store. Returns the created count.
func ImportFile(ctx context.Context, st store.Store, path string) (int, error) {
	var entries []Entry
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		entries, err = readYAML(path)
	case ".xlsx":
		entries, err = readXLSX(path)
	default:
		return 0, eris.Errorf("seed: unsupported file type %q (want .yaml, .yml, or .xlsx)", filepath.Ext(path))
	}
	if err != nil {
		return 0, err
	}

	created := 0
	for i, entry := range entries {
		if _, err := st.CreatePairing(ctx, entry.Locations); err != nil {
			zap.L().Warn("seed: skipping invalid pairing",
				zap.Int("entry", i),
				zap.Error(err),
			)
			continue
		}
		created++
	}
	return created, nil
}

func readYAML(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "seed: read yaml")
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "seed: parse yaml")
	}
	return f.Pairings, nil
}

// readXLSX reads the first sheet, expecting a header row followed by
// columns: pairing, city, label, lat, lng. Rows sharing a pairing value
// are grouped into one entry.
func readXLSX(path string) ([]Entry, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "seed: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("seed: xlsx has no sheets")
	}

	groups := make(map[string]map[string]model.RawLocation)
	var order []string

	for i, row := range f.Sheets[0].Rows {
		if i == 0 {
			continue
		}
		cells := rowToStrings(row)
		if len(cells) < 5 {
			zap.L().Warn("seed: skipping short xlsx row", zap.Int("row", i))
			continue
		}

		group, city, label := cells[0], cells[1], cells[2]
		lat, errLat := strconv.ParseFloat(cells[3], 64)
		lng, errLng := strconv.ParseFloat(cells[4], 64)
		if group == "" || city == "" || errLat != nil || errLng != nil {
			zap.L().Warn("seed: skipping malformed xlsx row", zap.Int("row", i))
			continue
		}

		if _, ok := groups[group]; !ok {
			groups[group] = make(map[string]model.RawLocation)
			order = append(order, group)
		}
		groups[group][city] = model.RawLocation{
			Label:       label,
			Coordinates: []float64{lat, lng},
		}
	}

	entries := make([]Entry, 0, len(order))
	for _, g := range order {
		entries = append(entries, Entry{Locations: groups[g]})
	}
	return entries, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
