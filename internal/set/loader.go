package set

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LoadCSV reads a set inventory from a Rebrickable-style parts CSV:
//
//	set_num,part_num,color_id,color_name,quantity,is_spare
//
// Column order is taken from the header when one is present; a headerless
// file is read as part_num,color_name,quantity. Spare parts are skipped.
// Row order seeds each part's OriginalPosition.
func LoadCSV(path string) (*Inventory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open inventory: %w", err)
	}
	defer f.Close()

	inv, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read inventory %s: %w", path, err)
	}

	setNum := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	inv.SetNumber = setNum
	if inv.Name == "" {
		inv.Name = "Set " + setNum
	}
	return inv, nil
}

// ReadCSV parses inventory rows from r. See LoadCSV for the format.
func ReadCSV(r io.Reader) (*Inventory, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	inv := NewInventory("", "")
	cols := defaultColumns()
	row := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row+1, err)
		}
		row++

		if row == 1 && looksLikeHeader(rec) {
			cols = columnsFromHeader(rec)
			continue
		}

		part, ok := field(rec, cols.part)
		if !ok || part == "" {
			return nil, fmt.Errorf("row %d: missing part number", row)
		}
		qtyStr, ok := field(rec, cols.quantity)
		if !ok {
			return nil, fmt.Errorf("row %d: missing quantity", row)
		}
		qty, err := strconv.Atoi(strings.TrimSpace(qtyStr))
		if err != nil {
			return nil, fmt.Errorf("row %d: bad quantity %q", row, qtyStr)
		}
		if spare, ok := field(rec, cols.spare); ok {
			s := strings.ToLower(strings.TrimSpace(spare))
			if s == "t" || s == "true" || s == "1" {
				continue
			}
		}
		colorName, _ := field(rec, cols.color)
		name, _ := field(rec, cols.name)

		if err := inv.Add(part, name, colorName, qty); err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
	}

	if inv.Len() == 0 {
		return nil, fmt.Errorf("no part rows found")
	}
	return inv, nil
}

type columns struct {
	part     int
	color    int
	quantity int
	spare    int
	name     int
}

func defaultColumns() columns {
	// Headerless fallback: part_num,color_name,quantity.
	return columns{part: 0, color: 1, quantity: 2, spare: -1, name: -1}
}

func looksLikeHeader(rec []string) bool {
	for _, f := range rec {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "part_num", "part", "quantity", "qty", "color_name", "color":
			return true
		}
	}
	return false
}

func columnsFromHeader(rec []string) columns {
	cols := columns{part: -1, color: -1, quantity: -1, spare: -1, name: -1}
	for i, f := range rec {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "part_num", "part":
			cols.part = i
		case "color_name", "color":
			cols.color = i
		case "quantity", "qty":
			cols.quantity = i
		case "is_spare", "spare":
			cols.spare = i
		case "name", "part_name":
			cols.name = i
		}
	}
	return cols
}

func field(rec []string, idx int) (string, bool) {
	if idx < 0 || idx >= len(rec) {
		return "", false
	}
	return strings.TrimSpace(rec[idx]), true
}
