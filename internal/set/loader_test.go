package set

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSVWithHeader(t *testing.T) {
	t.Parallel()
	csv := strings.Join([]string{
		"set_num,part_num,color_id,color_name,quantity,is_spare",
		"60374-1,3001,4,Red,2,f",
		"60374-1,3022,23,Blue,1,f",
		"60374-1,3001,4,Red,1,t", // spare: skipped
	}, "\n")

	inv, err := ReadCSV(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, inv.Len())

	p, ok := inv.Part("3001")
	require.True(t, ok)
	assert.Equal(t, "Red", p.Color)
	assert.Equal(t, 2, p.Required)
	assert.Equal(t, 0, p.OriginalPosition)

	p, ok = inv.Part("3022")
	require.True(t, ok)
	assert.Equal(t, 1, p.OriginalPosition)
}

func TestReadCSVHeaderless(t *testing.T) {
	t.Parallel()
	csv := "3001,Red,2\n3022,Blue,1\n"
	inv, err := ReadCSV(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, inv.Len())

	p, _ := inv.Part("3022")
	assert.Equal(t, "Blue", p.Color)
	assert.Equal(t, 1, p.Required)
}

func TestReadCSVWithNameColumn(t *testing.T) {
	t.Parallel()
	csv := "part,color,qty,name\n3001,Red,2,Brick 2x4\n"
	inv, err := ReadCSV(strings.NewReader(csv))
	require.NoError(t, err)

	p, _ := inv.Part("3001")
	assert.Equal(t, "Brick 2x4", p.Name)
	assert.Equal(t, "Brick 2x4", p.DisplayName())
}

func TestReadCSVDuplicateRowsMerge(t *testing.T) {
	t.Parallel()
	csv := "3001,Red,2\n3001,Red,3\n"
	inv, err := ReadCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 1, inv.Len())

	p, _ := inv.Part("3001")
	assert.Equal(t, 5, p.Required)
}

func TestReadCSVErrors(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		csv  string
	}{
		{"empty file", ""},
		{"header only", "part_num,color_name,quantity\n"},
		{"bad quantity", "3001,Red,lots\n"},
		{"missing part", ",Red,2\n"},
		{"zero quantity", "3001,Red,0\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tc.csv))
			assert.Error(t, err)
		})
	}
}

func TestLoadCSVUsesFileStemAsSetNumber(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "60374-1.csv")
	require.NoError(t, os.WriteFile(path, []byte("3001,Red,2\n"), 0o644))

	inv, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, "60374-1", inv.SetNumber)
	assert.Equal(t, "Set 60374-1", inv.Name)
}

func TestLoadCSVMissingFile(t *testing.T) {
	t.Parallel()
	_, err := LoadCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
