package inventory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	assert.Equal(t, "built-in", c.Source)
	assert.Equal(t, 5, c.Len())
	assert.Equal(t,
		[]string{"Oil Filter", "Brake Pads", "Plastic Clip", "Headlight Assembly", "Front Bumper"},
		c.Names())

	p, ok := c.Lookup("P105")
	require.True(t, ok)
	assert.Equal(t, "Front Bumper", p.Name)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(1200)))

	p, ok = c.ByName("Plastic Clip")
	require.True(t, ok)
	assert.Equal(t, "P103", p.ID)

	_, ok = c.ByName("plastic clip")
	assert.False(t, ok)
	_, ok = c.Lookup("P999")
	assert.False(t, ok)
}

func TestNewCatalogRejectsBadParts(t *testing.T) {
	tests := []struct {
		name  string
		parts []Part
	}{
		{name: "duplicate id", parts: []Part{{ID: "P1", Name: "A"}, {ID: "P1", Name: "B"}}},
		{name: "empty id", parts: []Part{{ID: " ", Name: "A"}}},
		{name: "empty name", parts: []Part{{ID: "P1"}}},
		{name: "negative price", parts: []Part{{ID: "P1", Name: "A", Price: decimal.NewFromInt(-1)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog("test", tt.parts)
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("empty path is built-in", func(t *testing.T) {
		c, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "built-in", c.Source)
	})

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "inventory.yaml")
		content := "parts:\n  - id: P201\n    name: Spark Plug\n    price: 12.50\n  - id: P202\n    name: Wiper Blade\n    price: \"22\"\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		c, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"Spark Plug", "Wiper Blade"}, c.Names())

		p, _ := c.Lookup("P201")
		assert.True(t, p.Price.Equal(decimal.RequireFromString("12.5")))
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := Load("inventory.json")
		assert.Error(t, err)
	})
}

func TestXLSXRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.xlsx")
	require.NoError(t, Default().WriteXLSX(path))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Names(), c.Names())

	p, ok := c.Lookup("P104")
	require.True(t, ok)
	assert.True(t, p.Price.Equal(decimal.NewFromInt(600)))
}

func TestLoadXLSXErrors(t *testing.T) {
	write := func(t *testing.T, rows [][]interface{}) string {
		t.Helper()
		f := excelize.NewFile()
		defer f.Close()
		for r, row := range rows {
			cell, _ := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
		}
		path := filepath.Join(t.TempDir(), "inventory.xlsx")
		require.NoError(t, f.SaveAs(path))
		return path
	}

	t.Run("bad price", func(t *testing.T) {
		path := write(t, [][]interface{}{
			{"Item ID", "Item Name", "Price"},
			{"P1", "Oil Filter", "cheap"},
		})
		_, err := LoadXLSX(path, DefaultCatalogColumns())
		assert.ErrorContains(t, err, "row 2")
	})

	t.Run("duplicate id", func(t *testing.T) {
		path := write(t, [][]interface{}{
			{"Item ID", "Item Name", "Price"},
			{"P1", "Oil Filter", "$85.00"},
			{},
			{"P1", "Brake Pads", 120},
		})
		_, err := LoadXLSX(path, DefaultCatalogColumns())
		assert.ErrorContains(t, err, "duplicate part id P1")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadXLSX(filepath.Join(t.TempDir(), "nope.xlsx"), DefaultCatalogColumns())
		assert.Error(t, err)
	})
}
