package csvparser_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/ginjaninja78/revenue-guard/internal/config"
	"github.com/ginjaninja78/revenue-guard/internal/csvparser"
)

var utf8Comma = config.CSVSettings{Delimiter: ",", Encoding: "UTF-8"}

func TestParseReader(t *testing.T) {
	t.Run("header and rows", func(t *testing.T) {
		input := "ro_id,item_id,item_name,billed_price\nRO-500,P101, Oil Filter ,85.0\n\nRO-500,P102,Brake Pads\n"

		data, err := csvparser.ParseReader(strings.NewReader(input), utf8Comma)
		require.NoError(t, err)

		assert.Equal(t, []string{"ro_id", "item_id", "item_name", "billed_price"}, data.Headers)
		require.Equal(t, 2, data.RowCount)
		assert.Equal(t, "Oil Filter", data.Rows[0]["item_name"])
		assert.Equal(t, "", data.Rows[1]["billed_price"], "missing trailing cell becomes empty")
		assert.True(t, data.HasColumn("ro_id"))
		assert.False(t, data.HasColumn("note_text"))
	})

	t.Run("utf-8 bom is stripped from the first header", func(t *testing.T) {
		input := "\ufeffro_id,note_text\nRO-500,changed oil\n"

		data, err := csvparser.ParseReader(strings.NewReader(input), utf8Comma)
		require.NoError(t, err)
		assert.Equal(t, "ro_id", data.Headers[0])
	})

	t.Run("pipe delimiter", func(t *testing.T) {
		input := "ro_id|item_name\nRO-7|Front Bumper\n"

		data, err := csvparser.ParseReader(strings.NewReader(input), config.CSVSettings{Delimiter: "pipe"})
		require.NoError(t, err)
		require.Len(t, data.Rows, 1)
		assert.Equal(t, "Front Bumper", data.Rows[0]["item_name"])
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := csvparser.ParseReader(strings.NewReader(""), utf8Comma)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty")
	})

	t.Run("unknown encoding", func(t *testing.T) {
		_, err := csvparser.ParseReader(strings.NewReader("a\n1\n"), config.CSVSettings{Encoding: "EBCDIC"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported encoding")
	})

	t.Run("blank header gets a positional name", func(t *testing.T) {
		data, err := csvparser.ParseReader(strings.NewReader("ro_id,\nRO-1,x\n"), utf8Comma)
		require.NoError(t, err)
		assert.Equal(t, "Column_2", data.Headers[1])
	})
}

func TestWriteAndParseRoundTripWindows1252(t *testing.T) {
	settings := config.CSVSettings{Delimiter: ";", Encoding: "Windows-1252"}
	path := filepath.Join(t.TempDir(), "ledger.csv")

	headers := []string{"ro_id", "item_name"}
	rows := []map[string]string{
		{"ro_id": "RO-9", "item_name": "Pièce détachée"},
		{"ro_id": "RO-9", "item_name": "Clip; \"hood\"", "ignored": "x"},
	}
	require.NoError(t, csvparser.Write(path, headers, rows, settings))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "Pièce détachée")
	assert.NotContains(t, string(raw), "ignored")

	data, err := csvparser.Parse(path, settings)
	require.NoError(t, err)
	assert.Equal(t, path, data.SourceFile)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "Pièce détachée", data.Rows[0]["item_name"])
	assert.Equal(t, "Clip; \"hood\"", data.Rows[1]["item_name"])
}

func TestWriteOverwritesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	require.NoError(t, os.WriteFile(path, []byte("old,content\n1,2\n3,4\n"), 0644))

	require.NoError(t, csvparser.Write(path, []string{"ro_id"}, nil, utf8Comma))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ro_id\n", string(raw))
}
