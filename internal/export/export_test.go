package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/shopcrawl/shopcrawl/internal/extract"
)

func sample() []extract.Listing {
	return []extract.Listing{
		{Name: "Shoe A", Price: "₹999", Rating: "4.3", URL: "https://shop.example/p/a"},
		{Name: "Shoe B", Price: "", Rating: "", URL: "https://shop.example/p/b"},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteCSV(path, sample()))

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, Headers, rows[0])
	assert.Equal(t, []string{"Shoe A", "₹999", "4.3", "https://shop.example/p/a"}, rows[1])
	assert.Equal(t, []string{"Shoe B", "", "", "https://shop.example/p/b"}, rows[2])
}

func TestWriteCSVHeadersOnlyOnEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, WriteCSV(path, nil))

	rows := readCSV(t, path)
	require.Len(t, rows, 1)
	assert.Equal(t, Headers, rows[0])
}

func TestWriteCSVPreservesOrder(t *testing.T) {
	listings := []extract.Listing{
		{Name: "third", Price: "3"},
		{Name: "first", Price: "1"},
		{Name: "second", Price: "2"},
	}
	path := filepath.Join(t.TempDir(), "ordered.csv")
	require.NoError(t, WriteCSV(path, listings))

	rows := readCSV(t, path)
	require.Len(t, rows, 4)
	assert.Equal(t, "third", rows[1][0])
	assert.Equal(t, "first", rows[2][0])
	assert.Equal(t, "second", rows[3][0])
}

func TestWriteXLSXMirrorsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteXLSX(path, sample()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 2)
	assert.Equal(t, Headers, rows[0])
	assert.Equal(t, "Shoe A", rows[1][0])
}

func TestFileStem(t *testing.T) {
	assert.Equal(t, "flipkart_blue_shoes", FileStem("flipkart", "blue shoes"))
	assert.Equal(t, "amazon_in_laptop", FileStem("amazon_in", " laptop "))
}
