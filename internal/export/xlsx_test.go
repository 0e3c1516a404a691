package export

import (
	"bytes"
	"testing"

	"github.com/jonathan/resume-reader/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func readRows(t *testing.T, data []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	return rows
}

func TestWriteMaskedXLSX(t *testing.T) {
	views := []types.MaskedResumeView{
		{
			ID:       "id-1",
			Name:     "Jane Doe",
			Email:    "ja***@example.com",
			Phone:    "****4567",
			Skills:   []string{"Go", "SQL"},
			FileID:   "blob-1",
			FileName: "jane.pdf",
		},
		{ID: "id-2", Name: "Unknown", FileName: "blank.docx"},
	}

	data, err := WriteMaskedXLSX(views)
	require.NoError(t, err)

	rows := readRows(t, data)
	require.Len(t, rows, 3)
	assert.Equal(t, Headers, rows[0])
	assert.Equal(t, []string{"id-1", "Jane Doe", "ja***@example.com", "****4567", "Go, SQL", "jane.pdf"}, rows[1])
	assert.Equal(t, "id-2", rows[2][0])
	assert.Equal(t, "Unknown", rows[2][1])
}

func TestWriteMaskedXLSX_Empty(t *testing.T) {
	data, err := WriteMaskedXLSX(nil)
	require.NoError(t, err)

	rows := readRows(t, data)
	require.Len(t, rows, 1)
	assert.Equal(t, Headers, rows[0])
}
