package sheet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, name string, cells map[string]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for cell, v := range cells {
		require.NoError(t, f.SetCellValue("Sheet1", cell, v))
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestAllowedFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"datos.xlsx", true},
		{"DATOS.XLS", true},
		{"a.b.xls", true},
		{"xlsx", false},
		{"datos.csv", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AllowedFile(tt.name), tt.name)
	}
}

func TestSniff(t *testing.T) {
	assert.Equal(t, FormatXLSX, Sniff([]byte("PK\x03\x04rest")))
	assert.Equal(t, FormatXLS, Sniff([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}))
	assert.Equal(t, FormatUnknown, Sniff([]byte("%PDF-1.4")))
	assert.Equal(t, FormatUnknown, Sniff(nil))
}

func TestReadRecords(t *testing.T) {
	path := writeWorkbook(t, "usuarios.xlsx", map[string]any{
		"A1": "Usuario", "B1": " Contra ", "C1": "salario",
		"A2": "juan", "B2": "secreto", "C2": 25000,
		"A4": "maria", "B4": "clave",
	})

	records, err := ReadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 2, "blank row 3 is skipped")

	assert.Equal(t, 2, records[0].Row)
	assert.Equal(t, "juan", records[0].Get("usuario"))
	assert.Equal(t, "secreto", records[0].Get("contra"))
	assert.Equal(t, "25000", records[0].Get("salario"))
	assert.Equal(t, "juan", records[0].Label())

	assert.Equal(t, 4, records[1].Row)
	assert.Equal(t, "", records[1].Get("salario"))
}

func TestReadRecords_HeaderOnly(t *testing.T) {
	path := writeWorkbook(t, "vacio.xlsx", map[string]any{"A1": "usuario"})
	records, err := ReadRecords(path)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReadRecords_EmptySheet(t *testing.T) {
	path := writeWorkbook(t, "nada.xlsx", nil)
	_, err := ReadRecords(path)
	assert.ErrorIs(t, err, ErrEmptySheet)
	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestReadRecords_NotASpreadsheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notas.txt")
	require.NoError(t, os.WriteFile(path, []byte("hola"), 0644))
	_, err := ReadRecords(path)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestRecordLabel(t *testing.T) {
	assert.Equal(t, "row 7", Record{Row: 7, Fields: map[string]string{}}.Label())
}
