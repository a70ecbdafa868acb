package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"go-excelproc/internal/formctl"
	"go-excelproc/internal/sheet"
)

func saveWorkbook(t *testing.T, name string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Usuario"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "ana"))
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func execute(t *testing.T, run func(*cobra.Command, []string) error, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	err := run(cmd, args)
	return out.String(), err
}

func TestCheckAccepted(t *testing.T) {
	out, err := execute(t, runCheck, saveWorkbook(t, "usuarios.xlsx"))
	require.NoError(t, err)
	assert.Contains(t, out, "button: Procesar: usuarios.xlsx")
	assert.Contains(t, out, "excel:  true")
	assert.Contains(t, out, "result: accepted")
}

func TestCheckRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notas.txt")
	require.NoError(t, os.WriteFile(path, []byte("hola"), 0o644))

	out, err := execute(t, runCheck, path)
	assert.ErrorIs(t, err, errRejected)
	assert.Contains(t, out, formctl.MsgUnsupported)
	assert.Contains(t, out, "button: "+formctl.LabelDefault)
}

func TestCheckMissingFile(t *testing.T) {
	_, err := execute(t, runCheck, filepath.Join(t.TempDir(), "nada.xlsx"))
	assert.ErrorContains(t, err, "file not found")
}

func TestRows(t *testing.T) {
	pretty = false
	out, err := execute(t, runRows, saveWorkbook(t, "usuarios.xlsx"))
	require.NoError(t, err)

	var records []sheet.Record
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, 2, records[0].Row)
	assert.Equal(t, "ana", records[0].Get("usuario"))
}
