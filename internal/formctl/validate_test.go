package formctl

import (
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFileSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 Bytes"},
		{1, "1 Bytes"},
		{1023, "1023 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1048576, "1 MB"},
		{16 * 1024 * 1024, "16 MB"},
		{1234567, "1.18 MB"},
		{1 << 30, "1 GB"},
		{3 << 40, "3072 GB"},
	}
	for _, tt := range tests {
		t.Run(strconv.FormatInt(tt.bytes, 10), func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFileSize(tt.bytes))
		})
	}
}

func TestFormatFileSizeRoundTrip(t *testing.T) {
	units := map[string]int{"Bytes": 0, "KB": 1, "MB": 2, "GB": 3}
	for _, b := range []int64{1, 7, 999, 1025, 4096, 65535, 1_000_000, 123_456_789, 5_000_000_000} {
		got := FormatFileSize(b)
		parts := strings.Split(got, " ")
		require.Len(t, parts, 2, got)
		v, err := strconv.ParseFloat(parts[0], 64)
		require.NoError(t, err)
		scale := math.Pow(1024, float64(units[parts[1]]))
		assert.InDelta(t, float64(b), v*scale, 0.005*scale, got)
	}
}

func TestValidateExcelFile(t *testing.T) {
	tests := []struct {
		name string
		file FileInfo
		want bool
	}{
		{"xls without type", FileInfo{Name: "a.xls"}, true},
		{"xlsx upper case", FileInfo{Name: "REPORT.XLSX"}, true},
		{"text file", FileInfo{Name: "a.txt", Type: "text/plain"}, false},
		{"mime xlsx wrong ext", FileInfo{Name: "a.bin", Type: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"}, true},
		{"mime xls no ext", FileInfo{Name: "data", Type: "application/vnd.ms-excel"}, true},
		{"csv", FileInfo{Name: "a.csv", Type: "text/csv"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateExcelFile(tt.file))
		})
	}
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "xlsx", FileInfo{Name: "report.final.XLSX"}.Extension())
	assert.Equal(t, "xls", FileInfo{Name: "xls"}.Extension())
	assert.Equal(t, "", FileInfo{Name: "trailing."}.Extension())
}

func TestCheckSelection(t *testing.T) {
	require.NoError(t, CheckSelection(FileInfo{Name: "report.XLSX", Size: 10}))
	require.NoError(t, CheckSelection(FileInfo{Name: "a.xls", Size: MaxFileSize}))

	err := CheckSelection(FileInfo{Name: "big.xlsx", Size: MaxFileSize + 1})
	assert.ErrorIs(t, err, ErrOversize)
	var selErr *SelectionError
	require.ErrorAs(t, err, &selErr)
	assert.Equal(t, "big.xlsx", selErr.Name)

	assert.ErrorIs(t, CheckSelection(FileInfo{Name: "data.csv", Size: 10}), ErrUnsupportedType)
	// size is checked before the extension
	assert.ErrorIs(t, CheckSelection(FileInfo{Name: "data.csv", Size: MaxFileSize + 1}), ErrOversize)
}

func TestTruncateName(t *testing.T) {
	assert.Equal(t, "short.xlsx", TruncateName("short.xlsx"))
	assert.Equal(t, "exactly_twenty_chars", TruncateName("exactly_twenty_chars"))
	assert.Equal(t, "informe_trimestral_2...", TruncateName("informe_trimestral_2024.xlsx"))
	assert.Equal(t, "ññññññññññññññññññññ...", TruncateName(strings.Repeat("ñ", 25)))
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, "danger", SeverityError.Class())
	assert.Equal(t, "success", SeveritySuccess.Class())
	assert.Equal(t, "info", SeverityInfo.Class())
	assert.Equal(t, "alert-circle", SeverityError.Icon())
	assert.Equal(t, "check-circle", SeveritySuccess.Icon())
	assert.Equal(t, "info", SeverityInfo.Icon())
}

func TestRenderBanner(t *testing.T) {
	html := string(RenderBanner(Banner{Message: "<b>hola</b>", Severity: SeverityError}))
	assert.Contains(t, html, `class="alert alert-danger alert-dismissible fade show"`)
	assert.Contains(t, html, `role="alert"`)
	assert.Contains(t, html, `data-feather="alert-circle"`)
	assert.Contains(t, html, `data-bs-dismiss="alert"`)
	assert.Contains(t, html, "&lt;b&gt;hola&lt;/b&gt;")
	assert.NotContains(t, html, "<b>")
}

func TestEvaluateSelection(t *testing.T) {
	out := EvaluateSelection(nil)
	require.NotNil(t, out.Label)
	assert.Equal(t, Label{Icon: "upload", Text: "Procesar Archivo"}, *out.Label)
	assert.False(t, out.Clear)
	assert.Nil(t, out.Alert)

	out = EvaluateSelection(&FileInfo{Name: "huge.xlsx", Size: MaxFileSize + 1})
	assert.True(t, out.Clear)
	require.NotNil(t, out.Alert)
	assert.Equal(t, MsgOversize, out.Alert.Message)
	assert.Nil(t, out.Label)

	out = EvaluateSelection(&FileInfo{Name: "a.csv", Size: 3})
	assert.True(t, out.Clear)
	require.NotNil(t, out.Alert)
	assert.Equal(t, SeverityError, out.Alert.Severity)

	out = EvaluateSelection(&FileInfo{Name: "planilla.xls", Size: 3})
	require.NotNil(t, out.Label)
	assert.Equal(t, "Procesar: planilla.xls", out.Label.Text)
	assert.False(t, out.Clear)
}

func TestEvaluateSubmit(t *testing.T) {
	out := EvaluateSubmit(nil)
	assert.False(t, out.Allow)
	assert.ErrorIs(t, out.Err, ErrNoFile)
	assert.Equal(t, MsgSelectFile, out.Alert.Message)

	out = EvaluateSubmit(&FileInfo{Name: "a.xlsx"})
	assert.True(t, out.Allow)
	assert.Equal(t, "Procesando...", out.BusyLabel)
	assert.Equal(t, SeverityInfo, out.Alert.Severity)
}
