package utils

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "planilla_enero.xlsx", SanitizeFilename("planilla enero.xlsx"))
	assert.Equal(t, "passwd", SanitizeFilename("../../etc/passwd"))
	assert.Equal(t, "a_o_2024.xls", SanitizeFilename("año 2024.xls"))

	long := strings.Repeat("x", 150) + ".xlsx"
	got := SanitizeFilename(long)
	assert.Len(t, got, 100)
	assert.True(t, strings.HasSuffix(got, ".xlsx"))
}

func TestStoredName(t *testing.T) {
	name := StoredName("datos.xlsx")
	assert.True(t, strings.HasSuffix(name, "-datos.xlsx"))
	_, err := uuid.Parse(name[:36])
	assert.NoError(t, err)
}
