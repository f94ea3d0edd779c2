package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
)

func writeRegistry(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "districts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRun_EmbeddedRegistryPasses(t *testing.T) {
	var out bytes.Buffer
	code := run(&out, "")

	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "All validations passed.")
	assert.Contains(t, out.String(), "17 regions, 59 districts")
}

func TestRun_ReportsFailures(t *testing.T) {
	path := writeRegistry(t, `
regions:
  - name: 서울특별시
    districts:
      - {name: 강남구, lat: 37.5172, lon: 127.0473, nx: 1, ny: 1, baseline_depth: 0.5}
      - {name: 강남구, lat: 37.5172, lon: 127.0473, baseline_depth: 9}
`)

	var out bytes.Buffer
	code := run(&out, path)

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "Validation FAILED.")
	assert.Contains(t, out.String(), "duplicate of entry 0")
	assert.Contains(t, out.String(), "stored grid (1, 1)")
	assert.Contains(t, out.String(), "baseline depth 9")
}

func TestRun_MissingFile(t *testing.T) {
	var out bytes.Buffer
	code := run(&out, filepath.Join(t.TempDir(), "absent.yaml"))

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "FATAL: read registry")
}

func TestRun_UnknownField(t *testing.T) {
	path := writeRegistry(t, `
regions:
  - name: 서울특별시
    districts:
      - {name: 강남구, lat: 37.5, lon: 127.0, elevation: 3}
`)

	var out bytes.Buffer
	assert.Equal(t, 1, run(&out, path))
	assert.Contains(t, out.String(), "FATAL: decode registry")
}

func TestValidateFields(t *testing.T) {
	p := validateFields([]domain.District{
		{Region: "서울특별시", Name: "종로구", Lat: 37.57, Lon: 126.98},
		{Region: "서울특별시", Name: "", Lat: 37.5, Lon: 127.0},
		{Region: "서울특별시", Name: "중구"},
		{Region: "서울특별시", Name: "강남구", Lat: 137.5, Lon: 127.0},
	})

	assert.Len(t, p.errors, 3)
}

func TestValidateGrid_SkipsDerived(t *testing.T) {
	p := validateGrid([]domain.District{{Region: "r", Name: "d", Lat: 37.5, Lon: 127.0}})
	assert.True(t, p.passed())
}
