package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrectedName(t *testing.T) {
	assert.Equal(t, "invoice_corrected.csv", CorrectedName("/in/invoice.csv", "csv"))
	assert.Equal(t, "batch_corrected.json", CorrectedName("batch.xml", "json"))
	assert.Equal(t, "plain_corrected.xml", CorrectedName("plain", "xml"))
}

func TestFindingsName(t *testing.T) {
	assert.Equal(t, "invoice_findings.txt", FindingsName("/in/invoice.csv"))
	assert.Equal(t, "plain_findings.txt", FindingsName("plain"))
}

func TestNewRunIDUnique(t *testing.T) {
	a := NewRunID()
	b := NewRunID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestWriteOutputCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "nested")

	path, err := WriteOutput(dir, "result.json", []byte(`{"ok":true}`))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(data))
}

func TestMoveToArchive(t *testing.T) {
	tmp := t.TempDir()
	input := filepath.Join(tmp, "invoice.csv")
	require.NoError(t, os.WriteFile(input, []byte("a,b\n1,2\n"), 0o644))

	archive := filepath.Join(tmp, "archive")
	require.NoError(t, MoveToArchive(input, archive))

	_, err := os.Stat(input)
	assert.True(t, os.IsNotExist(err))

	data, err := os.ReadFile(filepath.Join(archive, "invoice.csv"))
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(data))
}
