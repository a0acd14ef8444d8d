package labels

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLabelMap(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "label_map.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ResolvesIndices(t *testing.T) {
	t.Parallel()

	path := writeLabelMap(t, `{
		"cwe_id":   {"0": "CWE-787", "1": "CWE-119"},
		"cwe_type": {"0": "Base", "1": "Class"}
	}`)

	m, err := Load(path)
	require.NoError(t, err)

	id, err := m.CWEID(1)
	require.NoError(t, err)
	assert.Equal(t, "CWE-119", id)

	typ, err := m.CWEType(0)
	require.NoError(t, err)
	assert.Equal(t, "Base", typ)
}

func TestLoad_UnknownIndex(t *testing.T) {
	t.Parallel()

	path := writeLabelMap(t, `{"cwe_id": {"0": "CWE-787"}, "cwe_type": {"0": "Base"}}`)
	m, err := Load(path)
	require.NoError(t, err)

	_, err = m.CWEID(7)
	assert.ErrorIs(t, err, ErrUnknownIndex)
	_, err = m.CWEType(7)
	assert.ErrorIs(t, err, ErrUnknownIndex)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
		assert.Error(t, err)
	})
	t.Run("malformed json", func(t *testing.T) {
		t.Parallel()
		_, err := Load(writeLabelMap(t, `{"cwe_id": [`))
		assert.Error(t, err)
	})
	t.Run("empty maps", func(t *testing.T) {
		t.Parallel()
		_, err := Load(writeLabelMap(t, `{"cwe_id": {}, "cwe_type": {}}`))
		assert.Error(t, err)
	})
}
