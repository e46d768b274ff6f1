package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTextPlainFile(t *testing.T) {
	path := writeFile(t, "doc.txt", "Plain text content.")
	text, err := Text(path)
	require.NoError(t, err)
	assert.Equal(t, "Plain text content.", text)
}

func TestTextMarkdownStripsMarkup(t *testing.T) {
	path := writeFile(t, "doc.md", "# Heading\n\nSome *emphasized* body text.\n\n- item one\n- item two\n")
	text, err := Text(path)
	require.NoError(t, err)
	assert.Contains(t, text, "Heading")
	assert.Contains(t, text, "emphasized")
	assert.Contains(t, text, "item one")
	assert.NotContains(t, text, "#")
	assert.NotContains(t, text, "*")
	assert.NotContains(t, text, "<h1>")
}

func TestTextUnsupportedFormat(t *testing.T) {
	path := writeFile(t, "doc.exe", "binary")
	_, err := Text(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestTextMissingFile(t *testing.T) {
	_, err := Text(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
