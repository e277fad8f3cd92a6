package pdfinfo

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return b
}

func TestPages_TwoPageDocument(t *testing.T) {
	n, err := Pages(readFixture(t, "two-pages.pdf"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestText_ExtractsEveryPage(t *testing.T) {
	text, err := Text(readFixture(t, "two-pages.pdf"))
	require.NoError(t, err)
	assert.Contains(t, text, "Jane Doe")
	assert.Contains(t, text, "Certifications continued")
}

func TestPages_RejectsNonPDF(t *testing.T) {
	_, err := Pages([]byte("<html></html>"))
	assert.ErrorIs(t, err, ErrNotPDF)

	_, err = Pages(nil)
	assert.ErrorIs(t, err, ErrNotPDF)
}

func TestPages_CorruptBodyIsAnError(t *testing.T) {
	_, err := Pages([]byte("%PDF-1.7\nnot really a pdf"))
	assert.Error(t, err)
}

func TestText_RejectsNonPDF(t *testing.T) {
	_, err := Text([]byte("plain"))
	assert.ErrorIs(t, err, ErrNotPDF)
}
