package ingest

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/compliance-engine/internal/errs"
)

func TestAllowed(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"policy.txt", true},
		{"Report.PDF", true},
		{"memo.docx", true},
		{"page.htm", true},
		{"notes.md", true},
		{"archive.zip", false},
		{"noext", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allowed(tt.name))
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("a.txt", 10, 0))
	assert.ErrorIs(t, Validate("a.exe", 10, 0), errs.ErrInvalidInput)
	assert.ErrorIs(t, Validate("a.txt", DefaultMaxSize+1, 0), errs.ErrInvalidInput)
	assert.ErrorIs(t, Validate("a.txt", 6, 5), errs.ErrInvalidInput)
}

func TestReadLimited(t *testing.T) {
	data, err := ReadLimited(bytes.NewReader([]byte("12345")), 5)
	require.NoError(t, err)
	assert.Equal(t, "12345", string(data))

	_, err = ReadLimited(bytes.NewReader([]byte("123456")), 5)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestExtractPlainText(t *testing.T) {
	got, err := Extract("a.txt", []byte("Data privacy policy."))
	require.NoError(t, err)
	assert.Equal(t, "Data privacy policy.", got)
}

func TestExtractReplacesInvalidUTF8(t *testing.T) {
	got, err := Extract("a.pdf", []byte("ok\xff\xfeend"))
	require.NoError(t, err)
	assert.Equal(t, "ok�end", got)
}

func TestExtractHTML(t *testing.T) {
	page := []byte(`<html><head><title>T</title><style>p{}</style></head>
<body><h1>Notice</h1><script>var x = 1;</script><p>A  data
breach occurred.</p></body></html>`)
	got, err := Extract("page.html", page)
	require.NoError(t, err)
	assert.Equal(t, "Notice A data breach occurred.", got)
}

func TestExtractEmpty(t *testing.T) {
	_, err := Extract("a.txt", []byte("  \n"))
	assert.ErrorIs(t, err, errs.ErrEmptyInput)
}
