package tika

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestExtractPath_SendsPutAndSanitizes(t *testing.T) {
	var gotMethod, gotAccept, gotCT string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAccept = r.Header.Get("Accept")
		gotCT = r.Header.Get("Content-Type")
		_, _ = w.Write([]byte("Extracted\x00 text\n\nwith paragraphs"))
	}))
	defer srv.Close()

	path := writeTempFile(t, "resume.pdf", "%PDF-1.4 fake")
	c := New(srv.URL)

	text, err := c.ExtractPath(context.Background(), "resume.pdf", path)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "text/plain", gotAccept)
	assert.Equal(t, "application/pdf", gotCT)
	// control characters stripped, newlines kept
	assert.Equal(t, "Extracted text\n\nwith paragraphs", text)
}

func TestExtractPath_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	path := writeTempFile(t, "doc.txt", "hello")
	c := New(srv.URL)

	_, err := c.ExtractPath(context.Background(), "doc.txt", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tika status 422")
}

func TestExtractPath_DisallowedPath(t *testing.T) {
	c := New("http://unused")

	_, err := c.ExtractPath(context.Background(), "passwd", "/etc/passwd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disallowed path")
}

func TestContentTypeFromExt(t *testing.T) {
	assert.Equal(t, "application/pdf", contentTypeFromExt(".PDF"))
	assert.Equal(t, "text/plain", contentTypeFromExt(".txt"))
	assert.Equal(t, "", contentTypeFromExt(""))
}
