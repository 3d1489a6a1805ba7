package images

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestUpload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("image")
		require.NoError(t, err, "request should carry an image form file")
		defer file.Close()

		assert.True(t, strings.HasSuffix(header.Filename, ".png"),
			"object name should keep the original extension, got %q", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"url":"https://img.example.com/abc.png"}`))
	}))
	defer server.Close()

	uploader := NewUploader(server.URL, "test-key", zaptest.NewLogger(t))

	url, err := uploader.Upload(context.Background(), "logo.png", []byte{1, 2, 3})
	require.NoError(t, err, "Upload should not return an error")
	assert.Equal(t, "https://img.example.com/abc.png", url)
}

func TestUploadNoAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"), "no auth header without an api key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"url":"https://img.example.com/anon.png"}`))
	}))
	defer server.Close()

	uploader := NewUploader(server.URL, "", zaptest.NewLogger(t))

	url, err := uploader.Upload(context.Background(), "logo.png", []byte{1})
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/anon.png", url)
}

func TestUploadRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer server.Close()

	uploader := NewUploader(server.URL, "test-key", zaptest.NewLogger(t))

	_, err := uploader.Upload(context.Background(), "logo.png", []byte{1})
	assert.Error(t, err, "non-2xx response should surface as an error")
	assert.Contains(t, err.Error(), "403")
}

func TestUploadMissingURLInResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	uploader := NewUploader(server.URL, "test-key", zaptest.NewLogger(t))

	_, err := uploader.Upload(context.Background(), "logo.png", []byte{1})
	assert.Error(t, err, "response without a url should surface as an error")
}

func TestUploadConnectionError(t *testing.T) {
	uploader := NewUploader("http://127.0.0.1:1", "test-key", zaptest.NewLogger(t))

	_, err := uploader.Upload(context.Background(), "logo.png", []byte{1})
	assert.Error(t, err)
}
