package net

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBody = "4 great movie\n0 terrible movie\n"

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/reviews.txt", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, clientAgent, r.Header.Get("User-Agent"))
		_, _ = io.WriteString(w, testBody)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	})
	s := httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func TestGetHTTPClient(t *testing.T) {
	client, err := GetHTTPClient()
	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.NotNil(t, client.Jar)
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://example.com/reviews.txt", true},
		{"HTTP://example.com", true},
		{"ftp://example.com/x", false},
		{"reviews.txt", false},
		{"/tmp/reviews.txt", false},
		{"https://", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsURL(tt.in), tt.in)
	}
}

func TestOpen(t *testing.T) {
	s := testServer(t)

	body, err := Open(context.Background(), s.URL+"/reviews.txt")
	require.NoError(t, err)
	defer body.Close()

	b, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, testBody, string(b))
}

func TestOpen_Errors(t *testing.T) {
	s := testServer(t)

	_, err := Open(context.Background(), s.URL+"/missing")
	assert.ErrorIs(t, err, ErrorURLNotFound)

	_, err = Open(context.Background(), s.URL+"/broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")

	_, err = Open(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestOpen_Canceled(t *testing.T) {
	s := testServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Open(ctx, s.URL+"/reviews.txt")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDownload(t *testing.T) {
	s := testServer(t)
	p := filepath.Join(t.TempDir(), "reviews.txt")

	require.NoError(t, Download(context.Background(), s.URL+"/reviews.txt", p))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, testBody, string(b))

	assert.Error(t, Download(context.Background(), s.URL+"/missing", p))
}
