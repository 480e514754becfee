package remote

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		location string
		want     Scheme
	}{
		{"s3://bucket/key", SchemeS3},
		{"S3://bucket/key", SchemeS3},
		{"https://example.com/q.sql", SchemeHTTPS},
		{"http://example.com/q.sql", SchemeHTTP},
		{"file:///tmp/q.sql", SchemeFile},
		{"/tmp/q.sql", SchemeLocal},
		{"queries.sql", SchemeLocal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Detect(tt.location), tt.location)
	}
}

func TestParseS3URL(t *testing.T) {
	bucket, key, err := ParseS3URL("s3://logs/2024/03/queries.sql")
	require.NoError(t, err)
	assert.Equal(t, "logs", bucket)
	assert.Equal(t, "2024/03/queries.sql", key)

	for _, bad := range []string{"s3://bucket", "s3://bucket/", "s3:///key", "", "s3:/", "s3:", "bucket/key", "https://logs/key"} {
		assert.NotPanics(t, func() {
			_, _, err := ParseS3URL(bad)
			assert.ErrorContains(t, err, "invalid S3 URL", bad)
		})
	}
}

func TestLocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "out.jsonl")

	for _, location := range []string{path, "file://" + path} {
		w, err := OpenWriter(ctx, location, nil)
		require.NoError(t, err)
		_, err = io.WriteString(w, "SELECT 1;\n")
		require.NoError(t, err)
		require.NoError(t, w.Close())

		r, err := OpenReader(ctx, location, nil)
		require.NoError(t, err)
		data, err := io.ReadAll(r)
		require.NoError(t, err)
		require.NoError(t, r.Close())
		assert.Equal(t, "SELECT 1;\n", string(data))
	}

	_, err := OpenReader(ctx, filepath.Join(t.TempDir(), "missing.sql"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHTTPReader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/queries.sql" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, "SELECT * FROM t;")
	}))
	defer server.Close()

	ctx := context.Background()
	r, err := OpenReader(ctx, server.URL+"/queries.sql", nil)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t;", string(data))

	_, err = OpenReader(ctx, server.URL+"/missing.sql", nil)
	assert.ErrorContains(t, err, "status 404")
}

func TestHTTPIsReadOnly(t *testing.T) {
	_, err := OpenWriter(context.Background(), "https://example.com/out.jsonl", nil)
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

// fakeS3 serves path-style GetObject and records PutObject bodies.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = string(body)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		body, ok := f.objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `<Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
			return
		}
		io.WriteString(w, body)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestS3ReadWrite(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{"/bucket/in.sql": "SELECT 42;"}}
	server := httptest.NewServer(fake)
	defer server.Close()

	cfg := &S3Config{
		AccessKey: "test",
		SecretKey: "test",
		Region:    "us-east-1",
		Endpoint:  server.URL,
	}
	ctx := context.Background()

	r, err := OpenReader(ctx, "s3://bucket/in.sql", cfg)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "SELECT 42;", string(data))

	w, err := OpenWriter(ctx, "s3://bucket/exports/catalog.jsonl", cfg)
	require.NoError(t, err)
	_, err = io.WriteString(w, `{"hash":"abc"}`)
	require.NoError(t, err)

	fake.mu.Lock()
	_, uploaded := fake.objects["/bucket/exports/catalog.jsonl"]
	fake.mu.Unlock()
	assert.False(t, uploaded, "nothing is uploaded before Close")

	require.NoError(t, w.Close())
	require.NoError(t, w.Close(), "second Close is a no-op")
	_, err = w.Write([]byte("late"))
	assert.Error(t, err)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Contains(t, fake.objects["/bucket/exports/catalog.jsonl"], `{"hash":"abc"}`)
}
