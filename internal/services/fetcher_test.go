package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPImageFetcher(t *testing.T) {
	body := jpegImage(t, 40, 30)
	cdn := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(body)
	}))
	defer cdn.Close()

	release := make(chan struct{})
	started := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/lenta.jpg":
			started <- struct{}{}
			<-release
			_, _ = w.Write(body)
		case "/foto.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write(body)
		case "/externa.jpg":
			http.Redirect(w, r, cdn.URL+"/foto.jpg", http.StatusFound)
		case "/antiga.jpg":
			http.Redirect(w, r, "/foto.jpg", http.StatusMovedPermanently)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	defer close(release)

	f := &HTTPImageFetcher{}

	t.Run("ok", func(t *testing.T) {
		got, err := f.Fetch(context.Background(), srv.URL+"/foto.jpg")
		require.NoError(t, err)
		assert.Equal(t, body, got)
	})

	t.Run("redirect", func(t *testing.T) {
		got, err := f.Fetch(context.Background(), srv.URL+"/antiga.jpg")
		require.NoError(t, err)
		assert.Equal(t, body, got)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := f.Fetch(context.Background(), srv.URL+"/nada.jpg")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("body too large", func(t *testing.T) {
		small := &HTTPImageFetcher{MaxBytes: 16}
		_, err := small.Fetch(context.Background(), srv.URL+"/foto.jpg")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "larger than 16 bytes")
	})

	t.Run("with timeout", func(t *testing.T) {
		timed := &HTTPImageFetcher{Timeout: 5 * time.Second}
		got, err := timed.Fetch(context.Background(), srv.URL+"/foto.jpg")
		require.NoError(t, err)
		assert.Equal(t, body, got)
	})

	t.Run("with timeout follows redirects", func(t *testing.T) {
		timed := &HTTPImageFetcher{Timeout: 5 * time.Second}
		got, err := timed.Fetch(context.Background(), srv.URL+"/antiga.jpg")
		require.NoError(t, err)
		assert.Equal(t, body, got)
	})

	t.Run("redirect to another host", func(t *testing.T) {
		timed := &HTTPImageFetcher{Timeout: 5 * time.Second}
		got, err := timed.Fetch(context.Background(), srv.URL+"/externa.jpg")
		require.NoError(t, err)
		assert.Equal(t, body, got)
	})

	t.Run("canceled while in flight", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			<-started
			cancel()
		}()

		start := time.Now()
		_, err := f.Fetch(ctx, srv.URL+"/lenta.jpg")
		assert.ErrorIs(t, err, context.Canceled)
		assert.Less(t, time.Since(start), 5*time.Second)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := f.Fetch(ctx, srv.URL+"/foto.jpg")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("unreachable host", func(t *testing.T) {
		_, err := f.Fetch(context.Background(), "http://127.0.0.1:1/foto.jpg")
		assert.Error(t, err)
	})
}
