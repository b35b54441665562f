package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/japanese"
)

func TestFetcherFetch(t *testing.T) {
	t.Parallel()

	t.Run("returns decoded html and writes the cache", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, "<html><title>hello</title></html>")
		}))
		defer srv.Close()

		cache := NewCache(t.TempDir())
		f := New(cache)

		body, err := f.Fetch(context.Background(), srv.URL)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(body, "hello") {
			t.Errorf("body = %q, want it to contain %q", body, "hello")
		}

		cached, ok := cache.Get(srv.URL)
		if !ok {
			t.Fatal("expected a cache entry after fetch")
		}
		if cached != body {
			t.Error("cache content differs from returned body")
		}
	})

	t.Run("cache hit avoids the network", func(t *testing.T) {
		t.Parallel()

		var hits int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits++
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, "<html>fresh</html>")
		}))
		defer srv.Close()

		f := New(NewCache(t.TempDir()))
		for range 3 {
			if _, err := f.Fetch(context.Background(), srv.URL); err != nil {
				t.Fatal(err)
			}
		}
		if hits != 1 {
			t.Errorf("server saw %d requests, want 1", hits)
		}
	})

	t.Run("non-success status is a StatusError", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer srv.Close()

		f := New(NewCache(t.TempDir()))
		_, err := f.Fetch(context.Background(), srv.URL)

		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("error = %v, want StatusError", err)
		}
		if statusErr.StatusCode != http.StatusNotFound {
			t.Errorf("StatusCode = %d, want 404", statusErr.StatusCode)
		}
	})

	t.Run("non-html content type is rejected and not cached", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/pdf")
			fmt.Fprint(w, "%PDF-1.4")
		}))
		defer srv.Close()

		cache := NewCache(t.TempDir())
		f := New(cache)

		if _, err := f.Fetch(context.Background(), srv.URL); !errors.Is(err, ErrNotHTML) {
			t.Fatalf("error = %v, want ErrNotHTML", err)
		}
		if _, ok := cache.Get(srv.URL); ok {
			t.Error("non-html response was cached")
		}
	})

	t.Run("declared charset is decoded to utf-8", func(t *testing.T) {
		t.Parallel()

		original := "<html><title>日本語</title></html>"
		encoded, err := japanese.ShiftJIS.NewEncoder().String(original)
		if err != nil {
			t.Fatal(err)
		}

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=shift_jis")
			fmt.Fprint(w, encoded)
		}))
		defer srv.Close()

		f := New(NewCache(t.TempDir()))
		body, err := f.Fetch(context.Background(), srv.URL)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(body, "日本語") {
			t.Errorf("body was not transcoded to UTF-8: %q", body)
		}
	})

	t.Run("cache write failure is a CacheWriteError", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, "<html>uncachable</html>")
		}))
		defer srv.Close()

		// A regular file at the cache directory path makes every write
		// fail.
		occupied := filepath.Join(t.TempDir(), "occupied")
		if err := os.WriteFile(occupied, []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}

		f := New(NewCache(occupied))
		_, err := f.Fetch(context.Background(), srv.URL)

		var cacheErr *CacheWriteError
		if !errors.As(err, &cacheErr) {
			t.Fatalf("error = %v, want CacheWriteError", err)
		}
		if cacheErr.URL != srv.URL {
			t.Errorf("URL = %q, want %q", cacheErr.URL, srv.URL)
		}
	})

	t.Run("body larger than the limit is truncated", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, strings.Repeat("x", 1024))
		}))
		defer srv.Close()

		f := New(NewCache(t.TempDir()), WithMaxBodySize(100))
		body, err := f.Fetch(context.Background(), srv.URL)
		if err != nil {
			t.Fatal(err)
		}
		if len(body) != 100 {
			t.Errorf("len(body) = %d, want 100", len(body))
		}
	})
}

func TestCache(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		cache := NewCache(t.TempDir())
		const url = "https://example.com/docs/"
		const body = "<html>cached</html>"

		if _, ok := cache.Get(url); ok {
			t.Fatal("unexpected hit on empty cache")
		}
		if err := cache.Put(url, body); err != nil {
			t.Fatal(err)
		}
		got, ok := cache.Get(url)
		if !ok {
			t.Fatal("expected a hit after Put")
		}
		if got != body {
			t.Errorf("Get = %q, want %q", got, body)
		}
	})

	t.Run("distinct urls use distinct files", func(t *testing.T) {
		t.Parallel()

		cache := NewCache(t.TempDir())
		a := cache.Path("https://example.com/a/")
		b := cache.Path("https://example.com/b/")
		if a == b {
			t.Errorf("same cache path for different urls: %s", a)
		}
	})

	t.Run("creates the directory on first write", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir() + "/nested/cache"
		cache := NewCache(dir)
		if err := cache.Put("https://example.com/", "<html></html>"); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("cache dir was not created: %v", err)
		}
	})
}
