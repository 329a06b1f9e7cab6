package ranger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckRangeAwareOrigin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Accept-Ranges", "bytes")
		if r.Method == http.MethodHead {
			w.Header().Set("Content-Length", "10")
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Header.Get("Range") == "bytes=0-0" {
			w.WriteHeader(http.StatusPartialContent)
			_, _ = w.Write([]byte("0"))
			return
		}
		w.Header().Set("Content-Length", "10")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("0123456789"))
	}))
	defer srv.Close()

	rep := Check(context.Background(), http.DefaultClient, srv.URL)
	require.NoError(t, rep.Err)
	assert.True(t, rep.AcceptsRanges)
	assert.True(t, rep.RangeHonoured)
	assert.EqualValues(t, 10, rep.ContentLength)
}

func TestCheckNonRangeAwareOrigin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	rep := Check(context.Background(), http.DefaultClient, srv.URL)
	require.NoError(t, rep.Err)
	assert.False(t, rep.AcceptsRanges)
	assert.False(t, rep.RangeHonoured)
}

func TestCheckAllBoundsConcurrency(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Accept-Ranges", "bytes")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	urls := make([]string, 5)
	for i := range urls {
		urls[i] = srv.URL
	}

	reports := CheckAll(context.Background(), http.DefaultClient, urls, 2)
	require.Len(t, reports, 5)
	for _, rep := range reports {
		assert.NoError(t, rep.Err)
		assert.True(t, rep.AcceptsRanges)
	}
}
