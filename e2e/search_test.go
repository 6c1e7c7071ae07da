//go:build e2e && unix

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSearchServer answers every upload with the given labels
func newSearchServer(t *testing.T, status int, labels ...string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		n, _ := strconv.Atoi(r.FormValue("neighbors"))
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		images := make([]map[string]string, 0, len(labels))
		for i, l := range labels {
			if i >= n {
				break
			}
			images = append(images, map[string]string{"source": "http://img/" + l + ".png", "label": l})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"images": images})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestSearchShowsResults(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	srv, calls := newSearchServer(t, http.StatusOK, "cat", "dog", "owl")

	_, err := tf.CreateTestWorkspace()
	require.NoError(t, err)
	img, err := tf.CreateTestImage("query.png")
	require.NoError(t, err)

	require.NoError(t, tf.StartApp("--endpoint", srv.URL+"/images", "--neighbors", "2", img))
	require.True(t, tf.Ready())
	require.True(t, tf.SeePlain("query.png"))

	tf.Submit()
	require.True(t, tf.OutputContainsPlain("Image uploaded successfully", 5*time.Second))
	require.True(t, tf.SeePlain("Results"))
	require.True(t, tf.SeePlain("1. cat"))
	require.True(t, tf.SeePlain("2. dog"))
	assert.False(t, tf.OutputContainsPlain("3. owl", 500*time.Millisecond))
	assert.Equal(t, int32(1), calls.Load())
}

func TestSearchFailureIsSilent(t *testing.T) {
	t.Parallel()
	tf := NewTUITest(t)
	defer tf.Cleanup()

	srv, calls := newSearchServer(t, http.StatusInternalServerError)

	_, err := tf.CreateTestWorkspace()
	require.NoError(t, err)
	img, err := tf.CreateTestImage("query.png")
	require.NoError(t, err)

	require.NoError(t, tf.StartApp("--endpoint", srv.URL+"/images", img))
	require.True(t, tf.Ready())
	require.True(t, tf.SeePlain("query.png"))

	tf.Submit()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 5*time.Second, 25*time.Millisecond)
	assert.False(t, tf.OutputContainsPlain("Image uploaded successfully", time.Second))
	assert.False(t, tf.OutputContainsPlain("Results", 100*time.Millisecond))
}
