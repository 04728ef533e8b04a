package baker_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matehackers/badges-engine/adapters/baker"
	"github.com/matehackers/badges-engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const callbackURL = "https://badges.example.org/assertions/abc?token=tok"

func TestHTTPBakerReturnsImage(t *testing.T) {
	var gotQuery, gotContentType, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.Query().Get("assertion")
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte("<svg>...</svg>"))
	}))
	defer server.Close()

	b := baker.NewHTTPBaker(server.URL+"/bake", time.Second, nil)
	result, err := b.Bake(context.Background(), callbackURL)
	require.NoError(t, err)

	assert.Equal(t, core.BakeBaked, result.Status)
	assert.Equal(t, []byte("<svg>...</svg>"), result.Image)
	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, callbackURL, gotQuery, "callback url survives query encoding")
	assert.Equal(t, "application/json", gotContentType)
}

func TestHTTPBakerNonSuccessIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	b := baker.NewHTTPBaker(server.URL, time.Second, nil)
	_, err := b.Bake(context.Background(), callbackURL)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrBakingTransport)

	var transportErr *core.BakingTransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusInternalServerError, transportErr.StatusCode)
	assert.Contains(t, transportErr.Body, "boom")
}

func TestHTTPBakerBlankBodyIsEmpty(t *testing.T) {
	for _, body := range []string{"", "  \n"} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))

		b := baker.NewHTTPBaker(server.URL, time.Second, nil)
		result, err := b.Bake(context.Background(), callbackURL)
		server.Close()

		require.NoError(t, err)
		assert.Equal(t, core.BakeEmpty, result.Status)
		assert.Nil(t, result.Image)
	}
}

func TestHTTPBakerKeepsExistingQuery(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		w.Write([]byte("png"))
	}))
	defer server.Close()

	b := baker.NewHTTPBaker(server.URL+"/?key=k1", time.Second, nil)
	_, err := b.Bake(context.Background(), callbackURL)
	require.NoError(t, err)
	assert.Equal(t, "k1", gotKey)
}

func TestHTTPBakerTimesOut(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	b := baker.NewHTTPBaker(server.URL, 50*time.Millisecond, nil)
	_, err := b.Bake(context.Background(), callbackURL)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrBakingTransport)

	// No response, so no status to report
	var transportErr *core.BakingTransportError
	assert.False(t, errors.As(err, &transportErr))
}
