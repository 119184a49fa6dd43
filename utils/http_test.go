package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Balaji2327/Devsparks/internal/types"
)

func newClient(t *testing.T) *HTTPClient {
	t.Helper()
	config := types.DefaultConfig()
	config.RequestDelay = 0
	return NewHTTPClient(config, logrus.New())
}

func TestGetSendsBrowserHeaders(t *testing.T) {
	var gotUA, gotLang string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	result, err := newClient(t).Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Contains(t, gotUA, "Mozilla/5.0")
	assert.Contains(t, gotLang, "en-IN")
}

func TestGetReportsFinalURLAfterRedirect(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("landed"))
	}))
	defer target.Close()

	hop := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL+"/final", http.StatusMovedPermanently)
	}))
	defer hop.Close()

	result, err := newClient(t).Get(context.Background(), hop.URL)
	require.NoError(t, err)
	assert.Equal(t, "/final", result.FinalURL.Path)
	assert.Equal(t, []byte("landed"), result.Body)
}

func TestGetNonOKStatusIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	result, err := newClient(t).Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, result.StatusCode)
}

func TestGetTimeoutSurfacesAsTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newClient(t).Get(ctx, server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrTimeout)
}

func TestGetInvalidURL(t *testing.T) {
	_, err := newClient(t).Get(context.Background(), "http://[::invalid")
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestGetCapsBodySize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		big := make([]byte, maxFetchBytes+1024)
		w.Write(big)
	}))
	defer server.Close()

	result, err := newClient(t).Get(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Len(t, result.Body, maxFetchBytes)
}
