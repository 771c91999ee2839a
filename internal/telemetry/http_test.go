package telemetry_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acoustimon/internal/errors"
	"acoustimon/internal/identity"
	"acoustimon/internal/telemetry"
)

var testIdentity = identity.Identity{ID: "compressor-test0001", Category: "compressor-monitor"}

func TestHTTPUploaderPostsPayload(t *testing.T) {
	var (
		calls   int
		gotBody []byte
		gotHdr  http.Header
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		gotHdr = r.Header.Clone()
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		gotBody = body
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	uploader, err := telemetry.NewHTTPUploader(server.URL, testIdentity, time.Second)
	require.NoError(t, err)
	defer uploader.Close()

	payload := []byte(`{"device_id":"compressor-test0001"}`)
	err = uploader.Upload(context.Background(), payload)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, payload, gotBody)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, "compressor-test0001", gotHdr.Get("X-Device-ID"))
	assert.Equal(t, "compressor-monitor", gotHdr.Get("X-Device-Category"))
}

func TestHTTPUploaderRejectsBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	uploader, err := telemetry.NewHTTPUploader(server.URL, testIdentity, time.Second)
	require.NoError(t, err)
	defer uploader.Close()

	err = uploader.Upload(context.Background(), []byte(`{}`))
	require.Error(t, err)
	assert.Equal(t, telemetry.ErrBadStatus, errors.CodeOf(err))
}

func TestHTTPUploaderReportsNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	endpoint := server.URL
	server.Close()

	uploader, err := telemetry.NewHTTPUploader(endpoint, testIdentity, time.Second)
	require.NoError(t, err)
	defer uploader.Close()

	err = uploader.Upload(context.Background(), []byte(`{}`))
	require.Error(t, err)
	assert.Equal(t, telemetry.ErrUploadFailed, errors.CodeOf(err))
}

func TestNewHTTPUploaderRequiresEndpoint(t *testing.T) {
	_, err := telemetry.NewHTTPUploader("", testIdentity, time.Second)
	require.Error(t, err)
	assert.Equal(t, telemetry.ErrInvalidEndpoint, errors.CodeOf(err))
}
