// Package telemetry encodes feature records into the fixed wire schema and
// delivers them to the configured ingestion endpoint over HTTP or MQTT.
package telemetry

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"acoustimon/internal/errors"
	"acoustimon/internal/identity"
)

const (
	headerDeviceID = "X-Device-ID"
	headerCategory = "X-Device-Category"
)

// HTTPUploader posts payloads to a fixed endpoint with the device identity
// headers. One POST per call, bounded by the client timeout; no retries.
type HTTPUploader struct {
	client   *http.Client
	endpoint string
	id       identity.Identity
}

func NewHTTPUploader(endpoint string, id identity.Identity, timeout time.Duration) (*HTTPUploader, error) {
	errFactory := errors.New()

	if endpoint == "" {
		return nil, errFactory.New(ErrInvalidEndpoint)
	}

	return &HTTPUploader{
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
		id:       id,
	}, nil
}

func (u *HTTPUploader) Upload(ctx context.Context, payload []byte) error {
	errFactory := errors.New()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, bytes.NewReader(payload))
	if err != nil {
		return errFactory.Wrap(ErrUploadFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerDeviceID, u.id.ID)
	req.Header.Set(headerCategory, u.id.Category)

	resp, err := u.client.Do(req)
	if err != nil {
		return errFactory.Wrap(ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return errFactory.WithData(ErrBadStatus, resp.StatusCode)
	}

	return nil
}

func (u *HTTPUploader) Close() error {
	u.client.CloseIdleConnections()

	return nil
}
