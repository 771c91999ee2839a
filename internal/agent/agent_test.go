package agent

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acoustimon/internal/audio"
	"acoustimon/internal/control"
	"acoustimon/internal/errors"
	"acoustimon/internal/identity"
	"acoustimon/internal/telemetry"
)

const (
	testWindowSamples    = 16
	testAnalysisInterval = 5 * time.Second
	testUploadInterval   = 10 * time.Second
)

type fakeSource struct {
	err      error
	sample   int16
	captures int
}

func (s *fakeSource) Capture(window audio.SampleWindow) error {
	if s.err != nil {
		return s.err
	}

	for i := range window {
		window[i] = s.sample
	}
	s.captures++

	return nil
}

func (s *fakeSource) Close() error { return nil }

type fakeNetwork struct {
	connected  bool
	reconnects int
}

func (n *fakeNetwork) Ensure(_ context.Context) bool { return n.connected }

func (n *fakeNetwork) ForceReconnect(_ context.Context) bool {
	n.reconnects++

	return n.connected
}

type fakePanel struct {
	intents       []control.Intent
	uploadEnabled bool
	refreshes     int
	lastLink      bool
}

func (p *fakePanel) Poll() control.Intent {
	if len(p.intents) == 0 {
		return control.IntentNone
	}

	intent := p.intents[0]
	p.intents = p.intents[1:]

	return intent
}

func (p *fakePanel) UploadEnabled() bool { return p.uploadEnabled }

func (p *fakePanel) RefreshLights(connected bool) {
	p.refreshes++
	p.lastLink = connected
}

type fakeUploader struct {
	err      error
	payloads []string
}

func (u *fakeUploader) Upload(_ context.Context, payload []byte) error {
	if u.err != nil {
		return u.err
	}
	u.payloads = append(u.payloads, string(payload))

	return nil
}

func (u *fakeUploader) Close() error { return nil }

type fakeRecorder struct {
	records int
}

func (r *fakeRecorder) Record(_ context.Context, record *telemetry.FeatureRecord) error {
	if record != nil {
		r.records++
	}

	return nil
}

func (r *fakeRecorder) Close() error { return nil }

type fixture struct {
	agent    *Agent
	clock    *clock.Mock
	source   *fakeSource
	network  *fakeNetwork
	panel    *fakePanel
	uploader *fakeUploader
	recorder *fakeRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		clock:    clock.NewMock(),
		source:   &fakeSource{sample: 2000},
		network:  &fakeNetwork{connected: true},
		panel:    &fakePanel{uploadEnabled: true},
		uploader: &fakeUploader{},
		recorder: &fakeRecorder{},
	}

	a, err := New(Config{
		WindowSamples:    testWindowSamples,
		AnalysisInterval: testAnalysisInterval,
		UploadInterval:   testUploadInterval,
		UploadTimeout:    time.Second,
		TickYield:        0,
	}, Deps{
		Source:   f.source,
		Network:  f.network,
		Panel:    f.panel,
		Uploader: f.uploader,
		Recorder: f.recorder,
		Identity: identity.Identity{ID: "compressor-test", Category: "compressor-monitor"},
		Clock:    f.clock,
	})
	require.NoError(t, err)

	a.initTimers()
	f.agent = a

	return f
}

// advance moves the mock clock and runs one tick, the way the loop would
// after a long yield.
func (f *fixture) advance(d time.Duration) {
	f.clock.Add(d)
	f.agent.tick(context.Background())
}

func TestUploadNeverAttemptedWhenDisabled(t *testing.T) {
	f := newFixture(t)
	f.panel.uploadEnabled = false

	for i := 0; i < 50; i++ {
		f.advance(testUploadInterval)
	}

	assert.Empty(t, f.uploader.payloads, "Expected zero outbound calls with uploads disabled")
	assert.Positive(t, f.recorder.records, "Expected analysis cycles to continue while gated")
}

func TestUploadNeverAttemptedWhenDisconnected(t *testing.T) {
	f := newFixture(t)
	f.network.connected = false

	for i := 0; i < 50; i++ {
		f.advance(testUploadInterval)
	}

	assert.Empty(t, f.uploader.payloads, "Expected zero outbound calls while disconnected")
}

func TestUploadsWhenDueAndAllowed(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 5; i++ {
		f.advance(testUploadInterval)
	}

	require.Len(t, f.uploader.payloads, 5)
	for _, payload := range f.uploader.payloads {
		assert.Contains(t, payload, `"device_id":"compressor-test"`)
	}
}

func TestCaptureFailureSkipsCycle(t *testing.T) {
	f := newFixture(t)
	f.source.err = errors.New().New(audio.ErrCaptureFailed)

	f.advance(testUploadInterval)

	assert.Zero(t, f.recorder.records, "Expected no analysis on capture failure")
	assert.Empty(t, f.uploader.payloads, "Expected no upload on capture failure")

	// The next successful capture recovers both cycles.
	f.source.err = nil
	f.advance(testUploadInterval)

	assert.Equal(t, 1, f.recorder.records)
	assert.Len(t, f.uploader.payloads, 1)
}

func TestForceReconnectFiresOncePerIntent(t *testing.T) {
	f := newFixture(t)
	f.panel.intents = []control.Intent{control.IntentForceReconnect}

	f.advance(time.Second)
	assert.Equal(t, 1, f.network.reconnects)

	for i := 0; i < 10; i++ {
		f.advance(time.Second)
	}
	assert.Equal(t, 1, f.network.reconnects, "Expected no further reconnects without a new intent")
}

func TestAnalysisAndUploadCadencesAreIndependent(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 20; i++ {
		f.advance(time.Second)
	}

	assert.Equal(t, 4, f.recorder.records, "Expected an analysis every 5s over 20s")
	assert.Len(t, f.uploader.payloads, 2, "Expected an upload every 10s over 20s")
}

func TestUploadFailureIsDiscarded(t *testing.T) {
	f := newFixture(t)
	f.uploader.err = errors.New().New(telemetry.ErrUploadFailed)

	f.advance(testUploadInterval)
	assert.Empty(t, f.uploader.payloads)

	// A failed upload is never retried early; the next due cycle uploads.
	f.uploader.err = nil
	f.advance(time.Second)
	assert.Empty(t, f.uploader.payloads, "Expected no retry before the next due cycle")

	f.advance(testUploadInterval)
	assert.Len(t, f.uploader.payloads, 1)
}

func TestStatusSnapshotTracksLoopState(t *testing.T) {
	f := newFixture(t)

	f.advance(testAnalysisInterval)

	status := f.agent.Status()
	assert.Equal(t, "compressor-test", status.DeviceID)
	assert.True(t, status.Connected)
	assert.True(t, status.UploadEnabled)
	assert.True(t, f.panel.lastLink, "Expected the link light to follow connectivity")

	f.network.connected = false
	f.advance(time.Second)

	assert.False(t, f.agent.Status().Connected)
	assert.False(t, f.panel.lastLink)
}
