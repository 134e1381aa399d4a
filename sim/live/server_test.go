package live

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/charge-lab/sim"
	"github.com/inference-sim/charge-lab/sim/assistant"
)

type fixture struct {
	clock   *sim.ManualClock
	driver  *sim.Driver
	session *sim.Session
	server  *Server
	http    *httptest.Server
}

func newFixture(t *testing.T, tutor *assistant.Tutor) *fixture {
	t.Helper()
	s, err := sim.NewSession(sim.DefaultConfig())
	require.NoError(t, err)
	clk := sim.NewManualClock(0)
	d := sim.NewDriver(s, clk, time.Millisecond)
	cfg := DefaultConfig()
	cfg.Push = 5 * time.Millisecond
	srv, err := NewServer(cfg, d, tutor)
	require.NoError(t, err)
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)
	return &fixture{clock: clk, driver: d, session: s, server: srv, http: hs}
}

// step advances the manual clock and steps the driver from the test goroutine,
// which acts as the tick loop.
func (f *fixture) step(n int, dt time.Duration) {
	for i := 0; i < n; i++ {
		f.clock.Advance(dt)
		f.driver.Step()
	}
}

func postJSON(t *testing.T, url string, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestNewServer_RejectsNonPositivePeriods(t *testing.T) {
	s, err := sim.NewSession(sim.DefaultConfig())
	require.NoError(t, err)
	d := sim.NewDriver(s, sim.NewManualClock(0), time.Millisecond)
	_, err = NewServer(Config{Addr: ":0", Tick: 0, Push: time.Second}, d, nil)
	assert.Error(t, err)
}

func TestServer_IntentEndpoint_AppliedOnNextTick(t *testing.T) {
	// GIVEN a live session
	f := newFixture(t, nil)

	// WHEN a toggle intent is posted and the driver ticks
	resp := postJSON(t, f.http.URL+"/intent", `{"intent":"toggle"}`)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	f.step(1, 16*time.Millisecond)

	// THEN the state endpoint reports the charged capacitor
	r, err := http.Get(f.http.URL + "/state")
	require.NoError(t, err)
	defer r.Body.Close()
	var msg SnapshotMessage
	require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
	assert.Equal(t, "charge", msg.Switch)
	assert.Equal(t, 10.0, msg.Voltage)
}

func TestServer_IntentEndpoint_RejectsUnknown(t *testing.T) {
	f := newFixture(t, nil)
	resp := postJSON(t, f.http.URL+"/intent", `{"intent":"explode"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_Export_EmptyThenCSV(t *testing.T) {
	f := newFixture(t, nil)

	r, err := http.Get(f.http.URL + "/export.csv")
	require.NoError(t, err)
	r.Body.Close()
	assert.Equal(t, http.StatusNotFound, r.StatusCode)

	// GIVEN a charged, recording session
	f.session.Toggle()
	f.session.SetRecording(true)
	f.step(10, 100*time.Millisecond)

	r, err = http.Get(f.http.URL + "/export.csv")
	require.NoError(t, err)
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, r.StatusCode)
	assert.True(t, strings.HasPrefix(string(body), "Time (s),Voltage (V),ln(V)\n"))
	assert.Contains(t, string(body), ",10.0000,2.3026")
}

func TestServer_Series_IncludesRecentTable(t *testing.T) {
	f := newFixture(t, nil)
	f.session.Toggle()
	f.session.SetRecording(true)
	f.step(40, 100*time.Millisecond)

	r, err := http.Get(f.http.URL + "/series")
	require.NoError(t, err)
	defer r.Body.Close()
	var got seriesResponse
	require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	assert.InDelta(t, 8, len(got.Points), 1)
	require.Less(t, len(got.Points), RecentRows)
	assert.Len(t, got.Recent, len(got.Points), "fewer than RecentRows points recorded")
	assert.Equal(t, got.Points[len(got.Points)-1].Time, got.Recent[0].Time, "newest first")
}

func TestServer_Series_EmptyIsArray(t *testing.T) {
	// GIVEN a session with nothing recorded
	f := newFixture(t, nil)

	// WHEN the series is fetched
	r, err := http.Get(f.http.URL + "/series")
	require.NoError(t, err)
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	require.NoError(t, err)

	// THEN both fields are empty arrays, not null
	assert.JSONEq(t, `{"points":[],"recent":[]}`, string(body))
}

func TestServer_ListenAndServe_StopsDriverBeforeReturning(t *testing.T) {
	// GIVEN a live server ticking on the wall clock
	s, err := sim.NewSession(sim.DefaultConfig())
	require.NoError(t, err)
	d := sim.NewDriver(s, sim.NewSystemClock(), time.Millisecond)
	srv, err := NewServer(Config{Addr: "127.0.0.1:0", Tick: time.Millisecond, Push: 5 * time.Millisecond}, d, nil)
	require.NoError(t, err)

	// WHEN the session runs briefly and is cancelled
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()
	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe did not return after cancel")
	}

	// THEN the tick loop has stopped and the caller owns the session
	ticks := s.Metrics().Ticks
	assert.Positive(t, ticks)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, ticks, s.Metrics().Ticks)
}

func TestServer_Ask_UsesTutor(t *testing.T) {
	f := newFixture(t, assistant.NewTutor(assistant.NewOfflineClient()))
	resp := postJSON(t, f.http.URL+"/ask", `{"question":"what is RC?"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got askResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, assistant.FallbackError, got.Reply)
}

func TestServer_Ask_DisabledWithoutTutor(t *testing.T) {
	f := newFixture(t, nil)
	resp := postJSON(t, f.http.URL+"/ask", `{"question":"hi"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_Metrics_ExposesSessionCounters(t *testing.T) {
	f := newFixture(t, nil)
	f.step(3, 10*time.Millisecond)

	r, err := http.Get(f.http.URL + "/metrics")
	require.NoError(t, err)
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "chargelab_ticks_total 3")
}

func TestServer_WebSocket_StreamsSnapshotsAndAcceptsIntents(t *testing.T) {
	// GIVEN a viewer connected over WebSocket with the broadcast loop running
	f := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = f.server.Broadcast(ctx) }()

	wsURL := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// WHEN the viewer sends a toggle intent
	require.NoError(t, conn.WriteJSON(IntentMessage{Intent: "toggle"}))
	require.Eventually(t, func() bool {
		f.step(1, 16*time.Millisecond)
		return f.session.Snapshot().State.Switch == sim.SwitchCharge
	}, 2*time.Second, 5*time.Millisecond)

	// THEN a pushed snapshot eventually shows the charged capacitor
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg SnapshotMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Switch == "charge" {
			assert.Equal(t, 10.0, msg.Voltage)
			break
		}
	}
}
