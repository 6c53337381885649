package e2e

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/metrics"
	"github.com/ayusman/mudra/internal/panel"
	"github.com/ayusman/mudra/internal/server"
)

// devices opens looping mock cameras and can be told to fail.
type devices struct {
	mu    sync.Mutex
	frame gocv.Mat
	fail  bool
	opens []capture.Config
}

func (d *devices) open(cfg capture.Config) (capture.Camera, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opens = append(d.opens, cfg)
	if d.fail {
		return nil, capture.ErrCameraNotOpen
	}
	cam := capture.NewMockCamera([]*gocv.Mat{&d.frame}, true)
	cam.Open()
	return cam, nil
}

type harness struct {
	ts       *httptest.Server
	app      *app.App
	detector *detector.MockDetector
	devices  *devices
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	dev := &devices{frame: gocv.NewMatWithSize(180, 320, gocv.MatTypeCV8UC3)}
	t.Cleanup(func() { dev.frame.Close() })

	det := detector.NewMockDetector()
	met := metrics.New()
	capCfg := capture.DefaultConfig()
	capCfg.Width, capCfg.Height = 320, 180

	a := app.New(app.Config{
		Capture:  capCfg,
		Detector: det,
		Opener:   dev.open,
		Metrics:  met,
		Log:      log,
	})
	ts := httptest.NewServer(server.New(server.Config{Tracker: a, Metrics: met, Log: log}))
	t.Cleanup(func() {
		ts.Close()
		a.Close()
	})

	return &harness{ts: ts, app: a, detector: det, devices: dev}
}

func (h *harness) post(t *testing.T, path string) (*http.Response, server.Status) {
	t.Helper()
	resp, err := h.ts.Client().Post(h.ts.URL+path, "application/json", nil)
	if err != nil {
		t.Fatalf("POST %s error = %v", path, err)
	}
	defer resp.Body.Close()
	var st server.Status
	json.NewDecoder(resp.Body).Decode(&st)
	return resp, st
}

func (h *harness) dialPanel(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(h.ts.URL, "http") + "/api/panel"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial panel error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads snapshots until cond holds or the deadline passes.
func readUntil(t *testing.T, conn *websocket.Conn, cond func(panel.Snapshot) bool) panel.Snapshot {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var s panel.Snapshot
		if err := conn.ReadJSON(&s); err != nil {
			t.Fatalf("waiting for snapshot: %v", err)
		}
		if cond(s) {
			return s
		}
	}
}

func TestE2E_CaptureWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	h := newHarness(t)
	h.detector.SetHands([]detector.Hand{detector.OpenPalmHand()})
	conn := h.dialPanel(t)

	t.Run("StartCapture", func(t *testing.T) {
		resp, st := h.post(t, "/api/capture/start")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		if !st.Capturing || st.Facing != capture.FacingUser || !st.PreviewMirrored {
			t.Errorf("status = %+v", st)
		}
	})

	t.Run("PanelShowsExtendedFingers", func(t *testing.T) {
		s := readUntil(t, conn, func(s panel.Snapshot) bool { return len(s.Captions) == 5 })
		for _, c := range s.Captions {
			if !strings.HasSuffix(c.Text, ": Extended") {
				t.Errorf("caption %q, want extended", c.Text)
			}
		}
		if s.Summary != "1 Hand(s) Detected" {
			t.Errorf("summary = %q", s.Summary)
		}
	})

	t.Run("StreamDeliversRenderedFrames", func(t *testing.T) {
		resp, err := h.ts.Client().Get(h.ts.URL + "/api/stream")
		if err != nil {
			t.Fatalf("GET /api/stream error = %v", err)
		}
		defer resp.Body.Close()

		br := bufio.NewReader(resp.Body)
		line, err := br.ReadString('\n')
		if err != nil || strings.TrimSpace(line) != "--frame" {
			t.Fatalf("first line = %q, err = %v", line, err)
		}
	})

	t.Run("HandsLeaveFrame", func(t *testing.T) {
		h.detector.SetHands(nil)
		s := readUntil(t, conn, func(s panel.Snapshot) bool { return s.HandCount == 0 && s.Capture.Capturing })
		if len(s.Captions) != 0 {
			t.Errorf("captions = %d, want 0", len(s.Captions))
		}
		if s.Summary != "No Hand Detected" {
			t.Errorf("summary = %q", s.Summary)
		}
	})

	t.Run("SwitchFacing", func(t *testing.T) {
		resp, st := h.post(t, "/api/capture/switch")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		if st.Facing != capture.FacingEnvironment || st.PreviewMirrored {
			t.Errorf("status = %+v", st)
		}

		h.devices.mu.Lock()
		last := h.devices.opens[len(h.devices.opens)-1]
		h.devices.mu.Unlock()
		if last.DeviceID() != last.EnvironmentDevice {
			t.Errorf("opened device %d, want the rear camera", last.DeviceID())
		}
	})

	t.Run("StopCapture", func(t *testing.T) {
		resp, st := h.post(t, "/api/capture/stop")
		if resp.StatusCode != http.StatusOK || st.Capturing {
			t.Fatalf("status = %d %+v", resp.StatusCode, st)
		}
		resp, _ = h.post(t, "/api/capture/stop")
		if resp.StatusCode != http.StatusConflict {
			t.Errorf("second stop status = %d, want %d", resp.StatusCode, http.StatusConflict)
		}
	})
}

func TestE2E_CaptureFailureLeavesIdle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	h := newHarness(t)
	h.devices.fail = true
	conn := h.dialPanel(t)

	resp, err := h.ts.Client().Post(h.ts.URL+"/api/capture/start", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}
	if body["error"] == "" {
		t.Error("expected an error message")
	}

	s := readUntil(t, conn, func(s panel.Snapshot) bool { return s.Error != "" })
	if s.Capture.Capturing {
		t.Error("a failed start should leave capture idle")
	}

	h.devices.fail = false
	if resp, st := h.post(t, "/api/capture/start"); resp.StatusCode != http.StatusOK || !st.Capturing {
		t.Errorf("retry status = %d %+v", resp.StatusCode, st)
	}
	if s := h.app.Snapshot(); s.Error != "" {
		t.Errorf("error = %q, should clear after a successful start", s.Error)
	}
}
