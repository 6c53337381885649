package detector

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// HTTPDetector implements Detector against a remote landmark service that
// accepts a base64 JPEG and answers with the same JSON shape as the
// MediaPipe subprocess.
type HTTPDetector struct {
	url    string
	config Config
	client *http.Client
}

type httpDetectRequest struct {
	Image                  string  `json:"image"`
	MaxHands               int     `json:"max_hands"`
	MinDetectionConfidence float64 `json:"min_detection_confidence"`
	MinTrackingConfidence  float64 `json:"min_tracking_confidence"`
}

// NewHTTPDetector creates a detector posting frames to url.
func NewHTTPDetector(url string, config Config) *HTTPDetector {
	return &HTTPDetector{
		url:    url,
		config: config,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// Detect posts the frame and decodes the returned hands.
func (d *HTTPDetector) Detect(frame *gocv.Mat) ([]Hand, error) {
	data, err := encodeFrame(frame)
	if err != nil {
		return nil, err
	}
	return d.detectJPEG(data)
}

func (d *HTTPDetector) detectJPEG(data []byte) ([]Hand, error) {
	body, err := json.Marshal(httpDetectRequest{
		Image:                  base64.StdEncoding.EncodeToString(data),
		MaxHands:               d.config.MaxHands,
		MinDetectionConfidence: d.config.MinConfidence,
		MinTrackingConfidence:  d.config.MinTrackingConf,
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshal request")
	}

	resp, err := d.client.Post(d.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(ErrServiceUnavailable, "post %s: %v", d.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Wrapf(ErrServiceUnavailable, "status %d", resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}
	return decodeHands(payload)
}

// Close is a no-op; the HTTP client holds no per-detector resources.
func (d *HTTPDetector) Close() error {
	return nil
}
