package app

import (
	"time"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/finger"
	"github.com/ayusman/mudra/internal/render"
)

// HandleFrame runs detection on one camera frame and feeds the result
// through HandleResult. A detection failure skips the frame.
func (a *App) HandleFrame(frame *gocv.Mat, facing capture.Facing) error {
	start := time.Now()

	hands, err := a.detector.Detect(frame)
	if err != nil {
		a.metrics.IncDetectionErrors()
		a.log.Debug("hand detection failed", "error", err)
		return errors.Wrap(err, "detect hands")
	}

	img, err := frame.ToImage()
	if err != nil {
		a.metrics.IncDetectionErrors()
		return errors.Wrap(err, "convert frame")
	}

	if err := a.HandleResult(detector.DetectionResult{Image: img, Hands: hands}, facing); err != nil {
		return err
	}
	a.metrics.ObserveFrame(len(hands), time.Since(start))
	return nil
}

// HandleResult renders one detection result, recomputes every finger state
// and publishes the panel. Nothing from earlier frames is carried over.
func (a *App) HandleResult(res detector.DetectionResult, facing capture.Facing) error {
	if res.Image == nil {
		return errors.New("detection result has no image")
	}

	a.frameMu.Lock()
	defer a.frameMu.Unlock()

	b := res.Image.Bounds()
	if a.renderer.Resize(b.Dx(), b.Dy()) {
		a.panel.SetContainer(b.Dx(), b.Dy())
		a.log.Debug("render surface resized", "width", b.Dx(), "height", b.Dy())
	}

	out := a.renderer.Render(res.Image, res.Hands, facing)
	data, err := render.EncodeJPEG(out)
	if err != nil {
		return errors.Wrap(err, "encode frame")
	}
	a.latestMu.Lock()
	a.latest = data
	a.latestMu.Unlock()

	if len(res.Hands) == 0 {
		a.panel.Reset()
	}
	for i := range res.Hands {
		hand := &res.Hands[i]
		states := finger.Classify(hand)
		for _, s := range states {
			if s.IsExtended {
				a.metrics.IncFingerExtended(string(s.Name))
			}
		}
		a.panel.Update(hand, states, facing)
	}
	a.panel.SetHandCount(len(res.Hands))

	a.publish()
	return nil
}
