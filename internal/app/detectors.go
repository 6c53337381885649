package app

import (
	"log/slog"

	"github.com/pkg/errors"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
)

// NewDetector builds the landmark detector named by cfg.Detector. "auto"
// tries MediaPipe first and falls back to the mock detector.
func NewDetector(cfg config.Config, log *slog.Logger) (detector.Detector, error) {
	if log == nil {
		log = slog.Default()
	}

	switch cfg.Detector {
	case config.DetectorMock:
		log.Info("using mock hand detection")
		return detector.NewMockDetector(), nil

	case config.DetectorHTTP:
		if cfg.DetectorURL == "" {
			return nil, errors.Wrap(config.ErrInvalid, "http detector requires a url")
		}
		log.Info("using remote hand detection", "url", cfg.DetectorURL)
		return detector.NewHTTPDetector(cfg.DetectorURL, cfg.Detection), nil

	case config.DetectorMediaPipe:
		mp, err := detector.NewMediaPipeDetector(cfg.Detection, log)
		if err != nil {
			return nil, err
		}
		log.Info("using MediaPipe hand detection")
		return mp, nil

	case config.DetectorAuto, "":
		mp, err := detector.NewMediaPipeDetector(cfg.Detection, log)
		if err == nil {
			log.Info("using MediaPipe hand detection")
			return mp, nil
		}
		log.Warn("MediaPipe not available, using mock detector", "error", err)
		return detector.NewMockDetector(), nil
	}

	return nil, errors.Wrapf(config.ErrInvalid, "unknown detector %q", cfg.Detector)
}
