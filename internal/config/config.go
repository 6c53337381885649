// Package config loads runtime settings from a .env file and the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// Detector backends.
const (
	DetectorAuto      = "auto"
	DetectorMediaPipe = "mediapipe"
	DetectorHTTP      = "http"
	DetectorMock      = "mock"
)

// Config is the full set of runtime settings.
type Config struct {
	Addr      string
	LogLevel  string
	LogFormat string
	WebDir    string
	Tray      bool

	Capture capture.Config

	Detector    string
	DetectorURL string
	Detection   detector.Config
}

// Load reads the .env file from the current working directory and sets
// environment variables. If .env does not exist, Load returns an error but
// callers can ignore it and use system env or defaults. With no paths, ".env"
// is used.
func Load(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	return godotenv.Load(paths...)
}

// FromEnv builds a Config from MUDRA_* environment variables, falling back to
// defaults for anything unset. An unparsable facing mode is kept as given so
// Validate can report it.
func FromEnv() Config {
	cam := capture.DefaultConfig()
	cam.Width = GetEnvInt("MUDRA_CAPTURE_WIDTH", cam.Width)
	cam.Height = GetEnvInt("MUDRA_CAPTURE_HEIGHT", cam.Height)
	cam.FPS = GetEnvInt("MUDRA_CAPTURE_FPS", cam.FPS)
	cam.UserDevice = GetEnvInt("MUDRA_USER_DEVICE", cam.UserDevice)
	cam.EnvironmentDevice = GetEnvInt("MUDRA_ENVIRONMENT_DEVICE", cam.EnvironmentDevice)
	cam.Facing = capture.Facing(GetEnv("MUDRA_FACING", string(cam.Facing)))

	det := detector.DefaultConfig()
	det.MaxHands = GetEnvInt("MUDRA_MAX_HANDS", det.MaxHands)
	det.MinConfidence = GetEnvFloat("MUDRA_MIN_DETECTION_CONFIDENCE", det.MinConfidence)
	det.MinTrackingConf = GetEnvFloat("MUDRA_MIN_TRACKING_CONFIDENCE", det.MinTrackingConf)

	webDir := GetEnv("MUDRA_WEB_DIR", "")
	if webDir == "" {
		webDir = FindWebDir()
	}

	return Config{
		Addr:        GetEnv("MUDRA_ADDR", ":8080"),
		LogLevel:    GetEnv("MUDRA_LOG_LEVEL", "info"),
		LogFormat:   GetEnv("MUDRA_LOG_FORMAT", "text"),
		WebDir:      webDir,
		Tray:        GetEnvBool("MUDRA_TRAY", false),
		Capture:     cam,
		Detector:    strings.ToLower(GetEnv("MUDRA_DETECTOR", DetectorAuto)),
		DetectorURL: GetEnv("MUDRA_DETECTOR_URL", ""),
		Detection:   det,
	}
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	if c.Capture.Width <= 0 || c.Capture.Height <= 0 {
		return errors.Wrapf(ErrInvalid, "capture size %dx%d", c.Capture.Width, c.Capture.Height)
	}
	if c.Capture.FPS <= 0 {
		return errors.Wrapf(ErrInvalid, "capture fps %d", c.Capture.FPS)
	}
	if _, err := capture.ParseFacing(string(c.Capture.Facing)); err != nil {
		return errors.Wrap(ErrInvalid, err.Error())
	}

	switch c.Detector {
	case DetectorAuto, DetectorMediaPipe, DetectorMock:
	case DetectorHTTP:
		if c.DetectorURL == "" {
			return errors.Wrap(ErrInvalid, "http detector requires MUDRA_DETECTOR_URL")
		}
	default:
		return errors.Wrapf(ErrInvalid, "unknown detector %q", c.Detector)
	}

	if c.Detection.MaxHands <= 0 {
		return errors.Wrapf(ErrInvalid, "max hands %d", c.Detection.MaxHands)
	}
	if !unit(c.Detection.MinConfidence) || !unit(c.Detection.MinTrackingConf) {
		return errors.Wrapf(ErrInvalid, "confidence %.2f/%.2f outside [0,1]",
			c.Detection.MinConfidence, c.Detection.MinTrackingConf)
	}
	return nil
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}

// GetEnv returns the value of the environment variable named by key, or fallback
// if the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return fallback
}

// GetEnvInt returns the integer value of the environment variable named by key,
// or fallback if the variable is unset, empty, or not a valid integer.
func GetEnvInt(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

// GetEnvFloat is GetEnvInt for floating point values.
func GetEnvFloat(key string, fallback float64) float64 {
	if s := os.Getenv(key); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return fallback
}

// GetEnvBool accepts anything strconv.ParseBool does.
func GetEnvBool(key string, fallback bool) bool {
	if s := os.Getenv(key); s != "" {
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	}
	return fallback
}

// FindWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.mudra/web.
// Returns the first existing directory or empty string if none found.
func FindWebDir() string {
	for _, p := range []string{"web", "../web", "../../web"} {
		if isDir(p) {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	if p := filepath.Join(homeDir, ".mudra", "web"); isDir(p) {
		return p
	}
	return ""
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
