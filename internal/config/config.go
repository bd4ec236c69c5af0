package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/example/gymbook/internal/site"
	"github.com/joho/godotenv"
)

const (
	DriverChromedp   = "chromedp"
	DriverPlaywright = "playwright"
)

type Config struct {
	LoginURL   string
	BookingURL string
	Username   string
	Password   string

	TargetTimeRange string
	ServiceID       string
	ConflictMessage string
	StrictOutcome   bool
	Location        *time.Location

	WaitTimeout      time.Duration
	TimetableTimeout time.Duration

	// browser
	Driver     string
	Headless   bool
	ChromePath string

	// PlaywrightInstall downloads the playwright driver and Chromium before launching.
	PlaywrightInstall bool

	LogLevel       string
	LogDir         string
	Env            string
	PushgatewayURL string
}

// Production reports whether console logging should be suppressed.
func (c Config) Production() bool {
	return c.Env == "production"
}

// Load reads .env files (default ".env") into the environment and then calls FromEnv.
// Variables already set in the environment win over the files.
func Load(paths ...string) (Config, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", p, err)
		}
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		LoginURL:        strings.TrimSpace(os.Getenv("GYM_WEB")),
		BookingURL:      strings.TrimSpace(os.Getenv("GYM_BOOKING")),
		Username:        strings.TrimSpace(os.Getenv("GYM_USERNAME")),
		Password:        os.Getenv("GYM_PASSWORD"),
		TargetTimeRange: getenv("TARGET_TIME_RANGE", site.DefaultTargetTimeRange),
		ServiceID:       getenv("SERVICE_ID", site.TrainingGroundServiceID),
		ConflictMessage: getenv("CONFLICT_MESSAGE", site.BookingAlreadyExists),
		Driver:          strings.ToLower(getenv("BROWSER_DRIVER", DriverChromedp)),
		ChromePath:      getenv("CHROME_PATH", ""),
		LogLevel:        strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogDir:          os.Getenv("LOG_DIR"),
		Env:             strings.ToLower(getenv("APP_ENV", "development")),
		PushgatewayURL:  getenv("PUSHGATEWAY_URL", ""),
	}
	if _, ok := os.LookupEnv("LOG_DIR"); !ok {
		cfg.LogDir = "."
	}

	required := []struct{ key, val string }{
		{"GYM_WEB", cfg.LoginURL},
		{"GYM_BOOKING", cfg.BookingURL},
		{"GYM_USERNAME", cfg.Username},
		{"GYM_PASSWORD", cfg.Password},
	}
	for _, r := range required {
		if r.val == "" {
			return Config{}, fmt.Errorf("%s is required", r.key)
		}
	}
	if strings.TrimSpace(cfg.TargetTimeRange) == "" {
		return Config{}, fmt.Errorf("TARGET_TIME_RANGE must not be blank")
	}
	if cfg.ConflictMessage == "" {
		return Config{}, fmt.Errorf("CONFLICT_MESSAGE must not be empty")
	}
	if cfg.Driver != DriverChromedp && cfg.Driver != DriverPlaywright {
		return Config{}, fmt.Errorf("invalid BROWSER_DRIVER %q (want %s or %s)", cfg.Driver, DriverChromedp, DriverPlaywright)
	}

	var err error
	if cfg.StrictOutcome, err = getbool("STRICT_OUTCOME", false); err != nil {
		return Config{}, err
	}
	if cfg.Headless, err = getbool("HEADLESS", true); err != nil {
		return Config{}, err
	}
	if cfg.PlaywrightInstall, err = getbool("PLAYWRIGHT_INSTALL", false); err != nil {
		return Config{}, err
	}
	if cfg.WaitTimeout, err = getduration("WAIT_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.TimetableTimeout, err = getduration("TIMETABLE_TIMEOUT", 2*time.Second); err != nil {
		return Config{}, err
	}

	tz := getenv("TIMEZONE", "Local")
	cfg.Location, err = time.LoadLocation(tz)
	if err != nil {
		return Config{}, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	return cfg, nil
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getbool(k string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", k, err)
	}
	return b, nil
}

func getduration(k string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s (want a positive duration like 30s)", k)
	}
	return d, nil
}
