// Package config resolves runtime settings from defaults, an optional YAML
// file and CHECKIN_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/checkin/internal/model"
	"github.com/sandeepkv93/checkin/internal/planner"
	"github.com/sandeepkv93/checkin/internal/scheduler"
)

const appDir = "checkin"

type Runtime struct {
	Interval             time.Duration `yaml:"interval"`
	NagCount             int           `yaml:"nag_count"`
	NagSpacing           time.Duration `yaml:"nag_spacing"`
	PendingLimit         int           `yaml:"pending_limit"`
	DBPath               string        `yaml:"db_path"`
	SurfaceFile          string        `yaml:"surface_file"`
	LogPath              string        `yaml:"log_path"`
	DesktopNotifications bool          `yaml:"desktop_notifications"`
	UserName             string        `yaml:"user_name"`
	NotificationSound    string        `yaml:"notification_sound"`
}

func Default() Runtime {
	data := dataDir()
	return Runtime{
		Interval:             model.DefaultInterval,
		NagCount:             planner.DefaultNagCount,
		NagSpacing:           planner.DefaultNagSpacing,
		PendingLimit:         scheduler.DefaultPendingLimit,
		DBPath:               filepath.Join(data, "checkin.db"),
		SurfaceFile:          filepath.Join(data, "countdown.yaml"),
		LogPath:              "",
		DesktopNotifications: false,
		NotificationSound:    "default",
	}
}

// DefaultPath is $XDG_CONFIG_HOME/checkin/config.yaml, falling back to the
// user config directory.
func DefaultPath() string {
	if dir := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); dir != "" {
		return filepath.Join(dir, appDir, "config.yaml")
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", appDir, "config.yaml")
	}
	return filepath.Join(dir, appDir, "config.yaml")
}

// Load applies the file at path over the defaults and then the environment.
// A missing file is not an error.
func Load(path string) (Runtime, error) {
	cfg := Default()
	if path != "" {
		fromFile, err := FromFile(path, cfg)
		if err != nil {
			return Runtime{}, err
		}
		cfg = fromFile
	}
	return FromEnv(cfg), nil
}

func FromFile(path string, base Runtime) (Runtime, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return base, nil
	}
	if err != nil {
		return Runtime{}, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := base
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Runtime{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Runtime{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func FromEnv(base Runtime) Runtime {
	cfg := base
	if v, ok := getEnvDuration("CHECKIN_INTERVAL"); ok && v > 0 && v%time.Second == 0 {
		cfg.Interval = v
	}
	if v, ok := getEnvInt("CHECKIN_NAG_COUNT"); ok && v >= 0 {
		cfg.NagCount = v
	}
	if v, ok := getEnvDuration("CHECKIN_NAG_SPACING"); ok && v > 0 {
		cfg.NagSpacing = v
	}
	if v, ok := getEnvInt("CHECKIN_PENDING_LIMIT"); ok && v > 0 {
		cfg.PendingLimit = v
	}
	if v := strings.TrimSpace(os.Getenv("CHECKIN_DB_PATH")); v != "" {
		cfg.DBPath = v
	}
	if v := strings.TrimSpace(os.Getenv("CHECKIN_SURFACE_FILE")); v != "" {
		cfg.SurfaceFile = v
	}
	if v := strings.TrimSpace(os.Getenv("CHECKIN_LOG_PATH")); v != "" {
		cfg.LogPath = v
	}
	if v, ok := getEnvBool("CHECKIN_DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	if v := strings.TrimSpace(os.Getenv("CHECKIN_USER_NAME")); v != "" {
		cfg.UserName = v
	}
	if v := strings.TrimSpace(os.Getenv("CHECKIN_NOTIFICATION_SOUND")); v != "" {
		cfg.NotificationSound = v
	}
	return cfg
}

func (c Runtime) Validate() error {
	if err := c.Settings().Validate(); err != nil {
		return err
	}
	if c.NagCount < 0 {
		return fmt.Errorf("nag_count must not be negative: %d", c.NagCount)
	}
	if c.NagSpacing <= 0 {
		return fmt.Errorf("nag_spacing must be positive: %s", c.NagSpacing)
	}
	if c.PendingLimit <= 0 {
		return fmt.Errorf("pending_limit must be positive: %d", c.PendingLimit)
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return errors.New("db_path is required")
	}
	return nil
}

// Settings seeds the user settings saved on first launch.
func (c Runtime) Settings() model.Settings {
	return model.Settings{
		UserName:          c.UserName,
		Interval:          c.Interval,
		NotificationSound: c.NotificationSound,
	}
}

// Planner builds a planner with the configured burst shape.
func (c Runtime) Planner() *planner.Planner {
	p := planner.New()
	p.NagCount = c.NagCount
	p.NagSpacing = c.NagSpacing
	return p
}

func (c Runtime) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func dataDir() string {
	if dir := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); dir != "" {
		return filepath.Join(dir, appDir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", appDir)
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}

// getEnvDuration accepts Go durations ("90s", "15m") or bare seconds.
func getEnvDuration(name string) (time.Duration, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, true
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
