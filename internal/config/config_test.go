package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRuntimeDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	cfg := Default()
	if cfg.Interval != 15*time.Minute || cfg.NagCount != 60 || cfg.NagSpacing != time.Second {
		t.Fatalf("unexpected schedule defaults: %+v", cfg)
	}
	if cfg.PendingLimit != 64 || cfg.DesktopNotifications {
		t.Fatalf("unexpected runtime defaults: %+v", cfg)
	}
	if cfg.DBPath != filepath.Join("/data", "checkin", "checkin.db") {
		t.Fatalf("unexpected db path default: %q", cfg.DBPath)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestDefaultPathHonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	if got := DefaultPath(); got != filepath.Join("/cfg", "checkin", "config.yaml") {
		t.Fatalf("unexpected default path %q", got)
	}
}

func TestRuntimeFromEnv(t *testing.T) {
	t.Setenv("CHECKIN_INTERVAL", "90s")
	t.Setenv("CHECKIN_NAG_COUNT", "10")
	t.Setenv("CHECKIN_NAG_SPACING", "2")
	t.Setenv("CHECKIN_PENDING_LIMIT", "128")
	t.Setenv("CHECKIN_DB_PATH", "state/custom.db")
	t.Setenv("CHECKIN_DESKTOP_NOTIFICATIONS", "yes")
	t.Setenv("CHECKIN_NOTIFICATION_SOUND", "bell")

	cfg := FromEnv(Default())
	if cfg.Interval != 90*time.Second || cfg.NagCount != 10 || cfg.NagSpacing != 2*time.Second {
		t.Fatalf("unexpected schedule overrides: %+v", cfg)
	}
	if cfg.PendingLimit != 128 || cfg.DBPath != "state/custom.db" {
		t.Fatalf("unexpected storage overrides: %+v", cfg)
	}
	if !cfg.DesktopNotifications || cfg.NotificationSound != "bell" {
		t.Fatalf("unexpected notification overrides: %+v", cfg)
	}
}

func TestRuntimeFromEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv("CHECKIN_INTERVAL", "-5m")
	t.Setenv("CHECKIN_NAG_COUNT", "many")
	t.Setenv("CHECKIN_PENDING_LIMIT", "0")
	t.Setenv("CHECKIN_DESKTOP_NOTIFICATIONS", "maybe")

	base := Default()
	cfg := FromEnv(base)
	if cfg != base {
		t.Fatalf("invalid env values should be ignored: %+v", cfg)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := strings.Join([]string{
		"interval: 5m",
		"nag_count: 30",
		"db_path: /tmp/file.db",
		"user_name: Sam",
		"notification_sound: chime",
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CHECKIN_NAG_COUNT", "12")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Interval != 5*time.Minute || cfg.DBPath != "/tmp/file.db" || cfg.UserName != "Sam" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.NagCount != 12 {
		t.Fatalf("env should override file, got nag_count %d", cfg.NagCount)
	}
	if cfg.NagSpacing != time.Second {
		t.Fatalf("unset file keys should keep defaults, got %s", cfg.NagSpacing)
	}

	s := cfg.Settings()
	if s.Interval != 5*time.Minute || s.NotificationSound != "chime" || s.DisplayName() != "Sam" {
		t.Fatalf("unexpected seeded settings: %+v", s)
	}
	if p := cfg.Planner(); p.NagCount != 12 {
		t.Fatalf("planner not configured: %+v", p)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Interval != 15*time.Minute {
		t.Fatalf("expected default interval, got %s", cfg.Interval)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	cases := map[string]string{
		"zero interval": "interval: 0s\n",
		"bad sound":     "notification_sound: foghorn\n",
		"bad limit":     "pending_limit: -1\n",
		"not yaml":      "interval: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatal("expected load error")
			}
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Interval = 30 * time.Minute
	raw, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), "interval: 30m0s") {
		t.Fatalf("expected human readable interval, got:\n%s", raw)
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	back, err := FromFile(path, Default())
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if back != cfg {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", back, cfg)
	}
}
