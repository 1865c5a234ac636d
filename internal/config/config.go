// Package config resolves the credential keep-alive and display/session
// forwarding settings from an optional on-disk YAML file and the
// environment, environment always winning. It keeps the teacher's
// file-then-env layered precedence shape, collapsed from three tiers
// (user/project/default) to two (file/default, then env override), since
// this domain has no project-root config concept.
package config

import (
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Keepalive holds the ENHANCED_TERMINAL_SUDO_* settings.
type Keepalive struct {
	Enabled     bool   `yaml:"enabled"`
	PrimeOnUse  bool   `yaml:"prime_on_use"`
	Wrap        bool   `yaml:"wrap"`
	RefreshSecs int    `yaml:"refresh_secs"`
	AskPass     string `yaml:"askpass,omitempty"`
}

// Session records the desktop/session environment, with XDG_RUNTIME_DIR
// defaulting to /run/user/0 when unset. Load resolves it, but it is not
// passed to the keep-alive manager: the interactive credential refresh
// inherits the process environment unchanged, without these defaults.
type Session struct {
	Display               string `yaml:"-"`
	WaylandDisplay        string `yaml:"-"`
	XDGRuntimeDir         string `yaml:"-"`
	DBusSessionBusAddress string `yaml:"-"`
}

// Config is the resolved process configuration.
type Config struct {
	Keepalive Keepalive `yaml:"keepalive"`
	Session   Session   `yaml:"-"`
}

const (
	envSudoKeepalive      = "ENHANCED_TERMINAL_SUDO_KEEPALIVE"
	envSudoKeepalivePrime = "ENHANCED_TERMINAL_SUDO_KEEPALIVE_PRIME"
	envSudoWrap           = "ENHANCED_TERMINAL_SUDO_WRAP"
	envSudoRefreshSecs    = "ENHANCED_TERMINAL_SUDO_KEEPALIVE_REFRESH_SECS"
	envSudoAskpass        = "ENHANCED_TERMINAL_SUDO_ASKPASS"
	envAskpassFallback    = "SUDO_ASKPASS"
)

// Manager loads the file tier, applies env overrides, and exposes the
// merged result, mirroring the teacher's Manager/Load/Get shape.
type Manager struct {
	fileConfig Config
	merged     Config
}

// NewManager returns a Manager seeded with built-in defaults.
func NewManager() *Manager {
	return &Manager{fileConfig: builtinDefaults()}
}

func builtinDefaults() Config {
	return Config{
		Keepalive: Keepalive{
			Enabled:     true,
			PrimeOnUse:  true,
			Wrap:        true,
			RefreshSecs: 300,
		},
	}
}

// Load reads the optional YAML defaults file (a missing file is not an
// error) and then layers environment overrides on top.
func (m *Manager) Load(yamlPath string) error {
	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &m.fileConfig); err != nil {
				return err
			}
		case os.IsNotExist(err):
			// No file on disk: keep builtin defaults.
		default:
			return err
		}
	}

	m.merged = m.fileConfig
	applyEnv(&m.merged)
	return nil
}

// Get returns the merged configuration.
func (m *Manager) Get() Config {
	return m.merged
}

func applyEnv(cfg *Config) {
	if v, ok := lookupBool(envSudoKeepalive); ok {
		cfg.Keepalive.Enabled = v
	}
	if v, ok := lookupBool(envSudoKeepalivePrime); ok {
		cfg.Keepalive.PrimeOnUse = v
	}
	if v, ok := lookupBool(envSudoWrap); ok {
		cfg.Keepalive.Wrap = v
	}
	if v, ok := lookupInt(envSudoRefreshSecs); ok {
		cfg.Keepalive.RefreshSecs = v
	}
	if v := firstNonEmptyEnv(envSudoAskpass, envAskpassFallback); v != "" {
		cfg.Keepalive.AskPass = v
	}

	cfg.Session = Session{
		Display:               os.Getenv("DISPLAY"),
		WaylandDisplay:        os.Getenv("WAYLAND_DISPLAY"),
		XDGRuntimeDir:         envOrDefault("XDG_RUNTIME_DIR", "/run/user/0"),
		DBusSessionBusAddress: os.Getenv("DBUS_SESSION_BUS_ADDRESS"),
	}
}

var trueTokens = map[string]bool{"1": true, "true": true, "yes": true, "on": true}
var falseTokens = map[string]bool{"0": true, "false": true, "no": true, "off": true}

func lookupBool(name string) (bool, bool) {
	raw, set := os.LookupEnv(name)
	if !set {
		return false, false
	}
	token := strings.ToLower(strings.TrimSpace(raw))
	if trueTokens[token] {
		return true, true
	}
	if falseTokens[token] {
		return false, true
	}
	return false, false
}

func lookupInt(name string) (int, bool) {
	raw, set := os.LookupEnv(name)
	if !set {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	if n < 30 {
		n = 30
	}
	return n, true
}

func firstNonEmptyEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

func envOrDefault(name, def string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return def
}
