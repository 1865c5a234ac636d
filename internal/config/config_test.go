package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearKeepaliveEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{envSudoKeepalive, envSudoKeepalivePrime, envSudoWrap, envSudoRefreshSecs, envSudoAskpass, envAskpassFallback} {
		os.Unsetenv(name)
	}
}

func TestLoadAppliesBuiltinDefaultsWithNoFileOrEnv(t *testing.T) {
	clearKeepaliveEnv(t)
	m := NewManager()
	if err := m.Load(""); err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg := m.Get()
	if !cfg.Keepalive.Enabled || !cfg.Keepalive.PrimeOnUse || !cfg.Keepalive.Wrap {
		t.Errorf("expected all keepalive flags on by default, got %+v", cfg.Keepalive)
	}
	if cfg.Keepalive.RefreshSecs != 300 {
		t.Errorf("RefreshSecs = %d, want 300", cfg.Keepalive.RefreshSecs)
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	clearKeepaliveEnv(t)
	m := NewManager()
	if err := m.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml")); err != nil {
		t.Fatalf("Load with missing file returned error: %v", err)
	}
}

func TestLoadReadsYAMLDefaults(t *testing.T) {
	clearKeepaliveEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := "keepalive:\n  enabled: false\n  refresh_secs: 120\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	m := NewManager()
	if err := m.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg := m.Get()
	if cfg.Keepalive.Enabled {
		t.Error("expected enabled=false from file")
	}
	if cfg.Keepalive.RefreshSecs != 120 {
		t.Errorf("RefreshSecs = %d, want 120", cfg.Keepalive.RefreshSecs)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearKeepaliveEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	os.WriteFile(path, []byte("keepalive:\n  enabled: false\n"), 0o644)

	os.Setenv(envSudoKeepalive, "true")
	defer os.Unsetenv(envSudoKeepalive)

	m := NewManager()
	if err := m.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !m.Get().Keepalive.Enabled {
		t.Error("env override should have won over file value")
	}
}

func TestRefreshSecsEnvFloorsAtThirty(t *testing.T) {
	clearKeepaliveEnv(t)
	os.Setenv(envSudoRefreshSecs, "5")
	defer os.Unsetenv(envSudoRefreshSecs)

	m := NewManager()
	if err := m.Load(""); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := m.Get().Keepalive.RefreshSecs; got != 30 {
		t.Errorf("RefreshSecs = %d, want floored to 30", got)
	}
}

func TestBooleanEnvTokens(t *testing.T) {
	cases := []struct {
		token string
		want  bool
		ok    bool
	}{
		{"1", true, true}, {"yes", true, true}, {"on", true, true}, {"TRUE", true, true},
		{"0", false, true}, {"no", false, true}, {"off", false, true},
		{"garbage", false, false},
	}
	for _, tc := range cases {
		clearKeepaliveEnv(t)
		os.Setenv(envSudoWrap, tc.token)
		got, ok := lookupBool(envSudoWrap)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Errorf("lookupBool(%q) = (%v, %v), want (%v, %v)", tc.token, got, ok, tc.want, tc.ok)
		}
		os.Unsetenv(envSudoWrap)
	}
}

func TestAskpassFallsBackToSudoAskpass(t *testing.T) {
	clearKeepaliveEnv(t)
	os.Setenv(envAskpassFallback, "/usr/bin/ssh-askpass")
	defer os.Unsetenv(envAskpassFallback)

	m := NewManager()
	if err := m.Load(""); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Get().Keepalive.AskPass != "/usr/bin/ssh-askpass" {
		t.Errorf("AskPass = %q, want fallback value", m.Get().Keepalive.AskPass)
	}
}
