package internal

import (
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{
		Mode: "token",
		Users: []AuthUser{
			{Token: "secret", ID: "u1", Email: "u1@example.com"},
		},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with users should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeNoUsers(t *testing.T) {
	cfg := AuthConfig{Mode: "token"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode without users should fail")
	}
	if !strings.Contains(err.Error(), "no users") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_UserMissingID(t *testing.T) {
	cfg := AuthConfig{
		Mode:  "token",
		Users: []AuthUser{{Token: "secret"}},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("user without id should fail validation")
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestAuthConfig_UserMap(t *testing.T) {
	cfg := AuthConfig{
		Mode: "token",
		Users: []AuthUser{
			{Token: "t1", ID: "u1", Email: "u1@example.com"},
			{Token: "t2", ID: "u2", Anonymous: true},
		},
	}
	m := cfg.UserMap()
	if len(m) != 2 {
		t.Fatalf("len = %d, want 2", len(m))
	}
	if m["t1"].ID != "u1" || m["t1"].Anonymous {
		t.Errorf("t1 = %+v", m["t1"])
	}
	if !m["t2"].Anonymous {
		t.Error("t2 should be anonymous")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}
