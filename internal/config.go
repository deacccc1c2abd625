package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/haneul/studydesk/internal/models"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Files  FilesConfig       `yaml:"files"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Files.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// FilesConfig holds the path to the note files directory.
type FilesConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the files configuration.
func (c *FilesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthUser declares one account in the token map.
type AuthUser struct {
	Token     string `yaml:"token"`
	ID        string `yaml:"id"`
	Email     string `yaml:"email"`
	Anonymous bool   `yaml:"anonymous"`
	Approved  bool   `yaml:"approved"`
}

// Validate validates one auth user entry.
func (u *AuthUser) Validate() error {
	return validation.ValidateStruct(u,
		validation.Field(&u.Token, validation.Required),
		validation.Field(&u.ID, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): every request runs as a local single user.
//   - "token": Bearer token authentication against the Users list.
type AuthConfig struct {
	Mode  string     `yaml:"mode"`
	Users []AuthUser `yaml:"users"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && len(c.Users) == 0 {
		return fmt.Errorf("auth: mode is %q but no users are configured", AuthModeToken)
	}
	for i := range c.Users {
		if err := c.Users[i].Validate(); err != nil {
			return fmt.Errorf("auth: user %d: %w", i, err)
		}
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// UserMap builds the token lookup used by the API middleware.
func (c *AuthConfig) UserMap() map[string]models.User {
	m := make(map[string]models.User, len(c.Users))
	for _, u := range c.Users {
		m[u.Token] = models.User{ID: u.ID, Email: u.Email, Anonymous: u.Anonymous}
	}
	return m
}

// LocalUser is the identity used when auth is disabled.
func LocalUser() models.User {
	return models.User{ID: "local", Email: "local@studydesk", Anonymous: false}
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Files: FilesConfig{
			Path: "./files",
		},
		SQLite: SQLiteConfig{
			Path: "./studydesk.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
