package internal

// Option configures a Run or RunMCP invocation.
type Option func(*application)

// application collects the settings assembled from options before the
// selected entrypoint wires the real dependencies.
type application struct {
	config *Config
}

// WithConfig supplies the loaded configuration. Required; Run and
// RunMCP fail without it.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}
