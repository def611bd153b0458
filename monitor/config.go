package monitor

import (
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/wippyai/console-monitor/console"
	"github.com/wippyai/console-monitor/resource"
)

// Config configures a Monitor. Use DefaultConfig and the builder methods.
type Config struct {
	// Logger receives release failures and lifecycle debug logs.
	// Defaults to the package Logger().
	Logger *zap.Logger

	// Errors receives the component and close-failure lines. Defaults to os.Stderr.
	Errors io.Writer

	// NewComponent creates the owned component. Defaults to NewComponent.
	// Returning nil leaves the monitor without a component.
	NewComponent func() resource.Dropper

	// Stream is the console stream whose handle is acquired.
	Stream console.Stream

	// DisableCleanup skips registering the runtime cleanup. A monitor that is
	// then never closed leaks its handle.
	DisableCleanup bool
}

// DefaultConfig returns a config for a stdout monitor.
func DefaultConfig() *Config {
	return &Config{Stream: console.Stdout}
}

// WithStream sets the stream to acquire
func (c *Config) WithStream(s console.Stream) *Config {
	c.Stream = s
	return c
}

// WithLogger sets the logger
func (c *Config) WithLogger(l *zap.Logger) *Config {
	c.Logger = l
	return c
}

// WithErrors sets the error stream
func (c *Config) WithErrors(w io.Writer) *Config {
	c.Errors = w
	return c
}

// WithComponent sets the component factory
func (c *Config) WithComponent(fn func() resource.Dropper) *Config {
	c.NewComponent = fn
	return c
}

// WithoutCleanup disables the runtime cleanup
func (c *Config) WithoutCleanup() *Config {
	c.DisableCleanup = true
	return c
}

func (c *Config) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return Logger()
}

func (c *Config) errors() io.Writer {
	if c.Errors != nil {
		return c.Errors
	}
	return os.Stderr
}

func (c *Config) component() resource.Dropper {
	if c.NewComponent != nil {
		return c.NewComponent()
	}
	return NewComponent()
}
