package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/console-monitor/console"
)

const (
	// Wrap is the number of characters to wrap the help text at
	Wrap int = 50
)

// options is the resolved configuration of one invocation.
type options struct {
	Stream   console.Stream
	LogLevel zapcore.Level
	Metrics  bool
	DryRun   bool
	Wait     time.Duration
}

var opts = &options{}

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var lines []string
	var line strings.Builder
	width := 0

	for _, word := range strings.Fields(text) {
		if width > 0 && width+1+len(word) > Wrap {
			lines = append(lines, line.String())
			line.Reset()
			width = 0
		}
		if width > 0 {
			line.WriteString(" ")
			width++
		}
		line.WriteString(word)
		width += len(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

func setupFlags(cmd *cobra.Command) {
	key := "stream"
	cmd.PersistentFlags().String(key, "stdout", WrapString("The console stream the monitor acquires a handle for (stdin, stdout, stderr)"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "info", WrapString("LogLevel is the level at which logs will be output to stderr (debug, info, warn, error)"))

	key = "metrics"
	cmd.PersistentFlags().Bool(key, false, WrapString("Print the lifecycle counters in Prometheus text format when the command finishes"))

	key = "dry-run"
	cmd.PersistentFlags().Bool(key, false, WrapString("Use an in-memory console and print its transcript instead of writing to the real stream"))

	key = "wait"
	cmd.PersistentFlags().Duration(key, 5*time.Second, WrapString("How long the forget scenario waits for the runtime cleanup"))
}

// initConfig loads .env files and environment variables
func initConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("console_monitor")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// processConfig binds the flags to viper and resolves them into opts. It
// also installs the logger.
func processConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	resolved, err := readOptions()
	if err != nil {
		return err
	}
	*opts = *resolved

	log, err := newLogger(opts.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	setLoggers(log)
	return nil
}

func readOptions() (*options, error) {
	stream, err := console.ParseStream(viper.GetString("stream"))
	if err != nil {
		return nil, err
	}

	level, err := zapcore.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %s", viper.GetString("log-level"))
	}

	wait := viper.GetDuration("wait")
	if wait <= 0 {
		return nil, fmt.Errorf("invalid wait %s (must be positive)", wait)
	}

	return &options{
		Stream:   stream,
		LogLevel: level,
		Metrics:  viper.GetBool("metrics"),
		DryRun:   viper.GetBool("dry-run"),
		Wait:     wait,
	}, nil
}

func newLogger(level zapcore.Level) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if level > zapcore.DebugLevel {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}
