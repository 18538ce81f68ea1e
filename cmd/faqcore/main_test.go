package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogger(t *testing.T) {
	originalLogger := slog.Default()
	defer slog.SetDefault(originalLogger)

	newApp := func(level string) *cli.App {
		return &cli.App{
			Name: "faqcore",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "log-level", Value: level},
			},
			Before: setupLogger,
			Action: func(*cli.Context) error { return nil },
		}
	}

	t.Run("valid levels accepted", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "DEBUG", "Info"} {
			err := newApp(level).Run([]string{"faqcore"})
			require.NoError(t, err, "level %q", level)
		}
	})

	t.Run("invalid level rejected", func(t *testing.T) {
		err := newApp("verbose").Run([]string{"faqcore"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("debug level enables debug logging", func(t *testing.T) {
		err := newApp("debug").Run([]string{"faqcore"})
		require.NoError(t, err)
		assert.True(t, slog.Default().Enabled(nil, slog.LevelDebug))
	})

	t.Run("reads level from environment", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "error")

		app := &cli.App{
			Name: "faqcore",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "log-level", Value: "info", EnvVars: []string{"LOG_LEVEL"}},
			},
			Before: setupLogger,
			Action: func(*cli.Context) error { return nil },
		}
		require.NoError(t, app.Run([]string{"faqcore"}))
		assert.False(t, slog.Default().Enabled(nil, slog.LevelInfo))
		assert.True(t, slog.Default().Enabled(nil, slog.LevelError))
	})
}

func TestCommandsRequireArguments(t *testing.T) {
	t.Run("search requires query", func(t *testing.T) {
		app := &cli.App{
			Commands: []*cli.Command{
				{Name: "search", Action: searchCommand},
			},
		}
		err := app.Run([]string{"faqcore", "search"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "query is required")
	})

	t.Run("ask requires question", func(t *testing.T) {
		app := &cli.App{
			Commands: []*cli.Command{
				{Name: "ask", Action: askCommand},
			},
		}
		err := app.Run([]string{"faqcore", "ask"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "question is required")
	})
}
