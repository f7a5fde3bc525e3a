package main

import (
	"log/slog"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// setupLogger installs the default slog handler: coloured text with source
// paths for debug, JSON otherwise.
func setupLogger(level string) {
	logLevel := slog.LevelInfo
	invalid := false
	if level != "" {
		if err := logLevel.UnmarshalText([]byte(level)); err != nil {
			logLevel = slog.LevelInfo
			invalid = true
		}
	}

	if logLevel == slog.LevelDebug {
		modulePrefix := modulePrefix()
		replacer := func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.SourceKey {
				if source, ok := a.Value.Any().(*slog.Source); ok {
					if _, rest, found := strings.Cut(source.File, modulePrefix); found {
						source.File = rest
					}
				}
			}
			if err, ok := a.Value.Any().(error); ok {
				aErr := tint.Err(err)
				aErr.Key = a.Key
				return aErr
			}
			return a
		}

		slog.SetDefault(slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			Level:       slog.LevelDebug,
			TimeFormat:  time.TimeOnly,
			ReplaceAttr: replacer,
			AddSource:   true,
		})))
		slog.Info("debug logging enabled")
		return
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
	if invalid {
		slog.Warn("invalid LOG_LEVEL, using info", "value", level)
	}
}

// modulePrefix is the last module path element wrapped in slashes, e.g.
// "/postcraft/".
func modulePrefix() string {
	path := "postcraft"
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Path != "" {
		parts := strings.Split(info.Main.Path, "/")
		path = parts[len(parts)-1]
	}
	return "/" + path + "/"
}
