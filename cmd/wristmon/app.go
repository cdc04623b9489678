package main

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"

	"wristmon-go/services/classify"
	"wristmon-go/services/config"
	"wristmon-go/types"
)

// loadConfig resolves the config file or embedded board, then applies
// command-line overrides.
func loadConfig(g *globalFlags) (*types.Config, error) {
	cfg, err := config.Resolve(g.configPath, g.board)
	if err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	return cfg, nil
}

// newLogger writes coloured records to w, tagged with a per-process run id.
func newLogger(w io.Writer, level string, noColor bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	h := tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		TimeFormat: time.TimeOnly,
		NoColor:    noColor || os.Getenv("NO_COLOR") != "",
	})
	return slog.New(h).With("run_id", uuid.NewString())
}

func classifiers(cfg *types.Config) (*classify.ActivityClassifier, *classify.SleepClassifier) {
	return classify.NewActivityClassifier(cfg.Classifier), classify.NewSleepClassifier(cfg.Classifier)
}
