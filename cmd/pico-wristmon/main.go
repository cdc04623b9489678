//go:build rp2040 || rp2350

package main

import (
	"context"
	"log/slog"
	"machine"
	"time"

	"wristmon-go/bus"
	"wristmon-go/services/classify"
	"wristmon-go/services/config"
	"wristmon-go/services/hal"
	"wristmon-go/services/indicator"
	"wristmon-go/services/motion"
)

const board = "pico"

// halt is the fatal-error state: the on-board LED blinks forever.
func halt(ctx context.Context, what string, err error) {
	println("[main] FATAL", what+":", err.Error())
	machine.LED.Configure(machine.PinConfig{Mode: machine.PinOutput})
	indicator.Halt(ctx, machine.LED)
}

func main() {
	time.Sleep(2 * time.Second)
	ctx := context.Background()

	println("[main] loading config for", board, "…")
	cfg, err := config.Resolve("", board)
	if err != nil {
		halt(ctx, "config", err)
	}

	// Records go to USB CDC; the status codes own uart0.
	log := slog.New(slog.NewTextHandler(machine.Serial, &slog.HandlerOptions{Level: slog.LevelWarn}))

	println("[main] bootstrapping bus …")
	b := bus.NewBus(4)
	if err := config.NewConfigService(cfg).Start(ctx, b.NewConnection("config")); err != nil {
		halt(ctx, "config service", err)
	}

	println("[main] bringing up board …")
	brd, err := hal.Build(cfg, hal.DefaultFactories(), log)
	if err != nil {
		halt(ctx, "hal", err)
	}

	svc, err := motion.NewService(b.NewConnection("motion"), motion.Options{
		FrequencyHz: cfg.Sampling.FrequencyHz,
		Mask:        config.SensorMask(cfg),
		InitialMode: config.InitialMode(cfg),
	}, motion.Deps{
		Sensors: brd.Sensors,
		Sink:    brd.Sink(),
		AW:      classify.NewActivityClassifier(cfg.Classifier),
		SM:      classify.NewSleepClassifier(cfg.Classifier),
		LED:     brd.LED,
		Logger:  log,
	})
	if err != nil {
		println("[main] FATAL motion:", err.Error())
		indicator.Halt(ctx, brd.StatusPin)
	}
	svc.StatsEvery = 0

	brd.Start(ctx, b.NewConnection("hal"))
	println("[main] running at", cfg.Sampling.FrequencyHz, "Hz")
	if err := svc.Run(ctx); err != nil {
		halt(ctx, "engine", err)
	}
}
