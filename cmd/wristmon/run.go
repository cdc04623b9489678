package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"wristmon-go/bus"
	"wristmon-go/services/config"
	"wristmon-go/services/hal"
	"wristmon-go/services/heartbeat"
	"wristmon-go/services/motion"
)

func newRunCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the device against the configured sensors and serial port",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDevice(cmd.Context(), g)
		},
	}
}

func runDevice(ctx context.Context, g *globalFlags) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	log := newLogger(os.Stderr, cfg.Log.Level, g.noColor)

	b := bus.NewBus(8)
	if err := config.NewConfigService(cfg).Start(ctx, b.NewConnection("config")); err != nil {
		return err
	}

	board, err := hal.Build(cfg, hal.DefaultFactories(), log)
	if err != nil {
		log.Error("bring-up failed", "error", err)
		return err
	}
	defer board.Close()

	aw, sm := classifiers(cfg)
	svc, err := motion.NewService(b.NewConnection("motion"), motion.Options{
		FrequencyHz: cfg.Sampling.FrequencyHz,
		Mask:        config.SensorMask(cfg),
		InitialMode: config.InitialMode(cfg),
	}, motion.Deps{
		Sensors: board.Sensors,
		Sink:    board.Sink(),
		AW:      aw,
		SM:      sm,
		LED:     board.LED,
		Logger:  log,
	})
	if err != nil {
		log.Error("bring-up failed", "error", err)
		return err
	}

	board.Start(ctx, b.NewConnection("hal"))
	hb := &heartbeat.Service{Log: log}
	if err := hb.Start(ctx, b.NewConnection("heartbeat")); err != nil {
		return err
	}

	err = svc.Run(ctx)
	<-board.Drained()
	log.Info("stopped", "steps", aw.Steps(), "serial_bytes", board.SerialWritten())
	return err
}
