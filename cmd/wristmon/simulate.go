package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"wristmon-go/bus"
	"wristmon-go/services/config"
	"wristmon-go/services/hal"
	"wristmon-go/services/motion"
	"wristmon-go/types"
)

type simFlags struct {
	duration    time.Duration
	ticks       int
	mode        string
	toggleEvery int
}

func newSimulateCmd(g *globalFlags) *cobra.Command {
	var f simFlags
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Replay the synthetic trace and print output codes to stdout",
		Long: `simulate runs the engine on the configured synthetic motion trace and
writes the output bytes to stdout. Logs go to stderr.

With --ticks the engine steps on its logical clock as fast as possible and
exits after that many ticks; otherwise it runs in real time until
--duration elapses or it is interrupted.`,
		Example: `  wristmon simulate --ticks 640 --mode sm
  wristmon simulate --duration 30s --log-level debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return simulate(cmd.Context(), g, f, cmd.OutOrStdout())
		},
	}
	cmd.Flags().DurationVarP(&f.duration, "duration", "d", 0, "stop after this long in real time (0 = until interrupted)")
	cmd.Flags().IntVarP(&f.ticks, "ticks", "n", 0, "step this many ticks on the logical clock, then exit")
	cmd.Flags().StringVarP(&f.mode, "mode", "m", "", "initial mode: aw or sm (default from config)")
	cmd.Flags().IntVar(&f.toggleEvery, "toggle-every", 0, "press the mode button every N ticks (with --ticks)")
	return cmd
}

func simulate(ctx context.Context, g *globalFlags, f simFlags, stdout io.Writer) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	cfg.SensorBus.Kind = types.BusSynthetic
	cfg.Button.Pin, cfg.LED.Pin = -1, -1
	if f.mode != "" {
		cfg.InitialMode = f.mode
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	log := newLogger(os.Stderr, cfg.Log.Level, g.noColor)

	board, err := hal.Build(cfg, hal.Factories{Output: stdout}, log)
	if err != nil {
		return err
	}
	defer board.Close()

	opts := motion.Options{
		FrequencyHz: cfg.Sampling.FrequencyHz,
		Mask:        config.SensorMask(cfg),
		InitialMode: config.InitialMode(cfg),
	}
	aw, sm := classifiers(cfg)
	deps := motion.Deps{Sensors: board.Sensors, Sink: board.Sink(), AW: aw, SM: sm, Logger: log}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if f.duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, f.duration)
		defer cancel()
	}
	board.Start(ctx, bus.NewBus(1).NewConnection("hal"))

	if f.ticks > 0 {
		eng, err := motion.NewEngine(opts, deps)
		if err != nil {
			return err
		}
		for i := 1; i <= f.ticks && ctx.Err() == nil; i++ {
			eng.Advance()
			if f.toggleEvery > 0 && i%f.toggleEvery == 0 {
				eng.Toggle()
			}
		}
		st := eng.Stats()
		cancel()
		<-board.Drained()
		fmt.Fprintln(stdout)
		log.Info("simulation done", "ticks", st.Ticks, "sent", st.Sent, "dropped", st.Dropped, "clock_ms", st.NowMs, "steps", aw.Steps())
		return nil
	}

	svc, err := motion.NewService(bus.NewBus(4).NewConnection("motion"), opts, deps)
	if err != nil {
		return err
	}
	err = svc.Run(ctx)
	<-board.Drained()
	fmt.Fprintln(stdout)
	return err
}
