package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/kapitanov/chip8emu/internal/audio"
	"github.com/kapitanov/chip8emu/internal/config"
	"github.com/kapitanov/chip8emu/internal/hal"
	"github.com/kapitanov/chip8emu/internal/vm"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	cfg := config.Default()

	cmd := &cobra.Command{
		Use:           fmt.Sprintf("%s PATH_TO_ROM_FILE", filepath.Base(os.Args[0])),
		Short:         "Run emulator",
		Args:          cobra.ExactArgs(1),
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cfg.BindFlags(cmd.Flags())

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		loggerOpts := &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}
		if cfg.Verbose {
			loggerOpts.Level = slog.LevelDebug
		}

		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, loggerOpts)))

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		machine := vm.New()
		if err := machine.LoadROM(args[0]); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		return run(ctx, cfg, machine)
	}

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		slog.Error("fatal error", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, machine *vm.VM) error {
	player, err := audio.New(cfg.ToneFrequency, cfg.ToneDuration, cfg.ToneVolume)
	if err != nil {
		return fmt.Errorf("unable to initialize audio: %w", err)
	}
	defer player.Close()

	fg, _ := config.ParseColor(cfg.Foreground)
	bg, _ := config.ParseColor(cfg.Background)

	h, err := hal.New(hal.Options{
		Scale:      cfg.Scale,
		Foreground: config.ARGB(fg),
		Background: config.ARGB(bg),
	}, player)
	if err != nil {
		return fmt.Errorf("unable to initialize hal: %w", err)
	}
	defer h.Shutdown()

	opts := vm.RunOptions{
		TimerHz:        cfg.TimerHz,
		CyclesPerFrame: cfg.CyclesPerFrame(),
	}

	for {
		err = machine.Run(ctx, h, opts)

		if errors.Is(err, hal.ErrReboot) {
			slog.Info("reset requested")
			machine.Reset()
			continue
		}

		if errors.Is(err, hal.ErrQuit) || errors.Is(err, context.Canceled) {
			return nil
		}

		return err
	}
}
