package config

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/image/colornames"
)

type Config struct {
	CPUHz   int // instructions per second
	TimerHz int // timer ticks and presented frames per second

	Scale      int
	Foreground string
	Background string

	ToneFrequency float64
	ToneDuration  time.Duration
	ToneVolume    float64

	Verbose bool
}

func Default() Config {
	return Config{
		CPUHz:         700,
		TimerHz:       60,
		Scale:         16,
		Foreground:    "#bea700",
		Background:    "black",
		ToneFrequency: 700,
		ToneDuration:  100 * time.Millisecond,
		ToneVolume:    0.5,
	}
}

// BindFlags registers a flag for every field, using the current values as
// defaults.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.IntVar(&c.CPUHz, "cpu-hz", c.CPUHz, "instructions executed per second")
	fs.IntVar(&c.TimerHz, "timer-hz", c.TimerHz, "delay/sound timer rate and frames per second")
	fs.IntVar(&c.Scale, "scale", c.Scale, "window pixels per display pixel")
	fs.StringVar(&c.Foreground, "fg", c.Foreground, "lit pixel colour (name or #rrggbb)")
	fs.StringVar(&c.Background, "bg", c.Background, "unlit pixel colour (name or #rrggbb)")
	fs.Float64Var(&c.ToneFrequency, "tone-freq", c.ToneFrequency, "beep frequency in Hz")
	fs.DurationVar(&c.ToneDuration, "tone-duration", c.ToneDuration, "beep length")
	fs.Float64Var(&c.ToneVolume, "volume", c.ToneVolume, "beep volume, 0 to 1")
	fs.BoolVarP(&c.Verbose, "verbose", "v", c.Verbose, "enable verbose logging")
}

func (c Config) Validate() error {
	var errs []error

	if c.CPUHz <= 0 {
		errs = append(errs, fmt.Errorf("cpu-hz must be positive, got %d", c.CPUHz))
	}
	if c.TimerHz <= 0 {
		errs = append(errs, fmt.Errorf("timer-hz must be positive, got %d", c.TimerHz))
	} else if c.CPUHz > 0 && c.TimerHz > c.CPUHz {
		errs = append(errs, fmt.Errorf("timer-hz (%d) must not exceed cpu-hz (%d)", c.TimerHz, c.CPUHz))
	}
	if c.Scale < 1 || c.Scale > 64 {
		errs = append(errs, fmt.Errorf("scale must be in [1, 64], got %d", c.Scale))
	}
	if _, err := ParseColor(c.Foreground); err != nil {
		errs = append(errs, fmt.Errorf("fg: %w", err))
	}
	if _, err := ParseColor(c.Background); err != nil {
		errs = append(errs, fmt.Errorf("bg: %w", err))
	}
	if c.ToneFrequency <= 0 {
		errs = append(errs, fmt.Errorf("tone-freq must be positive, got %g", c.ToneFrequency))
	}
	if c.ToneDuration <= 0 {
		errs = append(errs, fmt.Errorf("tone-duration must be positive, got %s", c.ToneDuration))
	}
	if c.ToneVolume < 0 || c.ToneVolume > 1 {
		errs = append(errs, fmt.Errorf("volume must be in [0, 1], got %g", c.ToneVolume))
	}

	return errors.Join(errs...)
}

// CyclesPerFrame is the number of instructions run between two timer ticks,
// at least one.
func (c Config) CyclesPerFrame() int {
	if c.TimerHz <= 0 {
		return 1
	}
	return max(1, c.CPUHz/c.TimerHz)
}

// ParseColor accepts an SVG colour name ("gold", "black") or a #rrggbb value.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}

	hex, ok := strings.CutPrefix(s, "#")
	if !ok || len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("unknown colour %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("unknown colour %q: %w", s, err)
	}

	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}, nil
}

// ARGB packs c the way an ARGB8888 texture expects it.
func ARGB(c color.RGBA) uint32 {
	return uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}
