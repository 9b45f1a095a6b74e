package audio

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

const SampleRate = beep.SampleRate(44100)

// Player plays a fixed-length sine tone every time Beep is called.
type Player struct {
	frequency float64
	volume    float64
	samples   int
}

func New(frequency float64, duration time.Duration, volume float64) (*Player, error) {
	if err := speaker.Init(SampleRate, SampleRate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("failed to init speaker: %w", err)
	}
	slog.Debug("audio: init speaker", "rate", int(SampleRate))

	return &Player{
		frequency: frequency,
		volume:    volume,
		samples:   SampleRate.N(duration),
	}, nil
}

func (p *Player) Beep() error {
	speaker.Play(p.Tone())
	return nil
}

// Tone returns a fresh streamer for one beep.
func (p *Player) Tone() beep.Streamer {
	return beep.Take(p.samples, Sine(SampleRate, p.frequency, p.volume))
}

func (p *Player) Close() {
	speaker.Close()
}

// Sine is an endless sine wave of the given frequency and amplitude.
func Sine(sr beep.SampleRate, frequency, amplitude float64) beep.Streamer {
	step := 2 * math.Pi * frequency / float64(sr)
	phase := 0.0

	return beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		for i := range samples {
			v := amplitude * math.Sin(phase)
			samples[i][0] = v
			samples[i][1] = v

			phase += step
			if phase >= 2*math.Pi {
				phase -= 2 * math.Pi
			}
		}
		return len(samples), true
	})
}
