package hal

import "time"

// fpsCounter averages the frame rate over one second windows.
type fpsCounter struct {
	start  time.Time
	frames int
}

// frame records a frame at now. Once a second has passed it returns the
// rate for that window and starts a new one.
func (c *fpsCounter) frame(now time.Time) (float64, bool) {
	c.frames++

	elapsed := now.Sub(c.start)
	if elapsed < time.Second {
		return 0, false
	}

	fps := float64(c.frames) / elapsed.Seconds()
	c.start = now
	c.frames = 0
	return fps, true
}
