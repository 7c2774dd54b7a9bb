package sim

// Clock is the simulation clock in seconds. It only moves when Advance is
// called, so a match runs as fast as the host allows.
type Clock struct {
	now float64
}

func (c *Clock) Now() float64 { return c.now }

// Advance moves the clock forward by dt seconds.
func (c *Clock) Advance(dt float64) {
	if dt > 0 {
		c.now += dt
	}
}
