package flash

import (
	"context"
	"fmt"
	"time"
)

// Pending is a driver with an erase or program cycle outstanding. The only
// thing it allows is polling the status register until the cycle is over,
// then turning back into a Flash with Finish.
type Pending struct {
	dev *device

	// op names the operation that produced this handle
	op string

	// done is set once Wait observed the busy bit clear
	done bool

	polls   int
	started time.Time
}

func (p *Pending) live(op string) (*device, error) {
	if p == nil || p.dev == nil {
		return nil, &StateError{Operation: op, Err: ErrConsumed}
	}
	return p.dev, nil
}

// Wait reads the status register once. It reports true once the chip is
// no longer busy and false while the cycle is still running. Wait never
// blocks beyond the status read; callers poll it, with their own delay if
// they like, until it reports true.
func (p *Pending) Wait() (bool, error) {
	d, err := p.live("wait")
	if err != nil {
		return false, err
	}

	status, err := d.readStatus()
	if err != nil {
		return false, err
	}
	p.polls++

	if status.Busy() {
		return false, nil
	}

	if !p.done {
		d.logInfo("operation complete",
			"operation", p.op,
			"polls", p.polls,
			"elapsed", time.Since(p.started).String(),
		)
	}
	p.done = true

	return true, nil
}

// Ready reports whether a previous Wait observed completion.
func (p *Pending) Ready() bool {
	return p != nil && p.done
}

// Finish turns p back into an idle Flash and invalidates p.
//
// Finish panics if no Wait has reported completion yet, or if p was
// already finished. Both are programming errors: the chip may still be
// erasing or programming.
func (p *Pending) Finish() *Flash {
	d, err := p.live("finish")
	if err != nil {
		panic(err)
	}
	if !p.done {
		panic(&StateError{Operation: "finish " + p.op, Err: ErrNotReady})
	}

	p.dev = nil
	return &Flash{dev: d}
}

// WaitContext polls Wait until the chip reports ready or ctx is done,
// sleeping for the configured poll interval between reads.
func (p *Pending) WaitContext(ctx context.Context) error {
	d, err := p.live("wait")
	if err != nil {
		return err
	}
	interval := d.config.PollInterval

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", p.op, err)
		}

		ready, err := p.Wait()
		if err != nil {
			return fmt.Errorf("%s: %w", p.op, err)
		}
		if ready {
			return nil
		}

		if interval > 0 {
			timer := time.NewTimer(interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("%s: %w", p.op, ctx.Err())
			case <-timer.C:
			}
		}
	}
}

// Sync waits for the outstanding cycle and returns the idle driver.
// On error p is left intact so the caller may keep polling.
//
// Example:
//
//	p, err := f.EraseSectors(0x000000, 4)
//	if err != nil {
//	    return err
//	}
//	f, err = p.Sync(ctx)
func (p *Pending) Sync(ctx context.Context) (*Flash, error) {
	if err := p.WaitContext(ctx); err != nil {
		return nil, err
	}
	return p.Finish(), nil
}
