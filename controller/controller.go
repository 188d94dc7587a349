// Package controller composes the hotkey listener and the recorder into the
// application lifecycle: listen for presses, toggle recording, shut down
// cleanly on request.
package controller

import (
	"context"
	"errors"
	"sync"

	"dictationer/hotkey"
	"dictationer/log"
	"dictationer/recorder"
)

type State int

const (
	Idle State = iota
	Listening
	Stopped
)

var ErrStopped = errors.New("controller stopped")

type Controller struct {
	listener *hotkey.Listener
	rec      *recorder.Recorder

	mu     sync.Mutex
	state  State
	hooked bool
	done   chan struct{}
}

func New(listener *hotkey.Listener, rec *recorder.Recorder) *Controller {
	return &Controller{
		listener: listener,
		rec:      rec,
		done:     make(chan struct{}),
	}
}

// Start registers the hotkey and blocks, toggling the recorder on each
// press, until ctx is cancelled or Stop is called. A registration failure
// is logged and the controller stays up inert, so signal handling and the
// rest of the process keep working without the hotkey. A controller runs
// once; after it stops, build a new one to listen again.
func (c *Controller) Start(ctx context.Context) error {
	logger := log.Component("controller")

	c.mu.Lock()
	if c.state != Idle {
		c.mu.Unlock()
		return ErrStopped
	}
	if err := c.listener.Register(); err != nil {
		logger.Error().Err(err).Str("hotkey", c.listener.Combo().String()).
			Msg("failed to register hotkey, hotkey will not respond")
	} else {
		c.hooked = true
	}
	c.state = Listening
	c.mu.Unlock()

	if c.Hooked() {
		logger.Info().Str("hotkey", c.listener.Combo().String()).Msg("listening for hotkey")
	}

	for {
		select {
		case <-ctx.Done():
			c.Stop()
			return ctx.Err()
		case <-c.done:
			return nil
		case state := <-c.listener.Toggles():
			c.dispatch(ctx, state)
		}
	}
}

// dispatch runs a toggle under the controller mutex so it cannot race a
// concurrent Stop. Toggles landing after Stop are dropped; the recorder
// was already flushed.
func (c *Controller) dispatch(ctx context.Context, state bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Stopped {
		log.Component("controller").Debug().Bool("state", state).
			Msg("toggle after stop dropped")
		return
	}
	c.rec.Toggle(ctx, state)
}

// Stop stops any active recording (flushing it through the normal stop
// path), unregisters the hotkey and releases Start. It shares the
// controller mutex with toggle dispatch, so an in-flight toggle completes
// before the recorder state is inspected here. Safe to call from any
// goroutine and more than once.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Stopped {
		return
	}
	c.state = Stopped

	if c.rec.IsRecording() {
		c.rec.Stop(context.Background())
	}
	if c.hooked {
		c.listener.Unregister()
		c.hooked = false
	}
	close(c.done)
	log.Component("controller").Info().Msg("controller stopped")
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Hooked reports whether the OS hotkey hook is installed.
func (c *Controller) Hooked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hooked
}
