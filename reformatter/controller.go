package reformatter

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"dictationer/clipboard"
	"dictationer/hotkey"
	"dictationer/log"
)

// Controller wires a hotkey to the reformatting workflow: grab the focused
// window's selection via a synthetic copy chord, rewrite it, paste the
// result in place, and leave the user's clipboard as it was. Presses
// arriving while a rewrite is in flight are dropped.
type Controller struct {
	listener *hotkey.Listener
	ref      Reformatter
	paster   *clipboard.Paster

	read    func() (string, error)
	write   func(string) error
	copySel func() error

	settle       time.Duration // wait for the clipboard after the copy chord
	restoreDelay time.Duration

	busy atomic.Bool

	mu      sync.Mutex
	stopped bool
	hooked  bool
	done    chan struct{}
}

func NewController(listener *hotkey.Listener, ref Reformatter) *Controller {
	c := newControllerWith(listener, ref, clipboard.NewPaster(),
		clipboard.Read, clipboard.Copy, clipboard.CopySelection)
	c.settle = 200 * time.Millisecond
	c.restoreDelay = 500 * time.Millisecond
	return c
}

func newControllerWith(listener *hotkey.Listener, ref Reformatter, p *clipboard.Paster,
	read func() (string, error), write func(string) error, copySel func() error) *Controller {
	return &Controller{
		listener: listener,
		ref:      ref,
		paster:   p,
		read:     read,
		write:    write,
		copySel:  copySel,
		done:     make(chan struct{}),
	}
}

// Start registers the hotkey and blocks until ctx is cancelled or Stop is
// called. As with the recording controller, a failed OS grab is logged and
// the loop stays up inert.
func (c *Controller) Start(ctx context.Context) error {
	logger := log.Component("reformatter")

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return nil
	}
	if err := c.listener.Register(); err != nil {
		logger.Error().Err(err).Str("hotkey", c.listener.Combo().String()).
			Msg("failed to register reformat hotkey, reformatting unavailable")
	} else {
		c.hooked = true
		logger.Info().Str("hotkey", c.listener.Combo().String()).
			Msg("listening for reformat hotkey")
	}
	c.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			c.Stop()
			return ctx.Err()
		case <-c.done:
			return nil
		case <-c.listener.Toggles():
			if !c.busy.CompareAndSwap(false, true) {
				logger.Warn().Msg("reformatting in progress, press dropped")
				continue
			}
			go func() {
				defer c.busy.Store(false)
				c.trigger(ctx)
			}()
		}
	}
}

func (c *Controller) trigger(ctx context.Context) {
	logger := log.Component("reformatter")

	saved, err := c.read()
	hasSaved := err == nil
	if err != nil {
		logger.Warn().Err(err).Msg("could not save clipboard before grabbing selection")
	}
	restore := func() {
		if hasSaved {
			c.write(saved)
		}
	}

	// Clear first so a copy that lands nothing is detectable.
	if err := c.write(""); err != nil {
		logger.Error().Err(err).Msg("clipboard unavailable")
		return
	}
	if err := c.copySel(); err != nil {
		logger.Error().Err(err).Msg("copy keystroke failed")
		restore()
		return
	}
	time.Sleep(c.settle)

	text, err := c.read()
	if err != nil || strings.TrimSpace(text) == "" {
		logger.Warn().Msg("no text selected")
		restore()
		return
	}

	out, err := c.ref.Reformat(ctx, text)
	if err != nil {
		logger.Error().Err(err).Msg("reformatting failed")
		restore()
		return
	}

	if !c.paster.PasteText(out, c.restoreDelay) {
		logger.Error().Msg("failed to paste reformatted text")
	}
	// PasteText restores the selection snapshot it took itself; put the
	// pre-trigger clipboard back on top of that.
	restore()
}

// Stop unregisters the hotkey and releases Start. Safe to call more than
// once.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	if c.hooked {
		c.listener.Unregister()
		c.hooked = false
	}
	close(c.done)
	log.Component("reformatter").Info().Msg("reformatter stopped")
}
