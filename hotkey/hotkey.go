// Package hotkey registers a global key combination and owns the toggle
// state it drives. Press events arrive from an OS-level hook; each press
// flips a lock-guarded flag and the new state is handed off on a channel so
// slow consumers never run inside the hook thread.
package hotkey

import (
	"sync"
)

// Hook is the OS-level registration for one key combination.
type Hook interface {
	Register() error
	Unregister()
	Keydown() <-chan struct{}
}

// Listener flips a recording flag on each press of its combination and
// publishes the new state. Presses are serialized: exactly one toggle per
// press, delivered in order.
type Listener struct {
	combo Combo
	hook  Hook

	mu    sync.Mutex
	state bool
	cb    func(bool)

	toggles chan bool
	stop    chan struct{}
	stopped sync.Once
}

// NewListener parses the combination string and prepares an OS hook for it.
// The grammar error surfaces here, before any registration is attempted.
func NewListener(combination string) (*Listener, error) {
	combo, err := ParseCombo(combination)
	if err != nil {
		return nil, err
	}
	hook, err := newHook(combo)
	if err != nil {
		return nil, err
	}
	return newListenerWithHook(combo, hook), nil
}

func newListenerWithHook(combo Combo, hook Hook) *Listener {
	return &Listener{
		combo:   combo,
		hook:    hook,
		toggles: make(chan bool, 16),
		stop:    make(chan struct{}),
	}
}

// Combo returns the parsed combination.
func (l *Listener) Combo() Combo { return l.combo }

// SetCallback replaces the function invoked with the new state after each
// toggle. The callback runs on the listener's own goroutine, never on the
// OS hook thread.
func (l *Listener) SetCallback(fn func(bool)) {
	l.mu.Lock()
	l.cb = fn
	l.mu.Unlock()
}

// Register installs the OS hook and starts forwarding presses.
func (l *Listener) Register() error {
	if err := l.hook.Register(); err != nil {
		return err
	}
	go l.run()
	return nil
}

func (l *Listener) run() {
	for {
		select {
		case <-l.stop:
			return
		case <-l.hook.Keydown():
			l.toggle()
		}
	}
}

func (l *Listener) toggle() {
	l.mu.Lock()
	l.state = !l.state
	state := l.state
	cb := l.cb
	l.mu.Unlock()

	if cb != nil {
		cb(state)
	}
	select {
	case l.toggles <- state:
	default:
		// consumer gone; drop rather than block the press loop
	}
}

// Toggles delivers the new state after each press.
func (l *Listener) Toggles() <-chan bool { return l.toggles }

// State returns the current toggle flag.
func (l *Listener) State() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Unregister removes the OS hook. The listener is inert afterwards; build a
// new one to listen again.
func (l *Listener) Unregister() {
	l.stopped.Do(func() {
		close(l.stop)
		l.hook.Unregister()
	})
}
