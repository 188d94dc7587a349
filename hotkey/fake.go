package hotkey

// FakeHook is an in-process Hook used by tests and the headless
// test mode, where no display server or input grab is available.
type FakeHook struct {
	keydown    chan struct{}
	registered bool

	// RegisterErr, when set, is returned by Register to simulate a
	// failed OS grab.
	RegisterErr error
}

func NewFakeHook() *FakeHook {
	return &FakeHook{keydown: make(chan struct{}, 16)}
}

func (f *FakeHook) Register() error {
	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	f.registered = true
	return nil
}

func (f *FakeHook) Unregister() { f.registered = false }

func (f *FakeHook) Keydown() <-chan struct{} { return f.keydown }

// SimPress simulates a single press of the registered combination.
func (f *FakeHook) SimPress() {
	f.keydown <- struct{}{}
}

// NewFakeListener builds a Listener driven by the returned FakeHook
// instead of a real platform grab.
func NewFakeListener(combination string) (*Listener, *FakeHook, error) {
	combo, err := ParseCombo(combination)
	if err != nil {
		return nil, nil, err
	}
	hook := NewFakeHook()
	return newListenerWithHook(combo, hook), hook, nil
}
