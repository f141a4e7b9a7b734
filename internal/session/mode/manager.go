package mode

import (
	"fmt"
	"sync"

	"github.com/dshills/geostorm/internal/input/pointer"
)

// ChangeCallback is called after the active mode changes.
type ChangeCallback func(from, to Mode)

// Manager holds the registered modes and enforces that exactly one is
// active: a switch always exits the current mode before entering the
// next.
type Manager struct {
	mu sync.RWMutex

	modes    map[string]Mode
	current  Mode
	previous Mode

	callbacks []ChangeCallback

	context *Context
}

// NewManager creates an empty mode manager.
func NewManager() *Manager {
	return &Manager{
		modes:   make(map[string]Mode),
		context: NewContext(),
	}
}

// Register adds a mode, replacing any existing mode with the same name.
func (m *Manager) Register(mode Mode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modes[mode.Name()] = mode
}

// Get returns a mode by name, or nil if not registered.
func (m *Manager) Get(name string) Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.modes[name]
}

// Current returns the active mode, or nil before SetInitialMode.
func (m *Manager) Current() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// CurrentName returns the active mode's name, or "" when none is set.
func (m *Manager) CurrentName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.Name()
}

// Previous returns the mode active before the last switch.
func (m *Manager) Previous() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.previous
}

// IsMode returns true if the named mode is active.
func (m *Manager) IsMode(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil && m.current.Name() == name
}

// Modes returns the names of all registered modes.
func (m *Manager) Modes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.modes))
	for name := range m.modes {
		names = append(names, name)
	}
	return names
}

// Switch changes to the named mode. The current mode's Exit runs first;
// if it fails the switch is abandoned and the current mode stays active.
func (m *Manager) Switch(name string) error {
	m.mu.Lock()

	newMode, ok := m.modes[name]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("unknown mode: %s", name)
	}
	if m.current == newMode {
		m.mu.Unlock()
		return nil
	}

	oldMode, callbacks, err := m.switchLocked(newMode)
	m.mu.Unlock()

	if err != nil {
		return err
	}

	for _, cb := range callbacks {
		if cb != nil {
			cb(oldMode, newMode)
		}
	}
	return nil
}

// switchLocked performs the transition under the lock and returns the
// callbacks to invoke outside it.
func (m *Manager) switchLocked(newMode Mode) (Mode, []ChangeCallback, error) {
	ctx := m.context
	oldMode := m.current

	if oldMode != nil {
		ctx.NextMode = newMode.Name()
		if err := oldMode.Exit(ctx); err != nil {
			return nil, nil, fmt.Errorf("exit %s: %w", oldMode.Name(), err)
		}
	}

	if oldMode != nil {
		ctx.PreviousMode = oldMode.Name()
	} else {
		ctx.PreviousMode = ""
	}
	ctx.NextMode = ""

	if err := newMode.Enter(ctx); err != nil {
		return nil, nil, fmt.Errorf("enter %s: %w", newMode.Name(), err)
	}

	m.previous = oldMode
	m.current = newMode

	callbacks := make([]ChangeCallback, len(m.callbacks))
	copy(callbacks, m.callbacks)
	return oldMode, callbacks, nil
}

// SetInitialMode activates the named mode without exiting anything.
// Meant to be called once during setup.
func (m *Manager) SetInitialMode(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	mode, ok := m.modes[name]
	if !ok {
		return fmt.Errorf("unknown mode: %s", name)
	}

	ctx := m.context
	ctx.PreviousMode = ""
	ctx.NextMode = ""
	if err := mode.Enter(ctx); err != nil {
		return fmt.Errorf("enter %s: %w", name, err)
	}
	m.current = mode
	return nil
}

// OnChange registers a callback invoked after every successful switch.
// The returned function unregisters it.
func (m *Manager) OnChange(callback ChangeCallback) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callbacks = append(m.callbacks, callback)
	index := len(m.callbacks) - 1

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if index < len(m.callbacks) {
			m.callbacks[index] = nil
		}
	}
}

// HandlePointer forwards a pointer event to the active mode.
func (m *Manager) HandlePointer(ev pointer.Event) error {
	m.mu.RLock()
	current := m.current
	ctx := m.context
	m.mu.RUnlock()

	if current == nil {
		return nil
	}
	return current.HandlePointer(ev, ctx)
}
