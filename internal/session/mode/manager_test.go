package mode

import (
	"errors"
	"testing"

	"github.com/dshills/geostorm/internal/input/pointer"
)

// recordingMode logs its lifecycle calls into a shared trace.
type recordingMode struct {
	name     string
	kind     Kind
	trace    *[]string
	exitErr  error
	enterErr error
	pointers int
}

func (m *recordingMode) Name() string { return m.name }
func (m *recordingMode) Kind() Kind   { return m.kind }

func (m *recordingMode) Enter(ctx *Context) error {
	*m.trace = append(*m.trace, "enter:"+m.name+"(from "+ctx.PreviousMode+")")
	return m.enterErr
}

func (m *recordingMode) Exit(ctx *Context) error {
	*m.trace = append(*m.trace, "exit:"+m.name+"(to "+ctx.NextMode+")")
	return m.exitErr
}

func (m *recordingMode) HandlePointer(pointer.Event, *Context) error {
	m.pointers++
	return nil
}

func newTestManager(t *testing.T, trace *[]string, names ...string) *Manager {
	t.Helper()
	mgr := NewManager()
	for _, name := range names {
		mgr.Register(&recordingMode{name: name, trace: trace})
	}
	return mgr
}

func TestSwitchExitsBeforeEntering(t *testing.T) {
	var trace []string
	mgr := newTestManager(t, &trace, ModeIdle, ModeEdit)

	if err := mgr.SetInitialMode(ModeIdle); err != nil {
		t.Fatalf("initial mode: %v", err)
	}
	if err := mgr.Switch(ModeEdit); err != nil {
		t.Fatalf("switch: %v", err)
	}

	want := []string{
		"enter:idle(from )",
		"exit:idle(to edit)",
		"enter:edit(from idle)",
	}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace = %v, want %v", trace, want)
		}
	}

	if mgr.CurrentName() != ModeEdit {
		t.Errorf("current = %q, want edit", mgr.CurrentName())
	}
	if mgr.Previous() == nil || mgr.Previous().Name() != ModeIdle {
		t.Error("previous should be idle")
	}
}

func TestSwitchToUnknownMode(t *testing.T) {
	var trace []string
	mgr := newTestManager(t, &trace, ModeIdle)
	if err := mgr.Switch("teleport"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestSwitchToSameModeIsNoOp(t *testing.T) {
	var trace []string
	mgr := newTestManager(t, &trace, ModeIdle)
	if err := mgr.SetInitialMode(ModeIdle); err != nil {
		t.Fatalf("initial mode: %v", err)
	}
	before := len(trace)
	if err := mgr.Switch(ModeIdle); err != nil {
		t.Fatalf("switch: %v", err)
	}
	if len(trace) != before {
		t.Errorf("same-mode switch ran lifecycle calls: %v", trace[before:])
	}
}

func TestFailingExitAbandonsSwitch(t *testing.T) {
	var trace []string
	mgr := NewManager()
	stuck := &recordingMode{name: ModeEdit, trace: &trace, exitErr: errors.New("uncommitted gesture")}
	mgr.Register(stuck)
	mgr.Register(&recordingMode{name: ModeIdle, trace: &trace})

	if err := mgr.SetInitialMode(ModeEdit); err != nil {
		t.Fatalf("initial mode: %v", err)
	}
	if err := mgr.Switch(ModeIdle); err == nil {
		t.Fatal("expected exit error to surface")
	}
	if mgr.CurrentName() != ModeEdit {
		t.Errorf("current = %q, want edit after failed switch", mgr.CurrentName())
	}
}

func TestOnChangeCallback(t *testing.T) {
	var trace []string
	mgr := newTestManager(t, &trace, ModeIdle, ModeEdit)
	if err := mgr.SetInitialMode(ModeIdle); err != nil {
		t.Fatalf("initial mode: %v", err)
	}

	var transitions []string
	unregister := mgr.OnChange(func(from, to Mode) {
		fromName := ""
		if from != nil {
			fromName = from.Name()
		}
		transitions = append(transitions, fromName+"->"+to.Name())
	})

	if err := mgr.Switch(ModeEdit); err != nil {
		t.Fatalf("switch: %v", err)
	}
	unregister()
	if err := mgr.Switch(ModeIdle); err != nil {
		t.Fatalf("switch back: %v", err)
	}

	if len(transitions) != 1 || transitions[0] != "idle->edit" {
		t.Errorf("transitions = %v, want [idle->edit]", transitions)
	}
}

func TestHandlePointerRoutesToCurrent(t *testing.T) {
	var trace []string
	mgr := NewManager()
	idle := &recordingMode{name: ModeIdle, trace: &trace}
	edit := &recordingMode{name: ModeEdit, trace: &trace}
	mgr.Register(idle)
	mgr.Register(edit)

	// No active mode: events are dropped.
	if err := mgr.HandlePointer(pointer.Event{}); err != nil {
		t.Fatalf("handle without mode: %v", err)
	}

	if err := mgr.SetInitialMode(ModeEdit); err != nil {
		t.Fatalf("initial mode: %v", err)
	}
	if err := mgr.HandlePointer(pointer.Event{}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if edit.pointers != 1 || idle.pointers != 0 {
		t.Errorf("pointer counts: edit=%d idle=%d", edit.pointers, idle.pointers)
	}
}

func TestModesAndGet(t *testing.T) {
	var trace []string
	mgr := newTestManager(t, &trace, ModeIdle, ModeDrawPolygon)
	if got := len(mgr.Modes()); got != 2 {
		t.Errorf("Modes() len = %d, want 2", got)
	}
	if mgr.Get(ModeDrawPolygon) == nil {
		t.Error("expected registered mode")
	}
	if mgr.Get("teleport") != nil {
		t.Error("expected nil for unknown mode")
	}
}
