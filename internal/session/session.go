// Package session orchestrates an editing session over a feature store:
// selection, clipboard, interactive modes, geometry operation triggers,
// and undo/redo history. The session is the single writer of selection
// and interaction state; the store, history, and event bus keep their
// own locks so incidental cross-goroutine reads stay safe.
//
// All pointer input is expected on one goroutine, the host event loop.
// Within one input event the order is fixed: preconditions are checked,
// state is mutated, then observers are notified.
package session

import (
	"errors"
	"sync"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"

	"github.com/dshills/geostorm/internal/config"
	"github.com/dshills/geostorm/internal/engine/history"
	"github.com/dshills/geostorm/internal/event"
	"github.com/dshills/geostorm/internal/geo"
	"github.com/dshills/geostorm/internal/input/pointer"
	"github.com/dshills/geostorm/internal/session/mode"
	"github.com/dshills/geostorm/internal/store"
)

// Common session errors.
var (
	// ErrUnknownFeature is returned when an id does not resolve to a live
	// feature in the store.
	ErrUnknownFeature = errors.New("unknown feature")

	// ErrNoSelection is returned by triggers that need a selection when
	// nothing is selected.
	ErrNoSelection = errors.New("nothing selected")

	// ErrAwaitingSelection is returned when a merge or subtract trigger
	// armed a pending state instead of executing, because fewer than two
	// polygons were selected.
	ErrAwaitingSelection = errors.New("awaiting polygon selection")

	// ErrNothingPending is returned by Confirm when no pending operation
	// is armed.
	ErrNothingPending = errors.New("no pending operation")

	// ErrEmptyClipboard is returned by Paste when nothing was copied.
	ErrEmptyClipboard = errors.New("clipboard is empty")
)

// Session ties a feature store to history, selection, clipboard, modes,
// and the event bus.
type Session struct {
	store store.Store
	bus   *event.Bus
	hist  *history.History
	cfg   config.Config
	log   *logrus.Entry

	modes *mode.Manager

	mu          sync.Mutex
	selection   []string
	clipboard   []*geo.Feature
	interaction interaction
	pixelSize   float64
	suspended   bool

	// Gesture trackers are only touched from pointer handling, which the
	// host delivers on a single goroutine.
	clicks *pointer.ClickTracker
	drag   *pointer.DragTracker

	storeToken int
	closeOnce  sync.Once
}

// New creates a session over a feature store. The zero configuration is
// config.Default; use options to override it, share a bus, or inject a
// logger.
func New(st store.Store, opts ...Option) *Session {
	s := &Session{
		store:       st,
		cfg:         config.Default(),
		interaction: idleInteraction{},
		pixelSize:   1,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.bus == nil {
		s.bus = event.NewBus()
	}
	if s.log == nil {
		lg := logrus.New()
		lg.SetLevel(s.cfg.Log.LogrusLevel())
		s.log = lg.WithField("component", "session")
	}

	s.hist = history.NewHistory(s.cfg.History.MaxEntries)
	s.clicks = pointer.NewClickTracker(s.cfg.Pointer.DoubleClickTimeout(), s.cfg.Pointer.DoubleClickDistance)
	s.drag = pointer.NewDragTracker()

	s.modes = mode.NewManager()
	s.modes.Register(&idleMode{session: s})
	s.modes.Register(&editMode{session: s})
	s.modes.Register(newDrawMode(s, mode.ModeDrawPolygon))
	s.modes.Register(newDrawMode(s, mode.ModeDrawLine))
	s.modes.Register(newDrawMode(s, mode.ModeDrawPoint))
	s.modes.Register(newDrawMode(s, mode.ModeDrawRectangle))
	if err := s.modes.SetInitialMode(mode.ModeIdle); err != nil {
		s.log.WithError(err).Error("initial mode")
	}
	s.modes.OnChange(func(from, to mode.Mode) {
		fromName := ""
		if from != nil {
			fromName = from.Name()
		}
		s.publish(event.TopicModeChanged, event.ModeChanged{From: fromName, To: to.Name()})
	})

	s.hist.OnChange(func(bool, bool) {
		st := s.hist.State()
		s.publish(event.TopicHistoryChanged, event.HistoryChanged{
			CanUndo:         st.CanUndo,
			CanRedo:         st.CanRedo,
			UndoCount:       st.UndoCount,
			RedoCount:       st.RedoCount,
			UndoDescription: st.UndoDescription,
			RedoDescription: st.RedoDescription,
		})
	})

	s.storeToken = st.Subscribe(s.onStoreNotification)
	return s
}

// Close detaches the session from the store. The session must not be
// used after Close.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.store.Unsubscribe(s.storeToken)
	})
}

// Store returns the underlying feature store.
func (s *Session) Store() store.Store { return s.store }

// Bus returns the session event bus.
func (s *Session) Bus() *event.Bus { return s.bus }

// History returns the undo/redo manager.
func (s *Session) History() *history.History { return s.hist }

// Config returns the session configuration.
func (s *Session) Config() config.Config { return s.cfg }

// publish wraps a payload in an event stamped with the session source.
func (s *Session) publish(topic event.Topic, payload any) {
	s.bus.Publish(event.NewEvent(topic, payload, "session"))
}

// onStoreNotification republishes committed store mutations on the bus
// and keeps the selection free of ids that no longer resolve. It runs
// inside the mutating call stack, so it must not call back into the
// store or history.
func (s *Session) onStoreNotification(n store.Notification) {
	switch n.Action {
	case store.ActionCreate:
		s.bus.Publish(event.NewEvent(event.TopicFeatureCreated, event.FeatureCreated{ID: n.ID, Feature: n.Feature}, "store"))
	case store.ActionUpdate:
		s.bus.Publish(event.NewEvent(event.TopicFeatureUpdated, event.FeatureUpdated{ID: n.ID, Feature: n.Feature}, "store"))
	case store.ActionDelete:
		s.bus.Publish(event.NewEvent(event.TopicFeatureRemoved, event.FeatureRemoved{ID: n.ID, Feature: n.Feature}, "store"))
		s.dropFromSelection(n.ID)
	case store.ActionClear:
		s.dropAllFromSelection()
	}
}

// HandlePointer routes a pointer event to the active mode.
func (s *Session) HandlePointer(ev pointer.Event) error {
	return s.modes.HandlePointer(ev)
}

// EnableMode activates the named mode, force-exiting the current one.
func (s *Session) EnableMode(name string) error {
	return s.modes.Switch(name)
}

// DisableMode returns to idle when the named mode is active. Disabling a
// mode that is not active is a no-op.
func (s *Session) DisableMode(name string) error {
	if !s.modes.IsMode(name) {
		return nil
	}
	return s.modes.Switch(mode.ModeIdle)
}

// ActiveMode returns the name of the active mode.
func (s *Session) ActiveMode() string {
	return s.modes.CurrentName()
}

// InteractionSuspended reports whether a gesture-owning mode is active,
// meaning the host should keep its own drag and box-zoom handlers off.
func (s *Session) InteractionSuspended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suspended
}

// setSuspended flips the host-interaction suspension flag.
func (s *Session) setSuspended(v bool) {
	s.mu.Lock()
	s.suspended = v
	s.mu.Unlock()
}

// SetPixelSize sets the current map-units-per-pixel scale, which converts
// the configured pixel thresholds into map distances for hit testing.
// Hosts should call it whenever the zoom level changes. The default is 1.
func (s *Session) SetPixelSize(unitsPerPixel float64) {
	if unitsPerPixel <= 0 {
		return
	}
	s.mu.Lock()
	s.pixelSize = unitsPerPixel
	s.mu.Unlock()
}

// hitTolerance returns the hit-test radius in map units.
func (s *Session) hitTolerance() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return float64(s.cfg.Pointer.HitBoxSize) * s.pixelSize
}

// snapTolerance returns the vertex snap radius in map units, or 0 when
// snapping is off.
func (s *Session) snapTolerance() float64 {
	if !s.cfg.Snap.Enabled {
		return 0
	}
	return s.cfg.Snap.Tolerance
}

// maybeSnap snaps a map point to the nearest existing vertex when
// snapping is enabled and a vertex is in range.
func (s *Session) maybeSnap(pt geom.Point) geom.Point {
	radius := s.snapTolerance()
	if radius <= 0 {
		return pt
	}
	if snapped, ok := s.store.SnapVertex(pt, radius); ok {
		return snapped
	}
	return pt
}

// Undo reverses the most recent command and reports whether anything
// changed.
func (s *Session) Undo() bool { return s.hist.Undo() }

// Redo reapplies the most recently undone command.
func (s *Session) Redo() bool { return s.hist.Redo() }

// CanUndo reports whether an undo is available.
func (s *Session) CanUndo() bool { return s.hist.CanUndo() }

// CanRedo reports whether a redo is available.
func (s *Session) CanRedo() bool { return s.hist.CanRedo() }

// ClearHistory drops all undo/redo entries.
func (s *Session) ClearHistory() { s.hist.Clear() }

// HistoryState returns a snapshot of the undo/redo stacks.
func (s *Session) HistoryState() history.State { return s.hist.State() }

// OnHistoryChange registers a hook invoked after every history change.
func (s *Session) OnHistoryChange(fn history.ChangeFunc) { s.hist.OnChange(fn) }

// warn publishes an advisory that did not change any state.
func (s *Session) warn(message string) {
	s.log.Warn(message)
	s.publish(event.TopicWarning, event.WarningRaised{Message: message})
}

// operationCompleted publishes the structured result of a committed
// operation.
func (s *Session) operationCompleted(name string, inputIDs, outputIDs []string) {
	s.log.WithFields(logrus.Fields{
		"operation": name,
		"inputs":    len(inputIDs),
		"outputs":   len(outputIDs),
	}).Info("operation completed")
	s.publish(event.TopicOperationCompleted, event.OperationCompleted{
		Name:      name,
		InputIDs:  inputIDs,
		OutputIDs: outputIDs,
	})
}

// operationFailed publishes a structured failure. Session state is
// unchanged when subscribers receive it.
func (s *Session) operationFailed(name, reason string) {
	s.log.WithFields(logrus.Fields{
		"operation": name,
		"reason":    reason,
	}).Warn("operation failed")
	s.publish(event.TopicOperationFailed, event.OperationFailed{Name: name, Reason: reason})
}
