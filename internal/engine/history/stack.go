package history

import (
	"sync"
	"time"
)

// ChangeFunc is notified whenever undo/redo availability may have changed.
type ChangeFunc func(canUndo, canRedo bool)

// State is a snapshot of the history stacks.
type State struct {
	CanUndo         bool
	CanRedo         bool
	UndoCount       int
	RedoCount       int
	UndoDescription string
	RedoDescription string
}

// undoEntry wraps a command with metadata.
type undoEntry struct {
	command   Command
	timestamp time.Time
}

// History manages undo/redo state for an editing session.
type History struct {
	mu sync.Mutex

	undoStack []*undoEntry
	redoStack []*undoEntry

	// Replay guard: set while Undo/Redo runs a command so that records
	// triggered from inside a replay are dropped instead of growing the
	// stack.
	executing bool

	// Grouping state
	grouping  bool
	groupName string
	groupCmds []Command

	onChange []ChangeFunc

	// Configuration
	maxEntries int
}

// NewHistory creates a new history manager.
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = 1000 // Default
	}
	return &History{
		maxEntries: maxEntries,
	}
}

// OnChange registers a callback invoked after every stack change.
func (h *History) OnChange(fn ChangeFunc) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	h.onChange = append(h.onChange, fn)
	h.mu.Unlock()
}

// notifyChange invokes change callbacks outside the lock.
func (h *History) notifyChange() {
	h.mu.Lock()
	callbacks := make([]ChangeFunc, len(h.onChange))
	copy(callbacks, h.onChange)
	canUndo := len(h.undoStack) > 0
	canRedo := len(h.redoStack) > 0
	h.mu.Unlock()

	for _, fn := range callbacks {
		fn(canUndo, canRedo)
	}
}

// Execute runs a command and adds it to the undo stack.
func (h *History) Execute(cmd Command) error {
	if err := cmd.Execute(); err != nil {
		return err
	}

	h.Record(cmd)
	return nil
}

// Record adds an already-executed command to the undo stack and clears
// the redo stack. Records made while a replay is in progress are dropped,
// so undoing a command never re-records it.
func (h *History) Record(cmd Command) {
	h.mu.Lock()

	if h.executing {
		h.mu.Unlock()
		return
	}

	if h.grouping {
		h.groupCmds = append(h.groupCmds, cmd)
		h.mu.Unlock()
		return
	}

	h.pushLocked(cmd)
	h.mu.Unlock()
	h.notifyChange()
}

// pushLocked adds a command without acquiring the lock.
func (h *History) pushLocked(cmd Command) {
	h.undoStack = append(h.undoStack, &undoEntry{
		command:   cmd,
		timestamp: time.Now(),
	})

	// Clear redo stack
	h.redoStack = nil

	// Enforce max entries
	if len(h.undoStack) > h.maxEntries {
		// Remove oldest entries
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo undoes the last command and reports whether anything was undone.
// The lock is released while the command runs so the command can touch
// the store freely, with the replay guard keeping re-entrant records out.
func (h *History) Undo() bool {
	h.mu.Lock()
	if h.executing || len(h.undoStack) == 0 {
		h.mu.Unlock()
		return false
	}

	entry := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.executing = true
	h.mu.Unlock()

	err := entry.command.Undo()

	h.mu.Lock()
	h.executing = false
	if err != nil {
		// Restore entry on failure
		h.undoStack = append(h.undoStack, entry)
		h.mu.Unlock()
		return false
	}
	h.redoStack = append(h.redoStack, entry)
	h.mu.Unlock()

	h.notifyChange()
	return true
}

// Redo redoes the last undone command and reports whether anything was
// redone.
func (h *History) Redo() bool {
	h.mu.Lock()
	if h.executing || len(h.redoStack) == 0 {
		h.mu.Unlock()
		return false
	}

	entry := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.executing = true
	h.mu.Unlock()

	err := entry.command.Execute()

	h.mu.Lock()
	h.executing = false
	if err != nil {
		// Restore entry on failure
		h.redoStack = append(h.redoStack, entry)
		h.mu.Unlock()
		return false
	}
	h.undoStack = append(h.undoStack, entry)
	h.mu.Unlock()

	h.notifyChange()
	return true
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo operations available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo operations available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// Executing reports whether a replay is currently in progress.
func (h *History) Executing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.executing
}

// State returns a snapshot of the stacks.
func (h *History) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := State{
		CanUndo:   len(h.undoStack) > 0,
		CanRedo:   len(h.redoStack) > 0,
		UndoCount: len(h.undoStack),
		RedoCount: len(h.redoStack),
	}
	if s.CanUndo {
		s.UndoDescription = h.undoStack[len(h.undoStack)-1].command.Description()
	}
	if s.CanRedo {
		s.RedoDescription = h.redoStack[len(h.redoStack)-1].command.Description()
	}
	return s
}

// BeginGroup starts a command group.
// Commands recorded while grouping will be combined into a single undo unit.
func (h *History) BeginGroup(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		// Already grouping, ignore nested calls
		return
	}

	h.grouping = true
	h.groupName = name
	h.groupCmds = nil
}

// EndGroup finishes a command group.
// All commands since BeginGroup are combined into a CompositeCommand.
func (h *History) EndGroup() {
	h.mu.Lock()

	if !h.grouping {
		h.mu.Unlock()
		return
	}

	h.grouping = false

	if len(h.groupCmds) == 0 {
		h.groupCmds = nil
		h.mu.Unlock()
		return
	}

	composite := &CompositeCommand{
		Name:     h.groupName,
		Commands: h.groupCmds,
	}

	h.pushLocked(composite)
	h.groupCmds = nil
	h.mu.Unlock()
	h.notifyChange()
}

// CancelGroup cancels a command group without adding to history.
// Note: Commands already executed still affect the store!
func (h *History) CancelGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.grouping = false
	h.groupCmds = nil
}

// IsGrouping returns true if currently in a command group.
func (h *History) IsGrouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.grouping
}

// Clear removes all undo/redo history.
func (h *History) Clear() {
	h.mu.Lock()
	h.undoStack = nil
	h.redoStack = nil
	h.grouping = false
	h.groupCmds = nil
	h.mu.Unlock()
	h.notifyChange()
}

// OperationInfo describes one recorded command.
type OperationInfo struct {
	Description string
	Timestamp   time.Time
}

// UndoInfo returns info about available undo operations, oldest first.
func (h *History) UndoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]OperationInfo, len(h.undoStack))
	for i, entry := range h.undoStack {
		result[i] = OperationInfo{
			Description: entry.command.Description(),
			Timestamp:   entry.timestamp,
		}
	}
	return result
}

// RedoInfo returns info about available redo operations.
func (h *History) RedoInfo() []OperationInfo {
	h.mu.Lock()
	defer h.mu.Unlock()

	result := make([]OperationInfo, len(h.redoStack))
	for i, entry := range h.redoStack {
		result[i] = OperationInfo{
			Description: entry.command.Description(),
			Timestamp:   entry.timestamp,
		}
	}
	return result
}

// PeekUndo returns info about the next undo operation without removing it.
func (h *History) PeekUndo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return OperationInfo{}, false
	}

	entry := h.undoStack[len(h.undoStack)-1]
	return OperationInfo{
		Description: entry.command.Description(),
		Timestamp:   entry.timestamp,
	}, true
}

// PeekRedo returns info about the next redo operation without removing it.
func (h *History) PeekRedo() (OperationInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return OperationInfo{}, false
	}

	entry := h.redoStack[len(h.redoStack)-1]
	return OperationInfo{
		Description: entry.command.Description(),
		Timestamp:   entry.timestamp,
	}, true
}

// SetMaxEntries changes the maximum number of undo entries.
// If the current stack is larger, oldest entries are removed.
func (h *History) SetMaxEntries(max int) {
	if max <= 0 {
		max = 1000
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.maxEntries = max

	if len(h.undoStack) > max {
		excess := len(h.undoStack) - max
		h.undoStack = h.undoStack[excess:]
	}
}

// MaxEntries returns the maximum number of undo entries.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}
