package event

import "github.com/dshills/geostorm/internal/geo"

// FeatureCreated is published after a feature enters the store.
type FeatureCreated struct {
	ID      string
	Feature *geo.Feature
}

// FeatureUpdated is published after a feature's geometry or properties
// change in place.
type FeatureUpdated struct {
	ID      string
	Feature *geo.Feature
}

// FeatureRemoved is published after a feature leaves the store. Feature
// holds the removed value so subscribers can inspect what is gone.
type FeatureRemoved struct {
	ID      string
	Feature *geo.Feature
}

// SelectionChanged is published after the selection set changes. IDs is
// the full selection in order, not a delta.
type SelectionChanged struct {
	IDs []string
}

// ModeChanged is published after the session switches interaction mode.
type ModeChanged struct {
	From string
	To   string
}

// HistoryChanged is published after the undo history moves: a command
// executed, undone, redone, or the history cleared.
type HistoryChanged struct {
	CanUndo         bool
	CanRedo         bool
	UndoCount       int
	RedoCount       int
	UndoDescription string
	RedoDescription string
}

// OperationCompleted is published after a geometry operation commits.
type OperationCompleted struct {
	Name      string
	InputIDs  []string
	OutputIDs []string
}

// OperationFailed is published when a geometry operation reports failure.
// The session state is unchanged when subscribers receive it.
type OperationFailed struct {
	Name   string
	Reason string
}

// WarningRaised is published for recoverable conditions the user should
// see, such as an operation that consumed its target entirely.
type WarningRaised struct {
	Message string
}
