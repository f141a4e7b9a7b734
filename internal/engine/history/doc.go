// Package history provides undo/redo functionality for the editing engine.
//
// The history system uses the Command pattern to encapsulate feature
// edits, enabling them to be executed, undone, and redone. Key concepts:
//
// # Commands
//
// Commands implement the Command interface with Execute and Undo methods.
// Built-in commands include:
//   - CreateFeatureCommand: Add a feature to the store
//   - DeleteFeatureCommand: Remove a feature from the store
//   - EditFeatureCommand: Swap a feature's geometry between two states
//   - EditPropertiesCommand: Swap a feature's properties between two states
//   - CompositeCommand: Group multiple commands as one undo unit
//
// Commands capture deep copies of the features they touch, so replays do
// not depend on live session state. A command whose target is missing
// from the store is a no-op, not an error: the host may have removed the
// feature out from under the history.
//
// # Identity Across Replays
//
// The store assigns a fresh storage id every time a feature is imported,
// so a delete/undo round trip can change the storage id. Commands track
// the resolved id (explicit id when present, storage id otherwise) and
// refresh it after every re-import.
//
// # History Stack
//
// The History type manages undo/redo stacks and command grouping:
//
//	history := NewHistory(1000) // Max 1000 undo entries
//
//	// Execute commands
//	history.Execute(cmd)
//
//	// Undo/redo
//	history.Undo()
//	history.Redo()
//
// Records made while Undo or Redo is replaying a command are dropped, so
// observers that record on store changes cannot double-record a replay.
//
// # Command Grouping
//
// Multiple commands can be grouped as a single undo unit:
//
//	history.BeginGroup("Paste 3 features")
//	// ... multiple edits ...
//	history.EndGroup()
//
// Now all edits undo together with one step.
package history
