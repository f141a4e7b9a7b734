// Package event carries the editing session's change notifications:
// hierarchical topics, typed payloads, and a synchronous bus. Events are
// published only after the originating state change has committed, so a
// subscriber always observes the store and history in their post-event
// state.
package event

import (
	"strings"
	"time"
)

// Topic is a hierarchical event type using dot notation, for example
// "feature.created" or "session.mode.changed".
type Topic string

// Wildcard and separator constants for subscription patterns.
const (
	// WildcardSingle matches exactly one segment.
	WildcardSingle = "*"

	// WildcardMulti matches zero or more segments.
	WildcardMulti = "**"

	// Separator is the character used to separate topic segments.
	Separator = "."
)

// Topics published by the editing session.
const (
	TopicFeatureCreated     Topic = "feature.created"
	TopicFeatureUpdated     Topic = "feature.updated"
	TopicFeatureRemoved     Topic = "feature.removed"
	TopicSelectionChanged   Topic = "session.selection.changed"
	TopicModeChanged        Topic = "session.mode.changed"
	TopicOperationCompleted Topic = "session.operation.completed"
	TopicOperationFailed    Topic = "session.operation.failed"
	TopicWarning            Topic = "session.warning"
	TopicHistoryChanged     Topic = "history.changed"
)

// String returns the topic as a string.
func (t Topic) String() string {
	return string(t)
}

// Segments returns the topic split by the separator.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), Separator)
}

// HasPrefix returns true if the topic starts with the given prefix on a
// segment boundary.
func (t Topic) HasPrefix(prefix Topic) bool {
	if prefix == "" {
		return true
	}
	s, p := string(t), string(prefix)
	if !strings.HasPrefix(s, p) {
		return false
	}
	return len(s) == len(p) || s[len(p)] == '.'
}

// IsValid returns true if the topic is non-empty and has no empty
// segments.
func (t Topic) IsValid() bool {
	if t == "" {
		return false
	}
	for _, seg := range t.Segments() {
		if seg == "" {
			return false
		}
	}
	return true
}

// Matches returns true if this topic matches the given pattern. The
// pattern may contain wildcards: "*" matches exactly one segment and
// "**" matches zero or more segments.
func (t Topic) Matches(pattern Topic) bool {
	return matchSegments(t.Segments(), pattern.Segments())
}

func matchSegments(topic, pattern []string) bool {
	ti, pi := 0, 0
	for pi < len(pattern) {
		if pattern[pi] == WildcardMulti {
			for ti <= len(topic) {
				if matchSegments(topic[ti:], pattern[pi+1:]) {
					return true
				}
				ti++
			}
			return false
		}
		if ti >= len(topic) {
			return false
		}
		if pattern[pi] == WildcardSingle || pattern[pi] == topic[ti] {
			ti++
			pi++
		} else {
			return false
		}
	}
	return ti == len(topic)
}

// Event pairs a topic with its payload and publication time.
type Event struct {
	// Topic is the hierarchical event type.
	Topic Topic

	// Time is when the event was published.
	Time time.Time

	// Source identifies the component that published the event.
	Source string

	// Payload is one of the payload structs declared in this package.
	Payload any
}

// NewEvent creates an event stamped with the current time.
func NewEvent(topic Topic, payload any, source string) Event {
	return Event{
		Topic:   topic,
		Time:    time.Now(),
		Source:  source,
		Payload: payload,
	}
}
