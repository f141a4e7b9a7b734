package event

import "testing"

func TestTopicMatches(t *testing.T) {
	tests := []struct {
		name    string
		topic   Topic
		pattern Topic
		want    bool
	}{
		{"exact match", TopicFeatureCreated, "feature.created", true},
		{"exact mismatch", TopicFeatureCreated, "feature.removed", false},
		{"single wildcard", TopicFeatureUpdated, "feature.*", true},
		{"single wildcard wrong depth", TopicSelectionChanged, "session.*", false},
		{"single wildcard middle", TopicSelectionChanged, "session.*.changed", true},
		{"multi wildcard tail", TopicOperationFailed, "session.**", true},
		{"multi wildcard zero segments", Topic("session"), "session.**", true},
		{"multi wildcard all", TopicHistoryChanged, "**", true},
		{"multi wildcard middle", TopicOperationCompleted, "session.**.completed", true},
		{"pattern longer than topic", Topic("feature"), "feature.created", false},
		{"topic longer than pattern", TopicSelectionChanged, "session.selection", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.topic.Matches(tt.pattern); got != tt.want {
				t.Errorf("Matches(%q, %q) = %v, want %v", tt.topic, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestTopicHasPrefix(t *testing.T) {
	tests := []struct {
		name   string
		topic  Topic
		prefix Topic
		want   bool
	}{
		{"segment boundary", TopicSelectionChanged, "session.selection", true},
		{"full topic", TopicSelectionChanged, TopicSelectionChanged, true},
		{"partial segment", Topic("featured.created"), "feature", false},
		{"empty prefix", TopicWarning, "", true},
		{"unrelated", TopicWarning, "feature", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.topic.HasPrefix(tt.prefix); got != tt.want {
				t.Errorf("HasPrefix(%q, %q) = %v, want %v", tt.topic, tt.prefix, got, tt.want)
			}
		})
	}
}

func TestTopicIsValid(t *testing.T) {
	tests := []struct {
		topic Topic
		want  bool
	}{
		{TopicFeatureCreated, true},
		{Topic("a"), true},
		{Topic(""), false},
		{Topic(".leading"), false},
		{Topic("trailing."), false},
		{Topic("double..dot"), false},
	}
	for _, tt := range tests {
		if got := tt.topic.IsValid(); got != tt.want {
			t.Errorf("IsValid(%q) = %v, want %v", tt.topic, got, tt.want)
		}
	}
}

func TestTopicSegments(t *testing.T) {
	segs := TopicSelectionChanged.Segments()
	if len(segs) != 3 || segs[0] != "session" || segs[1] != "selection" || segs[2] != "changed" {
		t.Fatalf("unexpected segments %v", segs)
	}
	if got := Topic("").Segments(); got != nil {
		t.Errorf("empty topic segments = %v, want nil", got)
	}
}

func TestNewEventStampsTime(t *testing.T) {
	ev := NewEvent(TopicWarning, WarningRaised{Message: "shrunk to nothing"}, "session")
	if ev.Time.IsZero() {
		t.Error("expected a timestamp")
	}
	if ev.Source != "session" {
		t.Errorf("source = %q, want session", ev.Source)
	}
	if _, ok := ev.Payload.(WarningRaised); !ok {
		t.Errorf("payload type %T, want WarningRaised", ev.Payload)
	}
}
