package domain

import "testing"

func TestOpposingTagName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{TagHighPriority, TagLowPriority},
		{TagLowPriority, TagHighPriority},
		{"high PRIORITY", TagLowPriority},
		{TagBacksolved, ""},
		{"Random", ""},
	}

	for _, tt := range tests {
		if got := OpposingTagName(tt.input); got != tt.expected {
			t.Errorf("OpposingTagName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestReservedTagPredicates(t *testing.T) {
	hi := &Tag{Name: "high priority", Color: ColorDanger}
	if !hi.IsHighPri() {
		t.Error("case-insensitive high priority match failed")
	}

	back := &Tag{Name: TagBacksolved, Color: ColorSuccess}
	if !back.IsBacksolved() {
		t.Error("backsolved predicate failed")
	}

	loc := &Tag{Name: "Office", Color: ColorInfo}
	if !loc.IsLocation() {
		t.Error("location predicate failed")
	}

	metaLoc := &Tag{Name: "Office", Color: ColorInfo, IsMeta: true}
	if metaLoc.IsLocation() {
		t.Error("meta tag should never be a location")
	}
}

func TestDefaultTags(t *testing.T) {
	tags := DefaultTags()
	if len(tags) != 3 {
		t.Fatalf("expected 3 default tags, got %d", len(tags))
	}
	for _, tag := range tags {
		if !tag.IsDefault {
			t.Errorf("default tag %q missing IsDefault", tag.Name)
		}
	}
}
