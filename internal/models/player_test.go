package models

import "testing"

func TestParseIDSet(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{" , ,", ""},
		{"task_10,first_task", "first_task,task_10"},
		{"a, b ,a", "a,b"},
	}
	for _, tt := range tests {
		if got := ParseIDSet(tt.in).String(); got != tt.want {
			t.Errorf("ParseIDSet(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIDSetWithDoesNotAlias(t *testing.T) {
	base := ParseIDSet("b,d")
	grown := base.With("c", "a", "b")
	if got := grown.String(); got != "a,b,c,d" {
		t.Errorf("With() = %q, want a,b,c,d", got)
	}
	if got := base.String(); got != "b,d" {
		t.Errorf("base mutated to %q", got)
	}
	if !grown.Has("c") || grown.Has("e") {
		t.Errorf("Has() wrong on %v", grown)
	}
}

func TestClaimGuard(t *testing.T) {
	tests := []struct {
		guard  ClaimGuard
		period string
		want   bool
	}{
		{"", "2026-10-17", false},
		{"2026-10-16", "2026-10-17", false},
		{"2026-10-17", "2026-10-17", true},
		{"", "", false},
	}
	for _, tt := range tests {
		if got := tt.guard.ClaimedFor(tt.period); got != tt.want {
			t.Errorf("ClaimGuard(%q).ClaimedFor(%q) = %v, want %v", tt.guard, tt.period, got, tt.want)
		}
	}
}

func TestIsCompletion(t *testing.T) {
	for kind, want := range map[string]bool{HistoryTask: true, HistoryItem: true, HistoryDraw: false} {
		if got := (HistoryRecord{Kind: kind}).IsCompletion(); got != want {
			t.Errorf("IsCompletion(%s) = %v, want %v", kind, got, want)
		}
	}
}
