package store

import (
	"errors"
	"testing"
	"time"
)

func TestToInt(t *testing.T) {
	tests := []struct {
		in   string
		def  int
		want int
	}{
		{"42", 0, 42},
		{" 7 ", 0, 7},
		{"", 100, 100},
		{"   ", 5, 5},
		{"12.9", 0, 12},
		{"-3", 0, -3},
		{"abc", 9, 9},
		{"1e3", 0, 1000},
	}
	for _, tt := range tests {
		if got := ToInt(tt.in, tt.def); got != tt.want {
			t.Errorf("ToInt(%q, %d) = %d, want %d", tt.in, tt.def, got, tt.want)
		}
	}
}

func fullRow() (map[Field]string, map[Field]bool) {
	raw := make(map[Field]string)
	present := make(map[Field]bool)
	for _, spec := range Schema {
		raw[spec.Field] = spec.Default
		present[spec.Field] = true
	}
	return raw, present
}

func TestDecodePlayerDefaults(t *testing.T) {
	raw, present := fullRow()
	s, err := DecodePlayer("u001", raw, present)
	if err != nil {
		t.Fatalf("DecodePlayer: %v", err)
	}
	if s.Level != 1 || s.NextLevelXP != 100 || s.DungeonFloor != 1 || s.Gold != 0 {
		t.Errorf("defaults = %+v", s)
	}
	if s.FocusStart != nil || s.OutingStart != nil {
		t.Errorf("timestamps should be nil, got %v %v", s.FocusStart, s.OutingStart)
	}
}

func TestDecodePlayerParsesText(t *testing.T) {
	raw, present := fullRow()
	raw[FieldGold] = "1200"
	raw[FieldLevel] = "4.0"
	raw[FieldRebirthCount] = "oops"
	raw[FieldAchievements] = "task_10,first_task"
	raw[FieldDailyClaimed] = " 2026-10-17 "
	raw[FieldFocusStart] = "2026-10-17T09:00:00Z"

	s, err := DecodePlayer("u001", raw, present)
	if err != nil {
		t.Fatalf("DecodePlayer: %v", err)
	}
	if s.Gold != 1200 {
		t.Errorf("Gold = %d, want 1200", s.Gold)
	}
	if s.Level != 4 {
		t.Errorf("Level = %d, want 4", s.Level)
	}
	if s.RebirthCount != 0 {
		t.Errorf("RebirthCount = %d, want 0 for garbage text", s.RebirthCount)
	}
	if !s.Achievements.Has("first_task") || !s.Achievements.Has("task_10") {
		t.Errorf("Achievements = %v", s.Achievements)
	}
	if !s.DailyClaim.ClaimedFor("2026-10-17") {
		t.Errorf("DailyClaim = %q", s.DailyClaim)
	}
	want := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	if s.FocusStart == nil || !s.FocusStart.Equal(want) {
		t.Errorf("FocusStart = %v, want %v", s.FocusStart, want)
	}
}

func TestDecodePlayerSchemaErrors(t *testing.T) {
	t.Run("missing required column", func(t *testing.T) {
		raw, present := fullRow()
		delete(raw, FieldGold)
		delete(present, FieldGold)
		_, err := DecodePlayer("u001", raw, present)
		var se *SchemaError
		if !errors.As(err, &se) || se.Field != FieldGold {
			t.Fatalf("err = %v, want SchemaError on gold", err)
		}
		if !errors.Is(err, ErrSchema) {
			t.Errorf("err does not match ErrSchema")
		}
	})

	t.Run("garbage in required column", func(t *testing.T) {
		raw, present := fullRow()
		raw[FieldLevel] = "level five"
		if _, err := DecodePlayer("u001", raw, present); !errors.Is(err, ErrSchema) {
			t.Errorf("err = %v, want ErrSchema", err)
		}
	})

	t.Run("missing optional column degrades", func(t *testing.T) {
		raw, present := fullRow()
		delete(raw, FieldFocusLog)
		delete(present, FieldFocusLog)
		delete(raw, FieldGachaTickets)
		delete(present, FieldGachaTickets)
		s, err := DecodePlayer("u001", raw, present)
		if err != nil {
			t.Fatalf("DecodePlayer: %v", err)
		}
		if s.GachaTickets != 0 || s.FocusLog != "" {
			t.Errorf("optional fields = %d %q", s.GachaTickets, s.FocusLog)
		}
	})
}

func TestWriteErrorUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := error(&WriteError{Op: "claim daily", Field: FieldGold, GuardCommitted: true, Err: cause})
	if !errors.Is(err, ErrWriteFailure) {
		t.Error("WriteError does not match ErrWriteFailure")
	}
	if !errors.Is(err, cause) {
		t.Error("WriteError does not match its cause")
	}
	var we *WriteError
	if !errors.As(err, &we) || !we.GuardCommitted {
		t.Errorf("errors.As = %+v", we)
	}
}
