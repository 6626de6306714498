package validate

import (
	"errors"
	"strings"
	"testing"
)

type taskInput struct {
	Title    string  `json:"title" validate:"notblank,max=200"`
	Status   string  `json:"status" validate:"omitempty,task_status"`
	Priority string  `json:"priority" validate:"omitempty,task_priority"`
	Note     *string `json:"note" validate:"omitempty,notblank"`
	Mood     int     `json:"mood_value" validate:"min=1,max=5"`
}

func TestStruct(t *testing.T) {
	if err := Struct(taskInput{Title: "ok", Status: "open", Mood: 3}); err != nil {
		t.Fatalf("valid input: %v", err)
	}

	blank := "  "
	err := Struct(taskInput{Title: "  ", Status: "done", Priority: "urgent", Note: &blank, Mood: 9})
	var fe FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("want FieldErrors, got %T %v", err, err)
	}
	for _, field := range []string{"title", "status", "priority", "note", "mood_value"} {
		if _, ok := fe[field]; !ok {
			t.Fatalf("missing error for %s: %v", field, fe)
		}
	}
	if !strings.Contains(fe["status"], "open, in_progress, completed") {
		t.Fatalf("status message: %q", fe["status"])
	}
}
