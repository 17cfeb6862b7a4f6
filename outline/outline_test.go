package outline

import (
	"errors"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"fenced json", "Here you go:\n```json\n{\"slides\": []}\n```\nEnjoy.", `{"slides": []}`},
		{"fenced bare", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"prose around braces", `Sure! {"slides": [{"layout_idx": 0}]} Hope that helps.`, `{"slides": [{"layout_idx": 0}]}`},
		{"bare array", `[1, 2, 3]`, `[1, 2, 3]`},
		{"no json at all", "  nothing here  ", "nothing here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.in); got != tt.want {
				t.Errorf("ExtractJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseValidOutline(t *testing.T) {
	raw := "```json\n" + `{
		"slides": [
			{"layout_idx": 0, "title": "Intro", "subtitle": "A study", "notes": "welcome everyone"},
			{"layout_idx": 1, "title": "Body", "content": ["first", "  nested", 42]}
		]
	}` + "\n```"

	o, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(o.Slides) != 2 {
		t.Fatalf("got %d slides, want 2", len(o.Slides))
	}

	s := o.Slides[0]
	if s.LayoutIdx != 0 || s.Problem != "" {
		t.Errorf("slide 0: idx=%d problem=%q", s.LayoutIdx, s.Problem)
	}
	if v, ok := s.Field("title"); !ok || v.Scalar() != "Intro" {
		t.Errorf("title = %v ok=%v", v, ok)
	}
	if s.Notes != "welcome everyone" {
		t.Errorf("notes = %q", s.Notes)
	}

	// List values keep element order, numbers are stringified.
	content, ok := o.Slides[1].Field("content")
	if !ok || len(content) != 3 {
		t.Fatalf("content = %v ok=%v", content, ok)
	}
	if content[1] != "  nested" || content[2] != "42" {
		t.Errorf("content = %v", content)
	}
}

func TestParseRepairsMalformedJSON(t *testing.T) {
	// Trailing comma and single quotes are typical LLM output defects.
	raw := `{'slides': [{'layout_idx': 5, 'title': 'Only',},]}`
	o, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse should repair malformed JSON, got %v", err)
	}
	if len(o.Slides) != 1 || o.Slides[0].LayoutIdx != 5 {
		t.Errorf("got %+v", o.Slides)
	}
}

func TestParseTopLevelErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"not an object", `[1, 2]`, ErrInvalidOutline},
		{"missing slides", `{"pages": []}`, ErrInvalidOutline},
		{"slides not a list", `{"slides": "none"}`, ErrInvalidOutline},
		{"empty slides", `{"slides": []}`, ErrNoSlides},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.in); !errors.Is(err, tt.want) {
				t.Errorf("Parse(%q) error = %v, want %v", tt.in, err, tt.want)
			}
		})
	}
}

func TestParseRecordsSlideProblems(t *testing.T) {
	raw := `{"slides": [
		{"layout_idx": 99, "title": "too far"},
		{"title": "no layout"},
		{"layout_idx": 2.5, "title": "fractional"},
		{"layout_idx": 6}
	]}`
	o, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(o.Slides) != 4 {
		t.Fatalf("got %d slides, want 4", len(o.Slides))
	}
	for i, wantProblem := range []bool{true, true, true, false} {
		if got := o.Slides[i].Problem != ""; got != wantProblem {
			t.Errorf("slide %d: problem=%q, want problem=%v", i, o.Slides[i].Problem, wantProblem)
		}
	}
}

func TestParseAcceptsNumericStringLayoutIdx(t *testing.T) {
	raw := `{"slides": [
		{"layout_idx": "3", "title": "quoted"},
		{"layout_idx": " 5 ", "title": "padded"},
		{"layout_idx": "five", "title": "words"}
	]}`
	o, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := o.Slides[0].LayoutIdx; got != 3 {
		t.Errorf("slide 0 layout idx = %d, want 3", got)
	}
	if got := o.Slides[1].LayoutIdx; got != 5 {
		t.Errorf("slide 1 layout idx = %d, want 5", got)
	}
	if o.Slides[2].Problem == "" {
		t.Error("non-numeric string layout_idx should record a problem")
	}
}

func TestValueEmpty(t *testing.T) {
	if !(Value{}).Empty() {
		t.Error("zero-length value should be empty")
	}
	if !(Value{"  ", ""}).Empty() {
		t.Error("whitespace-only value should be empty")
	}
	if (Value{"", "x"}).Empty() {
		t.Error("value with text should not be empty")
	}
}

func TestKindFromIndex(t *testing.T) {
	if k, ok := KindFromIndex(8); !ok || k != PictureWithCaption {
		t.Errorf("index 8 = %v ok=%v", k, ok)
	}
	if _, ok := KindFromIndex(9); ok {
		t.Error("index 9 should be out of range")
	}
	if _, ok := KindFromIndex(-1); ok {
		t.Error("index -1 should be out of range")
	}
}
