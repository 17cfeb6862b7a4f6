// Package outline defines the slide outline intermediate representation
// produced by an LLM and consumed by the renderer, along with the parsing
// and validation that turns raw model output into it.
package outline

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

var (
	// ErrInvalidOutline indicates the top level of the outline is not an
	// object carrying a slides list. This aborts a render run.
	ErrInvalidOutline = errors.New("outline: top level is not an object with a slides list")

	// ErrNoSlides indicates the slides list is present but empty.
	ErrNoSlides = errors.New("outline: slides list is empty")
)

// Kind is one of the nine slide archetypes.
type Kind int

const (
	TitleSlide Kind = iota
	TitleAndContent
	SectionHeader
	TwoContent
	Comparison
	TitleOnly
	Blank
	ContentWithCaption
	PictureWithCaption

	kindCount
)

// KindFromIndex maps the layout_idx field of the IR to a Kind.
func KindFromIndex(idx int) (Kind, bool) {
	if idx < 0 || idx >= int(kindCount) {
		return 0, false
	}
	return Kind(idx), true
}

func (k Kind) String() string {
	switch k {
	case TitleSlide:
		return "TitleSlide"
	case TitleAndContent:
		return "TitleAndContent"
	case SectionHeader:
		return "SectionHeader"
	case TwoContent:
		return "TwoContent"
	case Comparison:
		return "Comparison"
	case TitleOnly:
		return "TitleOnly"
	case Blank:
		return "Blank"
	case ContentWithCaption:
		return "ContentWithCaption"
	case PictureWithCaption:
		return "PictureWithCaption"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is one field's content: a scalar string normalized to a single line,
// or an ordered list of bullet lines whose leading spaces encode outline
// levels.
type Value []string

// Empty reports whether the value carries no renderable text.
func (v Value) Empty() bool {
	for _, line := range v {
		if strings.TrimSpace(line) != "" {
			return false
		}
	}
	return true
}

// Scalar returns the value flattened to a single string. List values are
// joined with newlines.
func (v Value) Scalar() string {
	return strings.Join(v, "\n")
}

// Slide is one slide's validated semantic content. Problem, when non-empty,
// records a per-slide schema violation; the renderer skips such slides
// without aborting the run.
type Slide struct {
	LayoutIdx int
	Fields    map[string]Value
	Notes     string
	Problem   string
}

// Field returns the named field's value. Absent fields report ok=false,
// which callers treat as "skip silently".
func (s *Slide) Field(name string) (Value, bool) {
	v, ok := s.Fields[name]
	return v, ok
}

// Outline is the validated IR: an ordered sequence of slides.
type Outline struct {
	Slides []*Slide
}

// Parse extracts the JSON payload from raw LLM output, repairs it when it
// does not decode cleanly, and validates the top-level shape. Per-slide
// violations are recorded on the slide, not returned as errors.
func Parse(raw string) (*Outline, error) {
	payload := ExtractJSON(raw)

	var top map[string]any
	if err := json.Unmarshal([]byte(payload), &top); err != nil {
		repaired, repErr := jsonrepair.JSONRepair(payload)
		if repErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidOutline, err)
		}
		if err := json.Unmarshal([]byte(repaired), &top); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidOutline, err)
		}
	}

	rawSlides, ok := top["slides"].([]any)
	if !ok {
		return nil, ErrInvalidOutline
	}
	if len(rawSlides) == 0 {
		return nil, ErrNoSlides
	}

	o := &Outline{Slides: make([]*Slide, 0, len(rawSlides))}
	for _, rs := range rawSlides {
		o.Slides = append(o.Slides, buildSlide(rs))
	}
	return o, nil
}

func buildSlide(raw any) *Slide {
	m, ok := raw.(map[string]any)
	if !ok {
		return &Slide{LayoutIdx: -1, Problem: "slide is not an object"}
	}

	s := &Slide{LayoutIdx: -1, Fields: map[string]Value{}}

	idx, present := m["layout_idx"]
	if !present {
		s.Problem = "missing layout_idx"
	} else if n, ok := asInt(idx); !ok {
		s.Problem = fmt.Sprintf("layout_idx %v is not an integer", idx)
	} else {
		s.LayoutIdx = n
		if _, ok := KindFromIndex(n); !ok {
			s.Problem = fmt.Sprintf("layout_idx %d out of range", n)
		}
	}

	for key, val := range m {
		switch key {
		case "layout_idx":
		case "notes":
			s.Notes, _ = val.(string)
		default:
			if v, ok := asValue(val); ok {
				s.Fields[key] = v
			}
		}
	}
	return s
}

// asInt coerces a JSON value to an integer. Models stringify numbers often
// enough that numeric strings are accepted too.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	}
	return 0, false
}

// asValue coerces a JSON field value to lines. Strings pass through, lists
// keep their element order, numbers are stringified. Anything else (nested
// objects, null) is dropped as unrenderable.
func asValue(v any) (Value, bool) {
	switch t := v.(type) {
	case string:
		return Value{t}, true
	case float64:
		return Value{formatNumber(t)}, true
	case bool:
		return Value{strconv.FormatBool(t)}, true
	case []any:
		lines := make(Value, 0, len(t))
		for _, el := range t {
			switch e := el.(type) {
			case string:
				lines = append(lines, e)
			case float64:
				lines = append(lines, formatNumber(e))
			case bool:
				lines = append(lines, strconv.FormatBool(e))
			}
		}
		return lines, true
	default:
		return nil, false
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
