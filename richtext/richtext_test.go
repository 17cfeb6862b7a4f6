package richtext

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Run
	}{
		{
			name: "plain",
			in:   "hello world",
			want: []Run{{Text: "hello world"}},
		},
		{
			name: "bold and italic",
			in:   "**Hi** *there*",
			want: []Run{
				{Text: "Hi", Bold: true},
				{Text: " "},
				{Text: "there", Italic: true},
			},
		},
		{
			name: "underline",
			in:   "a <u>b</u> c",
			want: []Run{
				{Text: "a "},
				{Text: "b", Underline: true},
				{Text: " c"},
			},
		},
		{
			name: "all three",
			in:   "**A** and *B* and <u>C</u>",
			want: []Run{
				{Text: "A", Bold: true},
				{Text: " and "},
				{Text: "B", Italic: true},
				{Text: " and "},
				{Text: "C", Underline: true},
			},
		},
		{
			name: "unterminated bold is literal",
			in:   "**oops",
			want: []Run{{Text: "**oops"}},
		},
		{
			name: "four stars parse as italic literal asterisks",
			in:   "a ****b",
			// "****" is too short for the bold form, so the italic form
			// claims it and the inner asterisks survive as text.
			want: []Run{{Text: "a "}, {Text: "**", Italic: true}, {Text: "b"}},
		},
		{
			name: "bare marker pair stays literal",
			in:   "**",
			want: []Run{{Text: "**"}},
		},
		{
			name: "no nesting, first match wins",
			in:   "**a *b* c**",
			want: []Run{{Text: "a *b* c", Bold: true}},
		},
		{
			name: "empty input",
			in:   "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStrip(t *testing.T) {
	if got := Strip("**Hi** *there*"); got != "Hi there" {
		t.Errorf("Strip = %q, want %q", got, "Hi there")
	}
}

func TestIndent(t *testing.T) {
	tests := []struct {
		in        string
		wantLevel int
		wantText  string
	}{
		{"top", 0, "top"},
		{"  one", 1, "one"},
		{"    two", 2, "two"},
		{"   odd", 1, "odd"}, // 3 spaces floor to level 1
		{"            six", 5, "six"}, // 12 spaces capped at 5
		{"", 0, ""},
	}
	for _, tt := range tests {
		level, text := Indent(tt.in)
		if level != tt.wantLevel || text != tt.wantText {
			t.Errorf("Indent(%q) = (%d, %q), want (%d, %q)", tt.in, level, text, tt.wantLevel, tt.wantText)
		}
	}
}
