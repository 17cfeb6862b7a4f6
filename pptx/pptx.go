// Package pptx is a minimal Office Open XML (.pptx) document model focused on
// template-driven deck generation: it opens a template (or a built-in default
// deck), exposes the slide layouts and their placeholder inventories, and lets
// the caller add slides whose placeholders are filled with styled text or
// pictures before saving the result.
//
// The package works at the package-part level (archive/zip + encoding/xml):
// template parts are carried through untouched and only the presentation
// manifest, relationships and new slide parts are written. This keeps themes,
// masters and layout formatting of arbitrary templates intact.
package pptx

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Role is the semantic purpose of a placeholder, independent of its raw
// OOXML type attribute.
type Role int

const (
	RoleUnknown Role = iota
	RoleTitle
	RoleCenterTitle
	RoleSubtitle
	RoleBody
	RoleObject
	RolePicture
	// Chrome placeholders (date, footer, slide number) are inventoried so
	// callers can skip them explicitly.
	RoleDate
	RoleFooter
	RoleSlideNumber
)

// String returns the role name used in role-preference configuration.
func (r Role) String() string {
	switch r {
	case RoleTitle:
		return "TITLE"
	case RoleCenterTitle:
		return "CENTER_TITLE"
	case RoleSubtitle:
		return "SUBTITLE"
	case RoleBody:
		return "BODY"
	case RoleObject:
		return "OBJECT"
	case RolePicture:
		return "PICTURE"
	case RoleDate:
		return "DATE"
	case RoleFooter:
		return "FOOTER"
	case RoleSlideNumber:
		return "SLIDE_NUMBER"
	default:
		return "UNKNOWN"
	}
}

// roleFromTypeAttr maps the OOXML p:ph type attribute to a Role. A missing
// type attribute means a generic content placeholder ("obj" semantics).
func roleFromTypeAttr(t string) Role {
	switch t {
	case "title":
		return RoleTitle
	case "ctrTitle":
		return RoleCenterTitle
	case "subTitle":
		return RoleSubtitle
	case "body":
		return RoleBody
	case "", "obj", "tbl", "chart", "dgm", "media":
		return RoleObject
	case "pic", "clipArt":
		return RolePicture
	case "dt":
		return RoleDate
	case "ftr":
		return RoleFooter
	case "sldNum":
		return RoleSlideNumber
	default:
		return RoleUnknown
	}
}

// Placeholder describes one placeholder of a layout: its idx attribute and
// semantic role. The raw type attribute is retained so slides echo it exactly.
type Placeholder struct {
	Index int
	Role  Role

	typeAttr string
	hasIdx   bool
}

// Align is a paragraph alignment.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
	AlignJustify
	AlignDistribute
)

func (a Align) attr() string {
	switch a {
	case AlignCenter:
		return "ctr"
	case AlignRight:
		return "r"
	case AlignJustify:
		return "just"
	case AlignDistribute:
		return "dist"
	default:
		return "l"
	}
}

// Anchor is a text frame vertical anchor.
type Anchor int

const (
	AnchorTop Anchor = iota
	AnchorMiddle
	AnchorBottom
)

func (a Anchor) attr() string {
	switch a {
	case AnchorMiddle:
		return "ctr"
	case AnchorBottom:
		return "b"
	default:
		return "t"
	}
}

// Run is a span of text with uniform formatting inside a paragraph.
type Run struct {
	Text      string
	Bold      bool
	Italic    bool
	Underline bool
	SizePt    float64 // 0 means inherit from the layout
	Font      string  // empty means inherit
	ColorHex  string  // 6-digit hex, empty means inherit
}

// Paragraph is one paragraph of a text frame.
type Paragraph struct {
	Level int
	Align Align
	Runs  []Run
}

// TextFrame is the text content written into a placeholder.
type TextFrame struct {
	WordWrap   bool
	Anchor     Anchor
	Paragraphs []*Paragraph
}

// NewTextFrame returns an empty frame with word wrap on and top anchoring.
func NewTextFrame() *TextFrame {
	return &TextFrame{WordWrap: true, Anchor: AnchorTop}
}

// Clear removes all paragraphs.
func (tf *TextFrame) Clear() {
	tf.Paragraphs = nil
}

// AddParagraph appends an empty paragraph and returns it.
func (tf *TextFrame) AddParagraph() *Paragraph {
	p := &Paragraph{}
	tf.Paragraphs = append(tf.Paragraphs, p)
	return p
}

// Text returns the plain text of the frame, paragraphs joined by newlines.
// Used by tests and diagnostics.
func (tf *TextFrame) Text() string {
	var lines []string
	for _, p := range tf.Paragraphs {
		var b strings.Builder
		for _, r := range p.Runs {
			b.WriteString(r.Text)
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

// Layout is one slide layout of the document with its placeholder inventory.
type Layout struct {
	Name         string
	Placeholders []Placeholder

	partName string // e.g. "ppt/slideLayouts/slideLayout3.xml"
}

// Placeholder returns the placeholder with the given idx attribute.
func (l *Layout) Placeholder(idx int) (Placeholder, bool) {
	for _, ph := range l.Placeholders {
		if ph.Index == idx {
			return ph, true
		}
	}
	return Placeholder{}, false
}

// picture is an image inserted into a placeholder.
type picture struct {
	ph   Placeholder
	data []byte
	ext  string // normalized extension: png, jpeg, gif, bmp
}

// placedFrame ties a populated text frame to the placeholder it fills.
type placedFrame struct {
	ph    Placeholder
	frame *TextFrame
}

// Slide is a slide under construction. Content set on it is serialized on
// Document.Save.
type Slide struct {
	layout *Layout
	frames []*placedFrame
	pics   []*picture
	notes  *TextFrame
}

// Layout returns the layout this slide was instantiated from.
func (s *Slide) Layout() *Layout { return s.layout }

// TextFrame returns the text frame for the placeholder with the given idx,
// creating it on first use. Returns an error when the layout has no such
// placeholder.
func (s *Slide) TextFrame(idx int) (*TextFrame, error) {
	for _, pf := range s.frames {
		if pf.ph.Index == idx {
			return pf.frame, nil
		}
	}
	ph, ok := s.layout.Placeholder(idx)
	if !ok {
		return nil, fmt.Errorf("pptx: layout %q has no placeholder with idx %d", s.layout.Name, idx)
	}
	pf := &placedFrame{ph: ph, frame: NewTextFrame()}
	s.frames = append(s.frames, pf)
	return pf.frame, nil
}

// InsertPicture places the image file into the placeholder with the given
// idx. The image is embedded into the package on save.
func (s *Slide) InsertPicture(idx int, path string) error {
	ph, ok := s.layout.Placeholder(idx)
	if !ok {
		return fmt.Errorf("pptx: layout %q has no placeholder with idx %d", s.layout.Name, idx)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("pptx: reading image: %w", err)
	}
	ext := normalizeImageExt(filepath.Ext(path))
	s.pics = append(s.pics, &picture{ph: ph, data: data, ext: ext})
	return nil
}

// SetNotes attaches speaker notes content to the slide.
func (s *Slide) SetNotes(tf *TextFrame) { s.notes = tf }

// Notes returns the notes frame, or nil when none was set.
func (s *Slide) Notes() *TextFrame { return s.notes }

func normalizeImageExt(ext string) string {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg":
		return "jpeg"
	case "gif":
		return "gif"
	case "bmp":
		return "bmp"
	default:
		return "png"
	}
}

func imageContentType(ext string) string {
	switch ext {
	case "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	default:
		return "image/png"
	}
}

// Document is an in-memory pptx package: the retained template parts plus the
// slides added by the caller.
type Document struct {
	parts     map[string][]byte
	partOrder []string
	layouts   []*Layout
	slides    []*Slide

	masterPaths []string // retained master part names, first is patched for background
	bgColorHex  string   // pending master background override
}

// Layouts returns the layouts of the first slide master, in master order.
func (d *Document) Layouts() []*Layout { return d.layouts }

// Slides returns the slides added so far.
func (d *Document) Slides() []*Slide { return d.slides }

// AddSlide instantiates a new slide from the given layout and appends it to
// the deck.
func (d *Document) AddSlide(l *Layout) *Slide {
	s := &Slide{layout: l}
	d.slides = append(d.slides, s)
	return s
}

// SetMasterBackground overrides the first slide master's background with a
// solid fill of the given 6-digit hex color. Applied on save.
func (d *Document) SetMasterBackground(hex string) {
	d.bgColorHex = hex
}
