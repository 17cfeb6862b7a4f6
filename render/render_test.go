package render

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/genslides/genslides/images"
	"github.com/genslides/genslides/outline"
	"github.com/genslides/genslides/pptx"
)

// ---- helpers ----

type stubFetcher struct {
	result *images.Result
	err    error
	calls  int
}

func (s *stubFetcher) Fetch(ctx context.Context, query, saveDir string) (*images.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func renderOutline(t *testing.T, o *outline.Outline, opts ...Option) (*pptx.Document, *Report) {
	t.Helper()
	doc, err := pptx.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	opts = append([]Option{WithImageFetcher(&stubFetcher{err: images.ErrNoImage})}, opts...)
	r := New(DefaultConfig(), opts...)
	rep, err := r.Render(context.Background(), o, doc, filepath.Join(t.TempDir(), "out.pptx"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return doc, rep
}

func slideOf(layoutIdx int, fields map[string]outline.Value) *outline.Slide {
	return &outline.Slide{LayoutIdx: layoutIdx, Fields: fields}
}

func frameText(t *testing.T, s *pptx.Slide, idx int) string {
	t.Helper()
	tf, err := s.TextFrame(idx)
	if err != nil {
		t.Fatalf("TextFrame(%d): %v", idx, err)
	}
	return tf.Text()
}

// ---- rendering ----

func TestRenderTitleSlideRuns(t *testing.T) {
	o := &outline.Outline{Slides: []*outline.Slide{
		slideOf(0, map[string]outline.Value{
			"title":    {"**Hi** *there*"},
			"subtitle": {"a talk"},
		}),
	}}
	doc, rep := renderOutline(t, o)

	if len(doc.Slides()) != 1 {
		t.Fatalf("got %d slides, want 1", len(doc.Slides()))
	}
	tf, err := doc.Slides()[0].TextFrame(0)
	if err != nil {
		t.Fatalf("TextFrame: %v", err)
	}
	if len(tf.Paragraphs) != 1 {
		t.Fatalf("got %d paragraphs, want 1", len(tf.Paragraphs))
	}
	p := tf.Paragraphs[0]
	want := []pptx.Run{
		{Text: "Hi", Bold: true},
		{Text: " "},
		{Text: "there", Italic: true},
	}
	if len(p.Runs) != len(want) {
		t.Fatalf("got %d runs, want %d: %+v", len(p.Runs), len(want), p.Runs)
	}
	for i, w := range want {
		got := p.Runs[i]
		if got.Text != w.Text || got.Bold != w.Bold || got.Italic != w.Italic {
			t.Errorf("run %d = %+v, want text=%q bold=%v italic=%v", i, got, w.Text, w.Bold, w.Italic)
		}
		if got.SizePt != 36 {
			t.Errorf("run %d size = %v, want 36", i, got.SizePt)
		}
	}
	if p.Align != pptx.AlignCenter {
		t.Errorf("title align = %v, want center", p.Align)
	}

	if rep.Slides[0].Fields[0].Status != FieldWritten {
		t.Errorf("title status = %s", rep.Slides[0].Fields[0].Status)
	}
}

func TestRenderSkipsInvalidEntries(t *testing.T) {
	o := &outline.Outline{Slides: []*outline.Slide{
		slideOf(0, map[string]outline.Value{"title": {"first"}}),
		{LayoutIdx: -1, Problem: "layout_idx 99 out of range"},
		slideOf(5, map[string]outline.Value{"title": {"last"}}),
	}}
	doc, rep := renderOutline(t, o)

	if len(doc.Slides()) != 2 {
		t.Fatalf("got %d slides, want 2", len(doc.Slides()))
	}
	if got := frameText(t, doc.Slides()[0], 0); got != "first" {
		t.Errorf("slide 1 title = %q", got)
	}
	if got := frameText(t, doc.Slides()[1], 0); got != "last" {
		t.Errorf("slide 2 title = %q", got)
	}

	if !rep.Slides[1].Skipped || rep.Slides[1].Reason == "" {
		t.Errorf("entry 1 not reported as skipped: %+v", rep.Slides[1])
	}
	if rep.Slides[0].SlideNumber != 1 || rep.Slides[2].SlideNumber != 2 {
		t.Errorf("slide numbers = %d, %d", rep.Slides[0].SlideNumber, rep.Slides[2].SlideNumber)
	}
	if rep.SlideCount != 2 {
		t.Errorf("SlideCount = %d, want 2", rep.SlideCount)
	}
}

func TestRenderComparisonMergesHeaders(t *testing.T) {
	o := &outline.Outline{Slides: []*outline.Slide{
		slideOf(4, map[string]outline.Value{
			"title":                   {"then vs now"},
			"left_heading":            {"Old"},
			"left_comparison_content": {"a"},
		}),
	}}
	doc, _ := renderOutline(t, o)

	tf, err := doc.Slides()[0].TextFrame(1)
	if err != nil {
		t.Fatalf("TextFrame: %v", err)
	}
	if len(tf.Paragraphs) != 2 {
		t.Fatalf("got %d paragraphs, want 2: %q", len(tf.Paragraphs), tf.Text())
	}
	head := tf.Paragraphs[0]
	if len(head.Runs) != 1 || head.Runs[0].Text != "Old" || !head.Runs[0].Bold {
		t.Errorf("header paragraph = %+v, want single bold %q", head.Runs, "Old")
	}
	if got := tf.Paragraphs[1].Runs[0].Text; got != "a" {
		t.Errorf("content line = %q, want %q", got, "a")
	}
}

func TestRenderComparisonDedicatedHeaders(t *testing.T) {
	layout := &pptx.Layout{
		Name: "Comparison Four Slots",
		Placeholders: []pptx.Placeholder{
			{Index: 0, Role: pptx.RoleTitle},
			{Index: 1, Role: pptx.RoleBody},
			{Index: 2, Role: pptx.RoleBody},
			{Index: 3, Role: pptx.RoleBody},
			{Index: 4, Role: pptx.RoleBody},
		},
	}
	doc, err := pptx.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	slide := doc.AddSlide(layout)

	r := New(DefaultConfig(), WithImageFetcher(&stubFetcher{err: images.ErrNoImage}))
	sl := slideOf(4, map[string]outline.Value{
		"title":                    {"then vs now"},
		"left_heading":             {" Old "},
		"left_comparison_content":  {"a"},
		"right_heading":            {"New"},
		"right_comparison_content": {"b"},
	})
	sr := &SlideResult{}
	rep := &Report{}
	r.renderComparison(slide, sl, outline.Comparison, sr, rep)

	for _, idx := range []int{1, 3} {
		tf, err := slide.TextFrame(idx)
		if err != nil {
			t.Fatalf("TextFrame(%d): %v", idx, err)
		}
		p := tf.Paragraphs[0]
		if len(p.Runs) != 1 || !p.Runs[0].Bold {
			t.Errorf("heading at %d = %+v, want a single bold run", idx, p.Runs)
		}
		if p.Align != pptx.AlignCenter {
			t.Errorf("heading at %d align = %v, want center", idx, p.Align)
		}
	}
	if got := frameText(t, slide, 1); got != "Old" {
		t.Errorf("left heading = %q, want trimmed %q", got, "Old")
	}
	if got := frameText(t, slide, 2); got != "a" {
		t.Errorf("left content = %q", got)
	}
	if got := frameText(t, slide, 4); got != "b" {
		t.Errorf("right content = %q", got)
	}
}

func TestRenderTitleAnchors(t *testing.T) {
	o := &outline.Outline{Slides: []*outline.Slide{
		slideOf(0, map[string]outline.Value{"title": {"front"}, "subtitle": {"matter"}}),
		slideOf(5, map[string]outline.Value{"title": {"interlude"}}),
		slideOf(1, map[string]outline.Value{"title": {"t"}, "content": {"body"}}),
	}}
	doc, _ := renderOutline(t, o)

	cases := []struct {
		name  string
		slide int
		idx   int
		want  pptx.Anchor
	}{
		{"title slide title", 0, 0, pptx.AnchorMiddle},
		{"title only title", 1, 0, pptx.AnchorMiddle},
		{"content title", 2, 0, pptx.AnchorTop},
		{"content body", 2, 1, pptx.AnchorTop},
	}
	for _, tc := range cases {
		tf, err := doc.Slides()[tc.slide].TextFrame(tc.idx)
		if err != nil {
			t.Fatalf("%s: TextFrame: %v", tc.name, err)
		}
		if tf.Anchor != tc.want {
			t.Errorf("%s anchor = %v, want %v", tc.name, tf.Anchor, tc.want)
		}
	}
}

func TestRenderTwoContentPlacement(t *testing.T) {
	o := &outline.Outline{Slides: []*outline.Slide{
		slideOf(3, map[string]outline.Value{
			"title":         {"split"},
			"left_content":  {"lhs"},
			"right_content": {"rhs"},
		}),
	}}
	doc, _ := renderOutline(t, o)

	s := doc.Slides()[0]
	if got := frameText(t, s, 1); got != "lhs" {
		t.Errorf("left placeholder = %q", got)
	}
	if got := frameText(t, s, 2); got != "rhs" {
		t.Errorf("right placeholder = %q", got)
	}
}

func TestRenderDynamicShrink(t *testing.T) {
	many := outline.Value{"a", "b", "c", "d", "e", "f", "g"}
	few := outline.Value{"a", "b", "c", "d", "e", "f"}
	long := outline.Value{strings.Repeat("x", 401)}

	cases := []struct {
		name    string
		content outline.Value
		want    float64
	}{
		{"seven items shrink", many, 16},
		{"six items keep default", few, 20},
		{"long text shrinks", long, 16},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := &outline.Outline{Slides: []*outline.Slide{
				slideOf(1, map[string]outline.Value{"title": {"t"}, "content": tc.content}),
			}}
			doc, _ := renderOutline(t, o)
			tf, err := doc.Slides()[0].TextFrame(1)
			if err != nil {
				t.Fatalf("TextFrame: %v", err)
			}
			if got := tf.Paragraphs[0].Runs[0].SizePt; got != tc.want {
				t.Errorf("size = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRenderIndentLevels(t *testing.T) {
	o := &outline.Outline{Slides: []*outline.Slide{
		slideOf(1, map[string]outline.Value{
			"title":   {"t"},
			"content": {"top", "  nested", "    deeper"},
		}),
	}}
	doc, _ := renderOutline(t, o)

	tf, err := doc.Slides()[0].TextFrame(1)
	if err != nil {
		t.Fatalf("TextFrame: %v", err)
	}
	wantLevels := []int{0, 1, 2}
	wantSizes := []float64{20, 18, 16}
	for i, p := range tf.Paragraphs {
		if p.Level != wantLevels[i] {
			t.Errorf("paragraph %d level = %d, want %d", i, p.Level, wantLevels[i])
		}
		if p.Runs[0].SizePt != wantSizes[i] {
			t.Errorf("paragraph %d size = %v, want %v", i, p.Runs[0].SizePt, wantSizes[i])
		}
	}
}

func TestRenderNotes(t *testing.T) {
	o := &outline.Outline{Slides: []*outline.Slide{
		{LayoutIdx: 5, Fields: map[string]outline.Value{"title": {"t"}}, Notes: "remember this"},
	}}
	doc, _ := renderOutline(t, o)

	notes := doc.Slides()[0].Notes()
	if notes == nil {
		t.Fatal("notes frame not set")
	}
	if got := notes.Text(); got != "remember this" {
		t.Errorf("notes = %q", got)
	}
	if got := notes.Paragraphs[0].Runs[0].SizePt; got != 10 {
		t.Errorf("notes size = %v, want 10", got)
	}
}

func TestRenderImageFallbackUsesDescription(t *testing.T) {
	o := &outline.Outline{Slides: []*outline.Slide{
		slideOf(8, map[string]outline.Value{
			"picture_description": {"mountain sunrise"},
			"image_description":   {"A sun rising over jagged peaks"},
			"caption_text":        {"a caption"},
		}),
	}}
	doc, rep := renderOutline(t, o)

	s := doc.Slides()[0]
	tf, err := s.TextFrame(1)
	if err != nil {
		t.Fatalf("TextFrame: %v", err)
	}
	if got := tf.Text(); got != "A sun rising over jagged peaks" {
		t.Errorf("fallback text = %q, want the description, not the query", got)
	}
	if tf.Paragraphs[0].Align != pptx.AlignCenter {
		t.Errorf("fallback align = %v, want center", tf.Paragraphs[0].Align)
	}
	if tf.Anchor != pptx.AnchorMiddle {
		t.Errorf("fallback anchor = %v, want middle", tf.Anchor)
	}
	run := tf.Paragraphs[0].Runs[0]
	if run.SizePt != 16 {
		t.Errorf("fallback size = %v, want body size minus 4", run.SizePt)
	}
	if run.ColorHex != "808080" {
		t.Errorf("fallback color = %q, want gray", run.ColorHex)
	}

	var status FieldStatus
	for _, f := range rep.Slides[0].Fields {
		if f.Field == "picture_description" {
			status = f.Status
		}
	}
	if status != FieldImageFallback {
		t.Errorf("picture_description status = %s, want %s", status, FieldImageFallback)
	}
	if rep.ImagesSaved != 0 {
		t.Errorf("ImagesSaved = %d, want 0", rep.ImagesSaved)
	}
}

func TestRenderImageFallbackWithoutDescription(t *testing.T) {
	o := &outline.Outline{Slides: []*outline.Slide{
		slideOf(8, map[string]outline.Value{
			"picture_description": {"mountain sunrise"},
			"caption_text":        {"a caption"},
		}),
	}}
	doc, rep := renderOutline(t, o)

	tf, err := doc.Slides()[0].TextFrame(1)
	if err != nil {
		t.Fatalf("TextFrame: %v", err)
	}
	if got := tf.Text(); got != "" {
		t.Errorf("placeholder = %q, want it left empty without a description", got)
	}

	var status FieldStatus
	for _, f := range rep.Slides[0].Fields {
		if f.Field == "picture_description" {
			status = f.Status
		}
	}
	if status != FieldFailed {
		t.Errorf("picture_description status = %s, want %s", status, FieldFailed)
	}
}

func TestRenderInsertsFetchedImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	path := filepath.Join(t.TempDir(), "pic.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	f.Close()

	stub := &stubFetcher{result: &images.Result{LocalPath: path, SourceURL: "http://example.com/p.png"}}
	o := &outline.Outline{Slides: []*outline.Slide{
		slideOf(7, map[string]outline.Value{
			"title":              {"t"},
			"caption_text":       {"cap"},
			"object_description": {"city skyline"},
		}),
	}}
	_, rep := renderOutline(t, o, WithImageFetcher(stub))

	if stub.calls != 1 {
		t.Errorf("fetcher calls = %d, want 1", stub.calls)
	}
	if rep.ImagesSaved != 1 {
		t.Errorf("ImagesSaved = %d, want 1", rep.ImagesSaved)
	}
	var status FieldStatus
	for _, fr := range rep.Slides[0].Fields {
		if fr.Field == "object_description" {
			status = fr.Status
		}
	}
	if status != FieldWritten {
		t.Errorf("object_description status = %s, want %s", status, FieldWritten)
	}
}

func TestRenderLayoutMappingOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LayoutMapping = map[string]int{"TitleSlide": 6} // Blank
	doc, err := pptx.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r := New(cfg, WithImageFetcher(&stubFetcher{err: images.ErrNoImage}))
	o := &outline.Outline{Slides: []*outline.Slide{
		slideOf(0, map[string]outline.Value{"title": {"t"}}),
	}}
	rep, err := r.Render(context.Background(), o, doc, filepath.Join(t.TempDir(), "out.pptx"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if doc.Slides()[0].Layout().Name != "Blank" {
		t.Errorf("layout = %q, want Blank", doc.Slides()[0].Layout().Name)
	}
	// the blank layout has no slots, so the title is reported lost
	if rep.Slides[0].Fields[0].Status != FieldNoPlaceholder {
		t.Errorf("title status = %s, want %s", rep.Slides[0].Fields[0].Status, FieldNoPlaceholder)
	}
}

func TestRenderOutOfRangeMappingSkipsKind(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LayoutMapping = map[string]int{"TitleOnly": 42}
	doc, err := pptx.New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r := New(cfg, WithImageFetcher(&stubFetcher{err: images.ErrNoImage}))
	o := &outline.Outline{Slides: []*outline.Slide{
		slideOf(5, map[string]outline.Value{"title": {"t"}}),
	}}
	rep, err := r.Render(context.Background(), o, doc, filepath.Join(t.TempDir(), "out.pptx"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(doc.Slides()) != 0 {
		t.Fatalf("got %d slides, want 0", len(doc.Slides()))
	}
	if !rep.Slides[0].Skipped {
		t.Error("entry not reported as skipped")
	}
}

// ---- placeholder resolution ----

func TestResolveRightContentFallsBackToSingleSlot(t *testing.T) {
	layout := &pptx.Layout{
		Name: "One Body",
		Placeholders: []pptx.Placeholder{
			{Index: 0, Role: pptx.RoleTitle},
			{Index: 1, Role: pptx.RoleBody},
		},
	}
	idx, ok := resolvePlaceholder(layout, "right_content", nil)
	if !ok {
		t.Fatal("right_content did not resolve")
	}
	if idx != 1 {
		t.Errorf("idx = %d, want 1", idx)
	}
}

func TestResolveRolePreferenceOrder(t *testing.T) {
	layout := &pptx.Layout{
		Name: "Caption",
		Placeholders: []pptx.Placeholder{
			{Index: 0, Role: pptx.RoleTitle},
			{Index: 1, Role: pptx.RoleBody},
			{Index: 2, Role: pptx.RoleObject},
		},
	}
	cases := []struct {
		field string
		want  int
	}{
		{"title", 0},
		{"caption_text", 1},
		{"object_description", 2},
		{"picture_description", 2}, // no picture role, object preferred over body
	}
	for _, tc := range cases {
		idx, ok := resolvePlaceholder(layout, tc.field, nil)
		if !ok {
			t.Errorf("%s did not resolve", tc.field)
			continue
		}
		if idx != tc.want {
			t.Errorf("%s resolved to %d, want %d", tc.field, idx, tc.want)
		}
	}
}

func TestResolveUnknownFieldAndChrome(t *testing.T) {
	layout := &pptx.Layout{
		Name: "Chrome Only",
		Placeholders: []pptx.Placeholder{
			{Index: 10, Role: pptx.RoleDate},
			{Index: 11, Role: pptx.RoleFooter},
			{Index: 12, Role: pptx.RoleSlideNumber},
		},
	}
	if _, ok := resolvePlaceholder(layout, "title", nil); ok {
		t.Error("title resolved against chrome-only inventory")
	}
	if _, ok := resolvePlaceholder(layout, "no_such_field", nil); ok {
		t.Error("unknown field resolved")
	}
}

func TestResolveCustomRuleOverride(t *testing.T) {
	layout := &pptx.Layout{
		Name: "Custom",
		Placeholders: []pptx.Placeholder{
			{Index: 0, Role: pptx.RoleTitle},
			{Index: 1, Role: pptx.RoleBody},
			{Index: 5, Role: pptx.RoleBody},
		},
	}
	rules := map[string]FieldRule{
		"title": {Roles: []pptx.Role{pptx.RoleBody}, Ordinal: 1},
	}
	idx, ok := resolvePlaceholder(layout, "title", rules)
	if !ok {
		t.Fatal("title did not resolve")
	}
	if idx != 5 {
		t.Errorf("idx = %d, want 5", idx)
	}
}

// ---- frame population ----

func TestPopulateFrameSkipsBlankValue(t *testing.T) {
	r := New(DefaultConfig(), WithImageFetcher(&stubFetcher{err: images.ErrNoImage}))
	tf := pptx.NewTextFrame()
	p := tf.AddParagraph()
	p.Runs = append(p.Runs, pptx.Run{Text: "existing"})

	r.populateFrame(tf, outline.Value{"", "   "}, textStyle{baseSizePt: 20})
	if got := tf.Text(); got != "existing" {
		t.Errorf("blank value overwrote frame: %q", got)
	}
}

func TestPopulateFrameMinFontSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IndentLevelFontSizeReductionPt = 6
	r := New(cfg, WithImageFetcher(&stubFetcher{err: images.ErrNoImage}))
	tf := pptx.NewTextFrame()

	r.populateFrame(tf, outline.Value{"          deep"}, textStyle{baseSizePt: 20, body: true})
	if got := tf.Paragraphs[0].Runs[0].SizePt; got != 10 {
		t.Errorf("size = %v, want min 10", got)
	}
	if got := tf.Paragraphs[0].Level; got != 5 {
		t.Errorf("level = %d, want capped 5", got)
	}
}

// ---- report ----

func TestReportStatusesAreStable(t *testing.T) {
	if FieldWritten != "written" || FieldSkippedEmpty != "skipped_empty" ||
		FieldNoPlaceholder != "no_placeholder" || FieldImageFallback != "image_fallback" ||
		FieldFailed != "failed" {
		t.Error("field status strings changed")
	}
}

func TestRenderReportsEmptyFields(t *testing.T) {
	o := &outline.Outline{Slides: []*outline.Slide{
		slideOf(0, map[string]outline.Value{"title": {"only a title"}}),
	}}
	_, rep := renderOutline(t, o)

	var sub FieldStatus
	for _, f := range rep.Slides[0].Fields {
		if f.Field == "subtitle" {
			sub = f.Status
		}
	}
	if sub != FieldSkippedEmpty {
		t.Errorf("subtitle status = %s, want %s", sub, FieldSkippedEmpty)
	}
}
