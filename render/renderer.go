package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/genslides/genslides/images"
	"github.com/genslides/genslides/outline"
	"github.com/genslides/genslides/pptx"
	"github.com/genslides/genslides/richtext"
)

// fallbackTextColorRGB is the font color for image_description text written
// in place of an image that could not be acquired.
const fallbackTextColorRGB = "808080"

// ImageFetcher acquires an image for a search query and saves it under
// saveDir. images.Fetcher satisfies it; tests substitute stubs.
type ImageFetcher interface {
	Fetch(ctx context.Context, query, saveDir string) (*images.Result, error)
}

// Renderer renders outlines into a pptx document.
type Renderer struct {
	cfg      Config
	fetcher  ImageFetcher
	imageDir string
	rules    map[string]FieldRule
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithImageFetcher replaces the default web image pipeline.
func WithImageFetcher(f ImageFetcher) Option {
	return func(r *Renderer) { r.fetcher = f }
}

// WithImageDir sets the directory downloaded images are saved to.
func WithImageDir(dir string) Option {
	return func(r *Renderer) { r.imageDir = dir }
}

// New returns a renderer for the given option set.
func New(cfg Config, opts ...Option) *Renderer {
	r := &Renderer{
		cfg:      cfg,
		imageDir: "images",
		rules:    cfg.FieldRules,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.fetcher == nil {
		r.fetcher = images.NewFetcher()
	}
	return r
}

// Render adds one slide per renderable outline entry to doc and saves the
// result to outPath. Entries with recorded schema problems are skipped and
// reported; a save failure is the only fatal error.
func (r *Renderer) Render(ctx context.Context, o *outline.Outline, doc *pptx.Document, outPath string) (*Report, error) {
	if r.cfg.MasterBackgroundColorRGB != "" {
		doc.SetMasterBackground(r.cfg.MasterBackgroundColorRGB)
	}
	catalog := r.layoutCatalog(doc)

	report := &Report{OutputPath: outPath}
	for i, sl := range o.Slides {
		sr := SlideResult{OutlineIndex: i}
		switch {
		case sl.Problem != "":
			sr.Skipped = true
			sr.Reason = sl.Problem
			slog.Warn("skipping outline entry", "index", i, "reason", sl.Problem)
		default:
			kind, _ := outline.KindFromIndex(sl.LayoutIdx)
			layout, ok := catalog[kind]
			if !ok {
				sr.Skipped = true
				sr.Reason = fmt.Sprintf("no template layout mapped for %s", kind)
				slog.Warn("skipping outline entry", "index", i, "reason", sr.Reason)
				break
			}
			sr.Layout = kind.String()
			slide := doc.AddSlide(layout)
			sr.SlideNumber = len(doc.Slides())
			r.renderSlide(ctx, slide, sl, kind, &sr, report)
		}
		report.Slides = append(report.Slides, sr)
	}
	report.SlideCount = len(doc.Slides())

	if err := doc.Save(outPath); err != nil {
		return report, fmt.Errorf("render: saving presentation: %w", err)
	}
	slog.Info("presentation saved", "path", outPath, "slides", report.SlideCount, "images", report.ImagesSaved)
	return report, nil
}

// layoutCatalog maps each slide kind to a template layout: the configured
// mapping when present, otherwise the kind's own index. Kinds that map out
// of range are dropped with a warning and their slides skipped later.
func (r *Renderer) layoutCatalog(doc *pptx.Document) map[outline.Kind]*pptx.Layout {
	layouts := doc.Layouts()
	catalog := make(map[outline.Kind]*pptx.Layout, int(outline.PictureWithCaption)+1)
	for k := outline.TitleSlide; k <= outline.PictureWithCaption; k++ {
		idx := int(k)
		if r.cfg.LayoutMapping != nil {
			if mapped, ok := r.cfg.LayoutMapping[k.String()]; ok {
				idx = mapped
			}
		}
		if idx < 0 || idx >= len(layouts) {
			slog.Warn("layout mapping out of range", "kind", k.String(), "index", idx, "layouts", len(layouts))
			continue
		}
		catalog[k] = layouts[idx]
	}
	return catalog
}

func (r *Renderer) renderSlide(ctx context.Context, slide *pptx.Slide, sl *outline.Slide, kind outline.Kind, sr *SlideResult, rep *Report) {
	switch kind {
	case outline.TitleSlide:
		r.writeText(slide, sl, kind, "title", r.cfg.DefaultTitleFontSizePt, false, sr, rep)
		r.writeText(slide, sl, kind, "subtitle", r.cfg.DefaultSubtitleFontSizePt, false, sr, rep)
	case outline.TitleAndContent:
		r.writeText(slide, sl, kind, "title", r.cfg.DefaultTitleFontSizePt, false, sr, rep)
		r.writeText(slide, sl, kind, "content", r.cfg.DefaultBodyFontSizePt, true, sr, rep)
	case outline.SectionHeader:
		r.writeText(slide, sl, kind, "section_title", r.cfg.DefaultTitleFontSizePt, false, sr, rep)
		r.writeText(slide, sl, kind, "section_description", r.cfg.DefaultBodyFontSizePt, true, sr, rep)
	case outline.TwoContent:
		r.writeText(slide, sl, kind, "title", r.cfg.DefaultTitleFontSizePt, false, sr, rep)
		r.writeText(slide, sl, kind, "left_content", r.cfg.DefaultBodyFontSizePt, true, sr, rep)
		r.writeText(slide, sl, kind, "right_content", r.cfg.DefaultBodyFontSizePt, true, sr, rep)
	case outline.Comparison:
		r.renderComparison(slide, sl, kind, sr, rep)
	case outline.TitleOnly:
		r.writeText(slide, sl, kind, "title", r.cfg.DefaultTitleFontSizePt, false, sr, rep)
	case outline.Blank:
		// nothing to place
	case outline.ContentWithCaption:
		r.writeText(slide, sl, kind, "title", r.cfg.DefaultTitleFontSizePt, false, sr, rep)
		r.writeText(slide, sl, kind, "caption_text", r.cfg.DefaultCaptionFontSizePt, false, sr, rep)
		r.placeImage(ctx, slide, sl, kind, "object_description", sr, rep)
	case outline.PictureWithCaption:
		r.renderPictureWithCaption(ctx, slide, sl, kind, sr, rep)
	}

	if strings.TrimSpace(sl.Notes) != "" {
		notes := pptx.NewTextFrame()
		r.populateFrame(notes, outline.Value(strings.Split(sl.Notes, "\n")), textStyle{
			baseSizePt: r.cfg.DefaultNotesFontSizePt,
			align:      pptx.AlignLeft,
		})
		slide.SetNotes(notes)
	}
}

// renderComparison applies the two-slot merge policy: with at least four
// content placeholders the headers get their own slots, otherwise each
// header is prepended in bold as the first line of its side's content.
func (r *Renderer) renderComparison(slide *pptx.Slide, sl *outline.Slide, kind outline.Kind, sr *SlideResult, rep *Report) {
	r.writeText(slide, sl, kind, "title", r.cfg.DefaultTitleFontSizePt, false, sr, rep)

	candidates := placeholdersByRole(slide.Layout(), pptx.RoleBody)
	if len(candidates) == 0 {
		candidates = placeholdersByRole(slide.Layout(), pptx.RoleObject)
	}
	if len(candidates) >= 4 {
		slots := map[string]int{
			"left_heading":             candidates[0],
			"left_comparison_content":  candidates[1],
			"right_heading":            candidates[2],
			"right_comparison_content": candidates[3],
		}
		for _, field := range []string{"left_heading", "left_comparison_content", "right_heading", "right_comparison_content"} {
			if strings.HasSuffix(field, "heading") {
				r.writeHeadingAt(slide, sl, kind, field, slots[field], sr, rep)
				continue
			}
			r.writeTextAt(slide, sl, kind, field, slots[field], r.cfg.DefaultBodyFontSizePt, true, sr, rep)
		}
		return
	}

	r.writeMergedSide(slide, sl, kind, "left_heading", "left_comparison_content", sr, rep)
	r.writeMergedSide(slide, sl, kind, "right_heading", "right_comparison_content", sr, rep)
}

// writeHeadingAt writes a comparison header into its dedicated slot, bolded
// and centered so it reads the same as the merged single-slot form.
func (r *Renderer) writeHeadingAt(slide *pptx.Slide, sl *outline.Slide, kind outline.Kind, field string, idx int, sr *SlideResult, rep *Report) {
	value, ok := sl.Field(field)
	if !ok || value.Empty() {
		rep.addField(sr, field, FieldSkippedEmpty, "")
		return
	}
	tf, err := slide.TextFrame(idx)
	if err != nil {
		rep.addField(sr, field, FieldFailed, err.Error())
		return
	}
	wrapped := outline.Value{"**" + strings.TrimSpace(value.Scalar()) + "**"}
	r.populateFrame(tf, wrapped, textStyle{
		baseSizePt: r.cfg.DefaultBodyFontSizePt,
		align:      r.cfg.alignmentOr(int(kind), field, pptx.AlignCenter),
		anchor:     r.cfg.anchorFor(int(kind), field),
	})
	rep.addField(sr, field, FieldWritten, "")
}

// writeMergedSide combines a comparison side's header and content into the
// content placeholder, the header wrapped in bold markers as the first line.
func (r *Renderer) writeMergedSide(slide *pptx.Slide, sl *outline.Slide, kind outline.Kind, headerField, contentField string, sr *SlideResult, rep *Report) {
	content, _ := sl.Field(contentField)
	merged := content
	if header, ok := sl.Field(headerField); ok && !header.Empty() {
		line := "**" + strings.TrimSpace(header.Scalar()) + "**"
		merged = append(outline.Value{line}, content...)
	}
	if merged.Empty() {
		rep.addField(sr, contentField, FieldSkippedEmpty, "")
		return
	}
	idx, ok := resolvePlaceholder(slide.Layout(), contentField, r.rules)
	if !ok {
		slog.Warn("no placeholder for field", "layout", slide.Layout().Name, "field", contentField)
		rep.addField(sr, contentField, FieldNoPlaceholder, "")
		return
	}
	tf, err := slide.TextFrame(idx)
	if err != nil {
		rep.addField(sr, contentField, FieldFailed, err.Error())
		return
	}
	r.populateFrame(tf, merged, textStyle{
		baseSizePt: r.cfg.DefaultBodyFontSizePt,
		align:      r.cfg.alignmentFor(int(kind), contentField),
		anchor:     r.cfg.anchorFor(int(kind), contentField),
		body:       true,
	})
	rep.addField(sr, contentField, FieldWritten, "")
}

func (r *Renderer) renderPictureWithCaption(ctx context.Context, slide *pptx.Slide, sl *outline.Slide, kind outline.Kind, sr *SlideResult, rep *Report) {
	r.writeText(slide, sl, kind, "caption_text", r.cfg.DefaultCaptionFontSizePt, false, sr, rep)

	if path, ok := sl.Field("image_path"); ok && !path.Empty() {
		local := strings.TrimSpace(path.Scalar())
		if _, err := os.Stat(local); err == nil {
			r.insertLocalImage(slide, "image_path", local, sr, rep)
			return
		}
		slog.Warn("image_path not readable, falling back to search", "path", local)
	}
	r.placeImage(ctx, slide, sl, kind, "picture_description", sr, rep)
}

// writeText renders one outline field into the placeholder its rule
// resolves to. Absent or blank values are recorded and skipped.
func (r *Renderer) writeText(slide *pptx.Slide, sl *outline.Slide, kind outline.Kind, field string, sizePt float64, body bool, sr *SlideResult, rep *Report) {
	value, ok := sl.Field(field)
	if !ok || value.Empty() {
		rep.addField(sr, field, FieldSkippedEmpty, "")
		return
	}
	idx, ok := resolvePlaceholder(slide.Layout(), field, r.rules)
	if !ok {
		slog.Warn("no placeholder for field", "layout", slide.Layout().Name, "field", field)
		rep.addField(sr, field, FieldNoPlaceholder, "")
		return
	}
	r.writeValueAt(slide, kind, field, idx, value, sizePt, body, sr, rep)
}

// writeTextAt is writeText with placeholder resolution bypassed, for callers
// that already picked the slot.
func (r *Renderer) writeTextAt(slide *pptx.Slide, sl *outline.Slide, kind outline.Kind, field string, idx int, sizePt float64, body bool, sr *SlideResult, rep *Report) {
	value, ok := sl.Field(field)
	if !ok || value.Empty() {
		rep.addField(sr, field, FieldSkippedEmpty, "")
		return
	}
	r.writeValueAt(slide, kind, field, idx, value, sizePt, body, sr, rep)
}

func (r *Renderer) writeValueAt(slide *pptx.Slide, kind outline.Kind, field string, idx int, value outline.Value, sizePt float64, body bool, sr *SlideResult, rep *Report) {
	tf, err := slide.TextFrame(idx)
	if err != nil {
		rep.addField(sr, field, FieldFailed, err.Error())
		return
	}
	r.populateFrame(tf, value, textStyle{
		baseSizePt: sizePt,
		align:      r.cfg.alignmentFor(int(kind), field),
		anchor:     r.cfg.anchorFor(int(kind), field),
		body:       body,
	})
	rep.addField(sr, field, FieldWritten, "")
}

// placeImage fetches an image for the field's query and inserts it into the
// resolved placeholder. When acquisition fails the slide's image_description
// text, if any, is written into the same placeholder instead, small and gray
// so it reads as a stand-in rather than content.
func (r *Renderer) placeImage(ctx context.Context, slide *pptx.Slide, sl *outline.Slide, kind outline.Kind, field string, sr *SlideResult, rep *Report) {
	value, ok := sl.Field(field)
	if !ok || value.Empty() {
		rep.addField(sr, field, FieldSkippedEmpty, "")
		return
	}
	idx, ok := resolvePlaceholder(slide.Layout(), field, r.rules)
	if !ok {
		slog.Warn("no placeholder for field", "layout", slide.Layout().Name, "field", field)
		rep.addField(sr, field, FieldNoPlaceholder, "")
		return
	}

	query := strings.TrimSpace(richtext.Strip(value.Scalar()))
	res, err := r.fetcher.Fetch(ctx, query, r.imageDir)
	if err != nil {
		desc, ok := sl.Field("image_description")
		if !ok || desc.Empty() {
			slog.Warn("image acquisition failed, no description fallback", "query", query, "error", err)
			rep.addField(sr, field, FieldFailed, err.Error())
			return
		}
		slog.Warn("image acquisition failed, using description fallback", "query", query, "error", err)
		tf, ferr := slide.TextFrame(idx)
		if ferr != nil {
			rep.addField(sr, field, FieldFailed, ferr.Error())
			return
		}
		r.populateFrame(tf, desc, textStyle{
			baseSizePt: r.cfg.DefaultBodyFontSizePt - 4,
			align:      pptx.AlignCenter,
			anchor:     pptx.AnchorMiddle,
			colorHex:   fallbackTextColorRGB,
		})
		rep.addField(sr, field, FieldImageFallback, err.Error())
		return
	}

	if err := slide.InsertPicture(idx, res.LocalPath); err != nil {
		rep.addField(sr, field, FieldFailed, err.Error())
		return
	}
	rep.ImagesSaved++
	rep.addField(sr, field, FieldWritten, res.LocalPath)
}

func (r *Renderer) insertLocalImage(slide *pptx.Slide, field, path string, sr *SlideResult, rep *Report) {
	idx, ok := resolvePlaceholder(slide.Layout(), "picture_description", r.rules)
	if !ok {
		rep.addField(sr, field, FieldNoPlaceholder, "")
		return
	}
	if err := slide.InsertPicture(idx, path); err != nil {
		rep.addField(sr, field, FieldFailed, err.Error())
		return
	}
	rep.addField(sr, field, FieldWritten, path)
}
