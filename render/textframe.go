package render

import (
	"strings"

	"github.com/genslides/genslides/outline"
	"github.com/genslides/genslides/pptx"
	"github.com/genslides/genslides/richtext"
)

// textStyle carries the per-field typography a frame is populated with.
type textStyle struct {
	baseSizePt float64
	align      pptx.Align
	anchor     pptx.Anchor
	// colorHex overrides the configured default font color when set.
	colorHex string
	// body frames are subject to dynamic downsizing, titles and captions
	// are not.
	body bool
}

// populateFrame clears the frame and writes the field value into it, one
// paragraph per line, with markers parsed into styled runs and leading
// indentation mapped to outline levels. An empty value leaves the frame
// untouched.
func (r *Renderer) populateFrame(tf *pptx.TextFrame, value outline.Value, style textStyle) {
	lines := nonBlankLines(value)
	if len(lines) == 0 {
		return
	}

	tf.Clear()
	tf.WordWrap = true
	tf.Anchor = style.anchor

	color := style.colorHex
	if color == "" {
		color = r.cfg.DefaultFontColorRGB
	}

	base := style.baseSizePt
	if style.body && r.shouldShrink(base, lines) {
		base = r.cfg.SmallerContentFontSizePt
	}

	for _, line := range lines {
		level, text := richtext.Indent(line)
		size := base - float64(level)*r.cfg.IndentLevelFontSizeReductionPt
		if size < r.cfg.MinFontSizePt {
			size = r.cfg.MinFontSizePt
		}
		p := tf.AddParagraph()
		p.Level = level
		p.Align = style.align
		for _, run := range richtext.Parse(text) {
			p.Runs = append(p.Runs, pptx.Run{
				Text:      run.Text,
				Bold:      run.Bold,
				Italic:    run.Italic,
				Underline: run.Underline,
				SizePt:    size,
				Font:      r.cfg.DefaultFontName,
				ColorHex:  color,
			})
		}
	}
}

// shouldShrink reports whether a body frame's content is dense enough to
// drop to the smaller content size. Fields already styled away from the
// default body size keep their explicit size.
func (r *Renderer) shouldShrink(baseSizePt float64, lines []string) bool {
	if !r.cfg.EnableDynamicBodyFontSize || baseSizePt != r.cfg.DefaultBodyFontSizePt {
		return false
	}
	if len(lines) > r.cfg.DynamicSizeItemCountThreshold {
		return true
	}
	chars := 0
	for _, line := range lines {
		chars += len(richtext.Strip(strings.TrimSpace(line)))
	}
	return chars > r.cfg.DynamicSizeCharCountThreshold
}

// nonBlankLines flattens a field value to its renderable lines. Scalar
// values are split on newlines so multi-line strings behave like lists.
func nonBlankLines(value outline.Value) []string {
	var lines []string
	for _, item := range value {
		for _, line := range strings.Split(item, "\n") {
			if strings.TrimSpace(line) != "" {
				lines = append(lines, line)
			}
		}
	}
	return lines
}
