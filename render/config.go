// Package render turns a validated slide outline into a saved PowerPoint
// document. It owns layout resolution, placeholder matching, text frame
// population and picture insertion.
package render

import (
	"fmt"
	"strings"

	"github.com/genslides/genslides/pptx"
)

// Config is the flat set of rendering options. It is built once per render
// run and never mutated afterwards.
type Config struct {
	DefaultFontName     string `json:"default_font_name" yaml:"default_font_name"`
	DefaultFontColorRGB string `json:"default_font_color_rgb" yaml:"default_font_color_rgb"`

	DefaultTitleFontSizePt    float64 `json:"default_title_font_size_pt" yaml:"default_title_font_size_pt"`
	DefaultBodyFontSizePt     float64 `json:"default_body_font_size_pt" yaml:"default_body_font_size_pt"`
	DefaultSubtitleFontSizePt float64 `json:"default_subtitle_font_size_pt" yaml:"default_subtitle_font_size_pt"`
	DefaultCaptionFontSizePt  float64 `json:"default_caption_font_size_pt" yaml:"default_caption_font_size_pt"`
	DefaultNotesFontSizePt    float64 `json:"default_notes_font_size_pt" yaml:"default_notes_font_size_pt"`

	// MasterBackgroundColorRGB, when set, overrides the slide master
	// background with a solid fill.
	MasterBackgroundColorRGB string `json:"master_background_color_rgb" yaml:"master_background_color_rgb"`

	// Alignments maps "layout_<N>_<field>" keys to LEFT, CENTER, RIGHT,
	// JUSTIFY or DISTRIBUTE, overriding the built-in defaults.
	Alignments map[string]string `json:"alignments" yaml:"alignments"`

	// Anchors maps "layout_<N>_<field>" keys to TOP, MIDDLE or BOTTOM,
	// overriding the built-in defaults.
	Anchors map[string]string `json:"anchors" yaml:"anchors"`

	// DefaultVerticalAnchor is TOP, MIDDLE or BOTTOM.
	DefaultVerticalAnchor string `json:"default_vertical_anchor" yaml:"default_vertical_anchor"`

	EnableDynamicBodyFontSize     bool    `json:"enable_dynamic_body_font_size" yaml:"enable_dynamic_body_font_size"`
	SmallerContentFontSizePt      float64 `json:"smaller_content_font_size_pt" yaml:"smaller_content_font_size_pt"`
	DynamicSizeItemCountThreshold int     `json:"dynamic_size_item_count_threshold" yaml:"dynamic_size_item_count_threshold"`
	DynamicSizeCharCountThreshold int     `json:"dynamic_size_char_count_threshold" yaml:"dynamic_size_char_count_threshold"`

	IndentLevelFontSizeReductionPt float64 `json:"indent_level_font_size_reduction_pt" yaml:"indent_level_font_size_reduction_pt"`
	MinFontSizePt                  float64 `json:"min_font_size_pt" yaml:"min_font_size_pt"`

	// LayoutMapping maps layout kind names (e.g. "Comparison") to template
	// layout indices, overriding the identity mapping onto the default deck.
	LayoutMapping map[string]int `json:"layout_mapping" yaml:"layout_mapping"`

	// FieldRules overrides placeholder resolution per field name.
	FieldRules map[string]FieldRule `json:"-" yaml:"-"`
}

// DefaultConfig returns the standard option set.
func DefaultConfig() Config {
	return Config{
		DefaultFontName:                "Calibri",
		DefaultFontColorRGB:            "000000",
		DefaultTitleFontSizePt:         36,
		DefaultBodyFontSizePt:          20,
		DefaultSubtitleFontSizePt:      24,
		DefaultCaptionFontSizePt:       14,
		DefaultNotesFontSizePt:         10,
		DefaultVerticalAnchor:          "TOP",
		EnableDynamicBodyFontSize:      true,
		SmallerContentFontSizePt:       16,
		DynamicSizeItemCountThreshold:  6,
		DynamicSizeCharCountThreshold:  400,
		IndentLevelFontSizeReductionPt: 2,
		MinFontSizePt:                  10,
	}
}

// alignmentFor resolves the paragraph alignment for a layout/field pair:
// an explicit "layout_<N>_<field>" entry wins, then the built-in defaults
// (titles centered on the title slide and title-only layouts, subtitle
// centered on the title slide, everything else left).
func (c *Config) alignmentFor(layoutIdx int, field string) pptx.Align {
	switch {
	case layoutIdx == 0 && (field == "title" || field == "subtitle"):
		return c.alignmentOr(layoutIdx, field, pptx.AlignCenter)
	case layoutIdx == 5 && field == "title":
		return c.alignmentOr(layoutIdx, field, pptx.AlignCenter)
	default:
		return c.alignmentOr(layoutIdx, field, pptx.AlignLeft)
	}
}

// alignmentOr is alignmentFor with the built-in default supplied by the
// caller, for fields whose default depends on how they are placed.
func (c *Config) alignmentOr(layoutIdx int, field string, def pptx.Align) pptx.Align {
	if c.Alignments != nil {
		if v, ok := c.Alignments[fmt.Sprintf("layout_%d_%s", layoutIdx, field)]; ok {
			return parseAlign(v)
		}
	}
	return def
}

func parseAlign(s string) pptx.Align {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CENTER":
		return pptx.AlignCenter
	case "RIGHT":
		return pptx.AlignRight
	case "JUSTIFY":
		return pptx.AlignJustify
	case "DISTRIBUTE":
		return pptx.AlignDistribute
	default:
		return pptx.AlignLeft
	}
}

// anchorFor resolves the vertical anchor for a layout/field pair: an
// explicit "layout_<N>_<field>" entry wins, then the built-in defaults
// (titles middle-anchored on the title slide and title-only layouts,
// everything else on DefaultVerticalAnchor).
func (c *Config) anchorFor(layoutIdx int, field string) pptx.Anchor {
	if c.Anchors != nil {
		if v, ok := c.Anchors[fmt.Sprintf("layout_%d_%s", layoutIdx, field)]; ok {
			return parseAnchor(v, c.anchor())
		}
	}
	if field == "title" && (layoutIdx == 0 || layoutIdx == 5) {
		return pptx.AnchorMiddle
	}
	return c.anchor()
}

func (c *Config) anchor() pptx.Anchor {
	return parseAnchor(c.DefaultVerticalAnchor, pptx.AnchorTop)
}

func parseAnchor(s string, fallback pptx.Anchor) pptx.Anchor {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TOP":
		return pptx.AnchorTop
	case "MIDDLE":
		return pptx.AnchorMiddle
	case "BOTTOM":
		return pptx.AnchorBottom
	default:
		return fallback
	}
}
