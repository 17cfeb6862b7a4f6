package genslides

import (
	"context"
	"fmt"
	"strings"

	"github.com/genslides/genslides/llm"
)

// outlineSystemPrompt instructs the model to emit the slide outline JSON the
// renderer consumes. The schema here must stay in sync with outline.Parse.
const outlineSystemPrompt = `You are a presentation designer. Given a document, produce a slide outline as a single JSON object:

{"slides": [{"layout_idx": <int>, ...fields..., "notes": "<optional speaker notes>"}, ...]}

Layouts and their fields:
0 TitleSlide: "title", "subtitle"
1 TitleAndContent: "title", "content" (string or list of bullet strings)
2 SectionHeader: "section_title", "section_description"
3 TwoContent: "title", "left_content", "right_content"
4 Comparison: "title", "left_heading", "right_heading", "left_comparison_content", "right_comparison_content"
5 TitleOnly: "title"
6 Blank: no fields
7 ContentWithCaption: "title", "caption_text", "object_description" (a short image search query)
8 PictureWithCaption: "picture_description" (a short image search query), "caption_text"
Layouts 7 and 8 may also carry "image_description", a one-sentence description shown if no image can be found.

Rules:
- Start with one TitleSlide and cover the whole document in 8 to 15 slides.
- Use **bold**, *italic* and <u>underline</u> markers for emphasis.
- Indent sub-bullets with two leading spaces per level.
- Keep bullets short. Respond with JSON only.`

// chatProducer turns document text into outline JSON via a chat provider.
type chatProducer struct {
	provider llm.Provider
	model    string
}

func (p *chatProducer) Produce(ctx context.Context, documentText string) (string, error) {
	resp, err := p.provider.Chat(ctx, llm.ChatRequest{
		Model: p.model,
		Messages: []llm.Message{
			{Role: "system", Content: outlineSystemPrompt},
			{Role: "user", Content: "Create the slide outline for this document:\n\n" + documentText},
		},
		Temperature:    0.3,
		ResponseFormat: "json_object",
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if strings.TrimSpace(resp.Content) == "" {
		return "", fmt.Errorf("empty completion from model %s", resp.Model)
	}
	return resp.Content, nil
}
