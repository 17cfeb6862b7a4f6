package render

// FieldStatus describes the outcome of writing one outline field.
type FieldStatus string

const (
	// FieldWritten means the field was rendered into a placeholder.
	FieldWritten FieldStatus = "written"
	// FieldSkippedEmpty means the outline carried no value for the field.
	FieldSkippedEmpty FieldStatus = "skipped_empty"
	// FieldNoPlaceholder means the layout had no slot for the field,
	// and its value was dropped.
	FieldNoPlaceholder FieldStatus = "no_placeholder"
	// FieldImageFallback means no usable image was found and the image
	// region was filled with descriptive text instead.
	FieldImageFallback FieldStatus = "image_fallback"
	// FieldFailed means rendering the field errored.
	FieldFailed FieldStatus = "failed"
)

// FieldResult records what happened to a single field of a slide.
type FieldResult struct {
	Field  string      `json:"field"`
	Status FieldStatus `json:"status"`
	Detail string      `json:"detail,omitempty"`
}

// SlideResult records the outcome of one outline entry.
type SlideResult struct {
	// OutlineIndex is the entry's position in the outline, counting
	// entries that were skipped.
	OutlineIndex int `json:"outline_index"`
	// SlideNumber is the 1-based position in the saved deck, 0 when the
	// entry was skipped.
	SlideNumber int           `json:"slide_number"`
	Layout      string        `json:"layout"`
	Skipped     bool          `json:"skipped"`
	Reason      string        `json:"reason,omitempty"`
	Fields      []FieldResult `json:"fields,omitempty"`
}

// Report summarizes a render run.
type Report struct {
	OutputPath  string        `json:"output_path"`
	SlideCount  int           `json:"slide_count"`
	Slides      []SlideResult `json:"slides"`
	ImagesSaved int           `json:"images_saved"`
}

func (r *Report) addField(sr *SlideResult, field string, status FieldStatus, detail string) {
	sr.Fields = append(sr.Fields, FieldResult{Field: field, Status: status, Detail: detail})
}
