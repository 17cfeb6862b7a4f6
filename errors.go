package genslides

import "errors"

var (
	// ErrDocumentNotFound is returned when a document path has never been
	// processed.
	ErrDocumentNotFound = errors.New("genslides: document not found")

	// ErrUnsupportedFormat is returned for unrecognized input file formats.
	ErrUnsupportedFormat = errors.New("genslides: unsupported document format")

	// ErrParsingFailed is returned when document parsing fails.
	ErrParsingFailed = errors.New("genslides: parsing failed")

	// ErrOutlineFailed is returned when the outline producer fails or
	// returns unusable output.
	ErrOutlineFailed = errors.New("genslides: outline generation failed")

	// ErrRenderFailed is returned when the presentation cannot be rendered
	// or saved.
	ErrRenderFailed = errors.New("genslides: rendering failed")

	// ErrUnknownTheme is returned when a requested theme is not configured.
	ErrUnknownTheme = errors.New("genslides: unknown theme")

	// ErrInvalidConfig is returned for invalid configuration values.
	ErrInvalidConfig = errors.New("genslides: invalid configuration")
)
