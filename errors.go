package mdmend

import "errors"

var (
	// ErrPDFNotFound is returned when the input PDF path does not exist.
	ErrPDFNotFound = errors.New("mdmend: pdf not found")

	// ErrNoPages is returned when rasterization yields no page images.
	ErrNoPages = errors.New("mdmend: pdf has no pages")

	// ErrRasterizeFailed is returned when pdftocairo fails.
	ErrRasterizeFailed = errors.New("mdmend: rasterization failed")

	// ErrTranscriptionFailed is returned when transcription aborts
	// (as opposed to individual pages failing, which are marked inline).
	ErrTranscriptionFailed = errors.New("mdmend: transcription failed")

	// ErrEmptyInput is returned when a restore is requested on empty input.
	ErrEmptyInput = errors.New("mdmend: input document is empty")

	// ErrNoTables is returned when a table export finds no tables.
	ErrNoTables = errors.New("mdmend: no tables found in document")

	// ErrInvalidConfig is returned for invalid configuration values.
	ErrInvalidConfig = errors.New("mdmend: invalid configuration")
)
