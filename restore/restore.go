// Package restore reconstructs a coherent Markdown document from the
// page-by-page transcription of a scanned technical manual. The raw
// input is the concatenation of per-page OCR output, each page behind a
// "# Page N" marker, with headings split across lines, tables broken at
// page boundaries, and table rows mangled by the transcriber.
//
// The pipeline runs seven passes in a fixed order: block segmentation,
// split-heading unification, multi-page table merging, page-marker
// stripping and reassembly, heading level normalization, orphaned
// bitfield row repair, and multiline cell folding. Each pass consumes
// the complete output of the previous one; a single Process call is a
// pure function of its input.
package restore

import "strings"

// Options configures the parts of the pipeline whose behavior is not
// fixed by the input dialect.
type Options struct {
	// BlankLinesContinueTables makes the cell folder treat a blank line
	// inside a table as a continuation when table rows resume past it,
	// instead of closing the table at the blank.
	BlankLinesContinueTables bool
}

// Pipeline is the structural recovery pipeline. A Pipeline is built
// once, owns all its compiled patterns, and is safe for concurrent use:
// stages keep no mutable state between Process calls.
type Pipeline struct {
	classify   *classifier
	unifier    *headingUnifier
	merger     *tableMerger
	normalizer *headingNormalizer
	escaper    *strings.Replacer
	bitfields  *bitfieldRepairer
	cells      *cellFolder
}

// New returns a Pipeline with the given options.
func New(opts Options) *Pipeline {
	return &Pipeline{
		classify:   newClassifier(),
		unifier:    newHeadingUnifier(),
		merger:     newTableMerger(),
		normalizer: newHeadingNormalizer(),
		escaper:    strings.NewReplacer("<s>", "{s}", "<S>", "{S}"),
		bitfields:  newBitfieldRepairer(),
		cells:      newCellFolder(opts.BlankLinesContinueTables),
	}
}

// Process runs the full pipeline over one document's raw transcription
// and returns the cleaned Markdown. It never fails: malformed lines are
// classified and normalized on a best-effort basis, not rejected.
func (p *Pipeline) Process(raw string) string {
	blocks := p.segment(raw)
	blocks = p.unifier.apply(blocks)
	blocks = p.merger.apply(blocks)
	text := p.reassemble(blocks)
	text = p.normalizer.apply(text)
	text = p.escaper.Replace(text)
	text = p.bitfields.apply(text)
	text = p.cells.apply(text)
	return text
}
