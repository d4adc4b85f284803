package transcribe

import (
	"fmt"
	"regexp"
	"strings"
)

// pageInstructions is the OCR contract sent with every page image. The
// model must transcribe in strict reading order and return one fenced
// markdown block; anything else counts as a failed attempt.
const pageInstructions = "Your task is to extract **all** visible text exactly as it appears, in strict top-left to bottom-right reading order. " +
	"Do **not** reorder or relocate headings, paragraphs, or tables—wherever something appears on the page, it must remain in that exact position in your output. " +
	"Do **not** fix, skip, or summarize any text; preserve the exact wording, numbering, and spacing.\n\n" +
	"# Markdown Formatting Rules\n" +
	"1. **Headings**: Use standard Markdown syntax (#, ##, ###, etc.) for headings. If the heading appears in the middle of the page, keep it there—do not move it to the top.\n" +
	"2. **Tables**: Use standard Markdown table syntax (rows/columns with pipes and dashes). If the text in a cell spans multiple lines in the image, replace line breaks with '<br>' within the same cell.\n" +
	"3. **References**: If you see references like 'Offset address' or 'Reset value,' or any other labels/annotations, include them exactly where they appear.\n" +
	"4. **Footnotes**: The only text you may ignore is a small footnote at the bottom margin that typically contains a URL and a page number. Everything else on the page must be transcribed.\n\n" +
	"# Output Requirements\n" +
	"- Return the transcribed text as a single Markdown block enclosed in triple backticks (```markdown ... ```). " +
	"- Do **not** add extra commentary, interpretation, or summary—only the transcribed text in the correct order.\n\n" +
	"Again, keep the **exact** sequence from top-left to bottom-right, including all headings, paragraphs, tables, and references in their original positions."

// buildPrompt prefixes the instructions with the page being shown.
func buildPrompt(page int) string {
	return fmt.Sprintf("You are looking at page %d of my PDF. %s", page, pageInstructions)
}

var fencedBlock = regexp.MustCompile("```(?:markdown)?\\s*([\\s\\S]*?)\\s*```")

// extractMarkdown pulls the content of the first fenced markdown block
// out of a model response. Returns "" when no block is present.
func extractMarkdown(response string) string {
	m := fencedBlock.FindStringSubmatch(response)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
