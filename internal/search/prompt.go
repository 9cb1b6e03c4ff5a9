package search

import (
	"fmt"
	"strings"

	"github.com/brilliance/research-service/internal/domain"
)

// Display names used when grouping papers in the prompt.
var sourceDisplayNames = map[domain.SourceType]string{
	domain.SourceArXiv:           "arXiv",
	domain.SourcePubMed:          "PubMed",
	domain.SourceOpenAlex:        "OpenAlex",
	domain.SourceSemanticScholar: "Semantic Scholar",
	domain.SourceCore:            "CORE",
}

// maxPromptSummaryLen keeps a single abstract from dominating the prompt.
const maxPromptSummaryLen = 600

// FormatPaperContext renders the selected papers as a reference block for
// the answering prompt. Papers are grouped by source and labeled with the
// scheme's markers, so the model cites them as [A1], [P2] and so on. The
// answering model is instructed to close with a REFERENCES section listing
// the markers it used.
func FormatPaperContext(scheme *MarkerScheme) string {
	var b strings.Builder

	for _, source := range scheme.Sources() {
		fmt.Fprintf(&b, "%s papers:\n", sourceDisplayNames[source])
		for i, p := range scheme.Papers(source) {
			fmt.Fprintf(&b, "[%s] %q - %s\n", scheme.Marker(source, i), p.Title, formatAuthors(p.Authors))
			if p.Journal != "" {
				fmt.Fprintf(&b, "    Journal: %s (%s)\n", p.Journal, p.Published)
			} else {
				fmt.Fprintf(&b, "    Published: %s\n", p.Published)
			}
			if p.DOI != "" {
				fmt.Fprintf(&b, "    DOI: %s\n", p.DOI)
			}
			if p.CitationCount > 0 {
				fmt.Fprintf(&b, "    Citations: %d\n", p.CitationCount)
			}
			fmt.Fprintf(&b, "    Summary: %s\n", truncate(p.Summary, maxPromptSummaryLen))
			fmt.Fprintf(&b, "    URL: %s\n", p.URL)
		}
		b.WriteByte('\n')
	}

	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}
