package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// SourceType identifies the academic source a paper was retrieved from.
type SourceType string

// Supported source types.
const (
	SourceArXiv           SourceType = "arxiv"
	SourcePubMed          SourceType = "pubmed"
	SourceOpenAlex        SourceType = "openalex"
	SourceUnpaywall       SourceType = "unpaywall"
	SourceCore            SourceType = "core"
	SourceSemanticScholar SourceType = "semanticscholar"
)

// AllSourceTypes lists every supported source in canonical order.
var AllSourceTypes = []SourceType{
	SourceArXiv,
	SourcePubMed,
	SourceOpenAlex,
	SourceSemanticScholar,
	SourceCore,
	SourceUnpaywall,
}

// String returns the source type as a string.
func (s SourceType) String() string {
	return string(s)
}

// Valid reports whether the source type is one of the supported sources.
func (s SourceType) Valid() bool {
	switch s {
	case SourceArXiv, SourcePubMed, SourceOpenAlex, SourceUnpaywall, SourceCore, SourceSemanticScholar:
		return true
	}
	return false
}

// Placeholder values used when a source omits a field.
const (
	DefaultTitle     = "Untitled"
	DefaultSummary   = "No abstract available"
	DefaultAuthor    = "Unknown Author"
	DefaultPublished = "Unknown date"
	DefaultJournal   = "Unknown Journal/Source"
)

// Paper represents an academic paper retrieved from one of the sources.
//
// Title, Summary, URL, Authors, Published and Source are always populated
// (with placeholder values when the source omits them); the remaining fields
// depend on what the source provides.
type Paper struct {
	Title     string     `json:"title"`
	Summary   string     `json:"summary"`
	URL       string     `json:"url"`
	Authors   []string   `json:"authors"`
	Published string     `json:"published"`
	Source    SourceType `json:"source"`
	Journal   string     `json:"journal,omitempty"`

	DOI            string `json:"doi,omitempty"`
	CitationCount  int    `json:"citationCount,omitempty"`
	InfluenceScore int    `json:"influenceScore,omitempty"`
	OpenAccess     bool   `json:"openAccess,omitempty"`
	PDFURL         string `json:"pdfUrl,omitempty"`
	DownloadURL    string `json:"downloadUrl,omitempty"`
	RepositoryName string `json:"repositoryName,omitempty"`
	PaperID        string `json:"paperId,omitempty"`
	PMID           string `json:"pmid,omitempty"`
}

// ApplyDefaults fills placeholder values for the mandatory fields and derives
// the URL from the DOI when the source gave neither.
func (p *Paper) ApplyDefaults() {
	if strings.TrimSpace(p.Title) == "" {
		p.Title = DefaultTitle
	}
	if strings.TrimSpace(p.Summary) == "" {
		p.Summary = DefaultSummary
	}
	if len(p.Authors) == 0 {
		p.Authors = []string{DefaultAuthor}
	}
	if strings.TrimSpace(p.Published) == "" {
		p.Published = DefaultPublished
	}
	if p.URL == "" && p.DOI != "" {
		p.URL = "https://doi.org/" + NormalizeDOI(p.DOI)
	}
}

var yearRe = regexp.MustCompile(`\b(1[89]\d{2}|20\d{2})\b`)

// Year extracts a four-digit publication year from the Published field.
// It returns 0 when no year can be found.
func (p *Paper) Year() int {
	m := yearRe.FindString(p.Published)
	if m == "" {
		return 0
	}
	year, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return year
}

// NormalizeDOI strips the resolver prefix and lowercases a DOI so it can be
// used as a case-insensitive key.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "doi.org/", "doi:"} {
		if len(doi) >= len(prefix) && strings.EqualFold(doi[:len(prefix)], prefix) {
			doi = doi[len(prefix):]
			break
		}
	}
	return strings.ToLower(doi)
}
