// Package semanticscholar provides a client for the Semantic Scholar
// Academic Graph API.
//
// API documentation: https://api.semanticscholar.org/api-docs/
package semanticscholar

// SearchResponse represents the response from the paper search endpoint.
type SearchResponse struct {
	Total  int     `json:"total"`
	Offset int     `json:"offset"`
	Data   []Paper `json:"data"`
}

// Paper represents a paper in the Semantic Scholar graph.
type Paper struct {
	PaperID                  string      `json:"paperId"`
	Title                    string      `json:"title"`
	Abstract                 string      `json:"abstract"`
	URL                      string      `json:"url"`
	Year                     int         `json:"year"`
	CitationCount            int         `json:"citationCount"`
	InfluentialCitationCount int         `json:"influentialCitationCount"`
	Authors                  []Author    `json:"authors"`
	Journal                  *Journal    `json:"journal"`
	ExternalIDs              ExternalIDs `json:"externalIds"`
}

// Author represents a paper author.
type Author struct {
	Name string `json:"name"`
}

// Journal contains journal details when the paper was published in one.
type Journal struct {
	Name string `json:"name"`
}

// ExternalIDs holds identifiers the paper carries in other systems.
type ExternalIDs struct {
	DOI      string `json:"DOI"`
	ArXiv    string `json:"ArXiv"`
	PubMedID string `json:"PubMed"`
}
