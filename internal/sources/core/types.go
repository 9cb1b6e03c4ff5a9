// Package core provides a client for the CORE v3 works search API.
//
// CORE aggregates open access research papers from repositories worldwide.
// API documentation: https://api.core.ac.uk/docs/v3
package core

// searchRequest is the JSON body sent to the search endpoint.
type searchRequest struct {
	Query  string `json:"q"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

// SearchResponse represents the response from the works search endpoint.
type SearchResponse struct {
	TotalHits int      `json:"totalHits"`
	Results   []Result `json:"results"`
}

// Result represents a single work in the CORE index.
type Result struct {
	Title         string       `json:"title"`
	Abstract      string       `json:"abstract"`
	Authors       []Author     `json:"authors"`
	PublishedDate string       `json:"publishedDate"`
	YearPublished int          `json:"yearPublished"`
	DOI           string       `json:"doi"`
	DownloadURL   string       `json:"downloadUrl"`
	Publisher     string       `json:"publisher"`
	Repositories  []Repository `json:"repositories"`
}

// Author represents a work author.
type Author struct {
	Name string `json:"name"`
}

// Repository identifies the repository a work was harvested from.
type Repository struct {
	Name string `json:"name"`
}
