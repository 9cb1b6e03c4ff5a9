// Package unpaywall provides a client for the Unpaywall DOI API.
//
// Unpaywall is keyed by DOI rather than free-text search: given DOIs
// harvested from the other sources, it reports open access availability.
// API documentation: https://unpaywall.org/products/api
package unpaywall

// Response represents the Unpaywall record for a single DOI.
type Response struct {
	DOI            string       `json:"doi"`
	DOIURL         string       `json:"doi_url"`
	Title          string       `json:"title"`
	JournalName    string       `json:"journal_name"`
	PublishedDate  string       `json:"published_date"`
	IsOA           bool         `json:"is_oa"`
	ZAuthors       []ZAuthor    `json:"z_authors"`
	BestOALocation *OALocation  `json:"best_oa_location"`
}

// ZAuthor represents an author in Crossref contributor format.
type ZAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name"`
}

// OALocation describes where an open access copy can be found.
type OALocation struct {
	URL       string `json:"url"`
	URLForPDF string `json:"url_for_pdf"`
}
