// Package pubmed provides a client for the NCBI PubMed E-utilities API.
//
// Searching is a two-step process: esearch.fcgi returns the PMIDs matching a
// query, efetch.fcgi returns the article metadata for those PMIDs. The
// E-utilities documentation is at https://www.ncbi.nlm.nih.gov/books/NBK25499/
package pubmed

import "encoding/xml"

// esearchResponse represents the JSON response from the esearch.fcgi endpoint.
type esearchResponse struct {
	ESearchResult esearchResult `json:"esearchresult"`
}

type esearchResult struct {
	Count  string   `json:"count"`
	IDList []string `json:"idlist"`
}

// ArticleSet represents the XML response from the efetch.fcgi endpoint.
type ArticleSet struct {
	XMLName  xml.Name  `xml:"PubmedArticleSet"`
	Articles []Article `xml:"PubmedArticle"`
}

// Article represents a single article in the PubMed database.
type Article struct {
	MedlineCitation MedlineCitation `xml:"MedlineCitation"`
}

// MedlineCitation contains the core bibliographic information.
type MedlineCitation struct {
	PMID    string         `xml:"PMID"`
	Article ArticleDetails `xml:"Article"`
}

// ArticleDetails contains the article metadata.
type ArticleDetails struct {
	Journal      Journal     `xml:"Journal"`
	ArticleTitle string      `xml:"ArticleTitle"`
	Abstract     *Abstract   `xml:"Abstract"`
	AuthorList   *AuthorList `xml:"AuthorList"`
}

// Journal contains journal information.
type Journal struct {
	Title        string       `xml:"Title"`
	JournalIssue JournalIssue `xml:"JournalIssue"`
}

// JournalIssue carries the publication date.
type JournalIssue struct {
	PubDate PubDate `xml:"PubDate"`
}

// PubDate represents the publication date, which PubMed serves in several
// shapes (structured or a free-form MedlineDate).
type PubDate struct {
	Year        string `xml:"Year"`
	Month       string `xml:"Month"`
	Day         string `xml:"Day"`
	MedlineDate string `xml:"MedlineDate"`
}

// Abstract holds one or more abstract sections.
type Abstract struct {
	AbstractText []string `xml:"AbstractText"`
}

// AuthorList contains the article authors.
type AuthorList struct {
	Authors []Author `xml:"Author"`
}

// Author represents an individual or collective author.
type Author struct {
	LastName       string `xml:"LastName"`
	ForeName       string `xml:"ForeName"`
	CollectiveName string `xml:"CollectiveName"`
}
