package domain

import "time"

// SearchContext is the result of running the research pipeline for a single
// question: the prepared query, everything the sources returned, and the
// papers selected for answering.
type SearchContext struct {
	Question          string                  `json:"question"`
	OptimizedQuestion string                  `json:"optimizedQuestion"`
	Keywords          []string                `json:"keywords"`
	SearchQuery       string                  `json:"searchQuery"`
	PapersBySource    map[SourceType][]*Paper `json:"papersBySource"`
	SelectedPapers    []*Paper                `json:"selectedPapers"`
	SourceCounts      map[SourceType]int      `json:"sourceCounts"`
	Duration          time.Duration           `json:"-"`
}

// TotalPapers returns the number of papers across all sources.
func (c *SearchContext) TotalPapers() int {
	total := 0
	for _, count := range c.SourceCounts {
		total += count
	}
	return total
}

// ResearchRecord is the persisted outcome of a research question: the
// prepared query, the selected articles, and (once generated) the answer
// with its resolved citations.
type ResearchRecord struct {
	QuestionID        string    `json:"questionId"`
	Question          string    `json:"question"`
	OptimizedQuestion string    `json:"optimizedQuestion"`
	Keywords          []string  `json:"keywords"`
	Articles          []*Paper  `json:"articles"`
	Occupation        string    `json:"occupation,omitempty"`
	Answer            string    `json:"answer,omitempty"`
	Citations         []*Paper  `json:"citations,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
