package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/brilliance/research-service/internal/domain"
	"github.com/brilliance/research-service/internal/llm"
	"github.com/brilliance/research-service/internal/observability"
)

const selectSystemPrompt = `You curate reading lists for researchers. Given a research question and a list of candidate papers, pick the papers most relevant to answering the question. Respond with a JSON object of the form {"selected_papers": ["paper_0", "paper_3"]} listing the ids of the chosen papers in order of relevance, and nothing else.`

// Selector uses the LLM to pick the most relevant papers for a question.
// Every failure falls back to the leading papers, so selection never fails.
type Selector struct {
	client  llm.Client
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewSelector creates a Selector. A nil metrics is allowed.
func NewSelector(client llm.Client, logger zerolog.Logger, metrics *observability.Metrics) *Selector {
	return &Selector{
		client:  client,
		logger:  observability.ComponentLogger(logger, "selector"),
		metrics: metrics,
	}
}

// Select asks the model to choose up to maxPapers papers for the question.
// Selection is skipped entirely when the candidate list already fits. Ids
// the model invents are discarded; short selections are padded from the
// remaining candidates in their original order. On any failure the first
// maxPapers candidates are returned.
func (s *Selector) Select(ctx context.Context, papers []*domain.Paper, question string, maxPapers int) []*domain.Paper {
	if maxPapers <= 0 || len(papers) <= maxPapers {
		return papers
	}

	if s.metrics != nil {
		s.metrics.LLMRequestsTotal.WithLabelValues(s.client.Provider(), "select").Inc()
	}

	resp, err := s.client.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: selectSystemPrompt},
			{Role: "user", Content: s.buildPrompt(papers, question, maxPapers)},
		},
		Temperature: 0.3,
		JSONMode:    true,
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.LLMRequestsFailed.WithLabelValues(s.client.Provider(), "select").Inc()
		}
		s.logger.Warn().Err(err).Msg("paper selection failed, using leading papers")
		return papers[:maxPapers]
	}

	var parsed struct {
		SelectedPapers []string `json:"selected_papers"`
	}
	if err := json.Unmarshal([]byte(resp.Content), &parsed); err != nil {
		s.logger.Warn().Err(err).Msg("selection response was not valid JSON, using leading papers")
		return papers[:maxPapers]
	}

	selected := make([]*domain.Paper, 0, maxPapers)
	used := make(map[int]struct{}, maxPapers)
	for _, id := range parsed.SelectedPapers {
		idx, ok := parsePaperID(id)
		if !ok || idx < 0 || idx >= len(papers) {
			s.logger.Debug().Str("id", id).Msg("discarding unresolvable paper id")
			continue
		}
		if _, dup := used[idx]; dup {
			continue
		}
		used[idx] = struct{}{}
		selected = append(selected, papers[idx])
		if len(selected) == maxPapers {
			break
		}
	}

	// Pad short selections from the remaining candidates in input order.
	for idx := 0; idx < len(papers) && len(selected) < maxPapers; idx++ {
		if _, dup := used[idx]; dup {
			continue
		}
		used[idx] = struct{}{}
		selected = append(selected, papers[idx])
	}

	return selected
}

// buildPrompt indexes the candidates as paper_0..paper_N with compact
// metadata so the model can judge relevance cheaply.
func (s *Selector) buildPrompt(papers []*domain.Paper, question string, maxPapers int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Research question: %s\n\nSelect the %d most relevant papers.\n\n", question, maxPapers)

	for i, p := range papers {
		fmt.Fprintf(&b, "paper_%d: %q\n  %s | %s | %s | %d citations\n",
			i, p.Title, p.Source, formatAuthors(p.Authors), publishedYear(p), p.CitationCount)
	}
	return b.String()
}

// formatAuthors lists the first three authors, marking longer lists with
// "et al.".
func formatAuthors(authors []string) string {
	if len(authors) == 0 {
		return domain.DefaultAuthor
	}
	if len(authors) <= 3 {
		return strings.Join(authors, ", ")
	}
	return strings.Join(authors[:3], ", ") + ", et al."
}

func publishedYear(p *domain.Paper) string {
	if year := p.Year(); year > 0 {
		return fmt.Sprintf("%d", year)
	}
	return domain.DefaultPublished
}

// parsePaperID maps "paper_3" to 3.
func parsePaperID(id string) (int, bool) {
	id = strings.TrimSpace(id)
	rest, found := strings.CutPrefix(id, "paper_")
	if !found {
		return 0, false
	}
	idx := 0
	if rest == "" {
		return 0, false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return 0, false
		}
		idx = idx*10 + int(r-'0')
	}
	return idx, true
}
