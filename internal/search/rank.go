package search

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/brilliance/research-service/internal/domain"
)

// Heuristic ranker weights.
const (
	titleTermWeight       = 2.0
	summaryTermWeight     = 1.0
	titleSubstringBonus   = 0.5
	summarySubstringBonus = 0.3
	recencyBonus          = 1.0
	recencyWindowYears    = 10
	affinityMultiplier    = 1.2

	// minScore drops papers with effectively no overlap with the query.
	minScore = 0.1

	// minSubstringTermLen keeps short terms from matching inside unrelated
	// words.
	minSubstringTermLen = 4
)

// Source affinity: query vocabulary that favors a particular source.
var sourceAffinity = map[domain.SourceType][]string{
	domain.SourceArXiv:  {"theory", "theoretical", "mathematical", "physics", "algorithm"},
	domain.SourcePubMed: {"clinical", "medical", "patient", "disease", "health"},
}

// Rank scores papers against the query with a deterministic lexical
// heuristic and returns the top maxResults papers in descending score order.
// Papers scoring at or below the threshold are dropped. Ties keep their
// input order, so ranking is stable for fixed inputs.
func Rank(papers []*domain.Paper, query string, maxResults int) []*domain.Paper {
	return rankWithYear(papers, query, maxResults, time.Now().Year())
}

// rankWithYear is Rank with an explicit current year so the recency bonus is
// testable.
func rankWithYear(papers []*domain.Paper, query string, maxResults int, currentYear int) []*domain.Paper {
	if len(papers) == 0 {
		return []*domain.Paper{}
	}

	terms := queryTerms(query)
	queryLower := strings.ToLower(query)

	type scored struct {
		paper *domain.Paper
		score float64
	}

	ranked := make([]scored, 0, len(papers))
	for _, p := range papers {
		score := scorePaper(p, terms, queryLower, currentYear)
		if score <= minScore {
			continue
		}
		ranked = append(ranked, scored{paper: p, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if maxResults > 0 && len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}

	result := make([]*domain.Paper, len(ranked))
	for i, s := range ranked {
		result[i] = s.paper
	}
	return result
}

// queryTerms case-folds the query and keeps tokens longer than one rune.
// Tokenization matches fieldSet so punctuation never blocks a term match.
func queryTerms(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !isWordRune(r)
	})
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if utf8.RuneCountInString(f) > 1 {
			terms = append(terms, f)
		}
	}
	return terms
}

func scorePaper(p *domain.Paper, terms []string, queryLower string, currentYear int) float64 {
	titleLower := strings.ToLower(p.Title)
	summaryLower := strings.ToLower(p.Summary)
	titleWords := fieldSet(titleLower)
	summaryWords := fieldSet(summaryLower)

	score := 0.0
	for _, term := range terms {
		if _, ok := titleWords[term]; ok {
			score += titleTermWeight
		}
		if _, ok := summaryWords[term]; ok {
			score += summaryTermWeight
		}
		if utf8.RuneCountInString(term) >= minSubstringTermLen {
			if strings.Contains(titleLower, term) {
				score += titleSubstringBonus
			}
			if strings.Contains(summaryLower, term) {
				score += summarySubstringBonus
			}
		}
	}

	if year := p.Year(); year > 0 && currentYear-year <= recencyWindowYears {
		score += recencyBonus
	}

	if hasSourceAffinity(p.Source, queryLower) {
		score *= affinityMultiplier
	}

	return score
}

func hasSourceAffinity(source domain.SourceType, queryLower string) bool {
	for _, term := range sourceAffinity[source] {
		if strings.Contains(queryLower, term) {
			return true
		}
	}
	return false
}

func fieldSet(s string) map[string]struct{} {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !isWordRune(r)
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == '-':
		return true
	}
	return r > 127
}
