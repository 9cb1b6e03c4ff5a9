package search

import (
	"fmt"

	"github.com/brilliance/research-service/internal/domain"
)

// Source letters used in reference markers like [A1] or [P3]. Unpaywall
// papers carry no letter and are never citable by marker.
var markerLetters = map[domain.SourceType]byte{
	domain.SourceArXiv:           'A',
	domain.SourcePubMed:          'P',
	domain.SourceOpenAlex:        'O',
	domain.SourceSemanticScholar: 'S',
	domain.SourceCore:            'C',
}

var lettersToSource = map[byte]domain.SourceType{
	'A': domain.SourceArXiv,
	'P': domain.SourcePubMed,
	'O': domain.SourceOpenAlex,
	'S': domain.SourceSemanticScholar,
	'C': domain.SourceCore,
}

// MarkerScheme assigns a stable reference marker to every selected paper.
// Papers are grouped by source in first-appearance order and numbered from 1
// within each group. The same scheme instance drives both prompt formatting
// and citation resolution, so the two can never drift apart.
type MarkerScheme struct {
	selected    []*domain.Paper
	sourceOrder []domain.SourceType
	bySource    map[domain.SourceType][]*domain.Paper
}

// NewMarkerScheme builds the scheme from the selected papers, preserving
// their order. Papers from sources without a marker letter are kept in the
// selected list but receive no marker.
func NewMarkerScheme(selected []*domain.Paper) *MarkerScheme {
	s := &MarkerScheme{
		selected: selected,
		bySource: make(map[domain.SourceType][]*domain.Paper),
	}
	for _, p := range selected {
		if _, ok := markerLetters[p.Source]; !ok {
			continue
		}
		if _, seen := s.bySource[p.Source]; !seen {
			s.sourceOrder = append(s.sourceOrder, p.Source)
		}
		s.bySource[p.Source] = append(s.bySource[p.Source], p)
	}
	return s
}

// Selected returns the full selected paper list in original order.
func (s *MarkerScheme) Selected() []*domain.Paper {
	return s.selected
}

// Sources returns the marker-bearing sources in first-appearance order.
func (s *MarkerScheme) Sources() []domain.SourceType {
	return s.sourceOrder
}

// Papers returns the marker-bearing papers for one source, in marker order.
func (s *MarkerScheme) Papers(source domain.SourceType) []*domain.Paper {
	return s.bySource[source]
}

// Marker returns the marker label (e.g. "A1") for the i-th paper of a
// source, 0-based. It returns "" when the source has no letter.
func (s *MarkerScheme) Marker(source domain.SourceType, i int) string {
	letter, ok := markerLetters[source]
	if !ok {
		return ""
	}
	return fmt.Sprintf("%c%d", letter, i+1)
}

// Lookup resolves a marker letter and 1-based ordinal to a paper. It returns
// false for unknown letters and out-of-range ordinals.
func (s *MarkerScheme) Lookup(letter byte, ordinal int) (*domain.Paper, bool) {
	source, ok := lettersToSource[letter]
	if !ok {
		return nil, false
	}
	papers := s.bySource[source]
	if ordinal < 1 || ordinal > len(papers) {
		return nil, false
	}
	return papers[ordinal-1], true
}
