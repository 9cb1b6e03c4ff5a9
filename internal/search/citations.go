package search

import (
	"regexp"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/brilliance/research-service/internal/domain"
	"github.com/brilliance/research-service/internal/observability"
)

// DefaultCitationFallback is how many selected papers stand in as citations
// when an answer contains no resolvable marker.
const DefaultCitationFallback = 10

// markerRegex matches reference markers like [A1] or [P12].
var markerRegex = regexp.MustCompile(`\[([APOSC])(\d+)\]`)

// referencesRegex locates the REFERENCES section heading, colon optional.
var referencesRegex = regexp.MustCompile(`(?i)\bREFERENCES:?`)

// CitationResolver maps the markers in a generated answer back to concrete
// papers through the marker scheme.
type CitationResolver struct {
	fallback int
	logger   zerolog.Logger
	metrics  *observability.Metrics
}

// NewCitationResolver creates a CitationResolver. A nil metrics is allowed.
func NewCitationResolver(logger zerolog.Logger, metrics *observability.Metrics) *CitationResolver {
	return &CitationResolver{
		fallback: DefaultCitationFallback,
		logger:   observability.ComponentLogger(logger, "citations"),
		metrics:  metrics,
	}
}

// Resolve scans the answer's REFERENCES section (or the whole answer when no
// section is present) for markers and resolves them in order of first
// appearance, de-duplicated. Out-of-range ordinals are ignored. When nothing
// resolves, the leading selected papers are returned as a fallback.
func (r *CitationResolver) Resolve(answer string, scheme *MarkerScheme) []*domain.Paper {
	section := answer
	if loc := referencesRegex.FindStringIndex(answer); loc != nil {
		section = answer[loc[1]:]
	}

	var citations []*domain.Paper
	seen := make(map[string]struct{})

	for _, match := range markerRegex.FindAllStringSubmatch(section, -1) {
		letter := match[1][0]
		ordinal, err := strconv.Atoi(match[2])
		if err != nil {
			continue
		}
		key := match[1] + match[2]
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		paper, ok := scheme.Lookup(letter, ordinal)
		if !ok {
			r.logger.Debug().Str("marker", match[0]).Msg("ignoring out-of-range citation marker")
			continue
		}
		citations = append(citations, paper)
	}

	if len(citations) == 0 {
		if r.metrics != nil {
			r.metrics.CitationFallbacks.Inc()
		}
		r.logger.Info().Msg("no citation markers resolved, falling back to leading papers")
		selected := scheme.Selected()
		if len(selected) > r.fallback {
			selected = selected[:r.fallback]
		}
		return selected
	}

	if r.metrics != nil {
		r.metrics.CitationsResolved.Add(float64(len(citations)))
	}
	return citations
}
