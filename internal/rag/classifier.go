package rag

import (
	"regexp"
	"sort"
	"strings"
)

// QueryType groups queries by intent so retrieval can pick a matching
// similarity threshold.
type QueryType string

const (
	QueryFactual    QueryType = "factual"    // when/who/where questions seeking specific facts
	QueryDefinition QueryType = "definition" // what-is/define/explain questions
	QueryContext    QueryType = "context"    // why/how questions seeking broader context
)

var factualPatterns = compileAll(
	`^when\s`,
	`^since when`,
	`\d{4}`,
	`^where\s`,
	`^who\s`,
	`^which\s`,
	`^by whom`,
	`\bwas\b.*\b(used|released|published|founded|created)\b`,
	`\bfirst\s(time|used|released|appeared)\b`,
	`\bfor the first time\b`,
)

var definitionPatterns = compileAll(
	`^what\s(is|are|does .* mean)`,
	`^define\s`,
	`^explain\s`,
	`^describe\s`,
	`\bmeaning\b`,
	`\bdefinition\b`,
)

var contextPatterns = compileAll(
	`^why\s`,
	`^how\s`,
	`^in what way`,
	`\bdifference\b`,
	`\bcompared? to\b`,
	`\brelationship\b`,
	`\bcontext\b`,
	`\bbackground\b`,
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// ClassifyQuery scores a query against the per-type pattern lists. Matches
// anchored at the start of the query weigh double. Queries matching nothing
// default to factual with low confidence.
func ClassifyQuery(query string) (QueryType, float64) {
	query = strings.ToLower(strings.TrimSpace(query))

	scores := []struct {
		qt    QueryType
		score int
	}{
		{QueryFactual, scorePatterns(query, factualPatterns)},
		{QueryDefinition, scorePatterns(query, definitionPatterns)},
		{QueryContext, scorePatterns(query, contextPatterns)},
	}

	total := 0
	for _, s := range scores {
		total += s.score
	}
	if total == 0 {
		return QueryFactual, 0.3
	}

	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	confidence := float64(scores[0].score) / (float64(total) * 1.5)
	if confidence > 1.0 {
		confidence = 1.0
	}
	return scores[0].qt, confidence
}

func scorePatterns(query string, patterns []*regexp.Regexp) int {
	score := 0
	for _, p := range patterns {
		loc := p.FindStringIndex(query)
		if loc == nil {
			continue
		}
		if loc[0] == 0 {
			score += 2
		} else {
			score++
		}
	}
	return score
}

// RecommendedThreshold maps a query type to the similarity cutoff used for
// retrieval: permissive for facts, loosest for contextual questions.
func RecommendedThreshold(qt QueryType) float64 {
	switch qt {
	case QueryFactual:
		return 0.45
	case QueryDefinition:
		return 0.4
	case QueryContext:
		return 0.3
	default:
		return 0.5
	}
}
