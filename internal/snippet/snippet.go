// Package snippet extracts bounded context windows around query matches for
// result previews.
package snippet

import (
	"regexp"

	"github.com/docsearch-labs/docsearch/internal/analyzer"
)

// Ellipsis marks truncated snippet boundaries.
const Ellipsis = "..."

// Extractor locates query terms in raw document text and cuts a window
// around the earliest match.
type Extractor struct {
	analyzer *analyzer.Analyzer
}

// New creates an Extractor using the given analyzer for query
// normalisation.
func New(an *analyzer.Analyzer) *Extractor {
	return &Extractor{analyzer: an}
}

// Extract returns a window of up to window characters around the first
// case-insensitive whole-word occurrence of any query token in content.
// Unlike phrase search, matching here is word-boundary aware. When no token
// matches, the head of the document is returned with a trailing ellipsis.
func (e *Extractor) Extract(content string, query string, window int) string {
	if content == "" || window <= 0 {
		return ""
	}

	terms := e.analyzer.Tokens(query)
	best := len(content)
	for _, term := range terms {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
		if err != nil {
			continue
		}
		if loc := re.FindStringIndex(content); loc != nil && loc[0] < best {
			best = loc[0]
		}
	}

	if best == len(content) {
		if len(content) <= window {
			return content + Ellipsis
		}
		return content[:window] + Ellipsis
	}

	start := best - window/2
	if start < 0 {
		start = 0
	}
	end := start + window
	if end > len(content) {
		end = len(content)
	}

	out := content[start:end]
	if start > 0 {
		out = Ellipsis + out
	}
	if end < len(content) {
		out = out + Ellipsis
	}
	return out
}
