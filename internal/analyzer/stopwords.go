package analyzer

// defaultStopwords is the built-in list of common English stopwords used
// when no custom list is configured.
var defaultStopwords = []string{
	"a", "an", "and", "are", "as", "at", "be", "by", "for", "from",
	"has", "he", "in", "is", "it", "its", "of", "on", "that", "the",
	"to", "was", "will", "with", "this", "but", "they", "have",
	"had", "what", "when", "where", "who", "which", "why", "how",
}

// DefaultStopwords returns a fresh copy of the built-in stopword set.
func DefaultStopwords() map[string]struct{} {
	set := make(map[string]struct{}, len(defaultStopwords))
	for _, w := range defaultStopwords {
		set[w] = struct{}{}
	}
	return set
}
