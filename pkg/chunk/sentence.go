package chunk

import (
	"strings"
	"unicode"
)

// DefaultAbbreviations lists lowercase tokens that end with a period
// without ending a sentence. Single-letter initials are always excluded,
// so only multi-letter abbreviations need listing here.
var DefaultAbbreviations = []string{
	"mr", "mrs", "ms", "dr", "prof", "sr", "jr", "st",
	"vs", "etc", "approx", "dept", "fig", "inc", "ltd", "co",
	"e.g", "i.e", "no", "vol",
}

// SplitSentences decomposes a paragraph into sentence-level units. A
// sentence ends at '.', '!' or '?' followed by whitespace and an uppercase
// letter (or end of text), unless the final word is a known abbreviation or
// a single-letter initial. Joining the result with single spaces
// reconstructs the paragraph up to whitespace normalization; no returned
// sentence is empty.
func SplitSentences(text string) []string {
	return splitSentences(text, DefaultAbbreviations)
}

func splitSentences(text string, abbreviations []string) []string {
	abbrevs := make(map[string]bool, len(abbreviations))
	for _, a := range abbreviations {
		abbrevs[strings.ToLower(a)] = true
	}

	runes := []rune(text)
	var sentences []string
	var current []rune

	flush := func() {
		s := strings.TrimSpace(string(current))
		if s != "" {
			sentences = append(sentences, s)
		}
		current = current[:0]
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current = append(current, r)

		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if r == '.' && isAbbreviation(current, abbrevs) {
			continue
		}
		// Consume any run of closing punctuation after the terminator.
		j := i + 1
		for j < len(runes) && (runes[j] == '"' || runes[j] == '\'' || runes[j] == ')' || runes[j] == ']') {
			current = append(current, runes[j])
			j++
		}
		if j >= len(runes) {
			i = j - 1
			flush()
			continue
		}
		if !unicode.IsSpace(runes[j]) {
			i = j - 1
			continue
		}
		// Skip the whitespace run and peek at the next word.
		k := j
		for k < len(runes) && unicode.IsSpace(runes[k]) {
			k++
		}
		if k >= len(runes) || unicode.IsUpper(runes[k]) {
			flush()
			i = k - 1
		}
	}
	flush()

	return sentences
}

// isAbbreviation reports whether the text accumulated so far ends in a
// period belonging to an abbreviation rather than a sentence terminator.
func isAbbreviation(current []rune, abbrevs map[string]bool) bool {
	// current ends with '.'; walk back over the preceding word.
	end := len(current) - 1
	start := end
	for start > 0 && !unicode.IsSpace(current[start-1]) {
		start--
	}
	word := strings.ToLower(string(current[start:end]))
	word = strings.TrimSuffix(word, ".")
	if word == "" {
		return false
	}
	if len([]rune(word)) == 1 && unicode.IsLetter([]rune(word)[0]) {
		return true // single-letter initial, e.g. "J. Smith"
	}
	return abbrevs[word]
}
