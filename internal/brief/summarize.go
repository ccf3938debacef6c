package brief

import (
	"strings"
	"unicode"
)

// summaryMaxLen hard-caps an extractive summary.
const summaryMaxLen = 200

// Extractive is the default Summarizer: the first two sentences of the text,
// capped at summaryMaxLen runes.
type Extractive struct{}

func (Extractive) Summarize(text string) (string, error) {
	return truncate(firstSentences(text, 2), summaryMaxLen), nil
}

func firstSentences(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return ""
	}

	count := 0
	runes := []rune(text)
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// Sentence ends only when punctuation is followed by space or EOL;
		// this keeps abbreviations in URLs and versions mostly intact.
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		count++
		if count == n {
			return string(runes[:i+1])
		}
	}

	return text
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}
