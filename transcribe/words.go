package transcribe

import "strings"

// wordBoundary is the separator that opens a new word in sub-word token
// streams. The boundary test is purely "does the token text start with it",
// regardless of token length.
const wordBoundary = " "

// mergeTokens reconstructs whole-word segments from a sentence's sub-word
// tokens. A boundary token closes the accumulated word at the boundary
// token's own start time and opens a new word there; other tokens extend the
// open word without moving its start. The final word is closed at the
// sentence's end time. Whitespace-only accumulations are dropped.
func mergeTokens(sentence RawSentence) []Segment {
	var words []Segment
	var current strings.Builder
	var wordStart float64
	open := false

	emit := func(end float64) {
		if text := strings.TrimSpace(current.String()); text != "" {
			words = append(words, Segment{Text: text, Start: wordStart, End: end, Kind: KindWord})
		}
		current.Reset()
	}

	for _, tok := range sentence.Tokens {
		if strings.HasPrefix(tok.Text, wordBoundary) && open {
			emit(tok.Start)
			wordStart = tok.Start
		} else if !open {
			wordStart = tok.Start
			open = true
		}
		current.WriteString(tok.Text)
	}
	if open {
		emit(sentence.End)
	}
	return words
}
