package chunker

import "unicode"

// WordPiece keeps most words of up to wholeWordRunes characters intact and
// splits longer ones into pieces of roughly pieceRunes characters.
const (
	wholeWordRunes = 6
	pieceRunes     = 4
)

// EstimateTokens approximates the BERT WordPiece token count of text without
// loading a vocabulary. Punctuation and symbols become one token each, as the
// basic tokenizer splits them off; letter and digit runs are costed by length.
// It only drives the sequence-length warning.
func EstimateTokens(text string) int {
	tokens := 0
	run := 0
	flush := func() {
		if run == 0 {
			return
		}
		tokens++
		if run > wholeWordRunes {
			tokens += (run - wholeWordRunes + pieceRunes - 1) / pieceRunes
		}
		run = 0
	}

	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r):
			run++
		case unicode.IsSpace(r):
			flush()
		default:
			flush()
			tokens++
		}
	}
	flush()
	return tokens
}

// ExceedsSequence reports whether the chunk is likely to be truncated by a
// model that accepts at most maxTokens tokens. Two tokens are reserved for
// the [CLS] and [SEP] markers.
func ExceedsSequence(text string, maxTokens int) bool {
	if maxTokens <= 0 {
		return false
	}
	return EstimateTokens(text)+2 > maxTokens
}
