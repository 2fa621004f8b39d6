package chunker

// DefaultChunkSize is the window width in characters used when none is given.
const DefaultChunkSize = 500

// Chunk is a contiguous slice of normalized document text, ready for recognition.
type Chunk struct {
	Text  string // Chunk text content
	Index int    // Sequence number within document
	Start int    // Offset of the first character, in runes
	End   int    // Offset one past the last character, in runes
}

// Split cuts text into consecutive windows of size characters. Windows do not
// overlap and ignore word boundaries, so a mention straddling two windows is
// seen by the recognizer as two fragments. The final window may be shorter.
// A non-positive size falls back to DefaultChunkSize.
func Split(text string, size int) []Chunk {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if text == "" {
		return nil
	}

	runes := []rune(text)
	n := len(runes)
	chunks := make([]Chunk, 0, (n+size-1)/size)

	for start := 0; start < n; start += size {
		end := min(start+size, n)
		chunks = append(chunks, Chunk{
			Text:  string(runes[start:end]),
			Index: len(chunks),
			Start: start,
			End:   end,
		})
	}

	return chunks
}
