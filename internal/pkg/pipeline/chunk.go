package pipeline

// ChunkSize is the maximum number of bytes handed to the summarizer in one
// call. Documents above it are sliced at fixed byte offsets.
const ChunkSize = 4000

// SplitChunks slices text into ChunkSize-byte pieces in document order. The
// final chunk carries the remainder; empty input yields no chunks.
func SplitChunks(text string) []string {
	if text == "" {
		return nil
	}
	chunks := make([]string, 0, (len(text)+ChunkSize-1)/ChunkSize)
	for start := 0; start < len(text); start += ChunkSize {
		end := start + ChunkSize
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
	}
	return chunks
}
