package ingest

import "strings"

// ChunkSize is the target chunk length in bytes. Chunks are split without
// overlap, matching how the corpus was originally indexed.
const ChunkSize = 1000

// splitSeparators are tried in order: paragraph breaks first, then lines,
// then words, then a hard character split as the last resort.
var splitSeparators = []string{"\n\n", "\n", " ", ""}

// SplitText splits text into chunks of at most chunkSize bytes, preferring
// to break at paragraph and line boundaries. Whitespace-only fragments are
// dropped.
func SplitText(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		chunkSize = ChunkSize
	}
	out := []string{}
	for _, piece := range split(text, chunkSize, splitSeparators) {
		if trimmed := strings.TrimSpace(piece); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// split recursively breaks text at the first separator that applies,
// merging adjacent fragments back together while they fit in chunkSize.
func split(text string, chunkSize int, separators []string) []string {
	if len(text) <= chunkSize {
		return []string{text}
	}

	sep := separators[len(separators)-1]
	var rest []string
	for i, s := range separators {
		if s == "" || strings.Contains(text, s) {
			sep = s
			rest = separators[i+1:]
			break
		}
	}

	var fragments []string
	if sep == "" {
		for i := 0; i < len(text); i += chunkSize {
			fragments = append(fragments, text[i:min(i+chunkSize, len(text))])
		}
		return fragments
	}

	for _, part := range strings.Split(text, sep) {
		if len(part) <= chunkSize {
			fragments = append(fragments, part)
		} else {
			fragments = append(fragments, split(part, chunkSize, rest)...)
		}
	}
	return merge(fragments, sep, chunkSize)
}

// merge greedily joins fragments with sep while staying within chunkSize.
func merge(fragments []string, sep string, chunkSize int) []string {
	var out []string
	var current strings.Builder

	for _, frag := range fragments {
		if current.Len() == 0 {
			current.WriteString(frag)
			continue
		}
		if current.Len()+len(sep)+len(frag) <= chunkSize {
			current.WriteString(sep)
			current.WriteString(frag)
			continue
		}
		out = append(out, current.String())
		current.Reset()
		current.WriteString(frag)
	}
	if current.Len() > 0 {
		out = append(out, current.String())
	}
	return out
}
