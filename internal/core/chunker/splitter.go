package chunker

import (
	"strings"
	"unicode"
)

const (
	DefaultChunkTokens    = 800
	DefaultOverlapTokens  = 200
	DefaultMinChunkTokens = 10
	DefaultMaxChunks      = 5000
)

// Document is one unit of ingestable text, e.g. a single corpus line.
type Document struct {
	Index   int
	Content string
}

// Chunk is a token-bounded slice of a Document.
type Chunk struct {
	DocumentIndex int
	Index         int
	Content       string
	TokenCount    int
}

// Options configures a TokenSplitter.
type Options struct {
	ChunkTokens       int
	OverlapTokens     int
	MinChunkTokens    int
	MaxChunks         int
	RespectBoundaries bool
}

// DefaultOptions mirrors the production ingestion policy.
func DefaultOptions() Options {
	return Options{
		ChunkTokens:       DefaultChunkTokens,
		OverlapTokens:     DefaultOverlapTokens,
		MinChunkTokens:    DefaultMinChunkTokens,
		MaxChunks:         DefaultMaxChunks,
		RespectBoundaries: true,
	}
}

func (o Options) normalized() Options {
	if o.ChunkTokens <= 0 {
		o.ChunkTokens = DefaultChunkTokens
	}
	if o.OverlapTokens < 0 {
		o.OverlapTokens = 0
	}
	if o.OverlapTokens >= o.ChunkTokens {
		o.OverlapTokens = o.ChunkTokens - 1
	}
	if o.MinChunkTokens <= 0 {
		o.MinChunkTokens = 1
	}
	if o.MinChunkTokens > o.ChunkTokens {
		o.MinChunkTokens = o.ChunkTokens
	}
	if o.MaxChunks <= 0 {
		o.MaxChunks = DefaultMaxChunks
	}
	return o
}

// TokenSplitter cuts documents into overlapping windows of tokens.
//
// Every chunk holds at most ChunkTokens tokens and every chunk but the last
// holds at least MinChunkTokens. Consecutive chunks share exactly
// OverlapTokens tokens. With RespectBoundaries a window is shortened to end
// at the last sentence or line break inside it, as long as the shortened
// window still satisfies both bounds.
type TokenSplitter struct {
	opts      Options
	tokenizer Tokenizer
}

// NewTokenSplitter normalizes opts; a nil tokenizer means DefaultTokenizer.
func NewTokenSplitter(opts Options, tokenizer Tokenizer) *TokenSplitter {
	if tokenizer == nil {
		tokenizer = DefaultTokenizer()
	}
	return &TokenSplitter{opts: opts.normalized(), tokenizer: tokenizer}
}

// Options returns the effective options after normalization.
func (s *TokenSplitter) Options() Options {
	return s.opts
}

// Split is deterministic for a fixed tokenizer and options.
func (s *TokenSplitter) Split(doc Document) []Chunk {
	tokens := s.tokenizer.Tokenize(doc.Content)
	n := len(tokens)
	chunks := make([]Chunk, 0, n/s.opts.ChunkTokens+1)

	for start := 0; start < n && len(chunks) < s.opts.MaxChunks; {
		end := start + s.opts.ChunkTokens
		final := end >= n
		if final {
			end = n
		} else if s.opts.RespectBoundaries {
			end = s.boundaryCut(tokens, start, end)
		}

		text := strings.TrimSpace(strings.Join(tokens[start:end], ""))
		if text != "" {
			chunks = append(chunks, Chunk{
				DocumentIndex: doc.Index,
				Index:         len(chunks),
				Content:       text,
				TokenCount:    end - start,
			})
		}
		if final {
			break
		}
		start = end - s.opts.OverlapTokens
	}
	return chunks
}

// boundaryCut returns the exclusive end of the window [start, end) after
// pulling it back to the last boundary token, or end when no acceptable
// boundary exists.
func (s *TokenSplitter) boundaryCut(tokens []string, start, end int) int {
	minLen := s.opts.MinChunkTokens
	if s.opts.OverlapTokens+1 > minLen {
		minLen = s.opts.OverlapTokens + 1
	}
	for cut := end; cut-start >= minLen; cut-- {
		if endsAtBoundary(tokens[cut-1]) {
			return cut
		}
	}
	return end
}

func endsAtBoundary(token string) bool {
	trimmed := strings.TrimRightFunc(token, unicode.IsSpace)
	if strings.ContainsRune(token[len(trimmed):], '\n') {
		return true
	}
	if trimmed == "" {
		return false
	}
	switch trimmed[len(trimmed)-1] {
	case '.', '!', '?':
		return true
	}
	return strings.HasSuffix(trimmed, "。")
}
