package chunker

import (
	"ai-concierge/config"
	"ai-concierge/pkg/logger"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// DefaultEncoding is the BPE used by the OpenAI embedding models.
const DefaultEncoding = "cl100k_base"

func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// TiktokenTokenizer splits text into model tokens. Tokens that carry only part
// of a multi-byte character are emitted as empty strings and the completed
// character is attached to the token that finishes it, so every token is valid
// UTF-8 and the token count matches the model's.
type TiktokenTokenizer struct {
	enc *tiktoken.Tiktoken
}

func NewTiktokenTokenizer(encoding string) (*TiktokenTokenizer, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %s: %w", encoding, err)
	}
	return &TiktokenTokenizer{enc: enc}, nil
}

func (t *TiktokenTokenizer) Tokenize(text string) []string {
	ids := t.enc.Encode(text, nil, nil)
	tokens := make([]string, 0, len(ids))
	var pending []byte
	for _, id := range ids {
		pending = append(pending, t.enc.Decode([]int{id})...)
		if !utf8.Valid(pending) {
			tokens = append(tokens, "")
			continue
		}
		tokens = append(tokens, string(pending))
		pending = pending[:0]
	}
	if len(pending) > 0 {
		tokens[len(tokens)-1] = string(pending)
	}
	return tokens
}

var (
	defaultOnce      sync.Once
	defaultTokenizer Tokenizer
)

// DefaultTokenizer returns the shared cl100k_base tokenizer, or WordTokenizer
// if the encoding cannot be loaded.
func DefaultTokenizer() Tokenizer {
	defaultOnce.Do(func() {
		tok, err := NewTiktokenTokenizer(DefaultEncoding)
		if err != nil {
			logger.WithModule(config.ModuleIngest).
				WithField("error", err.Error()).
				Warn("chunker: tiktoken unavailable; counting words instead")
			defaultTokenizer = WordTokenizer{}
			return
		}
		defaultTokenizer = tok
	})
	return defaultTokenizer
}
