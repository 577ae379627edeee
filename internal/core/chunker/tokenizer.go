package chunker

import "regexp"

// Tokenizer turns text into tokens whose concatenation reproduces the text.
type Tokenizer interface {
	Tokenize(text string) []string
}

var wordPattern = regexp.MustCompile(`\s*\S+\s*`)

// WordTokenizer treats every whitespace-delimited word, together with the
// whitespace that follows it, as one token. Leading whitespace sticks to the
// first word. Tests use it for readable, predictable windows.
type WordTokenizer struct{}

func (WordTokenizer) Tokenize(text string) []string {
	return wordPattern.FindAllString(text, -1)
}
