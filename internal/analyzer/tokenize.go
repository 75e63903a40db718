package analyzer

import (
	"strings"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Many vacancies share identical boilerplate snippets, so tokenization is
// memoized per distinct snippet string.
const tokenMemoSize = 1000

type tokenizer struct {
	memo *lru.Cache[string, []string]
}

func newTokenizer() *tokenizer {
	memo, _ := lru.New[string, []string](tokenMemoSize)
	return &tokenizer{memo: memo}
}

// Tokens splits a requirement snippet on whitespace and returns the
// lower-cased, trimmed tokens longer than two characters. Identical snippets
// always yield identical token sequences.
func (t *tokenizer) Tokens(snippet string) []string {
	if tokens, ok := t.memo.Get(snippet); ok {
		return tokens
	}

	fields := strings.Fields(snippet)
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if utf8.RuneCountInString(field) > 2 {
			tokens = append(tokens, strings.ToLower(strings.TrimSpace(field)))
		}
	}

	t.memo.Add(snippet, tokens)
	return tokens
}
