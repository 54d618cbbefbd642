// Package lang provides tree-sitter backed tokenizers for the languages the
// guard can normalize. Tokens are normalized (identifiers, literals) so that
// duplicate-code comparison is insensitive to renames and literal values.
package lang

import (
	"fmt"
	"path/filepath"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// Token represents a single lexical token in source code
type Token struct {
	Type   string // tree-sitter node kind
	Value  string // original token text
	Line   int    // 1-based line number
	Column int    // 1-based column number
}

// Tokenizer tokenizes source code for one language. Parsers hold mutable
// state, so a Tokenizer must not be shared across concurrent analyses;
// construct one per call via the registry.
type Tokenizer struct {
	language  string
	parser    *tree_sitter.Parser
	normalize func(Token) string
}

func newTokenizer(language string, tsLang *tree_sitter.Language, normalize func(Token) string) (*Tokenizer, error) {
	parser := tree_sitter.NewParser()
	if err := parser.SetLanguage(tsLang); err != nil {
		return nil, fmt.Errorf("failed to set %s language: %w", language, err)
	}
	return &Tokenizer{
		language:  language,
		parser:    parser,
		normalize: normalize,
	}, nil
}

// Language returns the language name this tokenizer handles
func (t *Tokenizer) Language() string {
	return t.language
}

// Tokenize parses the source and returns its leaf tokens in order.
// Comments are dropped. Source that does not parse cleanly is an error:
// callers treat that as a degradation, not a partial result.
func (t *Tokenizer) Tokenize(source []byte) ([]Token, error) {
	tree := t.parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s source", t.language)
	}
	defer tree.Close()

	if tree.RootNode().HasError() {
		return nil, fmt.Errorf("%s source contains syntax errors", t.language)
	}

	var tokens []Token
	collectLeaves(tree.RootNode(), source, &tokens)
	return tokens, nil
}

// Normalize maps a token to its rename-insensitive form
func (t *Tokenizer) Normalize(tok Token) string {
	return t.normalize(tok)
}

// NormalizedLines returns one normalized token string per source line,
// indexed by 1-based line number. Lines with no tokens are absent.
func (t *Tokenizer) NormalizedLines(source []byte) (map[int]string, error) {
	tokens, err := t.Tokenize(source)
	if err != nil {
		return nil, err
	}

	lines := make(map[int]string)
	for _, tok := range tokens {
		norm := t.normalize(tok)
		if norm == "" {
			continue
		}
		if existing, ok := lines[tok.Line]; ok {
			lines[tok.Line] = existing + " " + norm
		} else {
			lines[tok.Line] = norm
		}
	}
	return lines, nil
}

func collectLeaves(node *tree_sitter.Node, source []byte, tokens *[]Token) {
	if node == nil {
		return
	}

	if node.ChildCount() == 0 {
		kind := node.Kind()
		content := node.Utf8Text(source)
		if content == "" || kind == "comment" {
			return
		}

		start := node.StartPosition()
		*tokens = append(*tokens, Token{
			Type:   kind,
			Value:  content,
			Line:   int(start.Row) + 1,
			Column: int(start.Column) + 1,
		})
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		collectLeaves(node.Child(i), source, tokens)
	}
}

// ForPath returns a fresh tokenizer for the language implied by the file
// extension. Unknown or empty paths default to Python, since the hook's
// payloads are predominantly Python changes.
func ForPath(path string) (*Tokenizer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return NewGoTokenizer()
	case ".java":
		return NewJavaTokenizer()
	case ".js", ".jsx", ".mjs":
		return NewJavaScriptTokenizer()
	case ".ts", ".tsx":
		return NewTypeScriptTokenizer()
	default:
		return NewPythonTokenizer()
	}
}
