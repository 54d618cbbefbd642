package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
)

// NewJavaScriptTokenizer creates a tokenizer for JavaScript source
func NewJavaScriptTokenizer() (*Tokenizer, error) {
	return newTokenizer("javascript", tree_sitter.NewLanguage(javascript.Language()), normalizeJavaScript)
}

func normalizeJavaScript(token Token) string {
	switch token.Type {
	case "identifier", "property_identifier", "shorthand_property_identifier":
		return "ID"
	case "number":
		return "NUM"
	case "string", "string_fragment", "template_string":
		return "STR"
	case "regex", "regex_pattern":
		return "REGEX"
	case "true", "false":
		return "BOOL"
	case "null":
		return "NULL"
	case "undefined":
		return "UNDEF"
	default:
		return token.Value
	}
}
