package lang

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// NewTypeScriptTokenizer creates a tokenizer for TypeScript source
func NewTypeScriptTokenizer() (*Tokenizer, error) {
	return newTokenizer("typescript", tree_sitter.NewLanguage(typescript.LanguageTypescript()), normalizeTypeScript)
}

func normalizeTypeScript(token Token) string {
	switch token.Type {
	case "identifier", "property_identifier", "type_identifier", "shorthand_property_identifier":
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
