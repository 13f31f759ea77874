// Package grammar implements the lexer and parser for bacontract's system
// file grammar (spec.md §6): variables with box domains, constraints in a
// small arithmetic language, and an optional objective. Grounded on
// kanso-lang's grammar package: a stateful lexer built with
// lexer.MustStateful and a participle.Build[Program] parser.
package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// SystemLexer tokenizes a bacontract system file.
var SystemLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Comment", Pattern: `//[^\n]*`, Action: nil},
		{Name: "Float", Pattern: `[0-9]+\.[0-9]+([eE][+-]?[0-9]+)?|[0-9]+[eE][+-]?[0-9]+`, Action: nil},
		{Name: "Int", Pattern: `[0-9]+`, Action: nil},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`, Action: nil},
		{Name: "Op", Pattern: `<=|>=|==|!=|[-+*/^()\[\],;:<>=]`, Action: nil},
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`, Action: nil},
	},
})
