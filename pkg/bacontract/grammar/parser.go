package grammar

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"
)

var systemParser = participle.MustBuild[Program](
	participle.Lexer(SystemLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(3),
	participle.Unquote(),
)

// ParseFile reads and parses a system file from disk.
func ParseFile(path string) (*Program, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("grammar.ParseFile: read %s: %w", path, err)
	}
	return ParseString(path, string(source))
}

// ParseString parses system-file source held in memory; name is used only
// for diagnostics.
func ParseString(name, source string) (*Program, error) {
	program, err := systemParser.ParseString(name, source)
	if err != nil {
		reportParseError(source, err)
		return nil, fmt.Errorf("grammar.ParseString: %s: %w", name, err)
	}
	return program, nil
}

// reportParseError prints a friendly caret-style diagnostic to stderr,
// the same shape as kanso's grammar.reportParseError.
func reportParseError(src string, err error) {
	pe, ok := err.(participle.Error)
	if !ok {
		color.Red("unexpected parse error: %s", err)
		return
	}

	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.Red("syntax error at unknown location: %s", err)
		return
	}

	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", max(pos.Column-1, 0)) + "^"

	color.Red("syntax error in %s at line %d, column %d:", pos.Filename, pos.Line, pos.Column)
	fmt.Fprintln(os.Stderr, line)
	color.HiRed(caret)
	fmt.Fprintf(os.Stderr, "-> %s\n", pe.Message())
}
