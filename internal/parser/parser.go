// Package parser reads the key=value update expressions accepted by the
// modification check, e.g. `account=it_css name="weather run"`.
package parser

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	updateLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Number", Pattern: `-?\d+(?:\.\d+)?`},
		{Name: "Assign", Pattern: `=`},
		{Name: "Whitespace", Pattern: `\s+`},
	})
)

type Update struct {
	Ops []*Operation `parser:"@@+"`
}

type Operation struct {
	Key   string `parser:"@Ident Assign"`
	Value Value  `parser:"@@"`
}

type Value interface{ v() string }

type StringVal struct {
	Value string `parser:"@String"`
}

func (val StringVal) v() string {
	return val.Value
}

type NumberVal struct {
	Value float64 `parser:"@Number"`
}

func (val NumberVal) v() string {
	return fmt.Sprintf("%g", val.Value)
}

type IdentVal struct {
	Value string `parser:"@Ident"`
} // If no quotes, it is an IdentVal

func (val IdentVal) v() string {
	return val.Value
}

func GetParser() *participle.Parser[Update] {
	parser := participle.MustBuild[Update](
		participle.Lexer(updateLexer),
		participle.Unquote("String"),
		participle.Union[Value](StringVal{}, NumberVal{}, IdentVal{}),
		participle.Elide("Whitespace"),
	)

	return parser
}

func Parse(s string) (*Update, error) {
	parser := GetParser()
	update, err := parser.ParseString("", s)
	if err != nil {
		return nil, err
	}
	return update, nil
}

// Text returns an operation's value as its string form regardless of the
// token kind it arrived as.
func (op *Operation) Text() string {
	if op.Value == nil {
		return ""
	}
	return op.Value.v()
}
