package grammar

import "github.com/alecthomas/participle/v2/lexer"

// Program is the root of a parsed system file: one or more variable
// declarations, zero or one objective, and zero or more constraints.
type Program struct {
	Pos     lexer.Position
	Vars    []*VarDecl    `"variables" ":" @@+`
	Obj     *Objective    `@@?`
	Constrs []*Constraint `"constraints" ":" @@*`
}

// VarDecl declares one variable and its initial box domain:
// `x in [lo, hi];`
type VarDecl struct {
	Pos  lexer.Position
	Name string `@Ident "in"`
	Lo   *Expr  `"[" @@`
	Hi   *Expr  `"," @@ "]" ";"`
}

// Objective is `minimize expr;`.
type Objective struct {
	Pos  lexer.Position
	Goal *Expr `"minimize" @@ ";"`
}

// Constraint is `expr op expr ;` with op one of < <= = >= >.
type Constraint struct {
	Pos   lexer.Position
	Left  *Expr  `@@`
	Op    string `@( "<=" | ">=" | "==" | "=" | "<" | ">" )`
	Right *Expr  `@@ ";"`
}

// Expr is the lowest-precedence additive level: term (+|- term)*.
type Expr struct {
	Pos   lexer.Position
	Left  *Term       `@@`
	Right []*OpTerm   `@@*`
}

// OpTerm is one additive continuation.
type OpTerm struct {
	Op    string `@("+" | "-")`
	Right *Term  `@@`
}

// Term is the multiplicative level: factor (*|/ factor)*.
type Term struct {
	Pos   lexer.Position
	Left  *Factor      `@@`
	Right []*OpFactor  `@@*`
}

// OpFactor is one multiplicative continuation.
type OpFactor struct {
	Op    string  `@("*" | "/")`
	Right *Factor `@@`
}

// Factor is the exponentiation level: power (^ power)*, right-associative
// folded left here and re-associated during lowering (power towers are
// rare in system files and this keeps the grammar simple, matching
// kanso's preference for a thin grammar layer with semantics pushed to
// the lowering pass rather than the parser).
type Factor struct {
	Pos   lexer.Position
	Left  *Unary    `@@`
	Right []*Power  `@@*`
}

// Power is one exponentiation continuation.
type Power struct {
	Right *Unary `"^" @@`
}

// Unary is an optional leading minus over a Primary.
type Unary struct {
	Pos     lexer.Position
	Negate  bool     `@"-"?`
	Primary *Primary `@@`
}

// Primary is a number, a variable reference, a parenthesized expression,
// or a function call: `ident "(" expr ("," expr)* ")"` covering
// chi(cond,a,b), sqrt, sqr, sign, sin, cos, tan, and the vector-valued
// Return(e1,...,em).
type Primary struct {
	Pos     lexer.Position
	Number  *float64 `( @Float | @Int )`
	Call    *Call    `| @@`
	Ident   *string  `| @Ident`
	SubExpr *Expr    `| "(" @@ ")"`
}

// Call is a function application.
type Call struct {
	Pos  lexer.Position
	Name string  `@Ident "("`
	Args []*Expr `@@ ("," @@)* ")"`
}
