package expr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// SyntaxError reports a malformed expression.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d: %s", e.Pos, e.Msg)
}

// Node is an expression tree node.
type Node interface {
	node()
}

// Literal is a string, number, boolean or nil constant.
type Literal struct {
	Value any
}

// Name references a row field.
type Name struct {
	Name string
	Pos  int
}

// Call invokes a helper function.
type Call struct {
	Func string
	Args []Node
	Pos  int
}

// Binary is a "+" expression.
type Binary struct {
	Left, Right Node
	Pos         int
}

// Negate is a unary minus.
type Negate struct {
	X   Node
	Pos int
}

// FString interleaves literal text with interpolated expressions.
type FString struct {
	Parts []Node
}

func (Literal) node() {}
func (Name) node()    {}
func (Call) node()    {}
func (Binary) node()  {}
func (Negate) node()  {}
func (FString) node() {}

// Parser builds an expression tree from tokens.
//
// Grammar:
//
//	expr    = unary { "+" unary }
//	unary   = "-" unary | primary
//	primary = NUMBER | STRING | FSTRING | IDENT [ "(" [ expr { "," expr } ] ")" ] | "(" expr ")"
type Parser struct {
	tokens []Token
	pos    int
	offset int
}

// Parse parses src into a single expression.
func Parse(src string) (Node, error) {
	return parseAt(src, 0)
}

func parseAt(src string, offset int) (Node, error) {
	tokens := NewLexer(src).Tokenize()
	last := tokens[len(tokens)-1]
	if last.Type == TokenIllegal {
		return nil, &SyntaxError{Pos: offset + last.Position, Msg: fmt.Sprintf("unexpected %q", last.Value)}
	}

	p := &Parser{tokens: tokens, offset: offset}
	if p.peek().Type == TokenEOF {
		return nil, &SyntaxError{Pos: offset, Msg: "empty expression"}
	}

	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != TokenEOF {
		return nil, p.errorf(tok, "unexpected %s", tok)
	}
	return n, nil
}

func (p *Parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *Parser) next() Token {
	tok := p.tokens[p.pos]
	if tok.Type != TokenEOF {
		p.pos++
	}
	return tok
}

func (p *Parser) errorf(tok Token, format string, args ...any) error {
	return &SyntaxError{Pos: p.offset + tok.Position, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) parseExpr() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == TokenPlus {
		op := p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = Binary{Left: left, Right: right, Pos: p.offset + op.Position}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Node, error) {
	if p.peek().Type == TokenMinus {
		op := p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Negate{X: x, Pos: p.offset + op.Position}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Node, error) {
	tok := p.next()
	switch tok.Type {
	case TokenNumber:
		return parseNumber(tok, p)
	case TokenString:
		return Literal{Value: tok.Value}, nil
	case TokenFString:
		// +2 skips the f prefix and the opening quote.
		return parseFString(tok.Value, p.offset+tok.Position+2)
	case TokenIdentifier:
		switch tok.Value {
		case "None":
			return Literal{Value: nil}, nil
		case "True":
			return Literal{Value: true}, nil
		case "False":
			return Literal{Value: false}, nil
		}
		if p.peek().Type == TokenLeftParen {
			p.next()
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return Call{Func: tok.Value, Args: args, Pos: p.offset + tok.Position}, nil
		}
		return Name{Name: tok.Value, Pos: p.offset + tok.Position}, nil
	case TokenLeftParen:
		n, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.Type != TokenRightParen {
			return nil, p.errorf(closing, "expected ')', got %s", closing)
		}
		return n, nil
	default:
		return nil, p.errorf(tok, "unexpected %s", tok)
	}
}

func (p *Parser) parseArgs() ([]Node, error) {
	var args []Node
	if p.peek().Type == TokenRightParen {
		p.next()
		return args, nil
	}
	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		switch tok := p.next(); tok.Type {
		case TokenComma:
			continue
		case TokenRightParen:
			return args, nil
		default:
			return nil, p.errorf(tok, "expected ',' or ')', got %s", tok)
		}
	}
}

func parseNumber(tok Token, p *Parser) (Node, error) {
	if strings.Contains(tok.Value, ".") {
		f, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, p.errorf(tok, "invalid number %q", tok.Value)
		}
		return Literal{Value: f}, nil
	}
	n, err := strconv.ParseInt(tok.Value, 10, 64)
	if err != nil {
		return nil, p.errorf(tok, "invalid number %q", tok.Value)
	}
	return Literal{Value: n}, nil
}

// parseFString splits an f-string body into text and {expr} holes.
// "{{" and "}}" are literal braces.
func parseFString(body string, offset int) (Node, error) {
	var (
		parts []Node
		text  strings.Builder
	)
	flush := func() {
		if text.Len() > 0 {
			parts = append(parts, Literal{Value: text.String()})
			text.Reset()
		}
	}

	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body):
			text.WriteString(unescape(body[i+1]))
			i++
		case c == '{' && i+1 < len(body) && body[i+1] == '{':
			text.WriteByte('{')
			i++
		case c == '}' && i+1 < len(body) && body[i+1] == '}':
			text.WriteByte('}')
			i++
		case c == '}':
			return nil, &SyntaxError{Pos: offset + i, Msg: "single '}' in f-string"}
		case c == '{':
			end := holeEnd(body, i+1)
			if end < 0 {
				return nil, &SyntaxError{Pos: offset + i, Msg: "unterminated '{' in f-string"}
			}
			hole := body[i+1 : end]
			var n Node
			if name, ok := spacedName(hole); ok {
				n = Name{Name: name, Pos: offset + i + 1}
			} else {
				var err error
				if n, err = parseAt(hole, offset+i+1); err != nil {
					return nil, err
				}
			}
			flush()
			parts = append(parts, n)
			i = end
		default:
			text.WriteByte(c)
		}
	}
	flush()

	return FString{Parts: parts}, nil
}

// holeEnd returns the index of the '}' closing a hole that starts at from,
// skipping braces inside quoted strings. It returns -1 when none exists.
func holeEnd(body string, from int) int {
	var quote byte
	for i := from; i < len(body); i++ {
		c := body[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '}':
			return i
		}
	}
	return -1
}

// spacedName reports whether a hole is a bare field name written with
// spaces, such as {logical used}.
func spacedName(hole string) (string, bool) {
	words := strings.Fields(hole)
	if len(words) < 2 {
		return "", false
	}
	for _, w := range words {
		for i, r := range w {
			if !isIdentStart(r) && (i == 0 || !unicode.IsDigit(r)) {
				return "", false
			}
		}
	}
	return strings.Join(words, " "), true
}
