package expr

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenType represents the type of a lexical token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIllegal

	TokenIdentifier // lower, size_gb
	TokenString     // "literal" or 'literal'
	TokenFString    // f"text {expr}"
	TokenNumber     // 12, 1.5

	TokenPlus       // +
	TokenMinus      // -
	TokenComma      // ,
	TokenLeftParen  // (
	TokenRightParen // )
)

var tokenNames = map[TokenType]string{
	TokenEOF:        "EOF",
	TokenIllegal:    "ILLEGAL",
	TokenIdentifier: "IDENTIFIER",
	TokenString:     "STRING",
	TokenFString:    "FSTRING",
	TokenNumber:     "NUMBER",
	TokenPlus:       "PLUS",
	TokenMinus:      "MINUS",
	TokenComma:      "COMMA",
	TokenLeftParen:  "LEFT_PAREN",
	TokenRightParen: "RIGHT_PAREN",
}

// String returns a string representation of the token type.
func (tt TokenType) String() string {
	if s, ok := tokenNames[tt]; ok {
		return s
	}
	return fmt.Sprintf("TOKEN(%d)", int(tt))
}

// Token is a lexical token. Value holds the decoded text for string tokens
// and the raw body for f-strings.
type Token struct {
	Type     TokenType
	Value    string
	Position int
}

func (t Token) String() string {
	if t.Type == TokenEOF {
		return "EOF"
	}
	return fmt.Sprintf("%s(%s)", t.Type, t.Value)
}

// Lexer splits an expression into tokens.
type Lexer struct {
	input string
	pos   int
}

// NewLexer creates a lexer over input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize returns every token up to and including EOF, stopping at the
// first illegal token.
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF || tok.Type == TokenIllegal {
			return tokens
		}
	}
}

// NextToken scans the next token.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()
	start := l.pos
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Position: start}
	}

	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	switch {
	case r == '+':
		l.pos += size
		return Token{Type: TokenPlus, Value: "+", Position: start}
	case r == '-':
		l.pos += size
		return Token{Type: TokenMinus, Value: "-", Position: start}
	case r == ',':
		l.pos += size
		return Token{Type: TokenComma, Value: ",", Position: start}
	case r == '(':
		l.pos += size
		return Token{Type: TokenLeftParen, Value: "(", Position: start}
	case r == ')':
		l.pos += size
		return Token{Type: TokenRightParen, Value: ")", Position: start}
	case r == '"' || r == '\'':
		return l.readString(start, false)
	case (r == 'f' || r == 'F') && l.pos+1 < len(l.input) && (l.input[l.pos+1] == '"' || l.input[l.pos+1] == '\''):
		l.pos++
		return l.readString(start, true)
	case unicode.IsDigit(r):
		return l.readNumber(start)
	case isIdentStart(r):
		return l.readIdentifier(start)
	}

	l.pos += size
	return Token{Type: TokenIllegal, Value: string(r), Position: start}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += size
	}
}

func (l *Lexer) readIdentifier(start int) Token {
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !isIdentStart(r) && !unicode.IsDigit(r) {
			break
		}
		l.pos += size
	}
	return Token{Type: TokenIdentifier, Value: l.input[start:l.pos], Position: start}
}

func (l *Lexer) readNumber(start int) Token {
	seenDot := false
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == '.' && !seenDot {
			seenDot = true
		} else if c < '0' || c > '9' {
			break
		}
		l.pos++
	}
	return Token{Type: TokenNumber, Value: l.input[start:l.pos], Position: start}
}

// readString reads a quoted literal starting at the quote under l.pos.
// Escapes are decoded for plain strings; f-string bodies are kept raw so the
// parser can split out the {expr} holes.
func (l *Lexer) readString(start int, raw bool) Token {
	quote := l.input[l.pos]
	l.pos++

	var sb strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case c == quote:
			l.pos++
			typ := TokenString
			if raw {
				typ = TokenFString
			}
			return Token{Type: typ, Value: sb.String(), Position: start}
		case c == '\\' && l.pos+1 < len(l.input):
			next := l.input[l.pos+1]
			l.pos += 2
			if raw {
				sb.WriteByte(c)
				sb.WriteByte(next)
				continue
			}
			sb.WriteString(unescape(next))
		default:
			sb.WriteByte(c)
			l.pos++
		}
	}

	return Token{Type: TokenIllegal, Value: "unterminated string", Position: start}
}

func unescape(c byte) string {
	switch c {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case '\\', '"', '\'':
		return string(c)
	default:
		return "\\" + string(c)
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}
