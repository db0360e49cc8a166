package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLexer_NextToken(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:  "call",
			input: `lower(role)`,
			expected: []Token{
				{Type: TokenIdentifier, Value: "lower", Position: 0},
				{Type: TokenLeftParen, Value: "(", Position: 5},
				{Type: TokenIdentifier, Value: "role", Position: 6},
				{Type: TokenRightParen, Value: ")", Position: 10},
				{Type: TokenEOF, Position: 11},
			},
		},
		{
			name:  "f-string keeps raw body",
			input: `f"a\n{x}"`,
			expected: []Token{
				{Type: TokenFString, Value: `a\n{x}`, Position: 0},
				{Type: TokenEOF, Position: 9},
			},
		},
		{
			name:  "string escapes",
			input: `'it\'s' + 12.5`,
			expected: []Token{
				{Type: TokenString, Value: "it's", Position: 0},
				{Type: TokenPlus, Value: "+", Position: 8},
				{Type: TokenNumber, Value: "12.5", Position: 10},
				{Type: TokenEOF, Position: 14},
			},
		},
		{
			name:  "identifier starting with f",
			input: `foo, -1`,
			expected: []Token{
				{Type: TokenIdentifier, Value: "foo", Position: 0},
				{Type: TokenComma, Value: ",", Position: 3},
				{Type: TokenMinus, Value: "-", Position: 5},
				{Type: TokenNumber, Value: "1", Position: 6},
				{Type: TokenEOF, Position: 7},
			},
		},
		{
			name:  "unterminated",
			input: `"abc`,
			expected: []Token{
				{Type: TokenIllegal, Value: "unterminated string", Position: 0},
			},
		},
		{
			name:  "illegal rune",
			input: `a * b`,
			expected: []Token{
				{Type: TokenIdentifier, Value: "a", Position: 0},
				{Type: TokenIllegal, Value: "*", Position: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NewLexer(tt.input).Tokenize())
		})
	}
}

func TestTokenType_String(t *testing.T) {
	assert.Equal(t, "FSTRING", TokenFString.String())
	assert.Equal(t, "TOKEN(99)", TokenType(99).String())
}
