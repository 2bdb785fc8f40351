// Package wkt reads OGC Well-Known Text definitions of coordinate systems
// and math transforms.
package wkt

import (
	"strconv"
	"strings"
	"unicode"
)

// TokenType classifies a token.
type TokenType int

// Token types.
const (
	TokenEOF TokenType = iota
	TokenWord
	TokenNumber
	TokenSymbol
	TokenWhitespace
	TokenEOL
)

var tokenTypeNames = [...]string{"end of input", "word", "number", "symbol", "whitespace", "end of line"}

// String returns a readable name for the token type.
func (t TokenType) String() string {
	if int(t) < 0 || int(t) >= len(tokenTypeNames) {
		return "unknown"
	}
	return tokenTypeNames[t]
}

// Token is one lexical unit with the position of its first character.
type Token struct {
	Type   TokenType
	Text   string
	Line   int
	Column int
}

// Number returns the numeric value of a number token.
func (t Token) Number() (float64, bool) {
	if t.Type != TokenNumber {
		return 0, false
	}
	v, err := strconv.ParseFloat(t.Text, 64)
	return v, err == nil
}

// Tokenizer splits WKT text into tokens.
//
// Words start with a letter and may continue with letters, digits and
// underscores, so PARAM_MT and elt_0_1 are single words. Numbers take an
// optional sign, a decimal point and an E exponent. Every other printable
// character is a one-character symbol.
type Tokenizer struct {
	src  []rune
	pos  int
	line int
	col  int
	tok  Token
}

// NewTokenizer creates a tokenizer positioned before the first token.
func NewTokenizer(text string) *Tokenizer {
	return &Tokenizer{src: []rune(text), line: 1, col: 1}
}

// Current returns the last token read.
func (t *Tokenizer) Current() Token {
	return t.tok
}

// Next returns the next token, skipping whitespace and line breaks.
func (t *Tokenizer) Next() Token {
	for {
		tok := t.NextRaw()
		if tok.Type != TokenWhitespace && tok.Type != TokenEOL {
			return tok
		}
	}
}

// NextRaw returns the next token including whitespace and line breaks.
func (t *Tokenizer) NextRaw() Token {
	tok := Token{Type: TokenEOF, Line: t.line, Column: t.col}
	if t.pos >= len(t.src) {
		t.tok = tok
		return tok
	}

	start := t.pos
	r := t.src[t.pos]
	switch tok.Type = classify(r); tok.Type {
	case TokenWord:
		t.advanceWhile(func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' })
	case TokenNumber:
		t.scanNumber()
	case TokenEOL:
		t.advanceWhile(isLineBreak)
	case TokenWhitespace:
		t.advanceWhile(func(r rune) bool { return unicode.IsSpace(r) && !isLineBreak(r) })
	default:
		if t.startsNumber() {
			tok.Type = TokenNumber
			t.scanNumber()
		} else {
			t.advance()
		}
	}

	tok.Text = string(t.src[start:t.pos])
	t.tok = tok
	return tok
}

func classify(r rune) TokenType {
	switch {
	case unicode.IsDigit(r):
		return TokenNumber
	case unicode.IsLetter(r):
		return TokenWord
	case isLineBreak(r):
		return TokenEOL
	case unicode.IsSpace(r):
		return TokenWhitespace
	default:
		return TokenSymbol
	}
}

func isLineBreak(r rune) bool {
	return r == '\n' || r == '\r'
}

func (t *Tokenizer) peek(offset int) rune {
	if i := t.pos + offset; i < len(t.src) {
		return t.src[i]
	}
	return 0
}

func (t *Tokenizer) advance() {
	r := t.src[t.pos]
	t.pos++
	switch {
	case r == '\n':
		t.line++
		t.col = 1
	case r == '\r':
		if t.peek(0) != '\n' {
			t.line++
			t.col = 1
		}
	default:
		t.col++
	}
}

func (t *Tokenizer) advanceWhile(ok func(rune) bool) {
	for t.pos < len(t.src) && ok(t.src[t.pos]) {
		t.advance()
	}
}

// startsNumber reports whether a sign or decimal point at the current
// position begins a number rather than standing alone.
func (t *Tokenizer) startsNumber() bool {
	r := t.peek(0)
	switch r {
	case '-', '+':
		next := t.peek(1)
		return unicode.IsDigit(next) || (next == '.' && unicode.IsDigit(t.peek(2)))
	case '.':
		return unicode.IsDigit(t.peek(1))
	}
	return false
}

func (t *Tokenizer) scanNumber() {
	if r := t.peek(0); r == '-' || r == '+' {
		t.advance()
	}
	t.advanceWhile(unicode.IsDigit)
	if t.peek(0) == '.' {
		t.advance()
		t.advanceWhile(unicode.IsDigit)
	}
	if r := t.peek(0); r == 'E' || r == 'e' {
		digits := 1
		if s := t.peek(1); s == '+' || s == '-' {
			digits = 2
		}
		if unicode.IsDigit(t.peek(digits)) {
			for range digits {
				t.advance()
			}
			t.advanceWhile(unicode.IsDigit)
		}
	}
}

// readQuoted reads the characters after an opening double quote up to the
// closing one, keeping whitespace. A doubled quote stands for one quote.
// It returns false when the input ends first.
func (t *Tokenizer) readQuoted() (string, bool) {
	var b strings.Builder
	for {
		tok := t.NextRaw()
		switch {
		case tok.Type == TokenEOF:
			return b.String(), false
		case tok.Text == `"`:
			if t.peek(0) != '"' {
				return b.String(), true
			}
			t.NextRaw()
			b.WriteByte('"')
		default:
			b.WriteString(tok.Text)
		}
	}
}
