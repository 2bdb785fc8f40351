package wkt

import "testing"

func collect(t *Tokenizer) []Token {
	var out []Token
	for tok := t.Next(); tok.Type != TokenEOF; tok = t.Next() {
		out = append(out, tok)
	}
	return out
}

func TestTokenizerClassification(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{
			name:  "words with underscores and digits",
			input: `PARAM_MT[elt_0_1]`,
			want: []Token{
				{Type: TokenWord, Text: "PARAM_MT"},
				{Type: TokenSymbol, Text: "["},
				{Type: TokenWord, Text: "elt_0_1"},
				{Type: TokenSymbol, Text: "]"},
			},
		},
		{
			name:  "numbers",
			input: `42,-12.5,6.3781E+06,1e-3,.5`,
			want: []Token{
				{Type: TokenNumber, Text: "42"},
				{Type: TokenSymbol, Text: ","},
				{Type: TokenNumber, Text: "-12.5"},
				{Type: TokenSymbol, Text: ","},
				{Type: TokenNumber, Text: "6.3781E+06"},
				{Type: TokenSymbol, Text: ","},
				{Type: TokenNumber, Text: "1e-3"},
				{Type: TokenSymbol, Text: ","},
				{Type: TokenNumber, Text: ".5"},
			},
		},
		{
			name:  "lone minus is a symbol",
			input: `- 5`,
			want: []Token{
				{Type: TokenSymbol, Text: "-"},
				{Type: TokenNumber, Text: "5"},
			},
		},
		{
			name:  "exponent without digits ends the number",
			input: `2E`,
			want: []Token{
				{Type: TokenNumber, Text: "2"},
				{Type: TokenWord, Text: "E"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := collect(NewTokenizer(tt.input))
			if len(got) != len(tt.want) {
				t.Fatalf("got %d tokens %v, want %d", len(got), got, len(tt.want))
			}
			for i := range got {
				if got[i].Type != tt.want[i].Type || got[i].Text != tt.want[i].Text {
					t.Errorf("token %d = %v %q, want %v %q", i, got[i].Type, got[i].Text, tt.want[i].Type, tt.want[i].Text)
				}
			}
		})
	}
}

func TestTokenizerNumberValue(t *testing.T) {
	tz := NewTokenizer("6.3781E+06")
	v, ok := tz.Next().Number()
	if !ok || v != 6378100 {
		t.Errorf("Number() = %v, %v", v, ok)
	}
	if _, ok := NewTokenizer("abc").Next().Number(); ok {
		t.Error("word token reported a number")
	}
}

func TestTokenizerPositions(t *testing.T) {
	tz := NewTokenizer("UNIT[\n  \"metre\",\r\n 1]")
	var last Token
	for tok := tz.Next(); tok.Type != TokenEOF; tok = tz.Next() {
		last = tok
		if tok.Text == `"` {
			if _, ok := tz.readQuoted(); !ok {
				t.Fatal("unterminated")
			}
		}
	}
	if last.Text != "]" || last.Line != 3 || last.Column != 3 {
		t.Errorf("last token = %+v, want ] at 3:3", last)
	}

	tz = NewTokenizer("A,\n  B")
	tz.Next()
	tz.Next()
	if b := tz.Next(); b.Line != 2 || b.Column != 3 {
		t.Errorf("B at %d:%d, want 2:3", b.Line, b.Column)
	}
}

func TestTokenizerRaw(t *testing.T) {
	tz := NewTokenizer("A \t\nB")
	want := []TokenType{TokenWord, TokenWhitespace, TokenEOL, TokenWord, TokenEOF}
	for i, typ := range want {
		if got := tz.NextRaw(); got.Type != typ {
			t.Errorf("raw token %d = %v, want %v", i, got.Type, typ)
		}
	}
	if tz.Current().Type != TokenEOF {
		t.Errorf("Current() = %v", tz.Current())
	}
}

func TestReadQuoted(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{`"WGS 84"`, "WGS 84", true},
		{`"NAD83 / UTM zone 10N"`, "NAD83 / UTM zone 10N", true},
		{`"say ""hi"""`, `say "hi"`, true},
		{`""`, "", true},
		{`"open`, "open", false},
	}
	for _, tt := range tests {
		tz := NewTokenizer(tt.input)
		tz.Next()
		got, ok := tz.readQuoted()
		if got != tt.want || ok != tt.ok {
			t.Errorf("readQuoted(%s) = %q, %v, want %q, %v", tt.input, got, ok, tt.want, tt.ok)
		}
	}
}
