package lexer

import (
	"strings"
	"testing"

	"github.com/Protocol-Lattice/dreamsearch/token"
)

func TestLexer_Filter(t *testing.T) {
	input := "!level:error"
	lexer := New(input)

	tok := lexer.NextToken()
	if tok.Type != token.WORD {
		t.Fatalf("expected token type WORD, got %s", tok.Type)
	}
	if tok.Literal != "!level" {
		t.Errorf("expected literal '!level', got %q", tok.Literal)
	}

	tok = lexer.NextToken()
	if tok.Type != token.COLON {
		t.Fatalf("expected token type COLON, got %s", tok.Type)
	}
	if tok.Pos != 6 {
		t.Errorf("expected colon at 6, got %d", tok.Pos)
	}

	tok = lexer.NextValueToken()
	if tok.Type != token.WORD || tok.Literal != "error" {
		t.Fatalf("expected value WORD 'error', got %s %q", tok.Type, tok.Literal)
	}

	tok = lexer.NextToken()
	if tok.Type != token.EOF {
		t.Errorf("expected token type EOF, got %s", tok.Type)
	}
}

func TestLexer_Strings(t *testing.T) {
	input := `"hello world" "say \"hi\""`
	lexer := New(input)

	tok := lexer.NextToken()
	if tok.Type != token.STRING {
		t.Fatalf("expected token type STRING, got %s", tok.Type)
	}
	if tok.Literal != `"hello world"` {
		t.Errorf("expected literal with quotes, got %q", tok.Literal)
	}

	if tok = lexer.NextToken(); tok.Type != token.WHITESPACE {
		t.Fatalf("expected WHITESPACE, got %s", tok.Type)
	}

	tok = lexer.NextToken()
	if tok.Type != token.STRING || tok.Literal != `"say \"hi\""` {
		t.Errorf("expected escaped string, got %s %q", tok.Type, tok.Literal)
	}
}

func TestLexer_UnterminatedString(t *testing.T) {
	lexer := New(`msg:"oops`)
	lexer.NextToken()
	lexer.NextToken()

	tok := lexer.NextValueToken()
	if tok.Type != token.ILLEGAL {
		t.Fatalf("expected token type ILLEGAL, got %s", tok.Type)
	}
	if tok.Literal != `"oops` || tok.Pos != 4 {
		t.Errorf("expected illegal literal at 4, got %q at %d", tok.Literal, tok.Pos)
	}
}

func TestLexer_ValueModeKeepsColons(t *testing.T) {
	lexer := New("2021-03-04T10:11:12 rest")
	tok := lexer.NextValueToken()
	if tok.Type != token.WORD || tok.Literal != "2021-03-04T10:11:12" {
		t.Fatalf("expected datetime word, got %s %q", tok.Type, tok.Literal)
	}
}

func TestLexer_ListMode(t *testing.T) {
	lexer := New("[a, b]")
	want := []struct {
		tt  token.TokenType
		lit string
	}{
		{token.LBRACKET, "["},
		{token.WORD, "a"},
		{token.COMMA, ","},
		{token.WHITESPACE, " "},
		{token.WORD, "b"},
		{token.RBRACKET, "]"},
		{token.EOF, ""},
	}

	first := lexer.NextValueToken()
	if first.Type != want[0].tt {
		t.Fatalf("expected %s, got %s", want[0].tt, first.Type)
	}
	for i, w := range want[1:] {
		tok := lexer.NextListToken()
		if tok.Type != w.tt || tok.Literal != w.lit {
			t.Errorf("token %d: expected %s %q, got %s %q", i+1, w.tt, w.lit, tok.Type, tok.Literal)
		}
	}
}

func TestLexer_Peek(t *testing.T) {
	lexer := New("key:value")
	lexer.NextToken()

	peeked := lexer.Peek()
	if peeked.Type != token.COLON {
		t.Fatalf("expected peek COLON, got %s", peeked.Type)
	}
	if next := lexer.NextToken(); next != peeked {
		t.Errorf("peek consumed input: got %+v after peek %+v", next, peeked)
	}
}

func TestLexer_ReproducesInput(t *testing.T) {
	inputs := []string{
		"",
		"hello world",
		"  (a:b OR c)  ",
		`tags[browser]:"chrome 90" !x:y`,
		"weird ::: ))) input",
	}
	for _, input := range inputs {
		lexer := New(input)
		var sb strings.Builder
		for {
			tok := lexer.NextToken()
			if tok.Type == token.EOF {
				break
			}
			sb.WriteString(tok.Literal)
		}
		if sb.String() != input {
			t.Errorf("concatenated literals %q, want %q", sb.String(), input)
		}
	}
}
