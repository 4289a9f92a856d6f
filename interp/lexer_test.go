package interp

import "testing"

func lexAll(t *testing.T, src string) []Token {
	t.Helper()
	errs := newErrorStream(ModeThrow)
	toks, err := NewLexer(src, errs).Tokenize()
	if err != nil {
		t.Fatalf("Tokenize(%q): %v", src, err)
	}
	return toks
}

func TestLexerBasicOperatorsAndPunctuation(t *testing.T) {
	toks := lexAll(t, "= == != < <= > >= + - * / % ^ ! & | : . [ ] ( ) { } , ; ?")
	want := []TokenKind{
		TokAssign, TokEq, TokNe, TokLt, TokLe, TokGt, TokGe,
		TokPlus, TokMinus, TokStar, TokSlash, TokPercent, TokCaret,
		TokBang, TokAmp, TokPipe, TokColon, TokDot,
		TokLBracket, TokRBracket, TokLParen, TokRParen,
		TokLBrace, TokRBrace, TokComma, TokSemicolon, TokQuestion, TokEOF,
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
}

func TestLexerKeywordsVsIdentifiers(t *testing.T) {
	toks := lexAll(t, "if else do while for in next break return function ifelse x")
	kinds := []TokenKind{
		TokKeywordIf, TokKeywordElse, TokKeywordDo, TokKeywordWhile, TokKeywordFor,
		TokKeywordIn, TokKeywordNext, TokKeywordBreak, TokKeywordReturn, TokKeywordFunction,
		TokIdentifier, TokIdentifier, TokEOF,
	}
	if len(toks) != len(kinds) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(kinds))
	}
	for i, k := range kinds {
		if toks[i].Kind != k {
			t.Errorf("token %d (%q): got %s, want %s", i, toks[i].Text, toks[i].Kind, k)
		}
	}
}

func TestLexerNumberLiterals(t *testing.T) {
	cases := []struct {
		src  string
		kind TokenKind
	}{
		{"123", TokInt},
		{"3.14", TokFloat},
		{"1e10", TokFloat},
		{"1.5e-3", TokFloat},
		{"0", TokInt},
	}
	for _, c := range cases {
		toks := lexAll(t, c.src)
		if toks[0].Kind != c.kind {
			t.Errorf("%q: got %s, want %s", c.src, toks[0].Kind, c.kind)
		}
		if toks[0].Text != c.src {
			t.Errorf("%q: token text = %q", c.src, toks[0].Text)
		}
	}
}

func TestLexerNumberBacktracksWhenNoExponentDigits(t *testing.T) {
	toks := lexAll(t, "1e")
	// "1" as int, then identifier "e" — no exponent digits follow.
	if toks[0].Kind != TokInt || toks[0].Text != "1" {
		t.Fatalf("expected leading int literal \"1\", got %+v", toks[0])
	}
	if toks[1].Kind != TokIdentifier || toks[1].Text != "e" {
		t.Fatalf("expected trailing identifier \"e\", got %+v", toks[1])
	}
}

func TestLexerStringEscapes(t *testing.T) {
	toks := lexAll(t, `"a\nb\tc\\d\"e"`)
	if toks[0].Kind != TokString {
		t.Fatalf("expected string literal, got %s", toks[0].Kind)
	}
}

func TestLexerUnterminatedStringIsLexError(t *testing.T) {
	errs := newErrorStream(ModeThrow)
	_, err := NewLexer(`"unterminated`, errs).Tokenize()
	if err == nil {
		t.Fatalf("expected a lex error for an unterminated string")
	}
}

func TestLexerBadEscapeIsLexError(t *testing.T) {
	errs := newErrorStream(ModeThrow)
	_, err := NewLexer(`"bad\zescape"`, errs).Tokenize()
	if err == nil {
		t.Fatalf("expected a lex error for an unrecognized escape sequence")
	}
}

func TestLexerCommentsAreSkipped(t *testing.T) {
	toks := lexAll(t, "x // trailing comment\n/* block\ncomment */ y")
	if len(toks) != 3 { // x, y, EOF
		t.Fatalf("got %d tokens, want 3: %+v", len(toks), toks)
	}
	if toks[0].Text != "x" || toks[1].Text != "y" {
		t.Fatalf("unexpected token text: %+v", toks)
	}
}

func TestLexerByteAndUTF16OffsetsForMultiByteRunes(t *testing.T) {
	// "é" is 2 UTF-8 bytes but 1 UTF-16 code unit; "x" follows it.
	toks := lexAll(t, "é x")
	if toks[0].Text != "é" {
		t.Fatalf("expected identifier \"é\", got %q", toks[0].Text)
	}
	if toks[0].ByteStart != 0 || toks[0].ByteEnd != 2 {
		t.Errorf("byte span for \"é\" = [%d,%d), want [0,2)", toks[0].ByteStart, toks[0].ByteEnd)
	}
	if toks[0].UTF16Start != 0 || toks[0].UTF16End != 1 {
		t.Errorf("utf16 span for \"é\" = [%d,%d), want [0,1)", toks[0].UTF16Start, toks[0].UTF16End)
	}
	// "x" starts after "é " — byte offset 3, utf16 offset 2.
	if toks[1].ByteStart != 3 {
		t.Errorf("byte start for \"x\" = %d, want 3", toks[1].ByteStart)
	}
	if toks[1].UTF16Start != 2 {
		t.Errorf("utf16 start for \"x\" = %d, want 2", toks[1].UTF16Start)
	}
}

func TestLexerUnrecognizedCharacterIsLexError(t *testing.T) {
	errs := newErrorStream(ModeThrow)
	_, err := NewLexer("@", errs).Tokenize()
	if err == nil {
		t.Fatalf("expected a lex error for an unrecognized character")
	}
}

func TestLexerEmptySourceYieldsOnlyEOF(t *testing.T) {
	toks := lexAll(t, "")
	if len(toks) != 1 || toks[0].Kind != TokEOF {
		t.Fatalf("expected only an EOF token, got %+v", toks)
	}
}
