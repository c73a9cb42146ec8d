package scpi

import "testing"

func allTokens(t *testing.T, input string) []Token {
	t.Helper()
	lex := NewLexer([]byte(input))
	var toks []Token
	for {
		tok, ok, code := lex.Next()
		if code != NoError {
			t.Fatalf("lex error on %q at token %d: %v", input, len(toks), code)
		}
		if !ok {
			break
		}
		toks = append(toks, tok)
	}
	return toks
}

func TestLexerSimpleQuery(t *testing.T) {
	toks := allTokens(t, "MEAS:VOLT:DC?\n")
	kinds := []Kind{KindMnemonic, KindMnemonicSeparator, KindMnemonic, KindMnemonicSeparator, KindMnemonic, KindQuerySuffix, KindMessageTerminator}
	if len(toks) != len(kinds) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(kinds), toks)
	}
	for i, k := range kinds {
		if toks[i].Kind != k {
			t.Errorf("token %d kind = %v, want %v", i, toks[i].Kind, k)
		}
	}
}

func TestLexerCommonCommand(t *testing.T) {
	toks := allTokens(t, "*IDN?\n")
	if len(toks) != 4 {
		t.Fatalf("got %d tokens, want 4: %+v", len(toks), toks)
	}
	if toks[0].Kind != KindCommonPrefix || toks[1].Kind != KindMnemonic || toks[2].Kind != KindQuerySuffix {
		t.Errorf("unexpected token kinds: %+v", toks)
	}
	if string(toks[1].Data) != "IDN" {
		t.Errorf("mnemonic = %q, want IDN", toks[1].Data)
	}
}

func TestLexerNumericArguments(t *testing.T) {
	toks := allTokens(t, "SOUR:VOLT 1.5,-2.5E3\n")
	var nums []float32
	for _, tok := range toks {
		if tok.Kind == KindDecimalNumeric {
			nums = append(nums, tok.Num)
		}
	}
	if len(nums) != 2 {
		t.Fatalf("got %d numerics, want 2: %+v", len(nums), nums)
	}
	if nums[0] != 1.5 || nums[1] != -2500 {
		t.Errorf("nums = %v, want [1.5 -2500]", nums)
	}
}

func TestLexerStringData(t *testing.T) {
	toks := allTokens(t, `SYST:ERR "bad ""quote"" here"` + "\n")
	var s Token
	for _, tok := range toks {
		if tok.Kind == KindStringData {
			s = tok
		}
	}
	want := `bad ""quote"" here`
	if string(s.Data) != want {
		t.Errorf("string data = %q, want %q", s.Data, want)
	}
}

func TestLexerArbitraryBlock(t *testing.T) {
	toks := allTokens(t, "TRACe #13abc\n")
	var blk Token
	for _, tok := range toks {
		if tok.Kind == KindArbitraryBlock {
			blk = tok
		}
	}
	if string(blk.Data) != "abc" {
		t.Errorf("block data = %q, want %q", blk.Data, "abc")
	}
}

func TestLexerNonDecimalNumeric(t *testing.T) {
	toks := allTokens(t, "MEM:ADDR #HFF\n")
	var n Token
	for _, tok := range toks {
		if tok.Kind == KindNonDecimalNumeric {
			n = tok
		}
	}
	if n.NNum != 255 {
		t.Errorf("nondecimal value = %d, want 255", n.NNum)
	}
}

func TestLexerMnemonicTooLong(t *testing.T) {
	lex := NewLexer([]byte("ABCDEFGHIJKLM\n"))
	_, _, code := lex.Next()
	if code != ProgramMnemonicTooLong {
		t.Errorf("code = %v, want ProgramMnemonicTooLong", code)
	}
}

func TestLexerInvalidSeparator(t *testing.T) {
	lex := NewLexer([]byte(",BAD\n"))
	_, _, code := lex.Next()
	if code != HeaderSeparatorError {
		t.Errorf("code = %v, want HeaderSeparatorError", code)
	}
}
