package lexer

import "testing"

func collect(t *testing.T, src string, partial bool) []Token {
	t.Helper()

	lx := New(src).WithPartial(partial)

	var toks []Token

	for {
		tok := lx.Next()
		toks = append(toks, tok)

		if tok.Kind == TokenEnd || tok.Kind == TokenError {
			return toks
		}
	}
}

func TestLexNavigationTokens(t *testing.T) {
	t.Parallel()

	toks := collect(t, "$.a.b[0]", false)

	kinds := []Kind{TokenPunct, TokenPunct, TokenIdent, TokenPunct, TokenIdent, TokenPunct, TokenInt, TokenPunct, TokenEnd}
	if len(toks) != len(kinds) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(kinds))
	}

	for i, k := range kinds {
		if toks[i].Kind != k {
			t.Errorf("token %d kind = %v, want %v", i, toks[i].Kind, k)
		}
	}
}

func TestLexRadixIntegers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		src  string
		want int64
	}{
		{"0x1f", 31},
		{"0o17", 15},
		{"0b1010", 10},
		{"42", 42},
	}

	for _, c := range cases {
		toks := collect(t, c.src, false)

		if toks[0].Kind != TokenInt {
			t.Fatalf("%s: kind = %v, want TokenInt", c.src, toks[0].Kind)
		}

		if toks[0].Int != c.want {
			t.Errorf("%s = %d, want %d", c.src, toks[0].Int, c.want)
		}
	}
}

func TestLexFloats(t *testing.T) {
	t.Parallel()

	toks := collect(t, "3.5 1e3 2.5e-2", false)

	want := []float64{3.5, 1000, 0.025}

	for i, w := range want {
		if toks[i].Kind != TokenFloat {
			t.Fatalf("token %d kind = %v, want TokenFloat", i, toks[i].Kind)
		}

		if toks[i].Float != w {
			t.Errorf("token %d = %v, want %v", i, toks[i].Float, w)
		}
	}
}

func TestLexStringEscapes(t *testing.T) {
	t.Parallel()

	toks := collect(t, `'a\nb\t\'c\''`, false)

	if toks[0].Kind != TokenString {
		t.Fatalf("kind = %v, want TokenString", toks[0].Kind)
	}

	if got, want := toks[0].Text, "a\nb\t'c'"; got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
}

func TestLexVarAndEnvAndMeta(t *testing.T) {
	t.Parallel()

	toks := collect(t, "$name env:HOME @key ${", false)

	if toks[0].Kind != TokenVar || toks[0].Text != "name" {
		t.Errorf("token 0 = %+v, want var name", toks[0])
	}

	if toks[1].Kind != TokenEnvVar || toks[1].Text != "HOME" {
		t.Errorf("token 1 = %+v, want env HOME", toks[1])
	}

	if toks[2].Kind != TokenIdent || toks[2].Text != "@key" {
		t.Errorf("token 2 = %+v, want ident @key", toks[2])
	}

	if toks[3].Kind != TokenPunct || toks[3].Text != "${" {
		t.Errorf("token 3 = %+v, want punct ${", toks[3])
	}
}

func TestLexMatchOperators(t *testing.T) {
	t.Parallel()

	toks := collect(t, "a ^= b $= c *= d", false)

	ops := []string{"^=", "$=", "*="}

	for i, op := range ops {
		tok := toks[i*2+1]
		if tok.Kind != TokenPunct || tok.Text != op {
			t.Errorf("operator %d = %+v, want %q", i, tok, op)
		}
	}
}

func TestLexPartialDegradesToEnd(t *testing.T) {
	t.Parallel()

	toks := collect(t, "a.b %> rest", true)

	last := toks[len(toks)-1]
	if last.Kind != TokenEnd {
		t.Fatalf("partial mode ended with %v, want TokenEnd", last.Kind)
	}

	// Strict mode reports the stray '#' as an error instead.
	toks = collect(t, "a # b", false)

	last = toks[len(toks)-1]
	if last.Kind != TokenError {
		t.Fatalf("strict mode ended with %v, want TokenError", last.Kind)
	}
}

func TestLexEndIsIdempotent(t *testing.T) {
	t.Parallel()

	lx := New("a")

	lx.Next() // ident

	for i := 0; i < 3; i++ {
		if tok := lx.Next(); tok.Kind != TokenEnd {
			t.Fatalf("Next() after end = %v, want TokenEnd", tok.Kind)
		}
	}
}
