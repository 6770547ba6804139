package lexer

import (
	"testing"
)

// FuzzTokenize feeds random inputs to the lexer to catch panics. The
// lexer should never panic — it should return an error for invalid
// input.
func FuzzTokenize(f *testing.F) {
	seeds := []string{
		`let const if else while break continue fn proc return end true false`,
		`42 3.14 -1 0 1e10 1.5e-3`,
		`+ - * / % ^ > < >= <= == != && || !`,
		`{ } ( ) , ;`,
		`x foo bar_baz myVar _leading`,
		`// line comment`,
		`/* block comment */`,
		`let x = 42; x + 1`,
		``,
		`   `,
		"\t\n\r",
		`/* unterminated`,
		`@#$^&`,
		`\x00`,
		`..`,
		`0 00 0.0 .5 1e10`,
		`let aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa = 1`,
	}

	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Tokenize panicked on input %q: %v", input, r)
				}
			}()
			Tokenize(input, "fuzz.numl")
		}()
	})
}
