package analysis

import (
	"reflect"
	"strings"
	"testing"
)

// checkTokens verifies the invariants every built-in analyzer keeps: one
// position per token, unit increments and lengths, and offsets that slice
// the input.
func checkTokens(t *testing.T, input string, tokens []Token, lower bool) {
	t.Helper()
	for i, tok := range tokens {
		if tok.Position != i {
			t.Errorf("token %d position = %d, want %d", i, tok.Position, i)
		}
		if tok.PositionIncrement != 1 || tok.PositionLength != 1 {
			t.Errorf("token %d increment/length = %d/%d, want 1/1", i, tok.PositionIncrement, tok.PositionLength)
		}
		if tok.StartByte < 0 || tok.EndByte > len(input) || tok.StartByte > tok.EndByte {
			t.Fatalf("invalid byte offsets: start=%d end=%d input_len=%d", tok.StartByte, tok.EndByte, len(input))
		}
		if i > 0 && tok.StartByte < tokens[i-1].EndByte {
			t.Errorf("token %d overlaps previous token", i)
		}
		want := input[tok.StartByte:tok.EndByte]
		if lower {
			want = strings.ToLower(want)
		}
		if tok.Term != want {
			t.Errorf("token %d term = %q, want %q", i, tok.Term, want)
		}
		if tok.Term == "" {
			t.Error("empty term produced")
		}
	}
}

func FuzzStandardAnalyzer(f *testing.F) {
	f.Add("Hello World")
	f.Add("")
	f.Add("  spaces  everywhere  ")
	f.Add("café résumé naïve")
	f.Add("hello-world foo_bar")
	f.Add("123 456 789")
	f.Add("New mayor is [John Smith](type=person) today")

	f.Fuzz(func(t *testing.T, input string) {
		a := NewStandardAnalyzer()
		tokens := a.Analyze("field", input)
		checkTokens(t, input, tokens, true)

		streamed, err := Collect(NewReaderStream(a, "field", strings.NewReader(input)))
		if err != nil {
			t.Fatalf("Collect: %v", err)
		}
		if !reflect.DeepEqual(streamed, tokens) {
			t.Errorf("stream tokens differ from Analyze")
		}
	})
}

func FuzzWhitespaceAnalyzer(f *testing.F) {
	f.Add("Hello World")
	f.Add("")
	f.Add("\t\n\r mixed whitespace")

	f.Fuzz(func(t *testing.T, input string) {
		tokens := NewWhitespaceAnalyzer().Analyze("field", input)
		checkTokens(t, input, tokens, false)
	})
}
