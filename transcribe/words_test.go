package transcribe

import "testing"

func TestMergeTokens(t *testing.T) {
	sentence := RawSentence{
		Text: "There is",
		End:  0.9,
		Tokens: []RawToken{
			{Text: " The", Start: 0.0, End: 0.3},
			{Text: "re", Start: 0.3, End: 0.5},
			{Text: " is", Start: 0.5, End: 0.9},
		},
	}

	words := mergeTokens(sentence)
	if len(words) != 2 {
		t.Fatalf("got %d words, want 2: %+v", len(words), words)
	}

	want := []Segment{
		{Text: "There", Start: 0.0, End: 0.5, Kind: KindWord},
		{Text: "is", Start: 0.5, End: 0.9, Kind: KindWord},
	}
	for i, w := range want {
		if words[i] != w {
			t.Errorf("word %d = %+v, want %+v", i, words[i], w)
		}
	}
}

func TestMergeTokensPartitionsSentence(t *testing.T) {
	sentence := RawSentence{
		End: 2.0,
		Tokens: []RawToken{
			{Text: " a", Start: 0.0, End: 0.4},
			{Text: " quick", Start: 0.4, End: 0.9},
			{Text: " brown", Start: 0.9, End: 1.3},
			{Text: " fox", Start: 1.3, End: 1.8},
		},
	}

	words := mergeTokens(sentence)
	if len(words) != 4 {
		t.Fatalf("got %d words, want 4", len(words))
	}
	for i, w := range words {
		if w.Start >= w.End {
			t.Errorf("word %d %q has start %v >= end %v", i, w.Text, w.Start, w.End)
		}
		if i > 0 && words[i-1].End != w.Start {
			t.Errorf("gap between word %d and %d: %v != %v", i-1, i, words[i-1].End, w.Start)
		}
	}
	if got := words[len(words)-1].End; got != 2.0 {
		t.Errorf("last word ends at %v, want sentence end 2.0", got)
	}
}

func TestMergeTokensDiscardsWhitespaceWords(t *testing.T) {
	sentence := RawSentence{
		End: 1.0,
		Tokens: []RawToken{
			{Text: " ", Start: 0.0, End: 0.2},
			{Text: " hello", Start: 0.2, End: 1.0},
		},
	}

	words := mergeTokens(sentence)
	if len(words) != 1 {
		t.Fatalf("got %d words, want 1: %+v", len(words), words)
	}
	if words[0].Text != "hello" {
		t.Errorf("word = %q, want %q", words[0].Text, "hello")
	}
}

func TestMergeTokensNoTokens(t *testing.T) {
	if words := mergeTokens(RawSentence{Text: "quiet", End: 1.0}); words != nil {
		t.Errorf("got %+v, want nil", words)
	}
}

func TestMergeTokensSingleToken(t *testing.T) {
	sentence := RawSentence{
		End:    0.7,
		Tokens: []RawToken{{Text: "word", Start: 0.1, End: 0.5}},
	}
	words := mergeTokens(sentence)
	if len(words) != 1 {
		t.Fatalf("got %d words, want 1", len(words))
	}
	if words[0].Start != 0.1 || words[0].End != 0.7 {
		t.Errorf("word span = [%v, %v], want [0.1, 0.7]", words[0].Start, words[0].End)
	}
}
