package reviewsense

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func features(text string) []float64 {
	out := make([]float64, LexicalFeatures)
	lexicalFeatures(Words(Normalize(text)), NewLexicon(), out)
	return out
}

func TestLexiconLookups(t *testing.T) {
	lexicon := NewLexicon()

	if lexicon.Size() == 0 {
		t.Fatal("built-in lexicon is empty")
	}
	if s := lexicon.Sentiment("amazing"); s <= 0 {
		t.Errorf("amazing = %.2f, want positive", s)
	}
	if s := lexicon.Sentiment("laggy"); s >= 0 {
		t.Errorf("laggy = %.2f, want negative", s)
	}
	if s := lexicon.Sentiment("phone"); s != 0 {
		t.Errorf("phone = %.2f, want 0", s)
	}
	if !lexicon.IsNegation("dont") {
		t.Error("dont should be a negation in normalized form")
	}
	if m := lexicon.ModifierStrength("slightly"); m >= 0 {
		t.Errorf("slightly = %.2f, want a diminisher", m)
	}

	lexicon.AddWord("snappy", 2, 0.9)
	if s := lexicon.Sentiment("snappy"); s != 1 {
		t.Errorf("AddWord did not clamp: snappy = %.2f", s)
	}
}

func TestAddWordNormalizes(t *testing.T) {
	tests := []struct {
		word     string
		key      string
		expected float64
	}{
		{"Snappy!", "snappy", 0.7},
		{"  Top-Notch ", "topnotch", 0.9},
		{"Café", "cafe", 0.2},
	}

	lexicon := NewLexicon()
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			lexicon.AddWord(tt.word, tt.expected, 0.8)
			if s := lexicon.Sentiment(tt.key); s != tt.expected {
				t.Errorf("Sentiment(%q) = %.2f, want %.2f", tt.key, s, tt.expected)
			}
			if c := lexicon.Confidence(tt.key); c != 0.8 {
				t.Errorf("Confidence(%q) = %.2f, want 0.8", tt.key, c)
			}
		})
	}

	size := lexicon.Size()
	lexicon.AddWord("!!! 42", 0.5, 0.5)
	if lexicon.Size() != size {
		t.Error("a word with no letters should not be added")
	}
}

func TestCoverageWeightedByConfidence(t *testing.T) {
	sure := NewLexicon()
	sure.AddWord("zippy", 0.6, 1)
	unsure := NewLexicon()
	unsure.AddWord("zippy", 0.6, 0.25)

	words := Words("zippy phone")
	a := make([]float64, LexicalFeatures)
	b := make([]float64, LexicalFeatures)
	lexicalFeatures(words, sure, a)
	lexicalFeatures(words, unsure, b)

	if math.Abs(a[featCoverage]-0.5) > 1e-12 {
		t.Errorf("coverage with full confidence = %v, want 0.5", a[featCoverage])
	}
	if math.Abs(b[featCoverage]-0.125) > 1e-12 {
		t.Errorf("coverage with confidence 0.25 = %v, want 0.125", b[featCoverage])
	}
	if a[featPolarity] != b[featPolarity] {
		t.Errorf("confidence changed polarity: %v vs %v", a[featPolarity], b[featPolarity])
	}
}

func TestLoadExternalLexicon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.json")
	data := `{
  "words": [{"word": "Buttery-Smooth!", "sentiment": 0.8, "confidence": 0.9}],
  "modifiers": [{"word": "Mega", "factor": 0.6}],
  "negations": ["ain't"]
}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	lexicon, err := LoadLexicon(path)
	if err != nil {
		t.Fatalf("LoadLexicon: %v", err)
	}
	if s := lexicon.Sentiment("butterysmooth"); s != 0.8 {
		t.Errorf("butterysmooth = %.2f, want 0.8", s)
	}
	if m := lexicon.ModifierStrength("mega"); m != 0.6 {
		t.Errorf("mega = %.2f, want 0.6", m)
	}
	if !lexicon.IsNegation("aint") {
		t.Error("aint should be a negation")
	}
	if s := lexicon.Sentiment("amazing"); s <= 0 {
		t.Error("built-in words should survive the merge")
	}

	if _, err := LoadLexicon(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing lexicon file should fail")
	}
}

func TestNegationHandling(t *testing.T) {
	pairs := []struct {
		positive string
		negated  string
		desc     string
	}{
		{"This is good.", "This is not good.", "Simple negation"},
		{"I like it.", "I don't like it.", "Contraction negation"},
		{"Happy with the service.", "Not happy with the service.", "Beginning negation"},
		{"The screen is excellent.", "The screen isn't excellent.", "Negation with contraction"},
	}

	for _, pair := range pairs {
		t.Run(pair.desc, func(t *testing.T) {
			pos := features(pair.positive)[featPolarity]
			neg := features(pair.negated)[featPolarity]
			if pos <= 0 || neg >= 0 {
				t.Errorf("Negation not handled properly:\n%s: %.2f\n%s: %.2f",
					pair.positive, pos, pair.negated, neg)
			}
		})
	}
}

func TestNegationScopeEndsAtBut(t *testing.T) {
	lexicon := NewLexicon()
	words := Words("it is not cheap but good")
	if !isNegated(words, 3, lexicon) {
		t.Error("cheap should be negated")
	}
	if isNegated(words, 5, lexicon) {
		t.Error("good follows but and should not be negated")
	}
}

func TestModifierEffects(t *testing.T) {
	base := features("This is good.")[featPositive]
	intensified := features("This is very good.")[featPositive]
	veryIntensified := features("This is extremely good.")[featPositive]
	diminished := features("This is slightly good.")[featPositive]

	if intensified <= base {
		t.Errorf("Intensifier failed: base=%.3f, intensified=%.3f", base, intensified)
	}
	if veryIntensified <= intensified {
		t.Errorf("Strong intensifier failed: intensified=%.3f, very intensified=%.3f", intensified, veryIntensified)
	}
	if diminished >= base {
		t.Errorf("Diminisher failed: base=%.3f, diminished=%.3f", base, diminished)
	}
}

func TestLexicalFeatureRanges(t *testing.T) {
	for _, text := range []string{
		"",
		"Battery lasts all weekend and the camera is flagship level.",
		"It is okay, but the screen scratches easily and nothing stands out.",
		"Laggy performance, weak signal, and the speaker cracked on day two.",
		"not not not very very terrible terrible awful awful awful",
	} {
		for i, v := range features(text) {
			if math.IsNaN(v) || v < -1 || v > 1 {
				t.Errorf("%q: feature %d = %v, want within [-1, 1]", text, i, v)
			}
		}
	}
}

func TestContentWordsKeepsNegations(t *testing.T) {
	lexicon := NewLexicon()
	content := contentWords(Words("this battery is not a phone"), lexicon)

	has := make(map[string]bool)
	for _, w := range content {
		has[w] = true
	}
	for _, want := range []string{"battery", "not", "phone"} {
		if !has[want] {
			t.Errorf("content words %v are missing %q", content, want)
		}
	}
	if has["is"] {
		t.Errorf("content words %v still hold the stop word \"is\"", content)
	}
}
