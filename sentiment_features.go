package reviewsense

import (
	"math"
	"strings"

	"github.com/bbalet/stopwords"
	"github.com/cespare/xxhash/v2"
	"gonum.org/v1/gonum/floats"
)

// LexicalFeatures is the number of leading embedding slots the lexical
// embedder reserves for lexicon features. The remaining slots hold the hashed
// bag of words.
const LexicalFeatures = 8

// Lexical feature slots.
const (
	featPositive    = iota // squashed positive mass
	featNegative           // squashed negative mass
	featPolarity           // squashed positive minus negative mass
	featNegations          // negation words seen
	featIntensifier        // intensifiers seen
	featDiminisher         // diminishers seen
	featLength             // review length in words
	featCoverage           // confidence-weighted share of words found in the lexicon
)

const (
	negationWindow = 3 // words before a sentiment word checked for negation
	modifierWindow = 2 // words before a sentiment word checked for modifiers
	bigramWeight   = 0.5
)

// lexicalFeatures scores words against the lexicon. Negation flips and halves
// a word's polarity, the nearest modifier scales it.
func lexicalFeatures(words []string, lexicon *Lexicon, out []float64) {
	var (
		posScore     float64
		negScore     float64
		negations    int
		intensifiers int
		diminishers  int
		matched      float64
	)

	for i, word := range words {
		if lexicon.IsNegation(word) {
			negations++
		}
		switch m := lexicon.ModifierStrength(word); {
		case m > 0:
			intensifiers++
		case m < 0:
			diminishers++
		}

		sentiment := lexicon.Sentiment(word)
		if sentiment == 0 {
			continue
		}
		matched += lexicon.Confidence(word)

		sentiment = applyModifier(sentiment, words, i, lexicon)
		if isNegated(words, i, lexicon) {
			sentiment = -sentiment * 0.5
		}

		if sentiment > 0 {
			posScore += sentiment
		} else {
			negScore += -sentiment
		}
	}

	out[featPositive] = math.Tanh(posScore)
	out[featNegative] = math.Tanh(negScore)
	out[featPolarity] = math.Tanh(posScore - negScore)
	out[featNegations] = math.Tanh(float64(negations) / 2)
	out[featIntensifier] = math.Tanh(float64(intensifiers) / 2)
	out[featDiminisher] = math.Tanh(float64(diminishers) / 2)
	out[featLength] = math.Tanh(float64(len(words)) / 20)
	if len(words) > 0 {
		out[featCoverage] = matched / float64(len(words))
	}
}

// applyModifier scales sentiment by the closest preceding modifier.
func applyModifier(sentiment float64, words []string, position int, lexicon *Lexicon) float64 {
	for i := position - 1; i >= 0 && i >= position-modifierWindow; i-- {
		if m := lexicon.ModifierStrength(words[i]); m != 0 {
			return sentiment * (1 + m)
		}
	}
	return sentiment
}

// isNegated detects a negation in the words before position. A "but" between
// the negation and the word closes its scope.
func isNegated(words []string, position int, lexicon *Lexicon) bool {
	for i := position - 1; i >= 0 && i >= position-negationWindow; i-- {
		if words[i] == "but" || words[i] == "however" || words[i] == "although" {
			return false
		}
		if lexicon.IsNegation(words[i]) {
			return true
		}
	}
	return false
}

// contentWords drops English stop words but keeps negations, which the
// stop-word list would otherwise remove.
func contentWords(words []string, lexicon *Lexicon) []string {
	if len(words) == 0 {
		return nil
	}
	kept := make(map[string]bool)
	for _, w := range strings.Fields(stopwords.CleanString(strings.Join(words, " "), "en", false)) {
		kept[w] = true
	}

	content := make([]string, 0, len(words))
	for _, w := range words {
		if kept[w] || lexicon.IsNegation(w) {
			content = append(content, w)
		}
	}
	return content
}

// hashedBag writes an L2-normalized hashed bag of unigrams and bigrams into
// out. An empty word list leaves out zeroed.
func hashedBag(words []string, out []float64) {
	n := uint64(len(out))
	if n == 0 || len(words) == 0 {
		return
	}
	for i, w := range words {
		out[xxhash.Sum64String("u:"+w)%n]++
		if i > 0 {
			out[xxhash.Sum64String("b:"+words[i-1]+" "+w)%n] += bigramWeight
		}
	}
	if norm := floats.Norm(out, 2); norm > 0 {
		floats.Scale(1/norm, out)
	}
}
