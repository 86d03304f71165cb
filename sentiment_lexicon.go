package reviewsense

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Lexicon holds word polarities, intensity modifiers and negations. Keys are
// normalized words, so contractions appear without apostrophes ("dont").
type Lexicon struct {
	words     map[string]LexiconEntry
	modifiers map[string]float64
	negations map[string]bool
	mutex     sync.RWMutex
}

// LexiconEntry represents a word's sentiment information
type LexiconEntry struct {
	Word       string
	Sentiment  float64 // -1 to 1
	Confidence float64 // 0 to 1
}

// ExternalLexicon is the JSON layout accepted by LoadExternal.
type ExternalLexicon struct {
	Words     []WordEntry     `json:"words,omitempty"`
	Modifiers []ModifierEntry `json:"modifiers,omitempty"`
	Negations []string        `json:"negations,omitempty"`
}

// WordEntry represents a sentiment word in JSON format
type WordEntry struct {
	Word       string  `json:"word"`
	Sentiment  float64 `json:"sentiment"`
	Confidence float64 `json:"confidence"`
}

// ModifierEntry represents a modifier word in JSON format
type ModifierEntry struct {
	Word   string  `json:"word"`
	Factor float64 `json:"factor"`
}

// NewLexicon returns the built-in English review lexicon.
func NewLexicon() *Lexicon {
	lexicon := &Lexicon{
		words:     make(map[string]LexiconEntry),
		modifiers: make(map[string]float64),
		negations: make(map[string]bool),
	}
	lexicon.loadWords()
	lexicon.loadModifiers()
	lexicon.loadNegations()
	return lexicon
}

// LoadLexicon returns the built-in lexicon merged with the JSON file at path.
// An empty path returns the built-in lexicon.
func LoadLexicon(path string) (*Lexicon, error) {
	lexicon := NewLexicon()
	if path == "" {
		return lexicon, nil
	}
	if err := lexicon.LoadExternal(path); err != nil {
		return nil, fmt.Errorf("failed to load external lexicon: %w", err)
	}
	return lexicon, nil
}

// LoadExternal merges words, modifiers and negations from a JSON file.
// Entries are normalized before they are stored.
func (sl *Lexicon) LoadExternal(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading lexicon file: %w", err)
	}

	var external ExternalLexicon
	if err := json.Unmarshal(data, &external); err != nil {
		return fmt.Errorf("error parsing lexicon JSON: %w", err)
	}

	sl.mutex.Lock()
	defer sl.mutex.Unlock()

	for _, entry := range external.Words {
		word := Normalize(entry.Word)
		if word == "" {
			continue
		}
		sl.words[word] = LexiconEntry{
			Word:       word,
			Sentiment:  clamp(entry.Sentiment, -1, 1),
			Confidence: clamp(entry.Confidence, 0, 1),
		}
	}
	for _, entry := range external.Modifiers {
		if word := Normalize(entry.Word); word != "" {
			sl.modifiers[word] = entry.Factor
		}
	}
	for _, neg := range external.Negations {
		if word := Normalize(neg); word != "" {
			sl.negations[word] = true
		}
	}
	return nil
}

func (sl *Lexicon) loadWords() {
	entries := []LexiconEntry{
		// Strong positive
		{"excellent", 0.9, 0.95},
		{"amazing", 0.85, 0.95},
		{"wonderful", 0.85, 0.95},
		{"fantastic", 0.85, 0.95},
		{"outstanding", 0.9, 0.95},
		{"perfect", 0.95, 0.95},
		{"brilliant", 0.85, 0.95},
		{"superb", 0.85, 0.95},
		{"flawless", 0.9, 0.95},
		{"flagship", 0.6, 0.7},
		{"best", 0.85, 0.95},
		{"love", 0.8, 0.9},
		{"awesome", 0.8, 0.9},
		{"incredible", 0.85, 0.9},

		// Moderate positive
		{"good", 0.6, 0.9},
		{"great", 0.75, 0.9},
		{"nice", 0.5, 0.85},
		{"happy", 0.7, 0.9},
		{"beautiful", 0.75, 0.9},
		{"enjoy", 0.65, 0.9},
		{"like", 0.5, 0.85},
		{"smooth", 0.6, 0.85},
		{"sharp", 0.5, 0.75},
		{"crisp", 0.55, 0.8},
		{"fast", 0.4, 0.6},
		{"reliable", 0.6, 0.85},
		{"recommend", 0.7, 0.9},
		{"worth", 0.5, 0.8},
		{"better", 0.5, 0.85},
		{"lasts", 0.4, 0.6},

		// Mild positive
		{"okay", 0.2, 0.7},
		{"ok", 0.2, 0.7},
		{"fine", 0.3, 0.75},
		{"decent", 0.4, 0.8},
		{"solid", 0.4, 0.8},

		// Strong negative
		{"terrible", -0.9, 0.95},
		{"awful", -0.85, 0.95},
		{"horrible", -0.85, 0.95},
		{"worst", -0.85, 0.95},
		{"useless", -0.85, 0.95},
		{"garbage", -0.85, 0.9},
		{"junk", -0.8, 0.9},
		{"broken", -0.75, 0.9},
		{"hate", -0.8, 0.9},
		{"refund", -0.6, 0.8},

		// Moderate negative
		{"bad", -0.6, 0.9},
		{"poor", -0.65, 0.9},
		{"disappointing", -0.7, 0.9},
		{"disappointed", -0.7, 0.9},
		{"laggy", -0.65, 0.9},
		{"lag", -0.55, 0.85},
		{"slow", -0.4, 0.7},
		{"weak", -0.5, 0.8},
		{"cracked", -0.7, 0.9},
		{"drains", -0.55, 0.85},
		{"overheats", -0.65, 0.9},
		{"crashes", -0.7, 0.9},
		{"freezes", -0.65, 0.9},
		{"annoying", -0.65, 0.9},
		{"worse", -0.5, 0.85},
		{"fail", -0.7, 0.9},
		{"fails", -0.7, 0.9},
		{"scratches", -0.3, 0.7},
		{"expensive", -0.3, 0.6},
		{"cheap", -0.3, 0.6},
	}
	for _, e := range entries {
		sl.words[e.Word] = e
	}
}

func (sl *Lexicon) loadModifiers() {
	sl.modifiers = map[string]float64{
		// Intensifiers
		"very":       0.3,
		"extremely":  0.5,
		"absolutely": 0.5,
		"totally":    0.4,
		"really":     0.3,
		"so":         0.3,
		"super":      0.4,
		"incredibly": 0.5,
		"completely": 0.4,
		"utterly":    0.5,

		// Diminishers
		"slightly": -0.3,
		"somewhat": -0.3,
		"rather":   -0.2,
		"fairly":   -0.1,
		"barely":   -0.5,
		"hardly":   -0.5,
		"kinda":    -0.3,
	}
}

func (sl *Lexicon) loadNegations() {
	for _, w := range []string{
		"not", "no", "never", "neither", "nor", "cannot", "cant", "wont",
		"dont", "doesnt", "didnt", "isnt", "arent", "wasnt", "werent",
		"hasnt", "havent", "wouldnt", "shouldnt", "couldnt", "without",
		"nothing", "none",
	} {
		sl.negations[w] = true
	}
}

// Sentiment returns the polarity of a normalized word, 0 if unknown.
func (sl *Lexicon) Sentiment(word string) float64 {
	sl.mutex.RLock()
	defer sl.mutex.RUnlock()
	return sl.words[word].Sentiment
}

// Confidence returns how reliable the polarity of word is, 0 if unknown.
func (sl *Lexicon) Confidence(word string) float64 {
	sl.mutex.RLock()
	defer sl.mutex.RUnlock()
	return sl.words[word].Confidence
}

// IsNegation checks if word is a negation
func (sl *Lexicon) IsNegation(word string) bool {
	sl.mutex.RLock()
	defer sl.mutex.RUnlock()
	return sl.negations[word]
}

// ModifierStrength returns the modifier factor of word: positive for
// intensifiers, negative for diminishers, 0 otherwise.
func (sl *Lexicon) ModifierStrength(word string) float64 {
	sl.mutex.RLock()
	defer sl.mutex.RUnlock()
	return sl.modifiers[word]
}

// AddWord allows adding domain-specific words. The word is normalized first
// and dropped if nothing is left of it.
func (sl *Lexicon) AddWord(word string, sentiment, confidence float64) {
	word = Normalize(word)
	if word == "" {
		return
	}

	sl.mutex.Lock()
	defer sl.mutex.Unlock()

	sl.words[word] = LexiconEntry{
		Word:       word,
		Sentiment:  clamp(sentiment, -1, 1),
		Confidence: clamp(confidence, 0, 1),
	}
}

// Size returns the number of words in the lexicon
func (sl *Lexicon) Size() int {
	sl.mutex.RLock()
	defer sl.mutex.RUnlock()
	return len(sl.words)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
