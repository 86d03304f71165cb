package reviewsense

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	htmlTagRE = regexp.MustCompile(`<.*?>`)
	urlRE     = regexp.MustCompile(`http\S+`)
)

// Normalize cleans review text the same way the classifier's training data
// was cleaned: HTML tags, URLs, punctuation, emoji and digits are removed,
// whitespace is collapsed and the result is lower-cased.
//
// The output contains only the letters a-z separated by single spaces, with
// no leading or trailing space. It may be empty. Normalize(Normalize(s)) ==
// Normalize(s) for every s.
func Normalize(text string) string {
	text = htmlTagRE.ReplaceAllString(text, "")
	text = urlRE.ReplaceAllString(text, "")
	text = foldCompat(text)

	var b strings.Builder
	b.Grow(len(text))

	pendingSpace := false
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
			r += 'a' - 'A'
		case unicode.IsSpace(r):
			pendingSpace = b.Len() > 0
			continue
		default:
			// Punctuation, digits, emoji and anything else outside ASCII
			// letters is dropped without leaving a gap, so "don't" → "dont".
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}

	cleaned := b.String()

	// Dropping punctuation can glue a new "http..." word together
	// ("htt-ps" → "https"), so the URL rule runs once more on the result.
	if strings.Contains(cleaned, "http") {
		cleaned = strings.Join(strings.Fields(urlRE.ReplaceAllString(cleaned, "")), " ")
	}
	return cleaned
}

// Words splits normalized text into its words.
func Words(cleaned string) []string {
	return strings.Fields(cleaned)
}

// foldCompat maps compatibility characters and accented letters onto their
// plain forms ("ﬁ" → "fi", "é" → "e", no-break space → space).
func foldCompat(text string) string {
	if isASCII(text) {
		return text
	}
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return folded
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
