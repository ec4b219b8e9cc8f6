package airportdb

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxNameLen = 23

// Letters that do not decompose into a base letter plus combining marks.
var nameSpecialRunes = map[rune]string{
	'ß': "ss", 'æ': "ae", 'Æ': "AE", 'œ': "oe", 'Œ': "OE",
	'ø': "o", 'Ø': "O", 'ł': "l", 'Ł': "L", 'đ': "d", 'Đ': "D",
	'ð': "d", 'Ð': "D", 'þ': "th", 'Þ': "TH", 'ı': "i",
}

// nameNormalizer transliterates airport names to upper-case ASCII.
// It holds transformer state and must not be shared between goroutines.
type nameNormalizer struct {
	t transform.Transformer
}

func newNameNormalizer() *nameNormalizer {
	return &nameNormalizer{
		t: transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
	}
}

// Normalize returns the display form of an airport name: ASCII only, without
// quote-like characters, upper-cased and truncated.
func (n *nameNormalizer) Normalize(name string) string {
	stripped, _, err := transform.String(n.t, name)
	if err != nil {
		stripped = name
	}

	var b strings.Builder
	for _, r := range stripped {
		if repl, ok := nameSpecialRunes[r]; ok {
			b.WriteString(repl)
			continue
		}
		switch {
		case r == '\'' || r == '`' || r == '^' || r == '\\' || r == '"':
			continue
		case r > unicode.MaxASCII:
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}

	out := strings.ToUpper(b.String())
	if len(out) > maxNameLen {
		out = out[:maxNameLen]
	}
	return out
}
