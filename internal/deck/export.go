package deck

import (
	"encoding/base64"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// DefaultLocale orders cards of equal cost by name when a Codec has no
// locale of its own.
var DefaultLocale = language.Japanese

// Codec turns decks into shareable codes and back. Catalog resolves ids for
// sorting and decoding and is required; a Codec without one returns
// ErrNoCatalog.
type Codec struct {
	Catalog Catalog
	Locale  language.Tag
}

func (c Codec) locale() language.Tag {
	if c.Locale == language.Und {
		return DefaultLocale
	}
	return c.Locale
}

// Text renders the plain deck code "L:<leader>;M:<id>*<n>_...;D:<n>".
func (c Codec) Text(d *Deck) (string, error) {
	if c.Catalog == nil {
		return "", ErrNoCatalog
	}
	if d.leader == "" {
		return "", ErrMissingLeader
	}
	entries := d.Entries(c.Catalog, c.locale())
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, e.CardID+"*"+strconv.Itoa(e.Count))
	}
	var b strings.Builder
	b.WriteString("L:")
	b.WriteString(d.leader)
	b.WriteString(";M:")
	b.WriteString(strings.Join(parts, "_"))
	b.WriteString(";D:")
	b.WriteString(strconv.Itoa(d.don))
	return b.String(), nil
}

// Encode returns the shareable deck code: the UTF-8 bytes of Text in
// standard base64.
func (c Codec) Encode(d *Deck) (string, error) {
	s, err := c.Text(d)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString([]byte(s)), nil
}

func Encode(d *Deck, cat Catalog) (string, error) {
	return Codec{Catalog: cat}.Encode(d)
}
