package deck

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/youruser/deckbuilder/internal/cards"
)

// Skip describes a main-deck entry Decode left out.
type Skip struct {
	Entry  string `json:"entry"`
	Reason string `json:"reason"`
}

func (s Skip) String() string { return s.Entry + ": " + s.Reason }

// Decode reverses Encode.
func (c Codec) Decode(code string) (*Deck, []Skip, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(code))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidEncoding, err)
	}
	if !utf8.Valid(raw) {
		return nil, nil, fmt.Errorf("%w: not UTF-8 text", ErrInvalidEncoding)
	}
	return c.DecodeText(string(raw))
}

func Decode(code string, cat Catalog) (*Deck, []Skip, error) {
	return Codec{Catalog: cat}.Decode(code)
}

// DecodeText parses the plain form produced by Text. Broken main-deck
// entries are skipped and reported; totals are not re-checked, use
// Validate for that.
func (c Codec) DecodeText(text string) (*Deck, []Skip, error) {
	if c.Catalog == nil {
		return nil, nil, ErrNoCatalog
	}
	fields := map[string]string{}
	for _, f := range strings.Split(text, ";") {
		k, v, ok := strings.Cut(f, ":")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		if _, dup := fields[k]; !dup {
			fields[k] = strings.TrimSpace(v)
		}
	}

	leaderID, ok := fields["L"]
	if !ok {
		return nil, nil, ErrMissingLeader
	}
	leader, ok := c.Catalog.ByID(leaderID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownLeader, leaderID)
	}
	if leader.Category != cards.Leader {
		return nil, nil, fmt.Errorf("%w: %s is a %s card", ErrUnknownLeader, leaderID, leader.Category)
	}

	d := New()
	d.leader = leader.CardID

	var skipped []Skip
	for _, e := range splitEntries(fields["M"], c.known) {
		id, n, reason := c.parseEntry(e)
		if reason != "" {
			skipped = append(skipped, Skip{Entry: e, Reason: reason})
			continue
		}
		total := d.main[id] + n
		if total > MaxCopies {
			skipped = append(skipped, Skip{Entry: e, Reason: fmt.Sprintf("count clamped to %d", MaxCopies)})
			total = MaxCopies
		}
		d.main[id] = total
	}

	if don, err := strconv.Atoi(fields["D"]); err == nil && don > 0 {
		d.don = don
	}
	return d, skipped, nil
}

func (c Codec) parseEntry(e string) (string, int, string) {
	i := strings.LastIndex(e, "*")
	if i < 0 {
		return "", 0, "missing count"
	}
	id := e[:i]
	n, err := strconv.Atoi(e[i+1:])
	if err != nil {
		return "", 0, "count is not a number"
	}
	if n <= 0 {
		return "", 0, "count must be positive"
	}
	card, ok := c.Catalog.ByID(id)
	if !ok {
		return "", 0, "unknown card"
	}
	if !card.Category.IsMain() {
		return "", 0, fmt.Sprintf("%s cards do not go in the main deck", card.Category)
	}
	return card.CardID, n, ""
}

func (c Codec) known(id string) bool {
	_, ok := c.Catalog.ByID(id)
	return ok
}

// entryID is the id part of "<id>*<n>".
func entryID(e string) string {
	if i := strings.LastIndex(e, "*"); i >= 0 {
		return e[:i]
	}
	return e
}

// splitEntries splits on "_" while keeping ids that contain "_" intact: a
// fragment without a "*" is joined to the fragment after it, unless known
// says the joined id does not exist but the next fragment does. Then the
// bare fragment stands alone and fails as a missing count. A nil known
// always joins.
func splitEntries(m string, known func(id string) bool) []string {
	if m == "" {
		return nil
	}
	var (
		out     []string
		pending string
	)
	for _, frag := range strings.Split(m, "_") {
		if !strings.Contains(frag, "*") {
			if pending != "" {
				pending += "_" + frag
			} else {
				pending = frag
			}
			continue
		}
		if pending != "" {
			joined := pending + "_" + frag
			if known != nil && !known(entryID(joined)) && known(entryID(frag)) {
				out = append(out, pending)
			} else {
				frag = joined
			}
			pending = ""
		}
		out = append(out, frag)
	}
	if pending != "" {
		out = append(out, pending)
	}
	return out
}
