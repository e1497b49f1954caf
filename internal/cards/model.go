package cards

import (
	"fmt"
	"strings"
)

// None stands for an absent cost, power, counter or block icon in filter
// selections.
const None = -1

type Category string

const (
	Leader    Category = "LEADER"
	Character Category = "CHARACTER"
	Event     Category = "EVENT"
	Stage     Category = "STAGE"
	Resource  Category = "DON"
)

// ParseCategory accepts the spellings found in catalog exports.
func ParseCategory(s string) (Category, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LEADER", "リーダー":
		return Leader, nil
	case "CHARACTER", "キャラ", "キャラクター":
		return Character, nil
	case "EVENT", "イベント":
		return Event, nil
	case "STAGE", "ステージ":
		return Stage, nil
	case "DON", "DON!!", "RESOURCE":
		return Resource, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// IsMain reports whether cards of this category go into the main deck.
func (c Category) IsMain() bool {
	return c == Character || c == Event || c == Stage
}

// UnmarshalText normalizes categories in JSON, YAML and CSV documents.
func (c *Category) UnmarshalText(b []byte) error {
	v, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

type Card struct {
	CardID     string   `json:"card_id" yaml:"card_id"`
	Name       string   `json:"name" yaml:"name"`
	Category   Category `json:"category" yaml:"category"`
	Colors     []string `json:"colors" yaml:"colors"`
	Cost       *int     `json:"cost,omitempty" yaml:"cost,omitempty"`
	Power      *int     `json:"power,omitempty" yaml:"power,omitempty"`
	Counter    *int     `json:"counter,omitempty" yaml:"counter,omitempty"`
	Trigger    string   `json:"trigger,omitempty" yaml:"trigger,omitempty"`
	Text       string   `json:"text,omitempty" yaml:"text,omitempty"`
	Attributes []string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	BlockIcon  *int     `json:"block_icon,omitempty" yaml:"block_icon,omitempty"`
	ImageURL   string   `json:"image_url" yaml:"image_url"`
}

func value(p *int) int {
	if p == nil {
		return None
	}
	return *p
}

func (c Card) CostValue() int      { return value(c.Cost) }
func (c Card) PowerValue() int     { return value(c.Power) }
func (c Card) CounterValue() int   { return value(c.Counter) }
func (c Card) BlockIconValue() int { return value(c.BlockIcon) }

// blank reports whether a text field carries no content.
func blank(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "-", "none", "なし":
		return true
	}
	return false
}

// BlockerMarkers are the effect-text markers of the Blocker keyword.
var BlockerMarkers = []string{"【ブロッカー】", "[blocker]"}

func (c Card) HasTrigger() bool { return !blank(c.Trigger) }

func (c Card) HasEffect() bool { return !blank(c.Text) }

func (c Card) IsVanilla() bool { return !c.HasEffect() && !c.HasTrigger() }

func (c Card) IsBlocker() bool {
	t := strings.ToLower(c.Text)
	for _, m := range BlockerMarkers {
		if strings.Contains(t, m) {
			return true
		}
	}
	return false
}

func (c Card) HasColor(color string) bool {
	for _, have := range c.Colors {
		if strings.EqualFold(have, color) {
			return true
		}
	}
	return false
}
