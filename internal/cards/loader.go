package cards

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

// FormatFromPath guesses the document format from a file name or URL.
func FormatFromPath(p string) Format {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	switch strings.ToLower(filepath.Ext(p)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".csv":
		return FormatCSV
	}
	return FormatJSON
}

type document struct {
	Cards []Card `json:"cards" yaml:"cards"`
}

// ParseDocument decodes a catalog document. JSON and YAML documents are
// either a list of cards or an object with a "cards" list.
func ParseDocument(data []byte, format Format) ([]Card, error) {
	var (
		out []Card
		err error
	)
	switch format {
	case FormatCSV:
		out, err = parseCSV(data)
	case FormatYAML:
		out, err = parseYAML(data)
	default:
		out, err = parseJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return out, nil
}

func parseJSON(data []byte) ([]Card, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var out []Card
		err := json.Unmarshal(trimmed, &out)
		return out, err
	}
	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, err
	}
	return doc.Cards, nil
}

func parseYAML(data []byte) ([]Card, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	root := node.Content[0]
	if root.Kind == yaml.SequenceNode {
		var out []Card
		err := root.Decode(&out)
		return out, err
	}
	var doc document
	if err := root.Decode(&doc); err != nil {
		return nil, err
	}
	return doc.Cards, nil
}

// LoadFile reads a catalog document from disk.
func LoadFile(path string) ([]Card, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out, err := ParseDocument(b, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return out, nil
}

func parseListCell(s string) []string {
	s = strings.ReplaceAll(s, "／", "/")
	parts := strings.Split(s, "/")
	out := []string{}
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" && t != "-" {
			out = append(out, t)
		}
	}
	return out
}

func parseIntCell(s string) *int {
	s = strings.TrimSpace(s)
	if blank(s) {
		return nil
	}
	v, err := strconv.Atoi(strings.TrimPrefix(s, "+"))
	if err != nil {
		return nil
	}
	return &v
}

// csvColumns maps card fields to the header names of the official exports
// and of English exports.
var csvColumns = map[string][]string{
	"id":         {"カードID", "card_id", "id"},
	"name":       {"カード名", "name"},
	"category":   {"タイプ", "種類", "category", "type"},
	"color":      {"色", "colors", "color"},
	"cost":       {"コスト", "cost"},
	"power":      {"パワー", "power"},
	"counter":    {"カウンター", "counter"},
	"text":       {"テキスト", "text", "effect"},
	"trigger":    {"トリガー", "trigger"},
	"attributes": {"属性", "attributes"},
	"block":      {"ブロックアイコン", "block_icon"},
	"image":      {"画像URL", "image_url", "image"},
}

func parseCSV(data []byte) ([]Card, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("csv has no header")
	}
	header := rows[0]
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}

	get := func(row []string, field string) string {
		for _, name := range csvColumns[field] {
			if idx, ok := cols[name]; ok && idx < len(row) {
				return row[idx]
			}
		}
		return ""
	}

	out := []Card{}
	for n, row := range rows[1:] {
		cat, err := ParseCategory(get(row, "category"))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		c := Card{
			CardID:     strings.TrimSpace(get(row, "id")),
			Name:       get(row, "name"),
			Category:   cat,
			Colors:     parseListCell(get(row, "color")),
			Cost:       parseIntCell(get(row, "cost")),
			Power:      parseIntCell(get(row, "power")),
			Counter:    parseIntCell(get(row, "counter")),
			Text:       get(row, "text"),
			Trigger:    get(row, "trigger"),
			Attributes: parseListCell(get(row, "attributes")),
			BlockIcon:  parseIntCell(get(row, "block")),
			ImageURL:   get(row, "image"),
		}
		out = append(out, c)
	}
	return out, nil
}
