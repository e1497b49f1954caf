package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/youruser/deckbuilder/internal/cards"
	"github.com/youruser/deckbuilder/internal/deck"
	imagepkg "github.com/youruser/deckbuilder/internal/image"
)

// parseValues turns "1,2,none" into ints with cards.None for "none".
func parseValues(in []string) ([]int, error) {
	var out []int
	for _, s := range in {
		s = strings.TrimSpace(s)
		if strings.EqualFold(s, "none") || s == "-" {
			out = append(out, cards.None)
			continue
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q", s)
		}
		out = append(out, v)
	}
	return out, nil
}

func filterCmd() *cobra.Command {
	var (
		q                              cards.FilterQuery
		categories                     []string
		costs, powers, counters, block []string
		asJSON                         bool
	)
	cmd := &cobra.Command{
		Use:   "filter [search]",
		Short: "List catalog cards matching every given criterion",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := loadIndex()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				q.Search = args[0]
			}
			for _, c := range categories {
				cat, err := cards.ParseCategory(c)
				if err != nil {
					return err
				}
				q.Categories = append(q.Categories, cat)
			}
			for _, f := range []struct {
				in  []string
				out *[]int
			}{{costs, &q.Costs}, {powers, &q.Powers}, {counters, &q.Counters}, {block, &q.BlockIcons}} {
				if *f.out, err = parseValues(f.in); err != nil {
					return err
				}
			}

			out := cards.Filter(idx.All(), q)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			for _, c := range out {
				cost := "-"
				if c.Cost != nil {
					cost = strconv.Itoa(*c.Cost)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %-10s %3s  %s\n", c.CardID, c.Category, cost, c.Name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d matches\n", len(out))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&q.Colors, "color", nil, "required colors (all must match)")
	f.StringSliceVar(&categories, "category", nil, "categories (any)")
	f.StringSliceVar(&costs, "cost", nil, "costs, \"none\" for no cost")
	f.StringSliceVar(&powers, "power", nil, "powers, \"none\" for no power")
	f.StringSliceVar(&counters, "counter", nil, "counter values, \"none\" for no counter")
	f.StringSliceVar(&q.Attributes, "attribute", nil, "attributes (any)")
	f.StringSliceVar(&block, "block", nil, "block icons, \"none\" for no icon")
	f.StringSliceVar(&q.Abilities, "ability", nil, "vanilla, blocker, trigger (all must match)")
	f.BoolVar(&asJSON, "json", false, "print cards as JSON")
	return cmd
}

// buildDeck adds cards through the deck rules and reports every rejection.
func buildDeck(idx *cards.Index, leader string, entries []string, don int) (*deck.Deck, error) {
	d := deck.New()
	add := func(id string) error {
		c, err := idx.Get(id)
		if err != nil {
			return err
		}
		if out := d.Add(c); out != deck.Added {
			return fmt.Errorf("%s: %s", id, out.Message())
		}
		return nil
	}
	if err := add(leader); err != nil {
		return nil, err
	}
	for _, e := range entries {
		id, n := e, 1
		if i := strings.LastIndex(e, "*"); i >= 0 {
			v, err := strconv.Atoi(e[i+1:])
			if err != nil || v <= 0 {
				return nil, fmt.Errorf("invalid entry %q", e)
			}
			id, n = e[:i], v
		}
		for j := 0; j < n; j++ {
			if err := add(id); err != nil {
				return nil, err
			}
		}
	}
	var donCard *cards.Card
	for _, c := range idx.All() {
		if c.Category == cards.Resource {
			c := c
			donCard = &c
			break
		}
	}
	for i := 0; i < don; i++ {
		if donCard == nil {
			return nil, fmt.Errorf("catalog has no DON!! card")
		}
		if out := d.Add(*donCard); out != deck.Added {
			return nil, fmt.Errorf("DON!!: %s", out.Message())
		}
	}
	return d, nil
}

func encodeCmd() *cobra.Command {
	var (
		leader  string
		entries []string
		don     int
		plain   bool
	)
	cmd := &cobra.Command{
		Use:     "encode",
		Short:   "Build a deck and print its share code",
		Example: `  deckctl encode --leader OP01-001 --card OP01-006*4 --card OP01-016*2 --don 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := loadIndex()
			if err != nil {
				return err
			}
			d, err := buildDeck(idx, leader, entries, don)
			if err != nil {
				return err
			}
			codec := deck.Codec{Catalog: idx}
			var code string
			if plain {
				code, err = codec.Text(d)
			} else {
				code, err = codec.Encode(d)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), code)
			return nil
		},
	}
	cmd.Flags().StringVar(&leader, "leader", "", "leader card id")
	cmd.Flags().StringArrayVar(&entries, "card", nil, "main deck entry id or id*count (repeatable)")
	cmd.Flags().IntVar(&don, "don", deck.MaxDon, "DON!! cards")
	cmd.Flags().BoolVar(&plain, "plain", false, "print the code before base64")
	_ = cmd.MarkFlagRequired("leader")
	return cmd
}

func decodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode CODE",
		Short: "Print the deck held in a share code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := loadIndex()
			if err != nil {
				return err
			}
			d, skipped, err := deck.Decode(args[0], idx)
			if err != nil {
				return err
			}
			for _, s := range skipped {
				logger.Warn("entry skipped", zap.String("entry", s.Entry), zap.String("reason", s.Reason))
			}
			w := cmd.OutOrStdout()
			leader, _ := idx.ByID(d.Leader())
			fmt.Fprintf(w, "Leader: %s %s\n", leader.CardID, leader.Name)
			for _, e := range d.Entries(idx, deck.DefaultLocale) {
				c, _ := idx.ByID(e.CardID)
				fmt.Fprintf(w, "  %dx %-14s %s\n", e.Count, e.CardID, c.Name)
			}
			fmt.Fprintf(w, "Main: %d  DON!!: %d\n", d.MainCount(), d.Don())
			for _, p := range d.Validate() {
				fmt.Fprintf(w, "warning: %s\n", p)
			}
			return nil
		},
	}
}

func qrCmd() *cobra.Command {
	var (
		out  string
		size int
	)
	cmd := &cobra.Command{
		Use:   "qr CODE",
		Short: "Write a deck code as a QR PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := loadIndex()
			if err != nil {
				return err
			}
			if _, _, err := deck.Decode(args[0], idx); err != nil {
				return err
			}
			b, err := imagepkg.DeckQRPNG(args[0], size)
			if err != nil {
				return err
			}
			return os.WriteFile(out, b, 0o644)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "deck.png", "output file")
	cmd.Flags().IntVar(&size, "size", imagepkg.DefaultQRSize, "image size in pixels")
	return cmd
}
