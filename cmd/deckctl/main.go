package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/youruser/deckbuilder/internal/cards"
	"github.com/youruser/deckbuilder/internal/logging"
)

var (
	catalogPath string
	verbose     bool

	logger *zap.Logger
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "deckctl",
		Short: "Search the card catalog and work with deck codes offline",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if verbose {
				level = "debug"
			}
			var err error
			logger, err = logging.New(level, true)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&catalogPath, "catalog", "c", "data/cards.json", "catalog document (json, yaml or csv)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	root.AddCommand(filterCmd(), encodeCmd(), decodeCmd(), qrCmd())
	return root
}

func loadIndex() (*cards.Index, error) {
	records, err := cards.LoadFile(catalogPath)
	if err != nil {
		return nil, err
	}
	idx, err := cards.BuildIndex(records)
	if err != nil {
		return nil, err
	}
	logger.Debug("catalog loaded", zap.String("path", catalogPath), zap.Int("cards", idx.Len()))
	return idx, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
