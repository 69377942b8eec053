package cmd

import (
	"fmt"

	"github.com/moondogdev/reup-allotment-calculator/internal/browser"
	"github.com/moondogdev/reup-allotment-calculator/internal/store"

	"github.com/spf13/cobra"
)

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "List helpful resources",
	Args:  cobra.NoArgs,
	RunE:  runLinksList,
}

var linksOpenCmd = &cobra.Command{
	Use:   "open LABEL",
	Short: "Open a resource in the browser",
	Args:  cobra.ExactArgs(1),
	RunE:  runLinksOpen,
}

func init() {
	linksCmd.AddCommand(linksOpenCmd)
	rootCmd.AddCommand(linksCmd)
}

func runLinksList(_ *cobra.Command, _ []string) error {
	return withStore(func(s *store.Store) error {
		links, err := s.Resources()
		if err != nil {
			return fmt.Errorf("listing resources: %w", err)
		}
		return printLinks("Resources", "Label", links, "")
	})
}

func runLinksOpen(_ *cobra.Command, args []string) error {
	return withStore(func(s *store.Store) error {
		l, err := s.Resource(args[0])
		if err != nil {
			return err
		}
		run.log.Info().Str("resource", l.Name).Str("url", l.URL).Msg("opening resource")
		if err := browser.Open(l.URL); err != nil {
			return err
		}
		fmt.Printf("  Opened %s (%s)\n", l.Name, l.URL)
		return nil
	})
}
