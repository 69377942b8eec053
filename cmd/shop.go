package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/moondogdev/reup-allotment-calculator/internal/browser"
	"github.com/moondogdev/reup-allotment-calculator/internal/cli"
	"github.com/moondogdev/reup-allotment-calculator/internal/config"
	"github.com/moondogdev/reup-allotment-calculator/internal/store"

	"github.com/spf13/cobra"
)

var shopCmd = &cobra.Command{
	Use:   "shop",
	Short: "List dispensaries",
	Args:  cobra.NoArgs,
	RunE:  runShopList,
}

var shopOpenCmd = &cobra.Command{
	Use:   "open [name]",
	Short: "Open a dispensary website (default dispensary when no name is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runShopOpen,
}

var shopAddCmd = &cobra.Command{
	Use:   "add NAME URL",
	Short: "Add a dispensary or update its URL",
	Args:  cobra.ExactArgs(2),
	RunE:  runShopAdd,
}

var shopRemoveCmd = &cobra.Command{
	Use:   "remove NAME",
	Short: "Remove a dispensary",
	Args:  cobra.ExactArgs(1),
	RunE:  runShopRemove,
}

func init() {
	shopCmd.AddCommand(shopOpenCmd, shopAddCmd, shopRemoveCmd)
	rootCmd.AddCommand(shopCmd)
}

// withStore opens the link database for the duration of fn.
func withStore(fn func(*store.Store) error) error {
	s, err := store.Open(config.DBPath())
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	return fn(s)
}

type linkJSON struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Default bool   `json:"default,omitempty"`
}

// printLinks renders links as a table, or as JSON with --json.
func printLinks(title, nameHeader string, links []store.Link, defaultName string) error {
	if flagJSON {
		out := make([]linkJSON, len(links))
		for i, l := range links {
			out[i] = linkJSON{Name: l.Name, URL: l.URL, Default: defaultName != "" && strings.EqualFold(l.Name, defaultName)}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	rows := make([][]string, 0, len(links))
	for _, l := range links {
		name := "  " + l.Name
		if defaultName != "" && strings.EqualFold(l.Name, defaultName) {
			name = "★ " + l.Name
		}
		rows = append(rows, []string{name, l.URL})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   title,
		Headers: []string{nameHeader, "URL"},
		Rows:    rows,
	}))
	fmt.Println()
	return nil
}

func runShopList(_ *cobra.Command, _ []string) error {
	return withStore(func(s *store.Store) error {
		links, err := s.Dispensaries()
		if err != nil {
			return fmt.Errorf("listing dispensaries: %w", err)
		}
		return printLinks("Dispensaries", "Name", links, run.cfg.Shop.DefaultDispensary)
	})
}

func runShopOpen(_ *cobra.Command, args []string) error {
	name := run.cfg.Shop.DefaultDispensary
	if len(args) == 1 {
		name = args[0]
	}
	if name == "" {
		return errors.New("no dispensary given and no default set (reup setup, or reup shop open NAME)")
	}

	return withStore(func(s *store.Store) error {
		l, err := s.Dispensary(name)
		if err != nil {
			return err
		}
		run.log.Info().Str("dispensary", l.Name).Str("url", l.URL).Msg("opening dispensary")
		if err := browser.Open(l.URL); err != nil {
			return err
		}
		fmt.Printf("  Opened %s (%s)\n", l.Name, l.URL)
		return nil
	})
}

func runShopAdd(_ *cobra.Command, args []string) error {
	return withStore(func(s *store.Store) error {
		if err := s.AddDispensary(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("  Saved dispensary %s\n", strings.TrimSpace(args[0]))
		return nil
	})
}

func runShopRemove(_ *cobra.Command, args []string) error {
	return withStore(func(s *store.Store) error {
		if err := s.RemoveDispensary(args[0]); err != nil {
			return err
		}
		fmt.Printf("  Removed dispensary %s\n", strings.TrimSpace(args[0]))

		if strings.EqualFold(strings.TrimSpace(args[0]), run.cfg.Shop.DefaultDispensary) {
			cfg := run.cfg
			cfg.Shop.DefaultDispensary = ""
			return saveConfig(cfg)
		}
		return nil
	})
}
