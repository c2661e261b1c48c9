package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Harshitk-cp/sahai/internal/config"
	"github.com/Harshitk-cp/sahai/internal/domain"
	"github.com/spf13/cobra"
)

var (
	catalogCategory string
	catalogJSON     bool
	searchLimit     int
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse the scheme catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog entries",
	Args:  cobra.NoArgs,
	RunE:  runCatalogList,
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Rank catalog entries against a query",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCatalogSearch,
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one catalog entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogShow,
}

func init() {
	catalogListCmd.Flags().StringVar(&catalogCategory, "category", "", "Only entries in this category")
	catalogSearchCmd.Flags().IntVar(&searchLimit, "limit", 5, "Maximum number of results")
	catalogCmd.PersistentFlags().BoolVar(&catalogJSON, "json", false, "Print JSON")

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
	catalogCmd.AddCommand(catalogShowCmd)
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	c, err := loadCatalog(cmd.Context())
	if err != nil {
		return err
	}

	entries := c.All()
	if catalogCategory != "" {
		entries = c.ByCategory(catalogCategory)
	}
	if catalogJSON {
		return printJSON(cmd.OutOrStdout(), entries)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCATEGORY\tNAME")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.ID, e.Category, e.Name.In(config.DefaultLocale()))
	}
	return w.Flush()
}

func runCatalogSearch(cmd *cobra.Command, args []string) error {
	c, err := loadCatalog(cmd.Context())
	if err != nil {
		return err
	}

	hits := c.Search(strings.Join(args, " "), searchLimit)
	if catalogJSON {
		return printJSON(cmd.OutOrStdout(), hits)
	}
	if len(hits) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matching schemes.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tID\tNAME")
	for _, h := range hits {
		fmt.Fprintf(w, "%d\t%s\t%s\n", h.Score, h.Entry.ID, h.Entry.Name.In(config.DefaultLocale()))
	}
	return w.Flush()
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	c, err := loadCatalog(cmd.Context())
	if err != nil {
		return err
	}

	e, ok := c.ByID(args[0])
	if !ok {
		return fmt.Errorf("scheme %q not found", args[0])
	}
	if catalogJSON {
		return printJSON(cmd.OutOrStdout(), e)
	}
	printEntry(cmd.OutOrStdout(), e, config.DefaultLocale())
	return nil
}

func printEntry(out io.Writer, e domain.CatalogEntry, locale string) {
	fmt.Fprintf(out, "%s (%s)\n", e.Name.In(locale), e.ID)
	fmt.Fprintf(out, "  Category:  %s\n", e.Category)
	if d := e.Description.In(locale); d != "" {
		fmt.Fprintf(out, "  About:     %s\n", d)
	}
	if b := e.Benefit.In(locale); b != "" {
		fmt.Fprintf(out, "  Benefit:   %s\n", b)
	}
	if len(e.Documents) > 0 {
		fmt.Fprintf(out, "  Documents: %s\n", strings.Join(e.Documents, ", "))
	}
	if e.ApplicationURL != "" {
		fmt.Fprintf(out, "  Apply at:  %s\n", e.ApplicationURL)
	}
	if e.Helpline != "" {
		fmt.Fprintf(out, "  Helpline:  %s\n", e.Helpline)
	}
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
