package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/Harshitk-cp/sahai/internal/config"
	"github.com/Harshitk-cp/sahai/internal/domain"
	"github.com/Harshitk-cp/sahai/internal/nlu"
	"github.com/Harshitk-cp/sahai/internal/store"
	"github.com/Harshitk-cp/sahai/internal/tools"
	"github.com/spf13/cobra"
)

var (
	eligAge      int
	eligIncome   int
	eligGender   string
	eligCategory string
	eligBPL      bool
	eligJSON     bool
)

var eligibilityCmd = &cobra.Command{
	Use:   "eligibility",
	Short: "Evaluate every scheme against a set of facts",
	Long: `Run the eligibility engine directly. Only the flags you pass are treated
as known; schemes whose rules depend on an unset fact are reported as
partially eligible.

Example:
  sahaictl eligibility --age 65 --income 40000 --bpl`,
	Args: cobra.NoArgs,
	RunE: runEligibility,
}

func init() {
	f := eligibilityCmd.Flags()
	f.IntVar(&eligAge, "age", 0, "Age in years")
	f.IntVar(&eligIncome, "income", 0, "Annual income in rupees")
	f.StringVar(&eligGender, "gender", "", "male, female or other")
	f.StringVar(&eligCategory, "category", "", "general, obc, sc, st or ews")
	f.BoolVar(&eligBPL, "bpl", false, "Holds a BPL card")
	f.BoolVar(&eligJSON, "json", false, "Print the raw tool result as JSON")
}

func runEligibility(cmd *cobra.Command, args []string) error {
	c, err := loadCatalog(cmd.Context())
	if err != nil {
		return err
	}

	inputs := map[string]any{}
	flags := cmd.Flags()
	if flags.Changed("age") {
		inputs[string(domain.FieldAge)] = eligAge
	}
	if flags.Changed("income") {
		inputs[string(domain.FieldIncome)] = eligIncome
	}
	if flags.Changed("gender") {
		inputs[string(domain.FieldGender)] = eligGender
	}
	if flags.Changed("category") {
		inputs[string(domain.FieldCategory)] = eligCategory
	}
	if flags.Changed("bpl") {
		inputs[string(domain.FieldBPL)] = eligBPL
	}

	registry := tools.NewDefaultRegistry(c, store.NewMemoryApplicationStore(), nlu.NewExtractor())
	res := registry.Execute(cmd.Context(), tools.EligibilityEngine, inputs)
	if eligJSON {
		return printJSON(cmd.OutOrStdout(), res)
	}

	out := cmd.OutOrStdout()
	if res.Status == domain.ToolNeedsInfo || res.Status == domain.ToolError {
		fmt.Fprintln(out, res.Message)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VERDICT\tID\tNAME")
	for _, key := range []string{"eligible", "partially_eligible", "not_eligible"} {
		verdicts, _ := res.Data[key].([]tools.EntryVerdict)
		for _, v := range verdicts {
			fmt.Fprintf(w, "%s\t%s\t%s\n", v.Verdict, v.SchemeID, v.Name.In(config.DefaultLocale()))
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(out, res.Message)
	return nil
}
