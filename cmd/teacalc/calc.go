package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	teacalc "github.com/greenfuels/teacalc"
)

func newCalcCommand() *cobra.Command {
	flagScenario := ""

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Evaluate one scenario file and print the headline figures",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := os.ReadFile(flagScenario)
			if err != nil {
				return fmt.Errorf("failed to read scenario file: %w", err)
			}

			var source map[string]any
			if err := yaml.Unmarshal(body, &source); err != nil {
				return fmt.Errorf("scenario file is not valid YAML: %w", err)
			}

			engine := newEngine(cmd.Context())
			result, err := engine.Calculate(cmd.Context(), source)
			if err != nil {
				return err
			}
			result.Sanitize()

			printResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flagScenario, "file", "f", "scenario.yaml", "scenario file to evaluate")

	return cmd
}

func printResult(cmd *cobra.Command, result *teacalc.Result) {
	p := message.NewPrinter(language.English)
	tea := result.TechnoEconomics
	fin := result.Financials

	p.Fprintf(cmd.OutOrStdout(), "calculation %s\n\n", result.ID)
	p.Fprintf(cmd.OutOrStdout(), "  production           %.0f %s\n", tea.Production.Value, tea.Production.Unit)
	p.Fprintf(cmd.OutOrStdout(), "  total capital        %.0f %s\n", tea.TCI.Value, tea.TCI.Unit)
	p.Fprintf(cmd.OutOrStdout(), "  total opex           %.0f %s\n", tea.TotalOpex.Value, tea.TotalOpex.Unit)
	p.Fprintf(cmd.OutOrStdout(), "  LCOP                 %.2f %s\n", tea.LCOP.Value, tea.LCOP.Unit)
	p.Fprintf(cmd.OutOrStdout(), "  carbon intensity     %.1f %s\n", tea.CarbonIntensity.Value, tea.CarbonIntensity.Unit)
	p.Fprintf(cmd.OutOrStdout(), "  NPV                  %.0f USD\n", fin.NPV)

	if fin.IRR != nil {
		p.Fprintf(cmd.OutOrStdout(), "  IRR                  %.2f%%\n", *fin.IRR*100)
	} else {
		p.Fprintf(cmd.OutOrStdout(), "  IRR                  undefined\n")
	}
	if fin.PaybackYear != nil {
		p.Fprintf(cmd.OutOrStdout(), "  payback              year %d\n", *fin.PaybackYear)
	} else {
		p.Fprintf(cmd.OutOrStdout(), "  payback              not achieved\n")
	}

	for _, warning := range result.Warnings {
		p.Fprintf(cmd.OutOrStdout(), "\n  warning: %s\n", warning.String())
	}
}
