package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"Civica/internal/calc/gradation"
	"Civica/internal/calc/standards"
)

func printCalculators(w io.Writer, calcs []standards.Calculator) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tFAMILY\tDEFAULT")
	for _, c := range calcs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Category, c.Family, c.DefaultStandard)
	}
	tw.Flush()
}

func printStandards(w io.Writer, cat *standards.Catalog) {
	calc := cat.Calculator()
	fmt.Fprintf(w, "%s (%s)\n\n", calc.Name, calc.ID)
	for _, std := range cat.Standards() {
		marker := " "
		if std.ID == calc.DefaultStandard {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s: %s\n", marker, std.ID, std.Metadata.Title)
		if std.Metadata.Clause != "" {
			fmt.Fprintf(w, "    clause: %s\n", std.Metadata.Clause)
		}
		for _, r := range std.Rates {
			fmt.Fprintf(w, "    %s: %s\n", r.Label, r)
		}
		if std.Mix != nil {
			fmt.Fprintf(w, "    mix %s\n", std.Mix)
		}
		if len(std.Sieves) > 0 {
			labels := make([]string, 0, len(std.Sieves))
			for _, s := range std.Sieves {
				labels = append(labels, s.Label)
			}
			fmt.Fprintf(w, "    sieves: %s\n", strings.Join(labels, ", "))
		}
	}
}

func printGradation(w io.Writer, std standards.Standard, results []gradation.Result, sum *gradation.Summary) {
	fmt.Fprintf(w, "%s\n\n", std.Metadata.Title)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "SIEVE\tRETAINED g\t% RET\tCUM % RET\t% PASS\tBAND\tSTATUS\t")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%g-%g\t%s\t\n",
			r.Label, r.Retained, r.PercentRetained, r.CumulativePercentRetained,
			r.PercentPassing, r.MinPassing, r.MaxPassing, strings.ToUpper(string(r.Status)))
	}
	tw.Flush()
	printSummary(w, sum)
}

func printSummary(w io.Writer, sum *gradation.Summary) {
	if sum == nil {
		return
	}
	fmt.Fprintf(w, "\nPan: %.2f g (%.2f%%)\n", sum.PanWeight, sum.PanPercent)
	if sum.AllPass {
		fmt.Fprintln(w, "Result: PASS")
	} else {
		fmt.Fprintf(w, "Result: FAIL (%s)\n", strings.Join(sum.Failures, ", "))
	}
}

func printBatch(w io.Writer, std standards.Standard, reports []gradation.Report) {
	fmt.Fprintf(w, "%s: %d samples\n\n", std.Metadata.Title, len(reports))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SAMPLE\tRESULT\tFAILING SIEVES")
	for _, rep := range reports {
		switch {
		case !rep.Ready:
			fmt.Fprintf(tw, "%s\t-\tno total weight\n", rep.Name)
		case rep.Summary.AllPass:
			fmt.Fprintf(tw, "%s\tPASS\t\n", rep.Name)
		default:
			fmt.Fprintf(tw, "%s\tFAIL\t%s\n", rep.Name, strings.Join(rep.Summary.Failures, ", "))
		}
	}
	tw.Flush()
}
