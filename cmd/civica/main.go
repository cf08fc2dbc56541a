package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var dataDir string

	root := &cobra.Command{
		Use:          "civica",
		Short:        "Standards-driven gradation and quantity calculators",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&dataDir, "data", "", "directory of catalog YAML files (default: built-in catalog)")

	root.AddCommand(calculatorsCmd(&dataDir))
	root.AddCommand(standardsCmd(&dataDir))
	root.AddCommand(gradationCmd(&dataDir))
	root.AddCommand(importCmd(&dataDir))
	return root
}

func calculatorsCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "calculators",
		Short: "List calculators and their default standards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lib, err := loadLibrary(*dataDir)
			if err != nil {
				return err
			}
			printCalculators(cmd.OutOrStdout(), lib.Calculators())
			return nil
		},
	}
}

func standardsCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "standards [calculator]",
		Short: "List the standards a calculator offers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := loadLibrary(*dataDir)
			if err != nil {
				return err
			}
			cat, err := lib.Catalog(args[0])
			if err != nil {
				return err
			}
			printStandards(cmd.OutOrStdout(), cat)
			return nil
		},
	}
}

func gradationCmd(dataDir *string) *cobra.Command {
	var total float64
	var retained map[string]string

	cmd := &cobra.Command{
		Use:   "gradation [calculator] [standard]",
		Short: "Evaluate one sieve analysis",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGradation(cmd.OutOrStdout(), *dataDir, args[0], args[1], total, retained)
		},
	}
	cmd.Flags().Float64Var(&total, "total", 0, "total sample weight in grams")
	cmd.Flags().StringToStringVar(&retained, "retained", nil, "retained weight per sieve, e.g. --retained \"37.5 mm=100\"")
	return cmd
}

func importCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import [calculator] [standard] [file.xlsx]",
		Short: "Evaluate every sample of an xlsx sieve sheet",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.OutOrStdout(), *dataDir, args[0], args[1], args[2])
		},
	}
}
