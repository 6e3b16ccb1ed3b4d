package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var posOutput string

var posCmd = &cobra.Command{
	Use:   "pos",
	Short: "Inspect and manage the catalog",
}

var posListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every point of sale",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("store"); err != nil {
			return err
		}

		env, err := initCatalog(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		list, err := env.Service.List(ctx)
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), posOutput, list)
	},
}

var posGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one point of sale",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("store"); err != nil {
			return err
		}

		env, err := initCatalog(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		p, err := env.Service.Get(ctx, args[0])
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), posOutput, p)
	},
}

var posClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every point of sale",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("store"); err != nil {
			return err
		}

		env, err := initCatalog(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		n, err := env.Service.Clear(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %d points of sale\n", n)
		return err
	},
}

func init() {
	posCmd.PersistentFlags().StringVarP(&posOutput, "output", "o", "json", "output format: json or yaml")
	posCmd.AddCommand(posListCmd, posGetCmd, posClearCmd)
	rootCmd.AddCommand(posCmd)
}
