package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	importNodeID int64
	importOutput string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import one OpenStreetMap node as a point of sale",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if importNodeID <= 0 {
			return eris.New("--node must be a positive OSM node id")
		}
		if err := checkOutputFormat(importOutput); err != nil {
			return err
		}
		if err := cfg.Validate("import"); err != nil {
			return err
		}

		env, err := initCatalog(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		p, err := env.Service.ImportFromOsmNode(ctx, importNodeID)
		if err != nil {
			return err
		}

		zap.L().Info("import complete",
			zap.Int64("node_id", importNodeID),
			zap.String("pos_id", p.ID),
		)
		return writeOutput(cmd.OutOrStdout(), importOutput, p)
	},
}

func init() {
	importCmd.Flags().Int64Var(&importNodeID, "node", 0, "OSM node id (required)")
	importCmd.Flags().StringVarP(&importOutput, "output", "o", "json", "output format: json or yaml")
	_ = importCmd.MarkFlagRequired("node")
	rootCmd.AddCommand(importCmd)
}
