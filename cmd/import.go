package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/twinmaps/twinmap/internal/seed"
)

var importFilePath string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Bulk-import pairings from a YAML or XLSX seed file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		created, err := seed.ImportFile(ctx, st, importFilePath)
		if err != nil {
			return err
		}

		zap.L().Info("import complete",
			zap.Int("created", created),
			zap.String("file", importFilePath),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importFilePath, "file", "", "path to seed file (required)")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
