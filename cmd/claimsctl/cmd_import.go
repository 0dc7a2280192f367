package main

import (
	"fmt"
	"os"
	"path/filepath"

	"claims-dashboard/internal/adapters/archive"
	"claims-dashboard/internal/adapters/persistence/repositories"
	"claims-dashboard/internal/core/services"

	"github.com/spf13/cobra"
)

var importDemo bool

// importCmd imports a claims CSV the same way the upload endpoint does
var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import claims from a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importDemo, "demo", false, "Randomly progress imported claims (demo data)")
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	archiver, err := archive.New(cmd.Context(), archive.Options{
		Bucket:    cfg.Upload.Bucket,
		Region:    cfg.Upload.Region,
		Endpoint:  cfg.Upload.Endpoint,
		AccessKey: cfg.Upload.AccessKey,
		SecretKey: cfg.Upload.SecretKey,
	})
	if err != nil {
		return err
	}

	var automation *services.Automation
	if importDemo || cfg.DemoMode {
		automation = services.NewAutomation(nil)
	}

	svc := services.NewImportService(repositories.NewClaimRepository(db), archiver, automation, log)
	res, err := svc.Import(cmd.Context(), filepath.Base(path), content)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d rows\n", res.Imported, res.Total)
	return nil
}
