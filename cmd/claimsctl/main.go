// Command claimsctl runs maintenance tasks against the claims database:
// seeding demo data, bulk CSV import, filtered export and template lookups.
package main

import (
	"context"
	"fmt"
	"os"

	"claims-dashboard/internal/adapters/persistence/models"
	"claims-dashboard/internal/adapters/persistence/repositories"
	"claims-dashboard/internal/config"
	"claims-dashboard/internal/core/services"
	"claims-dashboard/internal/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// Global flags
	verbose bool

	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "claimsctl",
	Short: "Claims dashboard administration",
	Long: `claimsctl operates on the same database as the claims API server.

Configuration is read from the environment (and .env) exactly as the server
reads it, so DB_DRIVER, DEV_DB_* / PROD_DB_* and APP_MODE apply here too.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		mode := cfg.AppMode
		if verbose {
			mode = "dev"
		}
		log, err = logger.New(mode)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		zap.ReplaceGlobals(log)

		db, err = config.ConnectDatabase(cfg, log)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		return models.AutoMigrate(db)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = config.CloseDatabase()
		if log != nil {
			_ = log.Sync()
		}
	},
}

// migrateCmd applies the schema without touching data
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		// PersistentPreRunE already migrated
		log.Info("schema is up to date", zap.String("driver", cfg.Database.Driver))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		migrateCmd,
		seedCmd,
		importCmd,
		exportCmd,
		templateCmd,
	)
}

// claimService builds the claim service over the open database
func claimService() *services.ClaimService {
	return services.NewClaimService(
		repositories.NewClaimRepository(db),
		repositories.NewClaimTransitionRepository(db),
		repositories.NewUserRepository(db),
		log,
	)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
