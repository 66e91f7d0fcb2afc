package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/relgraph/internal/config"
	"github.com/dbsmedya/relgraph/internal/database"
	"github.com/dbsmedya/relgraph/internal/lock"
	"github.com/dbsmedya/relgraph/internal/logger"
	"github.com/dbsmedya/relgraph/internal/store"
)

var validateOffline bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and run connectivity checks",
	Long: `Validate checks the configuration file and, unless --offline is given,
connects to the configured backends.

Checks performed:
  - Configuration syntax and required fields
  - Role taxonomy loading
  - Store connectivity (MySQL)
  - Whether an ingest currently holds the store's advisory lock
  - Cache connectivity (Redis, when enabled)

Example:
  relgraph validate --config relgraph.yaml`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateOffline, "offline", false,
		"Skip connectivity checks")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, log, err := setup(false)
	if err != nil {
		return err
	}
	defer log.Sync()

	fprintf(out, "\n")
	printHeader(out, "Configuration Validation")
	fprintf(out, "Config file: %s\n", GetConfigFile())
	fprintf(out, "Store: %s", cfg.Store.Driver)
	if cfg.Store.Driver == "mysql" {
		fprintf(out, " (%s:%d/%s, tables %s, %s)", cfg.Store.Host, cfg.Store.Port, cfg.Store.Database,
			cfg.Store.EntitiesTable, cfg.Store.RelationsTable)
	}
	fprintf(out, "\n")
	fprintf(out, "Cache: %v\n", cfg.Cache.Enabled)
	fprintf(out, "Query defaults: degree %d, max nodes %d, link ratio %g, roles %v\n\n",
		cfg.Query.MaxDegree, cfg.Query.MaxNodes, cfg.Query.LinkRatio, cfg.Query.Roles)

	hasErrors := false
	if err := cfg.Validate(); err != nil {
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			for _, v := range verrs {
				printCheck(out, false, "%s", v.Error())
			}
		} else {
			printCheck(out, false, "%v", err)
		}
		hasErrors = true
	} else {
		printCheck(out, true, "Configuration is valid")
	}

	canon, err := newCanonicalizer(cfg, log)
	if err != nil {
		printCheck(out, false, "%v", err)
		hasErrors = true
	} else {
		printCheck(out, true, "Taxonomy loaded (%d roles)", canon.Taxonomy().Len())
		for _, role := range cfg.Query.Roles {
			if !canon.Taxonomy().Contains(role) {
				printCheck(out, false, "query role %q is not in the taxonomy", role)
				hasErrors = true
			}
		}
	}

	if !validateOffline && !hasErrors {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if cfg.Store.Driver == "mysql" {
			mgr := database.NewManager(&cfg.Store, log)
			if err := mgr.Connect(ctx); err != nil {
				printCheck(out, false, "Store connection failed: %v", err)
				hasErrors = true
			} else {
				if err := mgr.Ping(ctx); err != nil {
					printCheck(out, false, "Store ping failed: %v", err)
					hasErrors = true
				} else {
					printCheck(out, true, "Store reachable")
					if !reportIngestLock(ctx, out, mgr.DB, log) {
						hasErrors = true
					}
				}
				mgr.Close()
			}
		}
		if cfg.Cache.Enabled {
			client, err := store.NewRedisClient(ctx, &cfg.Cache)
			if err != nil {
				printCheck(out, false, "Cache connection failed: %v", err)
				hasErrors = true
			} else {
				printCheck(out, true, "Cache reachable")
				client.Close()
			}
		}
	}

	fprintf(out, "\n")
	if hasErrors {
		return fmt.Errorf("validation failed")
	}
	fprintf(out, "=== Validation Complete ===\n")
	return nil
}

// reportIngestLock reports whether an ingest is running against the store by
// trying the ingest lock without waiting. A held lock is not a failure.
func reportIngestLock(ctx context.Context, out io.Writer, db *sql.DB, log *logger.Logger) bool {
	l := lock.NewIngestLock(db, log)
	acquired, err := l.TryAcquire(ctx)
	if err != nil {
		printCheck(out, false, "Ingest lock %q check failed: %v", l.LockName(), err)
		return false
	}
	if !acquired {
		printCheck(out, true, "Ingest lock %q is held (an ingest is running)", l.LockName())
		return true
	}
	if _, err := l.ReleaseLock(ctx); err != nil {
		printCheck(out, false, "Ingest lock %q release failed: %v", l.LockName(), err)
		return false
	}
	printCheck(out, true, "Ingest lock %q is free", l.LockName())
	return true
}
