// cmd/tools/kbctl/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"doctor-ranking/internal/common/config"
	"doctor-ranking/internal/common/database"
	"doctor-ranking/internal/common/logger"
	"doctor-ranking/internal/services/directory"
	"doctor-ranking/internal/services/ratings/migrations"
	"doctor-ranking/pkg/registry"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kbctl",
		Short:         "Maintain the triage knowledge base, doctor index and rating schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(validateCmd())
	root.AddCommand(exportCmd())
	root.AddCommand(indexDoctorsCmd())
	root.AddCommand(migrateCmd())
	return root
}

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load a knowledge base file over the defaults and check it",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("path")
			kb, err := registry.LoadRegistry(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "knowledge base OK: %d specialists, %d rule diseases\n",
				len(kb.Specialists), len(kb.RuleDiseases))
			return nil
		},
	}
	cmd.Flags().String("path", "configs/knowledge-base.json", "Path to knowledge base file")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the built-in knowledge base as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			if err := registry.Default().Save(out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().String("out", "configs/knowledge-base.json", "Destination file")
	return cmd
}

func indexDoctorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index-doctors",
		Short: "Bulk-index a JSON list of doctor records into the directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			records, err := readRecords(file)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()
			if err := es.EnsureIndex(ctx, cfg.Directory.Index, directory.DoctorIndexMapping); err != nil {
				return err
			}

			svc := directory.NewService(directory.Config{
				Index:   cfg.Directory.Index,
				Timeout: config.GetDuration(cfg.Directory.Timeout),
			}, es.Client, logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format))
			n, err := svc.IndexDoctors(ctx, records)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d of %d doctors into %s\n", n, len(records), cfg.Directory.Index)
			return nil
		},
	}
	cmd.Flags().String("file", "configs/doctors.json", "JSON file holding a list of doctor records")
	return cmd
}

func readRecords(path string) ([]map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []map[string]interface{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%s: expected a list of doctor objects: %w", path, err)
	}
	return records, nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the rating store schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := databaseURL()
			if err != nil {
				return err
			}
			if err := migrations.Up(url); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "rating store schema is up to date")
			return nil
		},
	})

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			if steps < 1 {
				return fmt.Errorf("steps must be positive, got %d", steps)
			}
			url, err := databaseURL()
			if err != nil {
				return err
			}
			if err := migrations.Down(url, steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
			return nil
		},
	}
	downCmd.Flags().Int("steps", 1, "Number of migrations to roll back")
	cmd.AddCommand(downCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := databaseURL()
			if err != nil {
				return err
			}
			version, dirty, err := migrations.Version(url)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
			return nil
		},
	})
	return cmd
}

func databaseURL() (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	return cfg.Database.Postgres.GetURL(), nil
}
