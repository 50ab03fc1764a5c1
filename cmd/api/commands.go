package main

import (
	"fmt"
	"os"
	"time"

	"equiprent/internal/app"
	"equiprent/internal/modules/report"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	exportOut      string
	exportStatus   string
	exportCategory int64
	exportQuery    string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB(db)

		log.Info("schema is up to date")
		return nil
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Mark overdue rentals once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB(db)

		a := app.New(app.Deps{Config: cfg, DB: db, Log: log})
		n, err := a.Sweeper.RunOnce(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "marked %d rental(s) overdue\n", n)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write rentals to an Excel workbook",
	Long: `Writes the rentals matching the filters to an .xlsx file with one row per
rental and a per-status summary sheet.

Example:
  equiprent export --status overdue --out overdue.xlsx`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB(db)

		q := report.ExportQuery{Status: exportStatus, Q: exportQuery}
		if exportCategory > 0 {
			q.CategoryID = &exportCategory
		}
		out := exportOut
		if out == "" {
			out = report.ExportFileName(time.Now())
		}

		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}

		a := app.New(app.Deps{Config: cfg, DB: db, Log: log})
		n, err := a.Reports.ExportRentals(cmd.Context(), q, f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(out)
			return err
		}

		log.Info("export written", zap.String("file", out), zap.Int("rows", n))
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%d rows)\n", out, n)
		return nil
	},
}
