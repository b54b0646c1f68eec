package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/Freeeeeet/table_timeline/internal/importer"
	"github.com/Freeeeeet/table_timeline/internal/model"
	"github.com/Freeeeeet/table_timeline/internal/repository"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var (
		file   string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Assign tables to a CSV of reservations and store them",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			d, err := openDeps(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			sectors, err := repository.NewFloorRepository(d.pool, d.logger).ListSectors(ctx, d.cfg.RestaurantID)
			if err != nil {
				return err
			}
			names := make([]string, len(sectors))
			for i, s := range sectors {
				names[i] = s.Name
			}

			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open csv: %w", err)
			}
			defer f.Close()

			parsed, err := importer.Parse(f, importer.WithSectors(names...))
			if err != nil {
				return err
			}
			printIssues(out, "error", parsed.Errors)
			printIssues(out, "warning", parsed.Warnings)
			if len(parsed.Rows) == 0 {
				return fmt.Errorf("no valid rows in %s", file)
			}

			svc, err := d.newService(ctx)
			if err != nil {
				return err
			}
			from, to := requestWindow(parsed.Rows, svc.Location())
			if err := svc.Load(ctx, from, to); err != nil {
				return err
			}

			if dryRun {
				preview, err := svc.PreviewBatch(ctx, parsed.Rows)
				if err != nil {
					return err
				}
				printAssignments(out, preview)
				return nil
			}

			res, err := svc.ImportBatch(ctx, parsed.Rows)
			if err != nil {
				return err
			}
			printAssignments(out, res.Assignments)
			if err := svc.Flush(ctx); err != nil {
				return err
			}
			fmt.Fprintf(out, "\ncreated %d reservations, %d rejected on commit\n", len(res.Created), len(res.Rejected))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "CSV file to import")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only preview the assignments")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newTemplateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "template",
		Short: "Print a CSV import template",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), importer.Template())
		},
	}
}

// requestWindow covers every requested date in loc plus a day on each side
// for reservations crossing midnight.
func requestWindow(rows []model.BatchRequest, loc *time.Location) (time.Time, time.Time) {
	var from, to time.Time
	for _, r := range rows {
		day, err := time.ParseInLocation("2006-01-02", r.Date, loc)
		if err != nil {
			continue
		}
		if from.IsZero() || day.Before(from) {
			from = day
		}
		if day.After(to) {
			to = day
		}
	}
	return from.AddDate(0, 0, -1), to.AddDate(0, 0, 2)
}

func printIssues(w io.Writer, kind string, issues []importer.Issue) {
	for _, i := range issues {
		fmt.Fprintf(w, "%s: row %d %s: %s\n", kind, i.Row, i.Field, i.Message)
	}
}

func printAssignments(w io.Writer, result model.BatchAssignmentResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CUSTOMER\tPARTY\tDATE\tTIME\tPRIORITY\tTABLE\tNOTE")
	for _, a := range result.Assignments {
		table, note := "-", a.Reason
		if a.Assigned() {
			table = a.AssignedTable.Name
			note = ""
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			a.Request.CustomerName, a.Request.PartySize, a.Request.Date, a.Request.StartTime,
			a.Request.Priority, table, note)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\nassigned %d, failed %d\n", result.SuccessCount, result.FailureCount)
}
