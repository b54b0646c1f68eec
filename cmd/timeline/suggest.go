package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/Freeeeeet/table_timeline/internal/model"
	"github.com/Freeeeeet/table_timeline/internal/timeline"
	"github.com/spf13/cobra"
)

func newSuggestCmd() *cobra.Command {
	var (
		party    int
		at       string
		duration int
		sector   string
		slots    bool
	)

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest tables, or nearby start times, for a party",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			d, err := openDeps(ctx)
			if err != nil {
				return err
			}
			defer d.Close()

			svc, err := d.newService(ctx)
			if err != nil {
				return err
			}
			loc := svc.Location()
			start, err := time.ParseInLocation("2006-01-02 15:04", at, loc)
			if err != nil {
				return fmt.Errorf("parse --at: %w", err)
			}

			day := timeline.StartOfDay(start, loc)
			if err := svc.Load(ctx, day.AddDate(0, 0, -1), day.AddDate(0, 0, 2)); err != nil {
				return err
			}

			q := timeline.SuggestionQuery{PartySize: party, StartTime: start, DurationMinutes: duration}
			for _, s := range svc.FloorPlan().Sectors {
				if s.ID == sector || s.Name == sector {
					q.SectorPreference = s.ID
				}
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			defer tw.Flush()

			if !slots {
				suggestions, err := svc.SuggestTables(ctx, q)
				if err != nil {
					return err
				}
				printSuggestions(tw, suggestions)
				return nil
			}
			found, err := svc.SuggestSlots(ctx, q)
			if err != nil {
				return err
			}
			for _, slot := range found {
				fmt.Fprintf(tw, "%s (%s)\n", slot.StartTime.In(svc.Location()).Format("15:04"), timeline.FormatTimeDifference(start, slot.StartTime))
				printSuggestions(tw, slot.Suggestions)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&party, "party", "p", 2, "party size")
	cmd.Flags().StringVar(&at, "at", "", `desired start, "YYYY-MM-DD HH:MM" in restaurant time`)
	cmd.Flags().IntVarP(&duration, "duration", "d", timeline.DefaultDurationMinutes, "duration in minutes")
	cmd.Flags().StringVar(&sector, "sector", "", "preferred sector id or name")
	cmd.Flags().BoolVar(&slots, "slots", false, "suggest nearby start times instead")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func printSuggestions(tw *tabwriter.Writer, suggestions []model.TableSuggestion) {
	fmt.Fprintln(tw, "TABLE\tSECTOR\tCAPACITY\tSCORE\tAVAILABLE\tREASON")
	for _, s := range suggestions {
		fmt.Fprintf(tw, "%s\t%s\t%d-%d\t%d\t%t\t%s\n",
			s.Table.Name, s.Table.SectorID, s.Table.Capacity.Min, s.Table.Capacity.Max,
			s.Score, s.IsAvailable, s.Reason)
	}
}
