package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pausememo/pausememo/internal/domain"
	"github.com/pausememo/pausememo/internal/errors"
)

func (a *app) newHistoryCmd() *cobra.Command {
	var (
		from  string
		to    string
		limit int
	)

	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"ls"},
		Short:   "List recent interruptions, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, ok := domain.ParseHistoryQuery(from, to, limit)
			if !ok {
				return errors.InvalidArgument("invalid --from or --to: use RFC 3339")
			}

			items, err := a.svc.History.List(cmd.Context(), q)
			if err != nil {
				return err
			}

			if a.format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			renderHistory(cmd.OutOrStdout(), items)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Only interruptions recorded at or after (RFC 3339)")
	cmd.Flags().StringVar(&to, "to", "", "Only interruptions recorded at or before (RFC 3339)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum rows; 0 uses the configured default")

	return cmd
}

func renderHistory(w io.Writer, items []domain.HistoryItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No interruptions.")
		return
	}

	t := newTable(w, table.Row{"ID", "Recorded", "Tags", "Reason", "Status", "Due"})
	for _, item := range items {
		ev := item.Event
		t.AppendRow(table.Row{
			ev.ID,
			formatLocal(ev.RecordedAt),
			joinTags(ev.Context.TriggerTagIDs),
			truncate(ev.Context.ReasonText, textColumnWidth),
			statusLabel(item.Status),
			formatOptionalLocal(item.Deadline),
		})
	}
	t.Render()
}

func (a *app) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [interruption-id]",
		Short: "Show one interruption; the latest when no id is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var (
				item *domain.HistoryItem
				err  error
			)
			if len(args) == 1 {
				item, err = a.svc.History.Get(ctx, domain.InterruptionID(args[0]))
			} else {
				item, err = a.svc.History.Latest(ctx)
			}
			if err != nil {
				return err
			}
			if item == nil {
				return errors.NotFound("no interruptions recorded")
			}

			if a.format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), item)
			}

			diff, hasDeadline, err := a.svc.History.ResumeDiff(ctx, item.Event.ID)
			if err != nil {
				return err
			}

			ev := item.Event
			t := newTable(cmd.OutOrStdout(), table.Row{"Field", "Value"})
			t.AppendRows([]table.Row{
				{"ID", ev.ID},
				{"Occurred", formatLocal(ev.OccurredAt)},
				{"Recorded", formatLocal(ev.RecordedAt)},
				{"Tags", joinTags(ev.Context.TriggerTagIDs)},
				{"Reason", ev.Context.ReasonText},
				{"First step", ev.Context.FirstStepText},
				{"Status", statusLabel(item.Status)},
				{"Due", formatOptionalLocal(item.Deadline)},
			})
			if hasDeadline {
				// Negative while the deadline is still ahead.
				t.AppendRow(table.Row{"Past deadline", diff.Round(time.Second).String()})
			}
			t.Render()
			return nil
		},
	}
}

func (a *app) newSummaryCmd() *cobra.Command {
	var (
		week bool
		from string
		to   string
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize today, this week, or a custom period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var (
				sum *domain.Summary
				err error
			)
			switch {
			case from != "" || to != "":
				if from == "" || to == "" {
					return errors.InvalidArgument("--from and --to go together")
				}
				fromT, perr := domain.ParseTimestamp(from)
				if perr != nil {
					return perr
				}
				toT, perr := domain.ParseTimestamp(to)
				if perr != nil {
					return perr
				}
				sum, err = a.svc.Summary.Period(ctx, fromT, toT)
			case week:
				sum, err = a.svc.Summary.Week(ctx)
			default:
				sum, err = a.svc.Summary.Today(ctx)
			}
			if err != nil {
				return err
			}

			if a.format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), sum)
			}

			t := newTable(cmd.OutOrStdout(), table.Row{"Period", "Total", "Resumed", "Snoozed", "Abandoned", "Open"})
			t.AppendRow(table.Row{
				formatLocal(sum.From) + " → " + formatLocal(sum.To),
				sum.Total, sum.Resumed, sum.Snoozed, sum.Abandoned, sum.Open,
			})
			if ft := sum.FrequentTrigger; ft != nil {
				t.AppendFooter(table.Row{"Top trigger", fmt.Sprintf("%s (%d)", ft.Label, ft.Count)})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().BoolVarP(&week, "week", "w", false, "Summarize the current week")
	cmd.Flags().StringVar(&from, "from", "", "Period start (RFC 3339)")
	cmd.Flags().StringVar(&to, "to", "", "Period end (RFC 3339)")

	return cmd
}

func joinTags(ids []domain.TriggerTagID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}

func statusLabel(s domain.ResumeStatus) string {
	if s == "" {
		return "open"
	}
	return string(s)
}
