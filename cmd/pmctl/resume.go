package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pausememo/pausememo/internal/domain"
	"github.com/pausememo/pausememo/internal/errors"
	"github.com/pausememo/pausememo/internal/service"
)

func (a *app) newResumeCmd() *cobra.Command {
	return a.resumeActionCmd(domain.ResumeStatusResumed, "resume", "Mark an interruption as resumed")
}

func (a *app) newAbandonCmd() *cobra.Command {
	return a.resumeActionCmd(domain.ResumeStatusAbandoned, "abandon", "Give up on an interruption")
}

func (a *app) newSnoozeCmd() *cobra.Command {
	cmd := a.resumeActionCmd(domain.ResumeStatusSnoozed, "snooze", "Push an interruption's reminder back")
	cmd.Flags().Int("minutes", 0, "Snooze length in minutes; defaults to the configured snooze")
	return cmd
}

// resumeActionCmd builds resume, snooze and abandon. Without an id they act
// on the latest unresolved interruption.
func (a *app) resumeActionCmd(status domain.ResumeStatus, use, short string) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   use + " [interruption-id]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := a.targetInterruption(ctx, args)
			if err != nil {
				return err
			}

			in := service.ResumeInput{
				InterruptionID: id,
				Source:         domain.ResumeSource(source),
			}
			if f := cmd.Flags().Lookup("minutes"); f != nil && f.Changed {
				minutes, err := cmd.Flags().GetInt("minutes")
				if err != nil {
					return err
				}
				in.SnoozeMinutes = &minutes
			}

			result, err := a.svc.Resume.Record(ctx, in, status)
			if err != nil {
				return err
			}

			if a.format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", status, id)
			if next, ok := result.Event.NextDeadline(); ok && result.Reminder.Scheduled {
				fmt.Fprintf(out, "Next reminder at %s\n", formatLocal(next))
			}
			if result.Reminder.Error != "" {
				fmt.Fprintf(out, "Reminder update failed: %s\n", result.Reminder.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", string(domain.ResumeSourceManual), "What prompted the action: manual or notification")

	return cmd
}

func (a *app) targetInterruption(ctx context.Context, args []string) (domain.InterruptionID, error) {
	if len(args) == 1 {
		return domain.InterruptionID(args[0]), nil
	}
	item, err := a.svc.History.LatestOpen(ctx)
	if err != nil {
		return "", err
	}
	if item == nil {
		return "", errors.NotFound("no open interruption")
	}
	return item.Event.ID, nil
}
