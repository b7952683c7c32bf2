package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pausememo/pausememo/internal/domain"
	"github.com/pausememo/pausememo/internal/service"
)

func (a *app) newCaptureCmd() *cobra.Command {
	var (
		tags        []string
		reason      string
		firstStep   string
		returnAfter int
		at          string
	)

	cmd := &cobra.Command{
		Use:     "capture",
		Aliases: []string{"c"},
		Short:   "Record an interruption",
		Example: `  pmctl capture --tag sns --reason "checked chat" --first-step "reread the diff" --return-after 15`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := service.CaptureInput{
				TriggerTags:   tags,
				ReasonText:    reason,
				FirstStepText: firstStep,
			}
			if cmd.Flags().Changed("return-after") {
				in.ReturnAfterMinutes = &returnAfter
			}
			if at != "" {
				t, err := domain.ParseTimestamp(at)
				if err != nil {
					return err
				}
				in.OccurredAt = &t
			}

			result, err := a.svc.Capture.Capture(cmd.Context(), in)
			if err != nil {
				return err
			}

			if a.format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Captured %s\n", result.Event.ID)
			switch {
			case result.Reminder.Scheduled:
				fmt.Fprintf(out, "Reminder at %s\n", formatOptionalLocal(result.Event.ScheduledResumeAt))
			case result.Reminder.Error != "":
				fmt.Fprintf(out, "Reminder not scheduled: %s\n", result.Reminder.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "Trigger tag: preset id or free text (repeatable)")
	cmd.Flags().StringVarP(&reason, "reason", "r", "", "Why work stopped")
	cmd.Flags().StringVar(&firstStep, "first-step", "", "First thing to do on return")
	cmd.Flags().IntVar(&returnAfter, "return-after", 0, "Minutes until the resume reminder")
	cmd.Flags().StringVar(&at, "at", "", "When work actually stopped (RFC 3339); defaults to now")

	return cmd
}
