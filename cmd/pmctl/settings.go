package main

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pausememo/pausememo/internal/domain"
	"github.com/pausememo/pausememo/internal/errors"
)

func (a *app) newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.svc.Settings.Get(cmd.Context())
			if err != nil {
				return err
			}
			return a.renderSettings(cmd, s)
		},
	}
	cmd.AddCommand(a.newSettingsSetCmd())
	return cmd
}

func (a *app) newSettingsSetCmd() *cobra.Command {
	var (
		notifications bool
		analytics     bool
		theme         string
		language      string
		weekStart     string
	)

	cmd := &cobra.Command{
		Use:     "set",
		Short:   "Change preferences; only the given flags are touched",
		Example: "  pmctl settings set --notifications=false --week-start monday",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var patch domain.SettingsPatch
			flags := cmd.Flags()
			if flags.Changed("notifications") {
				patch.NotificationsEnabled = &notifications
			}
			if flags.Changed("analytics") {
				patch.AnalyticsOptIn = &analytics
			}
			if flags.Changed("theme") {
				t := domain.Theme(theme)
				patch.Theme = &t
			}
			if flags.Changed("language") {
				patch.Language = &language
			}
			if flags.Changed("week-start") {
				w := domain.WeekStart(weekStart)
				patch.WeekStart = &w
			}
			if patch == (domain.SettingsPatch{}) {
				return errors.InvalidArgument("nothing to change")
			}

			s, err := a.svc.Settings.Update(cmd.Context(), patch)
			if err != nil {
				return err
			}
			return a.renderSettings(cmd, s)
		},
	}

	cmd.Flags().BoolVar(&notifications, "notifications", true, "Enable resume reminders; disabling cancels pending ones")
	cmd.Flags().BoolVar(&analytics, "analytics", false, "Opt in to analytics")
	cmd.Flags().StringVar(&theme, "theme", "", "light, dark or system")
	cmd.Flags().StringVar(&language, "language", "", "UI language tag")
	cmd.Flags().StringVar(&weekStart, "week-start", "", "sunday or monday")

	return cmd
}

func (a *app) renderSettings(cmd *cobra.Command, s domain.Settings) error {
	if a.format == formatJSON {
		return writeJSON(cmd.OutOrStdout(), s)
	}
	t := newTable(cmd.OutOrStdout(), table.Row{"Setting", "Value"})
	t.AppendRows([]table.Row{
		{"notifications", strconv.FormatBool(s.NotificationsEnabled)},
		{"analytics", strconv.FormatBool(s.AnalyticsOptIn)},
		{"theme", s.Theme},
		{"language", s.Language},
		{"week-start", s.WeekStart},
	})
	t.Render()
	return nil
}

func (a *app) newTagsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List preset trigger tags and your most used custom ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sugg, err := a.svc.Tags.Suggestions(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if a.format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), sugg)
			}

			t := newTable(cmd.OutOrStdout(), table.Row{"ID", "Label", "Kind", "Uses", "Last used"})
			for _, p := range sugg.Presets {
				t.AppendRow(table.Row{p.ID, p.Label, "preset", "", ""})
			}
			for _, c := range sugg.Custom {
				t.AppendRow(table.Row{c.ID, truncate(c.Label, textColumnWidth), "custom", c.UsageCount, formatLocal(c.LastUsedAt)})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum custom tags; 0 uses the default")
	return cmd
}

func (a *app) newPurgeCmd() *cobra.Command {
	var (
		includeTags bool
		yes         bool
	)

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete every interruption, resume and pending reminder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.InvalidArgument("purge deletes all history; pass --yes to confirm")
			}
			if err := a.svc.Data.DeleteAllHistory(cmd.Context(), includeTags); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History deleted.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&includeTags, "include-tags", false, "Also delete custom trigger tags")
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}

func (a *app) newRemindersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reminders",
		Short: "List pending resume reminders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pending, err := a.svc.Scheduler.ListScheduled(cmd.Context())
			if err != nil {
				return err
			}
			if a.format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), pending)
			}
			if len(pending) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No pending reminders.")
				return nil
			}

			t := newTable(cmd.OutOrStdout(), table.Row{"Reminder", "Interruption", "Due", "Body"})
			for _, r := range pending {
				t.AppendRow(table.Row{r.ID, r.InterruptionID(), formatLocal(r.TriggerAt), truncate(r.Body, textColumnWidth)})
			}
			t.Render()
			return nil
		},
	}
}
