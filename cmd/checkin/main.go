package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/checkin/internal/commands"
	"github.com/sandeepkv93/checkin/internal/model"
	"github.com/sandeepkv93/checkin/internal/surface"
	"github.com/sandeepkv93/checkin/internal/views"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	debug      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "checkin",
		Short:         "Interval check-in reminders with an activity log",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), opts.configPath, opts.debug)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.runTUI(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/checkin/config.yaml)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "log at debug level")

	root.AddCommand(newHistoryCmd(opts))
	root.AddCommand(newSessionsCmd(opts))
	root.AddCommand(newIntervalCmd(opts))
	root.AddCommand(newLogCmd(opts))
	root.AddCommand(newStatusCmd(opts))
	root.AddCommand(newConfigCmd(opts))
	return root
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history [today|yesterday|YYYY-MM-DD]",
		Short: "Show the activities logged on a day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			subject := "today"
			if len(args) == 1 {
				subject = args[0]
			}
			parsed, err := commands.Parse("show " + subject)
			if err != nil {
				return err
			}
			a, err := loadApp(cmd.Context(), opts.configPath, opts.debug)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			loc := a.journal.Location()
			overview, err := a.journal.Day(ctx, parsed.Show.Day(time.Now(), loc))
			if err != nil {
				return err
			}
			settings, err := a.journal.LoadSettings(ctx)
			if err != nil {
				return err
			}
			data := views.NewDayOverviewData(overview.Date, overview.Activities, overview.Span, settings.Interval, loc)
			_, _ = fmt.Fprint(cmd.OutOrStdout(), views.RenderMarkdown(views.DayOverviewMarkdown(data)))
			return nil
		},
	}
}

func newSessionsCmd(opts *rootOptions) *cobra.Command {
	var limit int
	sessions := &cobra.Command{
		Use:   "sessions",
		Short: "List recent tracking sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), opts.configPath, opts.debug)
			if err != nil {
				return err
			}
			defer a.Close()

			rows, err := a.journal.Sessions(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
				return nil
			}
			now := time.Now()
			for _, s := range rows {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), formatSession(s, now, a.journal.Location()))
			}
			return nil
		},
	}
	sessions.Flags().IntVar(&limit, "limit", 10, "number of sessions to list")
	return sessions
}

func newIntervalCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "interval [duration]",
		Short: "Show or change the check-in interval (minutes or a duration like 90s)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), opts.configPath, opts.debug)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			settings, err := a.journal.LoadSettings(ctx)
			if err != nil {
				return err
			}
			if len(args) == 0 {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "interval: %s\n", model.FormatInterval(settings.Interval))
				return nil
			}
			interval, err := commands.ParseInterval(args[0])
			if err != nil {
				return err
			}
			settings.Interval = interval
			if err := a.journal.SaveSettings(ctx, settings); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "interval set to %s (applies from the next start)\n", model.FormatInterval(interval))
			return nil
		},
	}
}

func newLogCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "log <text>",
		Short: "Record an activity on the running session",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd.Context(), opts.configPath, opts.debug)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			session, err := a.journal.ActiveSession(ctx)
			if err != nil {
				return err
			}
			activity, err := a.journal.Record(ctx, session.ID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "logged at %s: %s\n", activity.Timestamp.In(a.journal.Location()).Format("15:04"), activity.Text)
			return nil
		},
	}
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the countdown of the running session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), opts.configPath, opts.debug)
			if err != nil {
				return err
			}
			defer a.Close()

			st, ok, err := surface.ReadFile(a.cfg.SurfaceFile)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), formatStatus(st, ok, time.Now()))
			return nil
		},
	}
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd.Context(), opts.configPath, opts.debug)
			if err != nil {
				return err
			}
			defer a.Close()

			raw, err := a.cfg.Marshal()
			if err != nil {
				return err
			}
			_, _ = cmd.OutOrStdout().Write(raw)
			return nil
		},
	}
}

func formatSession(s model.Session, now time.Time, loc *time.Location) string {
	state := "active"
	if !s.IsActive {
		state = "closed"
	}
	return fmt.Sprintf("%s\t%s\t%s\t%s",
		s.ID, s.StartTime.In(loc).Format("2006-01-02 15:04"), state, model.FormatSpan(s.Duration(now)))
}

func formatStatus(st surface.FileState, ok bool, now time.Time) string {
	if !ok {
		return "no session running"
	}
	remaining := st.NextCheckIn.Sub(now)
	if remaining <= 0 {
		return fmt.Sprintf("check-in overdue since %s", st.NextCheckIn.Local().Format("15:04:05"))
	}
	return fmt.Sprintf("next check-in in %s (at %s)", model.FormatCountdown(remaining), st.NextCheckIn.Local().Format("15:04:05"))
}

