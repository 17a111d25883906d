package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/riskibarqy/playhub-league/internal/domain/deadline"
	"github.com/riskibarqy/playhub-league/internal/domain/rating"
	"github.com/riskibarqy/playhub-league/internal/export"
	"github.com/riskibarqy/playhub-league/internal/seasonfile"
)

const defaultSeasonFile = "season.yaml"

func newScheduleCmd() *cobra.Command {
	var (
		seasonPath string
		xlsxPath   string
	)
	cmd := &cobra.Command{
		Use:          "schedule",
		Short:        "Print the round robin for a season file, or export it with --xlsx",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := seasonfile.Load(seasonPath)
			if err != nil {
				return err
			}
			plan, err := f.Plan()
			if err != nil {
				return err
			}
			if xlsxPath == "" {
				printPlan(cmd.OutOrStdout(), plan)
				return nil
			}
			return writeWorkbook(cmd.OutOrStdout(), xlsxPath, plan)
		},
	}
	cmd.Flags().StringVarP(&seasonPath, "season", "s", defaultSeasonFile, "Path to the season YAML file")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Write the schedule to this xlsx file instead of stdout")
	return cmd
}

func printPlan(w io.Writer, plan seasonfile.Plan) {
	if plan.Name != "" {
		fmt.Fprintf(w, "%s (%s)\n", plan.Name, plan.Timezone)
	}
	for _, week := range plan.Weeks {
		fmt.Fprintf(w, "Week %d  opens %s\n", week.Index, week.OpensAt.Format(time.DateOnly))
		for _, p := range week.Pairs {
			fmt.Fprintf(w, "  %s vs %s\n", p.TeamA, p.TeamB)
		}
		fmt.Fprintf(w, "  substitution %s\n  schedule     %s\n  results      %s\n",
			week.Deadlines.SubstitutionLocal, week.Deadlines.ScheduleLocal, week.Deadlines.ResultsLocal)
	}
}

func writeWorkbook(w io.Writer, path string, plan seasonfile.Plan) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := export.Write(out, plan); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	fmt.Fprintf(w, "wrote %d week(s) to %s\n", len(plan.Weeks), path)
	return nil
}

func newDeadlinesCmd() *cobra.Command {
	var (
		opensAt      string
		timezone     string
		substitution string
		schedule     string
		results      string
	)
	cmd := &cobra.Command{
		Use:          "deadlines",
		Short:        "Print the substitution, schedule and results cutoffs for a week opening instant",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			at := time.Now()
			if opensAt != "" {
				parsed, err := time.Parse(time.RFC3339, opensAt)
				if err != nil {
					return fmt.Errorf("invalid --opens-at %q: %w", opensAt, err)
				}
				at = parsed
			}

			var days deadline.Days
			for _, d := range []struct {
				raw string
				dst *time.Weekday
			}{
				{substitution, &days.Substitution},
				{schedule, &days.Schedule},
				{results, &days.Results},
			} {
				wd, err := seasonfile.ParseWeekday(d.raw)
				if err != nil {
					return err
				}
				*d.dst = wd
			}

			out, err := deadline.Compute(at, timezone, days)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "timezone     %s\n", out.Timezone)
			fmt.Fprintf(w, "substitution %s  (%s)\n", out.SubstitutionLocal, out.Substitution.Format(time.RFC3339))
			fmt.Fprintf(w, "schedule     %s  (%s)\n", out.ScheduleLocal, out.Schedule.Format(time.RFC3339))
			fmt.Fprintf(w, "results      %s  (%s)\n", out.ResultsLocal, out.Results.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&opensAt, "opens-at", "", "RFC3339 instant the week opens (default now)")
	cmd.Flags().StringVar(&timezone, "tz", deadline.DefaultTimezone, "IANA timezone of the season")
	cmd.Flags().StringVar(&substitution, "substitution", "wed", "Substitution cutoff weekday")
	cmd.Flags().StringVar(&schedule, "schedule", "thu", "Schedule cutoff weekday")
	cmd.Flags().StringVar(&results, "results", "sun", "Results cutoff weekday")
	return cmd
}

func newDeltaCmd() *cobra.Command {
	var (
		self   int
		opp    int
		gamesA int
		gamesB int
		k      int
	)
	cmd := &cobra.Command{
		Use:          "delta",
		Short:        "Compute the rating change of a best-of-three result",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if gamesA < 0 || gamesA > 2 || gamesB < 0 || gamesB > 2 {
				return fmt.Errorf("games must be between 0 and 2")
			}
			d := rating.Delta(self, opp, gamesA, gamesB, k)
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "expected %.3f  actual %.2f\n", rating.ExpectedScore(self, opp), rating.ActualScore(gamesA, gamesB))
			fmt.Fprintf(w, "player %+d  (%d -> %d)\n", d, self, self+d)
			fmt.Fprintf(w, "opponent %+d  (%d -> %d)\n", -d, opp, opp-d)
			return nil
		},
	}
	cmd.Flags().IntVar(&self, "self", rating.Default, "Hidden rating of the player")
	cmd.Flags().IntVar(&opp, "opp", rating.Default, "Hidden rating of the opponent")
	cmd.Flags().IntVar(&gamesA, "games-self", 2, "Games won by the player")
	cmd.Flags().IntVar(&gamesB, "games-opp", 0, "Games won by the opponent")
	cmd.Flags().IntVar(&k, "k", rating.DefaultK, "K factor")
	return cmd
}
