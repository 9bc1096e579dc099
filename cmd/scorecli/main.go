package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/austrian-olympiad-informatics/aoi-portal/auth"
	"github.com/austrian-olympiad-informatics/aoi-portal/conf"
	"github.com/austrian-olympiad-informatics/aoi-portal/logger"
	"github.com/austrian-olympiad-informatics/aoi-portal/score/scorecache"
	"github.com/austrian-olympiad-informatics/aoi-portal/score/scorepgrepo"
	"github.com/austrian-olympiad-informatics/aoi-portal/score/scoresrvc"
	"github.com/spf13/cobra"
)

func main() {
	var configPath string
	var demo bool

	var rootCmd = &cobra.Command{
		Use:          "scorecli",
		Short:        "Inspect contest standings from the command line",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML config file")
	rootCmd.PersistentFlags().BoolVar(&demo, "demo", false, "use the built-in demo contest instead of postgres")

	// withSrvc opens the configured repo for the duration of one command.
	withSrvc := func(ctx context.Context, fn func(srvc *scoresrvc.ScoreSrvc) error) error {
		cfg, err := conf.Load(configPath)
		if err != nil {
			return err
		}
		if _, err := logger.Setup(os.Stderr, "warn", cfg.Log.Format); err != nil {
			return err
		}

		var repo scoresrvc.Repo
		if demo {
			repo = scoresrvc.NewDemoRepo()
		} else {
			connStr, err := cfg.Postgres.PgConnStr(ctx, cfg.AwsRegion)
			if err != nil {
				return err
			}
			pool, err := scorepgrepo.Connect(ctx, connStr)
			if err != nil {
				return err
			}
			defer pool.Close()
			repo = scorepgrepo.NewPgScoreRepo(pool)
		}
		return fn(scoresrvc.NewScoreSrvc(repo, scorecache.New(cfg.Scores.CacheMaxAge.Duration)))
	}

	var contestID int64
	var showHidden bool
	var standingsCmd = &cobra.Command{
		Use:   "standings",
		Short: "Print the ranked standings of a contest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSrvc(cmd.Context(), func(srvc *scoresrvc.ScoreSrvc) error {
				snap, err := srvc.GetContestScores.Handle(cmd.Context(), scoresrvc.GetContestScoresParams{ContestID: contestID})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderStandings(snap, showHidden))
				return nil
			})
		},
	}
	standingsCmd.Flags().Int64Var(&contestID, "contest", 0, "contest id (required)")
	standingsCmd.Flags().BoolVar(&showHidden, "hidden", false, "include hidden participations")
	standingsCmd.MarkFlagRequired("contest")

	var tasksCmd = &cobra.Command{
		Use:   "tasks",
		Short: "Print the tasks of a contest and how they are scored",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSrvc(cmd.Context(), func(srvc *scoresrvc.ScoreSrvc) error {
				tasks, err := srvc.GetContestTasks(cmd.Context(), contestID)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTasks(tasks))
				return nil
			})
		},
	}
	tasksCmd.Flags().Int64Var(&contestID, "contest", 0, "contest id (required)")
	tasksCmd.MarkFlagRequired("contest")

	var partID, taskID int64
	var submsCmd = &cobra.Command{
		Use:   "submissions",
		Short: "Print the submission history of a participation on one task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSrvc(cmd.Context(), func(srvc *scoresrvc.ScoreSrvc) error {
				subms, err := srvc.ListTaskSubms.Handle(cmd.Context(), scoresrvc.ListTaskSubmsParams{
					ParticipationID: partID,
					TaskID:          taskID,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderSubms(subms))
				return nil
			})
		},
	}
	submsCmd.Flags().Int64Var(&partID, "participation", 0, "participation id (required)")
	submsCmd.Flags().Int64Var(&taskID, "task", 0, "task id (required)")
	submsCmd.MarkFlagRequired("participation")
	submsCmd.MarkFlagRequired("task")

	var submID int64
	var submCmd = &cobra.Command{
		Use:   "submission",
		Short: "Print the testcase results of one submission",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSrvc(cmd.Context(), func(srvc *scoresrvc.ScoreSrvc) error {
				subm, err := srvc.GetSubm.Handle(cmd.Context(), scoresrvc.GetSubmParams{
					ParticipationID: partID,
					TaskID:          taskID,
					SubmissionID:    submID,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderSubmDetail(subm))
				return nil
			})
		},
	}
	submCmd.Flags().Int64Var(&partID, "participation", 0, "participation id (required)")
	submCmd.Flags().Int64Var(&taskID, "task", 0, "task id (required)")
	submCmd.Flags().Int64Var(&submID, "id", 0, "submission id (required)")
	submCmd.MarkFlagRequired("participation")
	submCmd.MarkFlagRequired("task")
	submCmd.MarkFlagRequired("id")

	var subject string
	var ttl time.Duration
	var tokenCmd = &cobra.Command{
		Use:   "token",
		Short: "Mint a service token that may invalidate participations over http",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := conf.Load(configPath)
			if err != nil {
				return err
			}
			if cfg.Http.JwtKey == "" {
				return errors.New("no jwt key configured (http.jwt_key or JWT_KEY)")
			}
			token, err := auth.GenerateServiceJWT(subject, []string{auth.ScopeInvalidateScores}, ttl, []byte(cfg.Http.JwtKey))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	tokenCmd.Flags().StringVar(&subject, "subject", "cms-evaluator", "service the token is issued to")
	tokenCmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "token lifetime")

	rootCmd.AddCommand(standingsCmd, tasksCmd, submsCmd, submCmd, tokenCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
