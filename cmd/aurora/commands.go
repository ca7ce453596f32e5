package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/CloudsOfAurora/clouds-of-aurora/internal/actions"
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/api"
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/config"
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/engine"
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/entropy"
	"github.com/CloudsOfAurora/clouds-of-aurora/internal/report"
)

const statusEvents = 10

func newRootCmd() *cobra.Command {
	var (
		configPath string
		cfg        *config.Config
	)

	root := &cobra.Command{
		Use:           "aurora",
		Short:         "Clouds of Aurora settlement simulation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: cfg.Server.Level(),
			})))
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the YAML config file")

	loaded := func() *config.Config { return cfg }
	root.AddCommand(
		newServeCmd(loaded),
		newTickCmd(loaded),
		newOwnerCmd(loaded),
		newSettlementCmd(loaded),
		newStatusCmd(loaded),
	)
	return root
}

// worldSeed returns the configured seed or a fresh one.
func worldSeed(s *config.Settings) int64 {
	if s.Seed != 0 {
		return s.Seed
	}
	seed := entropy.NewSeed()
	slog.Info("no seed configured, picked one", "seed", seed)
	return seed
}

func newEngine(a *app) *engine.Engine {
	s := &a.cfg.Server
	return engine.New(a.db, &a.cfg.Rules,
		engine.WithSeed(worldSeed(s)),
		engine.WithWorkers(s.Workers),
		engine.WithRecorder(a.log),
	)
}

func newServeCmd(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the tick driver and the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cfg(), true)
			if err != nil {
				return err
			}
			defer a.Close()
			return serve(cmd.Context(), a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s := &a.cfg.Server
	driver := engine.NewDriver(newEngine(a), s.TickInterval, s.Speed)
	if s.AdminKey == "" {
		slog.Warn("admin_key not set, admin endpoints will be disabled")
	}

	srv := &api.Server{
		Store:      a.db,
		Actions:    actions.New(a.db, &a.cfg.Rules, actions.WithRecorder(a.log)),
		Driver:     driver,
		Hub:        a.hub,
		Rules:      &a.cfg.Rules,
		AdminKey:   s.AdminKey,
		CORSOrigin: s.CORSOrigin,
		RateLimit:  s.RateLimit,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		driver.Run(ctx)
	}()

	err := srv.ListenAndServe(ctx, s.Listen)
	cancel()
	wg.Wait()

	ticks, failed := driver.Stats()
	slog.Info("shut down", "ticks", ticks, "failed", failed)
	return err
}

func newTickCmd(cfg func() *config.Config) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "tick",
		Short: "Advance the world by a number of ticks and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}
			a, err := openApp(cfg(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			eng := newEngine(a)
			for range count {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				rep, err := eng.Advance(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "tick %d (%s): %d settlements, %d failed, %s\n",
					rep.Tick, rep.Season, rep.Settlements, rep.Failed, rep.Duration.Round(time.Millisecond))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of ticks to run")
	return cmd
}

func newOwnerCmd(cfg func() *config.Config) *cobra.Command {
	owner := &cobra.Command{
		Use:   "owner",
		Short: "Manage settlement owners",
	}

	var name string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an owner and print its API token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cfg(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			o, token, err := api.IssueOwner(cmd.Context(), a.db, name, 0)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "owner %d (%s)\ntoken: %s\n", o.ID, o.Name, token)
			return nil
		},
	}
	create.Flags().StringVar(&name, "name", "", "owner name")
	create.MarkFlagRequired("name")

	owner.AddCommand(create)
	return owner
}

func newSettlementCmd(cfg func() *config.Config) *cobra.Command {
	settlement := &cobra.Command{
		Use:   "settlement",
		Short: "Manage settlements",
	}

	var (
		owner int64
		name  string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Found a settlement for an owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cfg(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			svc := actions.New(a.db, &a.cfg.Rules, actions.WithRecorder(a.log))
			c, err := svc.CreateSettlement(cmd.Context(), owner, name)
			if err != nil {
				return err
			}
			gs, err := a.db.GameState(cmd.Context())
			if err != nil {
				return err
			}
			events, err := a.db.RecentEvents(cmd.Context(), c.Settlement.ID, statusEvents)
			if err != nil {
				return err
			}
			return report.Write(cmd.OutOrStdout(), report.Input{
				Colony: c,
				Rules:  &a.cfg.Rules,
				Season: gs.CurrentSeason,
				Events: events,
				Now:    time.Now(),
			})
		},
	}
	create.Flags().Int64Var(&owner, "owner", 0, "owner id")
	create.Flags().StringVar(&name, "name", "", "settlement name")
	create.MarkFlagRequired("owner")
	create.MarkFlagRequired("name")

	settlement.AddCommand(create)
	return settlement
}

func newStatusCmd(cfg func() *config.Config) *cobra.Command {
	var id int64
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the world clock, or a report for one settlement",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cfg(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			gs, err := a.db.GameState(ctx)
			if err != nil {
				return err
			}

			if id == 0 {
				settlements, err := a.db.Settlements(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "tick %d, %s, %d settlements\n", gs.TickCount, gs.CurrentSeason, len(settlements))
				for _, st := range settlements {
					fmt.Fprintf(out, "  %4d  %-24s owner %d\n", st.ID, st.Name, st.OwnerID)
				}
				return nil
			}

			c, err := a.db.LoadColony(ctx, id)
			if err != nil {
				return err
			}
			events, err := a.db.RecentEvents(ctx, id, statusEvents)
			if err != nil {
				return err
			}
			return report.Write(out, report.Input{
				Colony: c,
				Rules:  &a.cfg.Rules,
				Season: gs.CurrentSeason,
				Events: events,
				Now:    time.Now(),
			})
		},
	}
	cmd.Flags().Int64VarP(&id, "settlement", "s", 0, "settlement id")
	return cmd
}
