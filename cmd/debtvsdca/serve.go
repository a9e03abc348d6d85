package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"DebtVsDCA/internal/api"
	"DebtVsDCA/internal/model"
	"DebtVsDCA/internal/scheduler"
	"DebtVsDCA/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCmd(getApp func() *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the estimate refresher",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := getApp()
			cfg := a.cfg
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if !cfg.Log.Dev {
				gin.SetMode(gin.ReleaseMode)
			}

			// Context for graceful shutdown
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			// Init sessions
			sessions, err := session.NewStore(cfg.Session.StateFile)
			if err != nil {
				return fmt.Errorf("init session store: %w", err)
			}

			// Init scheduler
			sched := scheduler.NewScheduler(ctx, a.collector, sessions, a.log)
			if p, ok := a.cache.(scheduler.Purger); ok {
				sched.Cache = p
			}
			if err := sched.Register(cfg.Server.RefreshCron); err != nil {
				return fmt.Errorf("register cron tasks: %w", err)
			}
			sched.Start()
			defer sched.Stop()

			policy, _ := model.ParseDebtPolicy(cfg.Simulation.DebtPolicy)
			period, _ := model.ParsePeriod(cfg.Simulation.Period)
			h := api.ApiHandler{
				Collector:            a.collector,
				Sessions:             sessions,
				Metrics:              a.metrics,
				Log:                  a.log,
				DefaultPolicy:        policy,
				DefaultPeriod:        period,
				DefaultHorizonMonths: cfg.Simulation.HorizonMonths,
			}

			a.log.Infow("debtvsdca is running, press Ctrl+C to stop", "port", cfg.Server.Port, "policy", policy, "period", period)
			err = h.StartApi(ctx, cfg.Server.Port)
			a.log.Info("debtvsdca stopped")
			return err
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port; overrides server.port")
	return cmd
}
