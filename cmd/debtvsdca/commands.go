package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"DebtVsDCA/internal/calculator"
	"DebtVsDCA/internal/collector"
	"DebtVsDCA/internal/logger"
	"DebtVsDCA/internal/model"
	"DebtVsDCA/internal/report"
	"DebtVsDCA/internal/simulator"

	"github.com/spf13/cobra"
)

var errUsage = errors.New("invalid usage")

// resolveAsset accepts an exact id or a search query such as "btc".
func resolveAsset(ctx context.Context, col *collector.Collector, query string) model.Asset {
	for _, a := range col.Assets(ctx, "") {
		if a.ID == query {
			return a
		}
	}
	if a, err := col.Lookup(ctx, query); err == nil {
		return a
	}
	return model.Asset{ID: query}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newSimulateCmd(getApp func() *app) *cobra.Command {
	var (
		assetQuery string
		in         model.SimulationInputs
		periodFlag string
		policyFlag string
		asJSON     bool
		style      string
		width      int
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Project debt against a monthly DCA into an asset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := getApp()
			ctx := cmd.Context()
			log := logger.FromContext(ctx)

			if policyFlag == "" {
				policyFlag = a.cfg.Simulation.DebtPolicy
			}
			policy, err := model.ParseDebtPolicy(policyFlag)
			if err != nil {
				return fmt.Errorf("%w: %v", errUsage, err)
			}
			period, err := a.period(periodFlag)
			if err != nil {
				return fmt.Errorf("%w: %v", errUsage, err)
			}
			if !cmd.Flags().Changed("horizon") {
				in.HorizonMonths = a.cfg.Simulation.HorizonMonths
			}

			var asset model.Asset
			var stats model.ReturnStats
			switch {
			case assetQuery == "" && in.StartPrice <= 0:
				return fmt.Errorf("%w: --asset or --start-price is required", errUsage)
			case assetQuery == "":
				stats = calculator.FallbackStatsWith(a.collector.FallbackMean, a.collector.FallbackVolatility, errors.New("no asset selected"))
			case in.StartPrice > 0:
				asset = resolveAsset(ctx, a.collector, assetQuery)
				stats = a.collector.Estimate(ctx, asset.ID, period)
			default:
				asset = resolveAsset(ctx, a.collector, assetQuery)
				snap, err := a.collector.Snapshot(ctx, asset, period)
				if err != nil {
					return err
				}
				asset, in.StartPrice, stats = snap.Asset, snap.CurrentPrice, snap.Stats
			}

			out, err := simulator.Run(in, stats, policy)
			a.metrics.RecordSimulation(string(policy), err)
			if err != nil {
				return err
			}
			log.Infow("simulation finished", "run_id", out.RunID, "asset", asset.ID, "policy", out.Policy, "horizon", out.Horizon)

			if asJSON {
				return printJSON(cmd, map[string]any{
					"outcome": out,
					"summary": report.NewSummary(out),
				})
			}
			rendered, err := report.Render(report.Markdown(out, asset, period), style, width)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&assetQuery, "asset", "", "asset id or search query (e.g. bitcoin, eth)")
	f.Float64Var(&in.DebtPrincipal, "debt", 0, "debt principal")
	f.Float64Var(&in.AnnualRatePercent, "apr", 0, "annual interest rate in percent")
	f.Float64Var(&in.MonthlyPayment, "payment", 0, "monthly payment, also the monthly DCA amount")
	f.Float64Var(&in.StartPrice, "start-price", 0, "starting asset price; fetched when omitted")
	f.StringVar(&periodFlag, "period", "", "history window: 30, 90, 365 or max")
	f.StringVar(&policyFlag, "policy", "", "debt policy: amortizing or ignore_payments")
	f.IntVar(&in.HorizonMonths, "horizon", 0, "fixed horizon in months for ignore_payments; 0 uses the payoff schedule")
	f.BoolVar(&asJSON, "json", false, "print the outcome as JSON")
	f.StringVar(&style, "style", "", "glamour style (dark, light, notty); empty picks one from the terminal")
	f.IntVar(&width, "width", report.DefaultWordWrap, "word wrap width")
	_ = cmd.MarkFlagRequired("debt")
	_ = cmd.MarkFlagRequired("apr")
	_ = cmd.MarkFlagRequired("payment")
	return cmd
}

func newEstimateCmd(getApp func() *app) *cobra.Command {
	var assetQuery, periodFlag string

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate daily return and volatility for an asset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := getApp()
			ctx := cmd.Context()
			period, err := a.period(periodFlag)
			if err != nil {
				return fmt.Errorf("%w: %v", errUsage, err)
			}
			snap, err := a.collector.Snapshot(ctx, resolveAsset(ctx, a.collector, assetQuery), period)
			if err != nil {
				return err
			}
			return printJSON(cmd, snap)
		},
	}
	cmd.Flags().StringVar(&assetQuery, "asset", "", "asset id or search query")
	cmd.Flags().StringVar(&periodFlag, "period", "", "history window: 30, 90, 365 or max")
	_ = cmd.MarkFlagRequired("asset")
	return cmd
}

func newAssetsCmd(getApp func() *app) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "assets",
		Short: "List the top assets by market cap",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := getApp()
			for _, asset := range a.collector.Assets(cmd.Context(), filter) {
				line := fmt.Sprintf("%-16s %-8s %s", asset.ID, asset.Symbol, asset.Name)
				if asset.Price > 0 {
					line += "  " + report.Money(asset.Price)
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "only show assets whose symbol or name contains this")
	return cmd
}
