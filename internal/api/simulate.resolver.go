package api

import (
	"errors"
	"fmt"
	"net/http"

	"DebtVsDCA/internal/calculator"
	"DebtVsDCA/internal/logger"
	"DebtVsDCA/internal/model"
	"DebtVsDCA/internal/report"
	"DebtVsDCA/internal/session"
	"DebtVsDCA/internal/simulator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type simulateRequest struct {
	SessionID      *uuid.UUID `json:"sessionID"`
	Asset          string     `json:"asset"`
	Period         string     `json:"period"`
	DebtAmount     float64    `json:"debtAmount"`
	APR            float64    `json:"apr"`
	MonthlyPayment float64    `json:"monthlyPayment"`
	StartPrice     *float64   `json:"startPrice"`
	Policy         string     `json:"policy"`
	HorizonMonths  *int       `json:"horizonMonths"`
}

type simulateResponse struct {
	Outcome  *model.Outcome `json:"outcome"`
	Summary  report.Summary `json:"summary"`
	Markdown string         `json:"markdown"`
}

func (h ApiHandler) simulate(c *gin.Context) {
	var requestBody simulateRequest
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		returnErrorJsonCode(fmt.Errorf("failed to read request body: %w", err), c, http.StatusBadRequest)
		return
	}

	policy := h.DefaultPolicy
	if requestBody.Policy != "" || policy == "" {
		p, err := model.ParseDebtPolicy(requestBody.Policy)
		if err != nil {
			returnErrorJsonCode(err, c, http.StatusBadRequest)
			return
		}
		policy = p
	}

	ctx := c.Request.Context()
	var (
		asset  model.Asset
		period model.Period
		stats  *model.ReturnStats
		err    error
	)
	if requestBody.SessionID != nil {
		if requestBody.Asset != "" || requestBody.Period != "" {
			returnErrorJsonCode(errors.New("asset and period come from the session; change them with PATCH /sessions/:id"), c, http.StatusBadRequest)
			return
		}
		var sess session.Session
		if sess, err = h.Sessions.Get(*requestBody.SessionID); err != nil {
			returnErrorJson(err, c)
			return
		}
		asset, period, stats = sess.Asset, sess.Period, sess.Stats
	} else {
		if period, err = h.parsePeriod(requestBody.Period); err != nil {
			returnErrorJsonCode(fmt.Errorf("invalid period: %w", err), c, http.StatusBadRequest)
			return
		}
		if requestBody.Asset != "" {
			asset = h.resolveAsset(ctx, requestBody.Asset)
		}
	}

	if asset.ID == "" && requestBody.StartPrice == nil {
		returnErrorJsonCode(errors.New("either an asset or a startPrice is required"), c, http.StatusBadRequest)
		return
	}

	var startPrice float64
	switch {
	case requestBody.StartPrice != nil:
		startPrice = *requestBody.StartPrice
		if stats == nil && asset.ID != "" {
			s := h.Collector.Estimate(ctx, asset.ID, period)
			stats = &s
		}
	case stats == nil:
		var snap *model.MarketSnapshot
		if snap, err = h.Collector.Snapshot(ctx, asset, period); err != nil {
			returnErrorJson(err, c)
			return
		}
		startPrice, stats = snap.CurrentPrice, &snap.Stats
	default:
		if startPrice, err = h.Collector.Fetcher.FetchCurrentPrice(ctx, asset.ID); err != nil {
			returnErrorJson(err, c)
			return
		}
	}
	if stats == nil {
		s := calculator.FallbackStatsWith(h.Collector.FallbackMean, h.Collector.FallbackVolatility, errors.New("no asset selected"))
		stats = &s
	}
	if requestBody.SessionID != nil && asset.ID != "" {
		// Cache the estimate on the session; a concurrent change just makes this a no-op.
		_, _ = h.Sessions.SetStatsFor(*requestBody.SessionID, asset.ID, period, *stats)
	}

	horizon := h.DefaultHorizonMonths
	if requestBody.HorizonMonths != nil {
		horizon = *requestBody.HorizonMonths
	}
	in := model.SimulationInputs{
		DebtPrincipal:     requestBody.DebtAmount,
		AnnualRatePercent: requestBody.APR,
		MonthlyPayment:    requestBody.MonthlyPayment,
		StartPrice:        startPrice,
		HorizonMonths:     horizon,
	}

	out, err := simulator.Run(in, *stats, policy)
	h.Metrics.RecordSimulation(string(policy), err)
	if err != nil {
		returnErrorJson(err, c)
		return
	}
	logger.FromContext(ctx).Infow("simulation finished",
		"run_id", out.RunID,
		"asset", asset.ID,
		"policy", out.Policy,
		"horizon", out.Horizon,
		"crossed", out.Analysis.Crossed,
		"stats_source", out.Stats.Source,
	)

	c.JSON(200, simulateResponse{
		Outcome:  out,
		Summary:  report.NewSummary(out),
		Markdown: report.Markdown(out, asset, period),
	})
}
