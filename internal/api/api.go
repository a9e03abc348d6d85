package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"DebtVsDCA/internal/calculator"
	"DebtVsDCA/internal/collector"
	"DebtVsDCA/internal/logger"
	"DebtVsDCA/internal/metrics"
	"DebtVsDCA/internal/model"
	"DebtVsDCA/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ApiHandler struct {
	Collector            *collector.Collector
	Sessions             *session.Store
	Metrics              *metrics.Metrics
	Log                  *zap.SugaredLogger
	DefaultPolicy        model.DebtPolicy
	DefaultPeriod        model.Period
	DefaultHorizonMonths int
}

func (h ApiHandler) baseLogger() *zap.SugaredLogger {
	if h.Log == nil {
		return zap.S()
	}
	return h.Log
}

// Router builds the gin engine with every route registered.
func (h ApiHandler) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(h.Metrics.Middleware())
	router.Use(h.logRequestMiddleware)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to debt vs dca"})
	})
	router.GET("/assets", h.listAssets)
	router.GET("/assets/search", h.searchAssets)
	router.GET("/assets/:id/estimate", h.estimate)
	router.GET("/sessions", h.listSessions)
	router.POST("/sessions", h.createSession)
	router.GET("/sessions/:id", h.getSession)
	router.PATCH("/sessions/:id", h.updateSession)
	router.DELETE("/sessions/:id", h.deleteSession)
	router.POST("/simulate", h.simulate)
	router.GET("/metrics", gin.WrapH(h.Metrics.Handler()))

	return router
}

// StartApi serves until ctx is cancelled, then shuts down gracefully.
func (h ApiHandler) StartApi(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		h.baseLogger().Infow("api listening", "port", port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		h.baseLogger().Info("shutting down api")
		return srv.Shutdown(shutdownCtx)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, calculator.ErrInvalidInput),
		errors.Is(err, calculator.ErrPaymentTooLow),
		errors.Is(err, collector.ErrQueryTooShort):
		return http.StatusBadRequest
	case errors.Is(err, calculator.ErrProjectionOverflow):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, collector.ErrAssetNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func returnErrorJson(err error, c *gin.Context) {
	returnErrorJsonCode(err, c, statusFor(err))
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	log := logger.FromContext(c.Request.Context())
	if code >= 500 {
		log.Errorw("request failed", "error", err)
	} else {
		log.Infow("request rejected", "status", code, "error", err)
	}
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}

func (h ApiHandler) logRequestMiddleware(c *gin.Context) {
	start := time.Now()
	log := h.baseLogger().With("request_id", uuid.NewString(), "method", c.Request.Method, "path", c.Request.URL.Path)
	c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), log))

	c.Next()

	log.Debugw("request served", "status", c.Writer.Status(), "duration_ms", time.Since(start).Milliseconds())
}

func parseSessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		returnErrorJsonCode(fmt.Errorf("invalid session id: %w", err), c, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (h ApiHandler) parsePeriod(s string) (model.Period, error) {
	if s == "" && h.DefaultPeriod != "" {
		return h.DefaultPeriod, nil
	}
	return model.ParsePeriod(s)
}

// resolveAsset fills symbol and name for an asset id from the catalog.
// Unknown ids are kept as-is so offline sources still work.
func (h ApiHandler) resolveAsset(ctx context.Context, id string) model.Asset {
	for _, a := range h.Collector.Assets(ctx, "") {
		if a.ID == id {
			return a
		}
	}
	if a, err := h.Collector.Lookup(ctx, id); err == nil && a.ID == id {
		return a
	}
	return model.Asset{ID: id}
}
