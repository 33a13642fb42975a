package app

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/fd1az/funding-engine/business/execution/domain"
	ratesApp "github.com/fd1az/funding-engine/business/rates/app"
	ratesDomain "github.com/fd1az/funding-engine/business/rates/domain"
	"github.com/fd1az/funding-engine/internal/apm"
	"github.com/fd1az/funding-engine/internal/apperror"
	"github.com/fd1az/funding-engine/internal/logger"
	"github.com/fd1az/funding-engine/internal/metrics"
)

const tracerName = "execution.engine"

// Engine orchestrates one arbitrage request end to end: it resolves
// both funding rates, invokes the strategy, times the operation and
// produces the response record. Execute never returns a raw error;
// every failure path becomes an error response.
type Engine struct {
	source      ratesApp.Source
	strategy    Strategy
	gas         domain.GasBudget
	reporter    Reporter
	log         logger.LoggerInterface
	instruments *metrics.EngineInstruments
	tracer      apm.Tracer
}

// NewEngine creates an Engine. A nil reporter is replaced with a no-op
// one; instruments may be nil when telemetry is disabled.
func NewEngine(
	source ratesApp.Source,
	strategy Strategy,
	gas domain.GasBudget,
	reporter Reporter,
	log logger.LoggerInterface,
	instruments *metrics.EngineInstruments,
) *Engine {
	if reporter == nil {
		reporter = NewNopReporter()
	}
	return &Engine{
		source:      source,
		strategy:    strategy,
		gas:         gas,
		reporter:    reporter,
		log:         log,
		instruments: instruments,
		tracer:      apm.NewTracer(tracerName),
	}
}

// Execute processes one request and always produces a well-formed
// response.
func (e *Engine) Execute(ctx context.Context, req domain.Request) domain.Response {
	ctx, span := e.tracer.StartSpanFromContext(ctx, "engine.execute")
	defer span.End()

	span.SetAttributes(
		attribute.String("strategy_id", req.StrategyID),
		attribute.String("symbol", req.Symbol),
		attribute.String("primary_exchange", req.PrimaryExchange),
		attribute.String("secondary_exchange", req.SecondaryExchange),
	)

	start := time.Now()

	resp := e.execute(ctx, req, start)

	if resp.IsSuccess() {
		profit, _ := resp.Profit.Float64()
		e.instruments.RecordExecution(ctx, resp.Elapsed, profit)
		e.log.Info(ctx, "arbitrage executed",
			"strategy_id", req.StrategyID,
			"symbol", req.Symbol,
			"profit", resp.Profit.String(),
			"elapsed", resp.Elapsed.String(),
		)
	} else {
		e.log.Info(ctx, "arbitrage rejected",
			"strategy_id", req.StrategyID,
			"symbol", req.Symbol,
			"reason", resp.ErrorMessage,
		)
	}

	e.instruments.RecordRequest(ctx, string(resp.Status))
	e.reporter.Report(domain.Result{
		Request:    req,
		Response:   resp,
		FinishedAt: time.Now(),
	})

	return resp
}

func (e *Engine) execute(ctx context.Context, req domain.Request, start time.Time) domain.Response {
	if err := req.Validate(); err != nil {
		return domain.Failure(err)
	}

	primary, secondary, err := e.fetchRates(ctx, req)
	if err != nil {
		return domain.Failure(err)
	}

	e.log.Debug(ctx, "funding rates resolved",
		"strategy_id", req.StrategyID,
		"primary_rate", primary.Rate.String(),
		"secondary_rate", secondary.Rate.String(),
	)

	profit, err := e.strategy.Evaluate(ctx, primary, secondary, req.Amount)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			err = apperror.External(apperror.CodeServiceTimeout, "execution timed out", err)
		}
		return domain.Failure(err)
	}

	// Only successful executions are timed; failures report zero so
	// cost accounting covers completed work.
	return domain.Success(profit, time.Since(start), e.gas.GasPriceWei)
}

// fetchRates resolves both exchanges concurrently. There is no
// ordering dependency between the two lookups; the first failure wins.
func (e *Engine) fetchRates(ctx context.Context, req domain.Request) (ratesDomain.Observation, ratesDomain.Observation, error) {
	var primary, secondary ratesDomain.Observation

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		obs, err := e.source.Rate(gctx, req.PrimaryExchange, req.Symbol)
		if err != nil {
			return err
		}
		primary = obs
		return nil
	})

	g.Go(func() error {
		obs, err := e.source.Rate(gctx, req.SecondaryExchange, req.Symbol)
		if err != nil {
			return err
		}
		secondary = obs
		return nil
	})

	if err := g.Wait(); err != nil {
		return ratesDomain.Observation{}, ratesDomain.Observation{},
			apperror.Wrap(err, apperror.CodeRateFetchFailed, "")
	}

	return primary, secondary, nil
}
