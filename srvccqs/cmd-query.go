package decorator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/austrian-olympiad-informatics/aoi-portal/logger"
)

// P - params
type CmdHandler[P any] interface {
	Handle(ctx context.Context, p P) error
}

// Q - query, R - result
type QueryHandler[Q any, R any] interface {
	Handle(ctx context.Context, q Q) (R, error)
}

// WithQueryLogging logs duration and failure of every query handled by h.
func WithQueryLogging[Q any, R any](h QueryHandler[Q, R]) QueryHandler[Q, R] {
	return queryLogging[Q, R]{base: h}
}

// WithCmdLogging logs duration and failure of every command handled by h.
func WithCmdLogging[P any](h CmdHandler[P]) CmdHandler[P] {
	return cmdLogging[P]{base: h}
}

type queryLogging[Q any, R any] struct {
	base QueryHandler[Q, R]
}

func (d queryLogging[Q, R]) Handle(ctx context.Context, q Q) (R, error) {
	start := time.Now()
	res, err := d.base.Handle(ctx, q)
	logOutcome(ctx, "query", q, start, err)
	return res, err
}

type cmdLogging[P any] struct {
	base CmdHandler[P]
}

func (d cmdLogging[P]) Handle(ctx context.Context, p P) error {
	start := time.Now()
	err := d.base.Handle(ctx, p)
	logOutcome(ctx, "command", p, start, err)
	return err
}

func logOutcome(ctx context.Context, kind string, params any, start time.Time, err error) {
	log := logger.FromContext(ctx).With(
		kind, handlerName(params),
		"params", fmt.Sprintf("%+v", params),
		"took", time.Since(start),
	)
	if err != nil {
		log.Warn("failed to handle "+kind, "error", err)
		return
	}
	log.Debug("handled " + kind)
}

// handlerName derives "GetContestScores" from GetContestScoresParams.
func handlerName(params any) string {
	name := fmt.Sprintf("%T", params)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "Params")
}
