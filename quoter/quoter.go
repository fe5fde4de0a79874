package quoter

import (
	"errors"
	"math/big"

	"github.com/defistate/v3swap/calculator"
	"github.com/defistate/v3swap/pool"
	"github.com/prometheus/client_golang/prometheus"
)

// Logger defines a standard interface for structured, leveled logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config holds the dependencies of a Quoter.
type Config struct {
	Registry prometheus.Registerer
	Logger   Logger
}

// validate checks if the configuration is valid, ensuring required dependencies are present.
func (c *Config) validate() error {
	if c.Registry == nil {
		return errors.New("config: Registry cannot be nil")
	}
	if c.Logger == nil {
		return errors.New("config: Logger cannot be nil")
	}
	return nil
}

// Quoter runs swaps against pool snapshots and reports on them. It is safe for concurrent use.
type Quoter struct {
	metrics *Metrics
	logger  Logger
}

// New constructs a Quoter from a configuration, returning an error if the config is invalid.
func New(cfg *Config) (*Quoter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Quoter{
		metrics: NewMetrics(cfg.Registry),
		logger:  cfg.Logger,
	}, nil
}

// stepCounter tallies the iterations of one swap.
type stepCounter struct {
	steps   int
	crossed int
}

// count wraps the request's step observer so every step is tallied before it is passed on.
func count[N any](req calculator.Request[N]) (calculator.Request[N], *stepCounter) {
	c := &stepCounter{}
	next := req.OnStep
	req.OnStep = func(s calculator.Step[N]) {
		c.steps++
		if s.Crossed {
			c.crossed++
		}
		if next != nil {
			next(s)
		}
	}
	return req, c
}

// Exact quotes req in exact integer arithmetic.
func (q *Quoter) Exact(snap *pool.Snapshot, req calculator.Request[*big.Int]) (calculator.Result[*big.Int], error) {
	timer := prometheus.NewTimer(q.metrics.quoteDuration.WithLabelValues(regimeExact))
	defer timer.ObserveDuration()

	req, c := count(req)
	res, err := calculator.SwapExact(snap, req)
	if err != nil {
		q.fail(regimeExact, snap, req.ZeroForOne, err)
		return res, err
	}

	q.succeed(regimeExact, snap, req.ZeroForOne, c,
		"amount0", res.Amount0.String(),
		"amount1", res.Amount1.String(),
		"tick", res.Tick,
	)
	return res, nil
}

// Approx quotes req in float64 arithmetic, with amounts in whole tokens.
func (q *Quoter) Approx(snap *pool.Snapshot, req calculator.ApproxRequest) (calculator.Result[float64], error) {
	timer := prometheus.NewTimer(q.metrics.quoteDuration.WithLabelValues(regimeApprox))
	defer timer.ObserveDuration()

	var c *stepCounter
	req.Request, c = count(req.Request)
	res, err := calculator.SwapApprox(snap, req)
	if err != nil {
		q.fail(regimeApprox, snap, req.ZeroForOne, err)
		return res, err
	}

	q.succeed(regimeApprox, snap, req.ZeroForOne, c,
		"amount0", res.Amount0,
		"amount1", res.Amount1,
		"tick", res.Tick,
	)
	return res, nil
}

func (q *Quoter) fail(regime string, snap *pool.Snapshot, zeroForOne bool, err error) {
	q.metrics.quotesTotal.WithLabelValues(regime, outcomeError).Inc()
	q.logger.Warn("quote failed",
		"pool", snap.Address.Hex(),
		"regime", regime,
		"zeroForOne", zeroForOne,
		"error", err,
	)
}

func (q *Quoter) succeed(regime string, snap *pool.Snapshot, zeroForOne bool, c *stepCounter, kv ...any) {
	q.metrics.quotesTotal.WithLabelValues(regime, outcomeOK).Inc()
	q.metrics.quoteSteps.WithLabelValues(regime).Observe(float64(c.steps))
	q.metrics.quoteCrossed.WithLabelValues(regime).Observe(float64(c.crossed))

	args := append([]any{
		"pool", snap.Address.Hex(),
		"regime", regime,
		"zeroForOne", zeroForOne,
		"steps", c.steps,
		"crossed", c.crossed,
	}, kv...)
	q.logger.Debug("quote computed", args...)
}
