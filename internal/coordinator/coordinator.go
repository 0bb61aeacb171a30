package coordinator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"tokenchecker/internal/domain/model"
	"tokenchecker/internal/metrics"
	"tokenchecker/internal/verifier"
)

var (
	// ErrRunInProgress is returned when a run is started while another is still processing.
	ErrRunInProgress = errors.New("a run is already in progress")
	// ErrUnknownWallet is returned when retrying a wallet absent from the current results.
	ErrUnknownWallet = errors.New("wallet is not in the current results")
	// ErrStaleRetry is returned when a new run started while a retry was in flight.
	// The retried result is not recorded.
	ErrStaleRetry = errors.New("retry belongs to a previous run")
)

// WalletVerifier verifies a single wallet.
type WalletVerifier interface {
	Verify(ctx context.Context, conn verifier.BalanceFetcher, wallet string, mode model.Mode) model.Result
}

// Connector opens the chain connection used for every wallet of a run.
type Connector func(endpoint string) (verifier.BalanceFetcher, error)

// RunConfig is everything a run needs, passed explicitly per invocation.
type RunConfig struct {
	Endpoint    string
	Mode        model.Mode
	AddressText string
}

// State is a copy of the pipeline state at one point in time.
type State struct {
	RunID    string
	Mode     model.Mode
	Running  bool
	Pending  []string
	Results  []model.Result
	Endpoint string
}

// Coordinator drives the verifier over an address list one wallet at a time
// and owns the resulting pipeline state.
type Coordinator struct {
	verifier WalletVerifier
	connect  Connector
	retries  singleflight.Group

	mu       sync.Mutex
	runID    string
	mode     model.Mode
	endpoint string
	conn     verifier.BalanceFetcher
	running  bool
	pending  []string
	results  []model.Result
}

// New creates a new Coordinator
func New(v WalletVerifier, connect Connector) *Coordinator {
	return &Coordinator{
		verifier: v,
		connect:  connect,
	}
}

// Run parses the address text, resets the pipeline state and verifies every
// wallet sequentially in input order. Each result is recorded and then sent
// on the returned channel, which is closed when the run ends. A failing
// wallet never aborts the run; cancelling ctx does, and the wallets not yet
// processed are dropped from the pending list.
func (c *Coordinator) Run(ctx context.Context, cfg RunConfig) (<-chan model.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil, ErrRunInProgress
	}

	conn, err := c.connect(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.Endpoint, err)
	}
	if err := closeConn(c.conn); err != nil {
		slog.Debug("closing previous connection", "run_id", c.runID, "error", err)
	}

	wallets := model.ParseAddressList(cfg.AddressText)

	c.runID = uuid.NewString()
	c.mode = cfg.Mode
	c.endpoint = connEndpoint(conn, cfg.Endpoint)
	c.conn = conn
	c.running = true
	c.pending = slices.Clone(wallets)
	c.results = make([]model.Result, 0, len(wallets))

	slog.Info("run started",
		"run_id", c.runID,
		"wallets", len(wallets),
		"mode", cfg.Mode.String(),
		"endpoint", c.endpoint)
	metrics.RunsTotal.WithLabelValues(cfg.Mode.Label()).Inc()

	// Buffered so a slow or absent reader never holds up the run.
	out := make(chan model.Result, len(wallets))
	go c.process(ctx, c.runID, conn, cfg.Mode, wallets, out)

	return out, nil
}

func (c *Coordinator) process(ctx context.Context, runID string, conn verifier.BalanceFetcher, mode model.Mode, wallets []string, out chan<- model.Result) {
	defer close(out)
	start := time.Now()

	for _, wallet := range wallets {
		if ctx.Err() != nil {
			break
		}

		result := c.verifier.Verify(ctx, conn, wallet, mode)

		// A verification interrupted by cancellation is not a wallet failure.
		if ctx.Err() != nil {
			break
		}

		c.record(result)
		out <- result
	}

	c.finish(runID, mode, time.Since(start), ctx.Err())
}

func (c *Coordinator) record(result model.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.results = append(c.results, result)
	if i := slices.Index(c.pending, result.Wallet); i >= 0 {
		c.pending = slices.Delete(c.pending, i, i+1)
	}
}

func (c *Coordinator) finish(runID string, mode model.Mode, elapsed time.Duration, cause error) {
	c.mu.Lock()
	dropped := len(c.pending)
	c.pending = nil
	c.running = false
	stats := ComputeStats(c.results, mode)
	c.mu.Unlock()

	metrics.RunDuration.WithLabelValues(mode.Label()).Observe(elapsed.Seconds())

	if cause != nil {
		slog.Warn("run cancelled",
			"run_id", runID,
			"completed", stats.Total,
			"dropped", dropped,
			"error", cause)
		return
	}

	slog.Info("run finished",
		"run_id", runID,
		"duration", elapsed,
		"total", stats.Total,
		"non_zero", stats.NonZero,
		"failed", stats.Failed,
		"total_tokens", stats.TotalTokens,
		"total_usd", stats.TotalUSD)
}

// Retry re-verifies one wallet of the current results and replaces its
// entry in place. Concurrent retries of the same wallet share a single
// verification that no single caller can cancel for the others. A caller
// whose ctx ends first gets ctx.Err() and its entry keeps the previous
// result. The rest of the state, pending list included, is untouched.
func (c *Coordinator) Retry(ctx context.Context, wallet string) (model.Result, error) {
	c.mu.Lock()
	if !slices.ContainsFunc(c.results, func(r model.Result) bool { return r.Wallet == wallet }) {
		c.mu.Unlock()
		return model.Result{}, fmt.Errorf("%w: %s", ErrUnknownWallet, wallet)
	}
	runID, conn, mode := c.runID, c.conn, c.mode
	c.replace(wallet, func(r model.Result) model.Result {
		r.Retrying = true
		return r
	})
	c.mu.Unlock()

	detached := context.WithoutCancel(ctx)
	ch := c.retries.DoChan(runID+"/"+wallet, func() (any, error) {
		return c.verifier.Verify(detached, conn, wallet, mode), nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		c.mu.Lock()
		if c.runID == runID {
			c.replace(wallet, func(r model.Result) model.Result {
				r.Retrying = false
				return r
			})
		}
		c.mu.Unlock()
		metrics.RetriesTotal.WithLabelValues("cancelled").Inc()
		slog.Debug("retry cancelled", "run_id", runID, "wallet", wallet, "error", ctx.Err())
		return model.Result{}, ctx.Err()
	}
	result := res.Val.(model.Result)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.runID != runID {
		metrics.RetriesTotal.WithLabelValues("stale").Inc()
		return result, ErrStaleRetry
	}

	c.replace(wallet, func(model.Result) model.Result { return result })
	metrics.RetriesTotal.WithLabelValues(string(result.Status)).Inc()
	slog.Info("wallet retried",
		"run_id", runID,
		"wallet", wallet,
		"status", result.Status,
		"shared", res.Shared)

	return result, nil
}

// replace rewrites every entry of wallet. Callers hold c.mu.
func (c *Coordinator) replace(wallet string, fn func(model.Result) model.Result) {
	for i := range c.results {
		if c.results[i].Wallet == wallet {
			c.results[i] = fn(c.results[i])
		}
	}
}

// FailedWallets lists the distinct failed wallets in result order.
func (c *Coordinator) FailedWallets() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var failed []string
	for _, r := range c.results {
		if r.HasError() && !slices.Contains(failed, r.Wallet) {
			failed = append(failed, r.Wallet)
		}
	}
	return failed
}

// Stats aggregates the current results.
func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ComputeStats(c.results, c.mode)
}

// Filter returns the current results that pass threshold on unit.
func (c *Coordinator) Filter(threshold float64, unit model.Unit) []model.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return FilterResults(c.results, threshold, unit)
}

// Snapshot returns a copy of the pipeline state.
func (c *Coordinator) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return State{
		RunID:    c.runID,
		Mode:     c.mode,
		Running:  c.running,
		Pending:  slices.Clone(c.pending),
		Results:  slices.Clone(c.results),
		Endpoint: c.endpoint,
	}
}

// Close releases the connection of the last run.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return ErrRunInProgress
	}
	err := closeConn(c.conn)
	c.conn = nil
	return err
}

func closeConn(conn verifier.BalanceFetcher) error {
	if closer, ok := conn.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// connEndpoint reports the endpoint conn actually talks to, which differs
// from the configured one when that was empty and a default applied.
func connEndpoint(conn verifier.BalanceFetcher, configured string) string {
	if e, ok := conn.(interface{ Endpoint() string }); ok {
		return e.Endpoint()
	}
	return configured
}
