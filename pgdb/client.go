package pgdb

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"golang.org/x/time/rate"

	"github.com/biolink/kgx/errors"
	"github.com/biolink/kgx/pkg/retry"
)

// Status is the connection lifecycle state of a Client (spec §5,
// "Suspension points ... blocking I/O may occur [in] Sink write_* and
// finalize").
type Status int32

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Config carries the connection and pacing parameters a Client is built
// from (spec §6.2, "Credentials: URI, user, password from configuration").
type Config struct {
	URI      string
	User     string
	Password string

	// PageSize bounds each paged read query (spec §6.2, "paged ... SKIP s
	// LIMIT p").
	PageSize int
	// BatchSize bounds each UNWIND-batched write.
	BatchSize int
	// MaxConcurrentPages bounds how many pages are fetched at once via
	// errgroup.
	MaxConcurrentPages int
	// RequestsPerSecond throttles outgoing queries; zero disables
	// throttling.
	RequestsPerSecond float64

	RetryPolicy retry.Config
	Logger      *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.PageSize <= 0 {
		c.PageSize = 1000
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 500
	}
	if c.MaxConcurrentPages <= 0 {
		c.MaxConcurrentPages = 4
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if (c.RetryPolicy == retry.Config{}) {
		c.RetryPolicy = retry.DefaultConfig()
	}
	return c
}

// Client owns the driver connection to a labeled-property-graph database,
// grounded on the teacher's natsclient.Client: an explicit Connect/Close
// pair, an atomically-readable Status, and pkg/retry-backed reconnection
// on the initial handshake (spec §4.3.9, §4.4 "DB Sink").
type Client struct {
	cfg    Config
	status atomic.Int32

	driver  neo4j.DriverWithContext
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient returns a Client that has not yet connected.
func NewClient(cfg Config) *Client {
	cfg = cfg.withDefaults()
	c := &Client{cfg: cfg, logger: cfg.Logger}
	c.status.Store(int32(StatusDisconnected))
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), int(cfg.RequestsPerSecond)+1)
	}
	return c
}

// Status reports the current connection state.
func (c *Client) Status() Status { return Status(c.status.Load()) }

// Connect dials the database, retrying the initial handshake per
// c.cfg.RetryPolicy (spec §7, transient errors around the connection are
// retryable).
func (c *Client) Connect(ctx context.Context) error {
	c.status.Store(int32(StatusConnecting))
	driver, err := retry.DoWithResult(ctx, c.cfg.RetryPolicy, func() (neo4j.DriverWithContext, error) {
		d, err := neo4j.NewDriverWithContext(c.cfg.URI, neo4j.BasicAuth(c.cfg.User, c.cfg.Password, ""))
		if err != nil {
			return nil, err
		}
		if err := d.VerifyConnectivity(ctx); err != nil {
			d.Close(ctx)
			return nil, err
		}
		return d, nil
	})
	if err != nil {
		c.status.Store(int32(StatusDisconnected))
		return errors.WrapTransient(err, "pgdb", "Connect", "connect to "+c.cfg.URI)
	}
	c.driver = driver
	c.status.Store(int32(StatusConnected))
	c.logger.Info("connected to property-graph database", "uri", c.cfg.URI)
	return nil
}

// Close releases the underlying driver connection.
func (c *Client) Close(ctx context.Context) error {
	if c.driver == nil {
		return nil
	}
	c.status.Store(int32(StatusClosed))
	if err := c.driver.Close(ctx); err != nil {
		return errors.WrapFatal(err, "pgdb", "Close", "close driver")
	}
	return nil
}

// throttle blocks until the rate limiter admits one more request. A nil
// limiter (RequestsPerSecond unset) never blocks.
func (c *Client) throttle(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *Client) session(ctx context.Context, accessMode neo4j.AccessMode) neo4j.SessionWithContext {
	return c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: accessMode})
}

// run executes cypher within its own session and eagerly collects every
// record, honoring the rate limiter and a per-operation timeout (spec §5,
// §6.2).
func (c *Client) run(ctx context.Context, accessMode neo4j.AccessMode, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	if err := c.throttle(ctx); err != nil {
		return nil, errors.WrapFatal(errors.ErrCancelled, "pgdb", "run", "rate limiter wait: "+err.Error())
	}

	opCtx, cancel := withOperationTimeout(ctx)
	defer cancel()

	sess := c.session(opCtx, accessMode)
	defer sess.Close(opCtx)

	result, err := sess.Run(opCtx, cypher, params)
	if err != nil {
		return nil, errors.WrapTransient(err, "pgdb", "run", "execute query")
	}
	var records []*neo4j.Record
	for result.Next(opCtx) {
		records = append(records, result.Record())
	}
	if err := result.Err(); err != nil {
		return nil, errors.WrapTransient(err, "pgdb", "run", "iterate results")
	}
	return records, nil
}

// idleTimeout is the default per-operation timeout applied when the
// caller's context carries no deadline (spec §5, "DB-backed Source/Sink
// carry per-operation timeouts that surface as transient errors").
const idleTimeout = 30 * time.Second

func withOperationTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, idleTimeout)
}
