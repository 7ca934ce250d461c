package database

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yourorg/trading-admin/internal/config"
)

// Conn is a connection bound to a single operation. Close releases it, and in
// direct mode also closes the handle it was opened from.
type Conn struct {
	*sqlx.Conn
	release func() error
	once    sync.Once
	err     error
}

// Close releases the connection; calling it more than once is safe
func (c *Conn) Close() error {
	c.once.Do(func() {
		c.err = c.release()
	})
	return c.err
}

// Provider hands out connections to the back-office database
type Provider struct {
	dialect        Dialect
	dsn            string
	addr           string
	connectTimeout time.Duration
	pool           *sqlx.DB
	open           func(driverName, dataSourceName string) (*sqlx.DB, error)
	logger         *zap.Logger
}

// NewProvider creates a provider from configuration. In pooled mode the pool is
// opened lazily, so an unreachable database does not prevent startup.
func NewProvider(cfg config.DatabaseConfig, logger *zap.Logger) (*Provider, error) {
	dsn, err := BuildDSN(cfg)
	if err != nil {
		return nil, err
	}

	p := &Provider{
		dialect:        NewDialect(cfg.Driver, cfg.Schema),
		dsn:            dsn,
		addr:           Address(cfg),
		connectTimeout: cfg.ConnectTimeout,
		open:           sqlx.Open,
		logger:         logger,
	}

	if cfg.Pooled {
		db, err := sqlx.Open(cfg.Driver, dsn)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		p.pool = db
	}

	return p, nil
}

// NewPooledProvider wraps an already opened handle
func NewPooledProvider(db *sqlx.DB, dialect Dialect, connectTimeout time.Duration, logger *zap.Logger) *Provider {
	return &Provider{
		dialect:        dialect,
		addr:           dialect.Driver(),
		connectTimeout: connectTimeout,
		pool:           db,
		logger:         logger,
	}
}

// Dialect returns the SQL dialect of the configured driver
func (p *Provider) Dialect() Dialect {
	return p.dialect
}

// Acquire opens a connection. The connect timeout bounds only the acquisition,
// not the statements run on the connection afterwards.
func (p *Provider) Acquire(ctx context.Context) (*Conn, error) {
	acquireCtx := ctx
	if p.connectTimeout > 0 {
		var cancel context.CancelFunc
		acquireCtx, cancel = context.WithTimeout(ctx, p.connectTimeout)
		defer cancel()
	}

	if p.pool != nil {
		conn, err := p.pool.Connx(acquireCtx)
		if err != nil {
			return nil, p.connectionError(err)
		}
		return &Conn{Conn: conn, release: conn.Close}, nil
	}

	db, err := p.open(p.dialect.Driver(), p.dsn)
	if err != nil {
		return nil, p.connectionError(err)
	}
	db.SetMaxOpenConns(1)

	conn, err := db.Connx(acquireCtx)
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			p.logger.Warn("Failed to close database handle", zap.Error(closeErr))
		}
		return nil, p.connectionError(err)
	}

	return &Conn{
		Conn: conn,
		release: func() error {
			return errors.Join(conn.Close(), db.Close())
		},
	}, nil
}

// With runs fn on a freshly acquired connection and releases it on every path.
// Errors returned by fn are reported as *ExecutionError under op.
func (p *Provider) With(ctx context.Context, op string, fn func(conn *Conn) error) error {
	conn, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			p.logger.Warn("Failed to release database connection", zap.String("op", op), zap.Error(err))
		}
	}()

	return asExecution(op, fn(conn))
}

// Ping checks that a connection can be acquired and is alive. Both failures
// are reported as *ConnectionError.
func (p *Provider) Ping(ctx context.Context) error {
	return p.With(ctx, "ping", func(conn *Conn) error {
		if err := conn.PingContext(ctx); err != nil {
			return p.connectionError(err)
		}
		return nil
	})
}

// Close closes the pool, if any
func (p *Provider) Close() error {
	if p.pool == nil {
		return nil
	}
	return p.pool.Close()
}

func (p *Provider) connectionError(err error) error {
	p.logger.Error("Failed to acquire database connection", zap.String("addr", p.addr), zap.Error(err))
	return &ConnectionError{Addr: p.addr, Err: err}
}
