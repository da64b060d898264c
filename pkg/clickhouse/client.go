package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"time"

	_ "github.com/ClickHouse/clickhouse-go/v2"
)

// Client wraps a ClickHouse connection pool shared by the run stores.
type Client struct {
	db *sql.DB
}

type options struct {
	host         string
	port         int
	database     string
	user         string
	password     string
	maxOpen      int
	maxIdle      int
	connLifetime time.Duration
	dialTimeout  time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
	useHTTP      bool
	asyncInsert  bool
	waitForAsync bool
	maxExecTime  time.Duration
}

// Option configures the client.
type Option func(*options)

// WithAddress sets host and native/HTTP port.
func WithAddress(host string, port int) Option {
	return func(o *options) {
		o.host = host
		o.port = port
	}
}

// WithDatabase sets the default database.
func WithDatabase(database string) Option {
	return func(o *options) {
		o.database = database
	}
}

// WithAuth sets username and password.
func WithAuth(user, password string) Option {
	return func(o *options) {
		o.user = user
		o.password = password
	}
}

// WithPool sets max open and idle connections.
func WithPool(maxOpen, maxIdle int) Option {
	return func(o *options) {
		o.maxOpen = maxOpen
		o.maxIdle = maxIdle
	}
}

// WithTimeouts sets dial/read/write timeouts.
func WithTimeouts(dial, read, write time.Duration) Option {
	return func(o *options) {
		o.dialTimeout = dial
		o.readTimeout = read
		o.writeTimeout = write
	}
}

// WithHTTP switches from the native protocol to HTTP.
func WithHTTP(useHTTP bool) Option {
	return func(o *options) {
		o.useHTTP = useHTTP
	}
}

// WithAsyncInsert configures async_insert and whether inserts wait for the flush.
func WithAsyncInsert(enabled, wait bool) Option {
	return func(o *options) {
		o.asyncInsert = enabled
		o.waitForAsync = wait
	}
}

// WithMaxExecutionTime caps per-query execution time.
func WithMaxExecutionTime(d time.Duration) Option {
	return func(o *options) {
		o.maxExecTime = d
	}
}

// NewClient opens a pooled connection and verifies it with a ping.
func NewClient(opts ...Option) (*Client, error) {
	o := options{
		maxOpen:      10,
		maxIdle:      5,
		connLifetime: 5 * time.Minute,
		dialTimeout:  5 * time.Second,
		readTimeout:  10 * time.Second,
		writeTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.host == "" {
		return nil, fmt.Errorf("host is required")
	}

	db, err := sql.Open("clickhouse", o.dsn())
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	db.SetMaxOpenConns(o.maxOpen)
	db.SetMaxIdleConns(o.maxIdle)
	db.SetConnMaxLifetime(o.connLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), o.dialTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}

	return &Client{db: db}, nil
}

// DB returns the underlying *sql.DB for direct use.
func (c *Client) DB() *sql.DB {
	return c.db
}

// Health pings the server.
func (c *Client) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close releases the connection pool.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// InitSchema runs the given DDL statements in order. Statements are expected
// to be idempotent (CREATE ... IF NOT EXISTS).
func (c *Client) InitSchema(ctx context.Context, stmts []string) error {
	for _, stmt := range stmts {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (o options) dsn() string {
	scheme := "clickhouse"
	if o.useHTTP {
		scheme = "clickhouse+http"
	}

	q := url.Values{}
	if o.dialTimeout > 0 {
		q.Set("dial_timeout", o.dialTimeout.String())
	}
	if o.readTimeout > 0 {
		q.Set("read_timeout", o.readTimeout.String())
	}
	// write_timeout is not a recognized server setting on all versions,
	// so it stays a client-side pool concern only.
	if o.maxExecTime > 0 {
		q.Set("max_execution_time", strconv.Itoa(int(o.maxExecTime.Seconds())))
	}
	if o.asyncInsert {
		q.Set("async_insert", "1")
		if o.waitForAsync {
			q.Set("wait_for_async_insert", "1")
		}
	}

	u := url.URL{
		Scheme:   scheme,
		User:     url.UserPassword(o.user, o.password),
		Host:     fmt.Sprintf("%s:%d", o.host, o.port),
		Path:     "/" + o.database,
		RawQuery: q.Encode(),
	}
	return u.String()
}
