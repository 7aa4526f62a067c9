package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDriver hands out connections whose Ping fails until failPings reaches
// zero.
type stubDriver struct {
	failPings *int32
}

func (d stubDriver) Open(string) (driver.Conn, error) { return stubConn{failPings: d.failPings}, nil }

type stubConn struct {
	failPings *int32
}

func (stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (stubConn) Close() error                        { return nil }
func (stubConn) Begin() (driver.Tx, error)           { return nil, errors.New("not supported") }

func (c stubConn) Ping(context.Context) error {
	if c.failPings != nil && atomic.AddInt32(c.failPings, -1) >= 0 {
		return errors.New("the database system is starting up")
	}
	return nil
}

var (
	registerOnce sync.Once
	pendingFails int32
)

func useStubDriver(t *testing.T, fails int32) {
	t.Helper()
	registerOnce.Do(func() {
		sql.Register("dbstub", stubDriver{failPings: &pendingFails})
	})
	atomic.StoreInt32(&pendingFails, fails)
	prev := openDB
	openDB = func(_, dsn string) (*sql.DB, error) { return sql.Open("dbstub", dsn) }
	t.Cleanup(func() {
		openDB = prev
		_ = CloseSingleton()
	})
}

func fastOptions() Options {
	opts := DefaultLambdaOptions()
	opts.PingTimeout = time.Second
	return opts
}

func TestConnectRejectsEmptyURL(t *testing.T) {
	_, err := Connect(context.Background(), "  ", fastOptions())
	require.Error(t, err)
}

func TestConnectAppliesEnvOverrides(t *testing.T) {
	useStubDriver(t, 0)
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_MAX_IDLE_CONNS", "3")
	t.Setenv("DB_CONN_MAX_LIFETIME", "20m")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "45s")
	t.Setenv("DB_PING_TIMEOUT", "1s")
	t.Setenv("DB_CONNECT_WAIT", "0s")

	opts := OptionsFromEnv(DefaultServerOptions())
	assert.Equal(t, 3, opts.MaxIdleConns)
	assert.Equal(t, 20*time.Minute, opts.ConnMaxLifetime)
	assert.Equal(t, 45*time.Second, opts.ConnMaxIdleTime)
	assert.Equal(t, time.Second, opts.PingTimeout)
	assert.Zero(t, opts.ConnectWait)

	pool, err := Connect(context.Background(), "stub", opts)
	require.NoError(t, err)
	defer pool.Close()
	assert.Equal(t, 7, pool.Stats().MaxOpenConnections)
}

func TestOptionsFromEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "lots")
	t.Setenv("DB_PING_TIMEOUT", "soon")

	opts := OptionsFromEnv(DefaultMigrateOptions())
	assert.Equal(t, DefaultMigrateOptions(), opts)
}

func TestConnectRetriesPingWithinWait(t *testing.T) {
	useStubDriver(t, 2)
	opts := fastOptions()
	opts.ConnectWait = 10 * time.Second

	pool, err := Connect(context.Background(), "stub", opts)
	require.NoError(t, err)
	defer pool.Close()
	assert.LessOrEqual(t, atomic.LoadInt32(&pendingFails), int32(0))
}

func TestConnectWithoutWaitFailsFast(t *testing.T) {
	useStubDriver(t, 1)

	_, err := Connect(context.Background(), "stub", fastOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping database")
}

func TestGetSingletonSharesPool(t *testing.T) {
	useStubDriver(t, 0)

	var wg sync.WaitGroup
	pools := make([]*sql.DB, 4)
	for i := range pools {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := GetSingleton(context.Background(), "stub", fastOptions())
			assert.NoError(t, err)
			pools[i] = p
		}(i)
	}
	wg.Wait()
	for _, p := range pools[1:] {
		assert.Same(t, pools[0], p)
	}
}

func TestGetSingletonRetriesAfterFailure(t *testing.T) {
	useStubDriver(t, 1)

	_, err := GetSingleton(context.Background(), "stub", fastOptions())
	require.Error(t, err)

	pool, err := GetSingleton(context.Background(), "stub", fastOptions())
	require.NoError(t, err)
	assert.NotNil(t, pool)
}

func TestCloseSingletonAllowsReconnect(t *testing.T) {
	useStubDriver(t, 0)

	first, err := GetSingleton(context.Background(), "stub", fastOptions())
	require.NoError(t, err)
	require.NoError(t, CloseSingleton())
	require.NoError(t, CloseSingleton())

	second, err := GetSingleton(context.Background(), "stub", fastOptions())
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestIsUniqueViolation(t *testing.T) {
	const constraint = "document_versions_document_id_version_number_key"
	wrapped := fmt.Errorf("insert version: %w", &pgconn.PgError{Code: "23505", ConstraintName: constraint})

	assert.True(t, IsUniqueViolation(wrapped, ""))
	assert.True(t, IsUniqueViolation(wrapped, constraint))
	assert.False(t, IsUniqueViolation(wrapped, "shares_token_key"))
	assert.False(t, IsUniqueViolation(errors.New("boom"), ""))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}, ""))
}
