package database

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sgte/backend/config"
	pkgerrors "sgte/backend/pkg/errors"
	"sgte/backend/pkg/metrics"
)

// ── 测试辅助 ──

func testDBConfig(path string, busyMS int, attempts int) *config.DatabaseConfig {
	return &config.DatabaseConfig{
		Path:          path,
		BusyTimeoutMS: busyMS,
		CacheSizeKB:   2048,
		MmapSizeBytes: 0,
		Retry: config.RetryConfig{
			MaxAttempts:     attempts,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     50 * time.Millisecond,
		},
	}
}

func openGateway(t *testing.T, cfg *config.DatabaseConfig, m *metrics.Gateway) *Gateway {
	t.Helper()
	g, err := Open(cfg, zap.NewNop(), m)
	require.NoError(t, err)
	t.Cleanup(func() { g.Close() })
	return g
}

func insertStudent(tx *gorm.DB, run string) error {
	return tx.Exec(
		"INSERT INTO estudiantes (run, nombres, apellidos, carrera, modalidad) VALUES (?, ?, ?, ?, ?)",
		run, "Ana", "Pérez", "Ingeniería Civil", "diurno",
	).Error
}

func countStudents(t *testing.T, g *Gateway) int64 {
	t.Helper()
	var n int64
	require.NoError(t, g.DB().Raw("SELECT COUNT(*) FROM estudiantes").Scan(&n).Error)
	return n
}

func newMigratedFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "sgte.db")
	g, err := Open(testDBConfig(path, 1000, 3), zap.NewNop(), nil)
	require.NoError(t, err)
	require.NoError(t, g.RunMigrations())
	require.NoError(t, g.Close())
	return path
}

// ── Open / Health ──

func TestOpen_AppliesWALAndMigrations(t *testing.T) {
	path := newMigratedFile(t)
	g := openGateway(t, testDBConfig(path, 1000, 3), nil)

	h := g.Health(context.Background())
	assert.Equal(t, "healthy", h.Status)
	assert.True(t, h.WAL, "journal_mode 应为 WAL，实际 %s", h.JournalMode)
	for _, table := range []string{"estudiantes", "proyectos", "comisiones", "expedientes", "hitos", "documentos", "bitacora"} {
		assert.Contains(t, h.Tables, table)
	}

	var fk int
	require.NoError(t, g.DB().Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk, "foreign_keys 应开启")
}

func TestRunMigrations_Idempotent(t *testing.T) {
	path := newMigratedFile(t)
	g := openGateway(t, testDBConfig(path, 1000, 3), nil)
	assert.NoError(t, g.RunMigrations())
}

// ── 工作单元 ──

func TestTransaction_Commit(t *testing.T) {
	g := openGateway(t, testDBConfig(newMigratedFile(t), 1000, 3), nil)

	err := g.Transaction(context.Background(), func(tx *gorm.DB) error {
		return insertStudent(tx, "12.345.678-5")
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), countStudents(t, g))
}

func TestTransaction_RollbackOnError(t *testing.T) {
	g := openGateway(t, testDBConfig(newMigratedFile(t), 1000, 3), nil)
	boom := errors.New("注入失败")

	err := g.Transaction(context.Background(), func(tx *gorm.DB) error {
		if err := insertStudent(tx, "12.345.678-5"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(0), countStudents(t, g), "回滚后不应有新记录")
}

func TestTransaction_RollbackOnPanic(t *testing.T) {
	g := openGateway(t, testDBConfig(newMigratedFile(t), 1000, 3), nil)

	assert.Panics(t, func() {
		_ = g.Transaction(context.Background(), func(tx *gorm.DB) error {
			if err := insertStudent(tx, "12.345.678-5"); err != nil {
				return err
			}
			panic("注入 panic")
		})
	})
	assert.Equal(t, int64(0), countStudents(t, g))

	// 连接已归还，后续工作单元可继续执行
	require.NoError(t, g.Transaction(context.Background(), func(tx *gorm.DB) error {
		return insertStudent(tx, "11.111.111-1")
	}))
	assert.Equal(t, int64(1), countStudents(t, g))
}

func TestTransaction_DomainErrorPassesThrough(t *testing.T) {
	g := openGateway(t, testDBConfig(newMigratedFile(t), 1000, 3), nil)

	err := g.Transaction(context.Background(), func(tx *gorm.DB) error {
		return pkgerrors.NewNotFound("expediente")
	})
	assert.ErrorIs(t, err, pkgerrors.ErrNotFound)
	assert.NotErrorIs(t, err, pkgerrors.ErrStorageFault)
}

func TestTransaction_DriverErrorIsStorageFault(t *testing.T) {
	g := openGateway(t, testDBConfig(newMigratedFile(t), 1000, 3), nil)

	err := g.Transaction(context.Background(), func(tx *gorm.DB) error {
		return tx.Exec("INSERT INTO tabla_inexistente (x) VALUES (1)").Error
	})
	assert.ErrorIs(t, err, pkgerrors.ErrStorageFault)
}

// ── 锁竞争 ──

// holdWriteLock 在网关 a 上开启写事务并插入一行，直到 release 关闭后才提交
func holdWriteLock(t *testing.T, a *Gateway, run string, release <-chan struct{}) (locked <-chan struct{}, done <-chan error) {
	t.Helper()
	lockedCh := make(chan struct{})
	doneCh := make(chan error, 1)
	go func() {
		doneCh <- a.Transaction(context.Background(), func(tx *gorm.DB) error {
			if err := insertStudent(tx, run); err != nil {
				return err
			}
			close(lockedCh)
			<-release
			return nil
		})
	}()
	return lockedCh, doneCh
}

func TestTransaction_ContentionRetriesUntilFirstCommits(t *testing.T) {
	path := newMigratedFile(t)
	a := openGateway(t, testDBConfig(path, 1000, 3), nil)
	m := metrics.NewGateway(nil)
	b := openGateway(t, testDBConfig(path, 20, 30), m)

	release := make(chan struct{})
	locked, done := holdWriteLock(t, a, "12.345.678-5", release)
	<-locked

	var wg sync.WaitGroup
	wg.Add(1)
	var errB error
	go func() {
		defer wg.Done()
		errB = b.Transaction(context.Background(), func(tx *gorm.DB) error {
			return insertStudent(tx, "11.111.111-1")
		})
	}()

	time.Sleep(150 * time.Millisecond)
	close(release)

	require.NoError(t, <-done)
	wg.Wait()
	require.NoError(t, errB, "第二个写者应在第一个提交后重试成功")
	assert.Equal(t, int64(2), countStudents(t, a), "两次写入都应生效")
	assert.Greater(t, testutil.ToFloat64(m.Retries), 0.0, "应发生过重试")
}

func TestTransaction_ContentionExhaustsRetries(t *testing.T) {
	path := newMigratedFile(t)
	a := openGateway(t, testDBConfig(path, 1000, 3), nil)
	m := metrics.NewGateway(nil)
	b := openGateway(t, testDBConfig(path, 10, 2), m)

	release := make(chan struct{})
	locked, done := holdWriteLock(t, a, "12.345.678-5", release)
	<-locked

	err := b.Transaction(context.Background(), func(tx *gorm.DB) error {
		return insertStudent(tx, "11.111.111-1")
	})
	close(release)
	require.NoError(t, <-done)

	assert.ErrorIs(t, err, pkgerrors.ErrStorageBusy)
	assert.True(t, pkgerrors.IsRetryable(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Retries), "max_attempts=2 时应只重试一次")
	assert.Equal(t, int64(1), countStudents(t, a), "失败的写入不应生效")
}

func TestTransaction_RetryPolicyReadPerInvocation(t *testing.T) {
	path := newMigratedFile(t)
	a := openGateway(t, testDBConfig(path, 1000, 3), nil)
	m := metrics.NewGateway(nil)
	b := openGateway(t, testDBConfig(path, 10, 2), m)

	require.NoError(t, b.SetRetryPolicy(RetryPolicy{
		MaxAttempts:     4,
		InitialInterval: 5 * time.Millisecond,
		MaxInterval:     10 * time.Millisecond,
	}))

	release := make(chan struct{})
	locked, done := holdWriteLock(t, a, "12.345.678-5", release)
	<-locked

	err := b.Transaction(context.Background(), func(tx *gorm.DB) error {
		return insertStudent(tx, "11.111.111-1")
	})
	close(release)
	require.NoError(t, <-done)

	assert.ErrorIs(t, err, pkgerrors.ErrStorageBusy)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Retries), "更新后的策略应在下一次调用生效")
}

func TestSetRetryPolicy_Invalid(t *testing.T) {
	g := openGateway(t, testDBConfig(newMigratedFile(t), 1000, 3), nil)

	err := g.SetRetryPolicy(RetryPolicy{MaxAttempts: 0, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond})
	assert.ErrorIs(t, err, pkgerrors.ErrValidation)
	assert.Equal(t, 3, g.RetryPolicy().MaxAttempts, "无效策略不应生效")
}

func TestPolicyFromConfig_AppliedAtRuntime(t *testing.T) {
	g := openGateway(t, testDBConfig(newMigratedFile(t), 1000, 3), nil)

	next := config.RetryConfig{MaxAttempts: 7, InitialInterval: 20 * time.Millisecond, MaxInterval: time.Second}
	require.NoError(t, g.SetRetryPolicy(PolicyFromConfig(next)))

	p := g.RetryPolicy()
	assert.Equal(t, 7, p.MaxAttempts)
	assert.Equal(t, 20*time.Millisecond, p.InitialInterval)
	assert.Equal(t, time.Second, p.MaxInterval)
}

func TestIsLockError(t *testing.T) {
	assert.False(t, IsLockError(nil))
	assert.False(t, IsLockError(errors.New("other")))
	assert.True(t, IsLockError(errors.New("database is locked")))
}
