package sequence

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/diewo77/go-tailorshop/internal/apperrors"
	"github.com/diewo77/go-tailorshop/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMemoryDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Counter{}))
	return db
}

// setupFileDB opens a file-backed database so concurrent callers contend on
// real sqlite locks instead of a shared-cache table lock.
func setupFileDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "seq.db") + "?_busy_timeout=5000&_journal_mode=WAL"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.Counter{}))
	return db
}

func TestGormAllocatorStartsAtOne(t *testing.T) {
	alloc := NewGormAllocator(setupMemoryDB(t))
	ctx := context.Background()

	first, err := alloc.Next(ctx, "invoice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)

	second, err := alloc.Next(ctx, "invoice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), second)

	other, err := alloc.Next(ctx, "receipt")
	require.NoError(t, err)
	assert.Equal(t, int64(1), other, "counters are independent")
}

func TestIssuerContinuesFromSeededCounter(t *testing.T) {
	db := setupMemoryDB(t)
	alloc := NewGormAllocator(db)
	ctx := context.Background()
	require.NoError(t, alloc.Seed(ctx, "invoice", 6))

	issuer := NewIssuer(alloc, "invoice", "KST-INV")
	var numbers []string
	for range 2 {
		seq, err := issuer.NextInvoiceSequence(ctx)
		require.NoError(t, err)
		numbers = append(numbers, issuer.Number(seq))
	}
	assert.Equal(t, []string{"KST-INV-0007", "KST-INV-0008"}, numbers)

	var c models.Counter
	require.NoError(t, db.First(&c, "name = ?", "invoice").Error)
	assert.Equal(t, int64(8), c.Seq)
}

func TestSeedNeverMovesBackwards(t *testing.T) {
	alloc := NewGormAllocator(setupMemoryDB(t))
	ctx := context.Background()
	require.NoError(t, alloc.Seed(ctx, "invoice", 10))
	require.NoError(t, alloc.Seed(ctx, "invoice", 3))

	seq, err := alloc.Next(ctx, "invoice")
	require.NoError(t, err)
	assert.Equal(t, int64(11), seq)
}

func TestGormAllocatorConcurrentCallersGetDistinctValues(t *testing.T) {
	alloc := NewGormAllocator(setupFileDB(t))
	assertDistinct(t, alloc, 40)
}

func TestRedisAllocator(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	alloc := NewRedisAllocator(rdb)
	ctx := context.Background()

	require.NoError(t, alloc.Seed(ctx, "invoice", 6))
	issuer := NewIssuer(alloc, "invoice", "KST-INV")
	seq, err := issuer.NextInvoiceSequence(ctx)
	require.NoError(t, err)
	assert.Equal(t, "KST-INV-0007", issuer.Number(seq))

	got, err := mr.Get("seq:invoice")
	require.NoError(t, err)
	assert.Equal(t, "7", got)

	assertDistinct(t, alloc, 50)
}

// incrDuringSeed lets other instances allocate n numbers right before the
// seed command reaches the server.
type incrDuringSeed struct {
	once  sync.Once
	other *redis.Client
	key   string
	n     int
}

func (h *incrDuringSeed) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *incrDuringSeed) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (h *incrDuringSeed) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if name := cmd.Name(); name == "evalsha" || name == "eval" {
			h.once.Do(func() {
				var wg sync.WaitGroup
				for range h.n {
					wg.Add(1)
					go func() {
						defer wg.Done()
						h.other.Incr(ctx, h.key)
					}()
				}
				wg.Wait()
			})
		}
		return next(ctx, cmd)
	}
}

func TestRedisSeedKeepsConcurrentAllocations(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("seq:invoice", "5"))

	other := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = other.Close() })
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	rdb.AddHook(&incrDuringSeed{other: other, key: "seq:invoice", n: 3})

	alloc := NewRedisAllocator(rdb)
	ctx := context.Background()
	require.NoError(t, alloc.Seed(ctx, "invoice", 7))

	// 6, 7 and 8 were handed out while seeding; none may be issued again.
	seq, err := alloc.Next(ctx, "invoice")
	require.NoError(t, err)
	assert.Equal(t, int64(9), seq)
}

func TestRedisSeedNeverMovesBackwards(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	alloc := NewRedisAllocator(rdb)
	ctx := context.Background()

	require.NoError(t, alloc.Seed(ctx, "invoice", 10))
	require.NoError(t, alloc.Seed(ctx, "invoice", 3))
	seq, err := alloc.Next(ctx, "invoice")
	require.NoError(t, err)
	assert.Equal(t, int64(11), seq)
}

type failingAllocator struct{ err error }

func (f failingAllocator) Next(context.Context, string) (int64, error) { return 0, f.err }

func TestIssuerReportsSequenceUnavailable(t *testing.T) {
	cause := errors.New("connection refused")
	issuer := NewIssuer(failingAllocator{err: cause}, "invoice", "KST-INV")

	_, err := issuer.NextInvoiceSequence(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrSequenceUnavailable))
	assert.True(t, errors.Is(err, cause))
}

func TestFormat(t *testing.T) {
	tests := []struct {
		seq  int64
		want string
	}{
		{1, "KST-INV-0001"},
		{42, "KST-INV-0042"},
		{9999, "KST-INV-9999"},
		{10000, "KST-INV-10000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Format("KST-INV", tt.seq))
	}
}

func assertDistinct(t *testing.T, alloc Allocator, n int) {
	t.Helper()
	ctx := context.Background()
	var (
		mu   sync.Mutex
		seen = make(map[int64]bool, n)
		wg   sync.WaitGroup
	)
	errs := make(chan error, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq, err := alloc.Next(ctx, "concurrent")
			if err != nil {
				errs <- err
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if seen[seq] {
				errs <- fmt.Errorf("sequence %d allocated twice", seq)
			}
			seen[seq] = true
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
	assert.Len(t, seen, n)
	for i := int64(1); i <= int64(n); i++ {
		assert.True(t, seen[i], "missing sequence %d", i)
	}
}
