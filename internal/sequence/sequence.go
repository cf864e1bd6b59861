// Package sequence allocates gap-tolerant, strictly increasing invoice
// sequence numbers from a shared counter store.
//
// Allocation is a single atomic increment-and-read in the store itself, so
// concurrent callers in any number of processes never observe the same value.
// Numbers consumed by a composition that later fails are not reused.
package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/diewo77/go-tailorshop/internal/apperrors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Allocator atomically increments a named counter and returns its new value.
// A counter that does not exist yet starts at 1.
type Allocator interface {
	Next(ctx context.Context, counter string) (int64, error)
}

// Seeder raises a counter to a starting value. Implementations never move a
// counter backwards and apply the check and the write as one atomic step.
type Seeder interface {
	Seed(ctx context.Context, counter string, value int64) error
}

// GormAllocator keeps counters in the counters table.
type GormAllocator struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormAllocator returns an allocator backed by db.
func NewGormAllocator(db *gorm.DB) *GormAllocator {
	return &GormAllocator{db: db, now: time.Now}
}

const upsertCounter = `INSERT INTO counters (name, seq, updated_at) VALUES (?, 1, ?)
ON CONFLICT (name) DO UPDATE SET seq = counters.seq + 1, updated_at = excluded.updated_at
RETURNING seq`

// Next increments counter with one upsert statement. Both postgres and sqlite
// serialise the row update, so no read-then-write race is possible.
func (a *GormAllocator) Next(ctx context.Context, counter string) (int64, error) {
	var seq int64
	res := a.db.WithContext(ctx).Raw(upsertCounter, counter, a.now().UTC()).Scan(&seq)
	if res.Error != nil {
		return 0, res.Error
	}
	if seq < 1 {
		return 0, fmt.Errorf("counter %q returned no value", counter)
	}
	return seq, nil
}

// Seed sets counter to at least value. Used when importing numbering from a
// previous system; it never moves a counter backwards.
func (a *GormAllocator) Seed(ctx context.Context, counter string, value int64) error {
	return a.db.WithContext(ctx).Exec(
		`INSERT INTO counters (name, seq, updated_at) VALUES (?, ?, ?)
ON CONFLICT (name) DO UPDATE SET seq = CASE WHEN counters.seq < excluded.seq THEN excluded.seq ELSE counters.seq END, updated_at = excluded.updated_at`,
		counter, value, a.now().UTC(),
	).Error
}

// RedisAllocator keeps counters as redis integers under "seq:<name>".
type RedisAllocator struct {
	rdb *redis.Client
}

// NewRedisAllocator returns an allocator backed by rdb.
func NewRedisAllocator(rdb *redis.Client) *RedisAllocator {
	return &RedisAllocator{rdb: rdb}
}

func redisKey(counter string) string { return "seq:" + counter }

// Next uses INCR, which is atomic on the server.
func (a *RedisAllocator) Next(ctx context.Context, counter string) (int64, error) {
	return a.rdb.Incr(ctx, redisKey(counter)).Result()
}

// seedScript raises KEYS[1] to ARGV[1] unless it is already at or above it.
var seedScript = redis.NewScript(`
local cur = tonumber(redis.call("GET", KEYS[1]) or "0")
local want = tonumber(ARGV[1])
if cur < want then
	redis.call("SET", KEYS[1], ARGV[1])
	return want
end
return cur
`)

// Seed sets counter to at least value. The compare and the write run inside
// one server-side script, so concurrent INCRs are never overwritten.
func (a *RedisAllocator) Seed(ctx context.Context, counter string, value int64) error {
	return seedScript.Run(ctx, a.rdb, []string{redisKey(counter)}, value).Err()
}

var (
	_ Allocator = (*GormAllocator)(nil)
	_ Allocator = (*RedisAllocator)(nil)
	_ Seeder    = (*GormAllocator)(nil)
	_ Seeder    = (*RedisAllocator)(nil)
)

// Issuer hands out invoice sequences from one named counter.
type Issuer struct {
	alloc   Allocator
	counter string
	prefix  string
}

// NewIssuer returns an Issuer drawing from counter and formatting numbers
// with prefix.
func NewIssuer(alloc Allocator, counter, prefix string) *Issuer {
	return &Issuer{alloc: alloc, counter: counter, prefix: prefix}
}

// NextInvoiceSequence allocates the next sequence. Any store failure is
// reported as SEQUENCE_UNAVAILABLE.
func (i *Issuer) NextInvoiceSequence(ctx context.Context) (int64, error) {
	seq, err := i.alloc.Next(ctx, i.counter)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeSequenceUnavailable, "allocate invoice sequence", err)
	}
	return seq, nil
}

// Number formats seq with the issuer's prefix.
func (i *Issuer) Number(seq int64) string {
	return Format(i.prefix, seq)
}

// Format renders an invoice number such as KST-INV-0007. The sequence is
// zero-padded to four digits and grows wider past 9999.
func Format(prefix string, seq int64) string {
	return fmt.Sprintf("%s-%04d", prefix, seq)
}
