// cache хранит в Redis список отозванных сессий.
//
// Сессия идентифицируется парой (principal, issued_at): именно эти поля
// общие у access- и refresh-токена одной пары, поэтому отзыв по ним
// закрывает и доступ, и ротацию.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix — префикс ключей по умолчанию.
const DefaultPrefix = "sportsmap:revoked:"

// ErrInvalidTTL — срок хранения записи об отзыве должен быть положительным.
var ErrInvalidTTL = errors.New("revocation ttl must be positive")

// Denylist — список отозванных сессий в Redis.
// Храним как Redis Hash с полями: iat (unix), rev_at (unix) и TTL на ключе.
type Denylist struct {
	rdb    redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewDenylist оборачивает готовый клиент Redis.
// Если prefix пустой, используется DefaultPrefix.
func NewDenylist(rdb redis.UniversalClient, prefix string) *Denylist {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	return &Denylist{rdb: rdb, prefix: prefix, now: time.Now}
}

// NewRedisDenylist создаёт клиент Redis из URL (например, redis://:pass@host:6379/0)
// и проверяет соединение.
func NewRedisDenylist(ctx context.Context, redisURL, prefix string) (*Denylist, error) {
	const op = "cache.denylist.NewRedisDenylist"

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return NewDenylist(rdb, prefix), nil
}

// key не кладёт email в Redis открытым текстом.
func (d *Denylist) key(principal string, issuedAt int64) string {
	sum := sha256.Sum256([]byte(principal))
	return d.prefix + hex.EncodeToString(sum[:]) + ":" + strconv.FormatInt(issuedAt, 10)
}

// Revoke помечает сессию отозванной на ttl.
func (d *Denylist) Revoke(ctx context.Context, principal string, issuedAt int64, ttl time.Duration) error {
	const op = "cache.denylist.Revoke"

	if ttl <= 0 {
		return fmt.Errorf("%s: %w", op, ErrInvalidTTL)
	}

	key := d.key(principal, issuedAt)

	pipe := d.rdb.TxPipeline()
	pipe.HSet(ctx, key, map[string]string{
		"iat":    strconv.FormatInt(issuedAt, 10),
		"rev_at": strconv.FormatInt(d.now().Unix(), 10),
	})
	pipe.Expire(ctx, key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// IsRevoked сообщает, отозвана ли сессия.
func (d *Denylist) IsRevoked(ctx context.Context, principal string, issuedAt int64) (bool, error) {
	const op = "cache.denylist.IsRevoked"

	n, err := d.rdb.Exists(ctx, d.key(principal, issuedAt)).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return n > 0, nil
}

// Ping проверяет доступность Redis (readiness).
func (d *Denylist) Ping(ctx context.Context) error {
	return d.rdb.Ping(ctx).Err()
}

// Close закрывает клиент Redis.
func (d *Denylist) Close() error { return d.rdb.Close() }
