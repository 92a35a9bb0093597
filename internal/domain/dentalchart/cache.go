package dentalchart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Cache holds a patient's tooth statuses between writes.
//
// Every Invalidate bumps the patient's generation. Get reports the generation
// it saw, and Set stores only while that generation is still current, so a
// reader that loaded rows before a concurrent write cannot cache them after it.
type Cache interface {
	Get(ctx context.Context, tenantID string, patientID uuid.UUID) (items []*ToothStatus, gen int64, hit bool, err error)
	Set(ctx context.Context, tenantID string, patientID uuid.UUID, gen int64, items []*ToothStatus) (bool, error)
	Invalidate(ctx context.Context, tenantID string, patientID uuid.UUID) error
}

// Generation counters outlive any chart entry they guard.
const minGenerationTTL = 24 * time.Hour

// KEYS[1] chart entry, KEYS[2] generation; ARGV gen, payload, ttl in ms.
var setIfCurrent = redis.NewScript(`
local cur = redis.call('GET', KEYS[2])
if (cur or '0') ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Both keys share a hash tag so the script runs on one cluster slot.
func cacheKeys(tenantID string, patientID uuid.UUID) (data, gen string) {
	if tenantID == "" {
		tenantID = "_"
	}
	base := fmt.Sprintf("chart:{%s:%s}", tenantID, patientID)
	return base, base + ":gen"
}

func (c *RedisCache) Get(ctx context.Context, tenantID string, patientID uuid.UUID) ([]*ToothStatus, int64, bool, error) {
	dataKey, genKey := cacheKeys(tenantID, patientID)
	vals, err := c.client.MGet(ctx, dataKey, genKey).Result()
	if err != nil {
		return nil, 0, false, err
	}

	var gen int64
	if s, ok := vals[1].(string); ok {
		if gen, err = strconv.ParseInt(s, 10, 64); err != nil {
			return nil, 0, false, fmt.Errorf("decode chart generation: %w", err)
		}
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, gen, false, nil
	}
	var items []*ToothStatus
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, gen, false, fmt.Errorf("decode cached chart: %w", err)
	}
	return items, gen, true, nil
}

// Set caches items loaded under gen. It reports false, storing nothing, when
// the patient was invalidated after gen was read.
func (c *RedisCache) Set(ctx context.Context, tenantID string, patientID uuid.UUID, gen int64, items []*ToothStatus) (bool, error) {
	if c.ttl <= 0 {
		return false, errors.New("chart cache ttl must be positive")
	}
	if items == nil {
		items = []*ToothStatus{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return false, err
	}
	dataKey, genKey := cacheKeys(tenantID, patientID)
	stored, err := setIfCurrent.Run(ctx, c.client, []string{dataKey, genKey},
		strconv.FormatInt(gen, 10), raw, c.ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

func (c *RedisCache) Invalidate(ctx context.Context, tenantID string, patientID uuid.UUID) error {
	dataKey, genKey := cacheKeys(tenantID, patientID)
	genTTL := minGenerationTTL
	if c.ttl > genTTL {
		genTTL = c.ttl
	}
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, genKey)
		p.Expire(ctx, genKey, genTTL)
		p.Del(ctx, dataKey)
		return nil
	})
	return err
}
