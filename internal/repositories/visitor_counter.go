package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"carpool/internal/domain/models"
)

const (
	visitorsTotalKey = "carpool:visitors:total"
	visitorsDayKey   = "carpool:visitors:day:"
	visitorsDayTTL   = 40 * 24 * time.Hour
)

// VisitorCounter keeps site visit counters in Redis.
type VisitorCounter struct {
	Client *redis.Client
}

// Incr bumps the total and the given day's counter in one round trip.
func (c VisitorCounter) Incr(ctx context.Context, day string) (models.Visitors, error) {
	if c.Client == nil {
		return models.Visitors{Day: day}, nil
	}
	pipe := c.Client.TxPipeline()
	total := pipe.Incr(ctx, visitorsTotalKey)
	today := pipe.Incr(ctx, visitorsDayKey+day)
	pipe.Expire(ctx, visitorsDayKey+day, visitorsDayTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return models.Visitors{}, fmt.Errorf("incr visitors: %w", err)
	}
	return models.Visitors{Total: total.Val(), Today: today.Val(), Day: day}, nil
}

func (c VisitorCounter) Get(ctx context.Context, day string) (models.Visitors, error) {
	v := models.Visitors{Day: day}
	if c.Client == nil {
		return v, nil
	}
	total, err := counter(ctx, c.Client, visitorsTotalKey)
	if err != nil {
		return models.Visitors{}, err
	}
	today, err := counter(ctx, c.Client, visitorsDayKey+day)
	if err != nil {
		return models.Visitors{}, err
	}
	v.Total, v.Today = total, today
	return v, nil
}

func counter(ctx context.Context, client *redis.Client, key string) (int64, error) {
	n, err := client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", key, err)
	}
	return n, nil
}
