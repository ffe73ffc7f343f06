package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/uniedit/fintoc-gateway/internal/model"
	"github.com/uniedit/fintoc-gateway/internal/port/outbound"
)

const defaultPostProcessList = "fintoc:post_process"

// postProcessQueue implements outbound.PostProcessSignalPort as a Redis list the host consumes with BLPOP.
type postProcessQueue struct {
	client redis.Cmdable
	list   string
	now    func() time.Time
}

// NewPostProcessQueue creates a Redis list post-process signal publisher.
func NewPostProcessQueue(client redis.Cmdable, list string) outbound.PostProcessSignalPort {
	if list == "" {
		list = defaultPostProcessList
	}
	return &postProcessQueue{client: client, list: list, now: time.Now}
}

func (q *postProcessQueue) Signal(ctx context.Context, tx *model.Transaction) error {
	data, err := json.Marshal(model.NewPostProcessSignal(tx, q.now()))
	if err != nil {
		return fmt.Errorf("marshal post-process signal: %w", err)
	}
	if err := q.client.RPush(ctx, q.list, data).Err(); err != nil {
		return fmt.Errorf("push post-process signal: %w", err)
	}
	return nil
}

// Compile-time check
var _ outbound.PostProcessSignalPort = (*postProcessQueue)(nil)
