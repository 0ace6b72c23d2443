// Package queue carries render job ids from the API to the worker over a
// Redis list.
package queue

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"reel/internal/pkg/errors"
)

type RedisQueue struct {
	rdb       redis.Cmdable
	queueName string
}

func NewRedisQueue(rdb redis.Cmdable, queueName string) *RedisQueue {
	return &RedisQueue{rdb: rdb, queueName: queueName}
}

func (q *RedisQueue) Name() string { return q.queueName }

// Push enqueues a job id. Pop serves ids in push order.
func (q *RedisQueue) Push(ctx context.Context, jobID string) error {
	if err := q.rdb.LPush(ctx, q.queueName, jobID).Err(); err != nil {
		return errors.Wrap(err, "queue.push", "queue push failed").WithField("queue", q.queueName)
	}
	return nil
}

// Pop blocks up to wait for a job id (BRPOP). It returns "" and no error
// when nothing arrived in time.
func (q *RedisQueue) Pop(ctx context.Context, wait time.Duration) (string, error) {
	res, err := q.rdb.BRPop(ctx, wait, q.queueName).Result()
	if err != nil {
		if stderrors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", errors.Wrap(err, "queue.pop", "queue pop failed").WithField("queue", q.queueName)
	}
	if len(res) < 2 {
		return "", nil
	}
	return res[1], nil
}

// Len is the number of waiting ids.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.rdb.LLen(ctx, q.queueName).Result()
	if err != nil {
		return 0, errors.Wrap(err, "queue.len", "queue length failed")
	}
	return n, nil
}
