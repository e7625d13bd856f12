// Package thumbnail implements the asynchronous thumbnail pipeline: a
// durable redis-backed job queue and the worker that generates resized
// image variants.
package thumbnail

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	redisLib "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	rdb "github.com/Laisky/files-manager/library/db/redis"
)

const (
	// maxAttempts bounds retries of transiently failing jobs so poison
	// messages cannot circulate forever.
	maxAttempts = 3

	dequeueBlock = 5 * time.Second
)

// Job is one thumbnail-generation request. Delivery is at-least-once and
// the effect is idempotent: variants are overwritten in place.
type Job struct {
	FileID   string `json:"file_id"`
	UserID   string `json:"user_id"`
	Attempts int    `json:"attempts"`
}

// Queue is a redis-list work queue using the pending/processing two-list
// pattern: dequeued payloads move to a processing list and are removed only
// on ack, so jobs survive a worker crash and are recovered on restart.
type Queue struct {
	logger glog.Logger
	rdb    *redisLib.Client
}

// NewQueue creates the thumbnail job queue.
func NewQueue(logger glog.Logger, db *rdb.DB) *Queue {
	return &Queue{
		logger: logger,
		rdb:    db.Client(),
	}
}

// Enqueue adds a job for the given image record.
func (q *Queue) Enqueue(ctx context.Context, fileID, ownerID primitive.ObjectID) error {
	payload, err := json.Marshal(Job{
		FileID: fileID.Hex(),
		UserID: ownerID.Hex(),
	})
	if err != nil {
		return errors.Wrap(err, "marshal job")
	}

	if err := q.rdb.LPush(ctx, rdb.KeyThumbnailPending, payload).Err(); err != nil {
		return errors.Wrap(err, "push job")
	}

	return nil
}

// Dequeue blocks until a job is available or ctx is done. The returned raw
// payload identifies the job on the processing list for Ack/Retry.
func (q *Queue) Dequeue(ctx context.Context) (Job, string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Job{}, "", errors.Wrap(err, "dequeue")
		}

		raw, err := q.rdb.BLMove(ctx,
			rdb.KeyThumbnailPending, rdb.KeyThumbnailProcessing,
			"RIGHT", "LEFT", dequeueBlock).Result()
		if err != nil {
			if errors.Is(err, redisLib.Nil) {
				continue
			}
			if ctx.Err() != nil {
				return Job{}, "", errors.Wrap(ctx.Err(), "dequeue")
			}

			return Job{}, "", errors.Wrap(err, "move job to processing")
		}

		var job Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			// Unparsable payloads can never succeed; drop them immediately.
			q.logger.Error("drop malformed job", zap.Error(err))
			if err := q.Ack(ctx, raw); err != nil {
				q.logger.Error("remove malformed job", zap.Error(err))
			}
			continue
		}

		return job, raw, nil
	}
}

// Ack removes a completed (or abandoned) payload from the processing list.
func (q *Queue) Ack(ctx context.Context, raw string) error {
	if err := q.rdb.LRem(ctx, rdb.KeyThumbnailProcessing, 1, raw).Err(); err != nil {
		return errors.Wrap(err, "remove job from processing")
	}

	return nil
}

// Retry re-enqueues a transiently failed job with its attempt counter
// bumped, or drops it once the retry budget is exhausted.
func (q *Queue) Retry(ctx context.Context, raw string, job Job) error {
	if err := q.Ack(ctx, raw); err != nil {
		return err
	}

	job.Attempts++
	if job.Attempts >= maxAttempts {
		q.logger.Error("drop job after repeated failures",
			zap.String("file_id", job.FileID),
			zap.String("user_id", job.UserID),
			zap.Int("attempts", job.Attempts))
		return nil
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return errors.Wrap(err, "marshal job")
	}

	if err := q.rdb.LPush(ctx, rdb.KeyThumbnailPending, payload).Err(); err != nil {
		return errors.Wrap(err, "requeue job")
	}

	return nil
}

// Recover moves payloads stranded on the processing list by a crashed
// worker back to pending. Call once at worker startup.
func (q *Queue) Recover(ctx context.Context) error {
	for {
		_, err := q.rdb.LMove(ctx,
			rdb.KeyThumbnailProcessing, rdb.KeyThumbnailPending,
			"RIGHT", "LEFT").Result()
		if err != nil {
			if errors.Is(err, redisLib.Nil) {
				return nil
			}

			return errors.Wrap(err, "recover processing jobs")
		}
	}
}
