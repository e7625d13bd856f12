package thumbnail

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/Laisky/files-manager/internal/web/file/model"
	"github.com/Laisky/files-manager/library/blob"
)

const (
	// jobTimeout bounds one job end to end, including all variant writes.
	jobTimeout = 2 * time.Minute
	ackTimeout = 10 * time.Second
)

// ErrBadJob marks a job that can never succeed: missing or mismatched ids,
// a non-image record, or a record without a blob. Such jobs are not retried;
// they are surfaced to operators through the failure log and acked away.
var ErrBadJob = errors.New("job validation failed")

// MetadataStore is the joint file-and-owner lookup the worker re-validates
// every job against.
type MetadataStore interface {
	GetOwned(ctx context.Context, id, owner primitive.ObjectID) (*model.File, error)
}

// BlobStore reads originals and writes derived variants.
type BlobStore interface {
	Read(path string) ([]byte, error)
	Write(path string, data []byte) error
}

// Worker consumes thumbnail jobs. Multiple workers may run concurrently;
// redelivered jobs overwrite the same variant paths, so duplication is safe.
type Worker struct {
	logger glog.Logger
	queue  *Queue
	files  MetadataStore
	blobs  BlobStore
	widths []int
}

// NewWorker creates a worker over the shared queue.
func NewWorker(logger glog.Logger, queue *Queue, files MetadataStore, blobs BlobStore) *Worker {
	return &Worker{
		logger: logger,
		queue:  queue,
		files:  files,
		blobs:  blobs,
		widths: model.ThumbnailWidths,
	}
}

// Run consumes jobs until ctx is done. On shutdown it stops dequeuing and
// lets the in-flight job finish: each job runs under its own bounded
// context, detached from ctx.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.queue.Recover(ctx); err != nil {
		return errors.Wrap(err, "recover queue")
	}

	w.logger.Info("worker started")
	for {
		job, raw, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info("worker stopping")
				return nil
			}

			return errors.Wrap(err, "dequeue job")
		}

		jobCtx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		perr := w.process(jobCtx, job)
		cancel()

		// Queue bookkeeping must proceed even when the run context is
		// already canceled, so it gets its own bounded context.
		ackCtx, ackCancel := context.WithTimeout(context.Background(), ackTimeout)
		w.settle(ackCtx, raw, job, perr)
		ackCancel()
	}
}

// settle acks, drops or retries a finished job depending on its outcome.
func (w *Worker) settle(ctx context.Context, raw string, job Job, perr error) {
	switch {
	case perr == nil:
		if err := w.queue.Ack(ctx, raw); err != nil {
			w.logger.Error("ack job", zap.Error(err))
		}
		w.logger.Info("generated thumbnails",
			zap.String("file_id", job.FileID))

	case errors.Is(perr, ErrBadJob):
		w.logger.Error("job failed validation",
			zap.Error(perr),
			zap.String("file_id", job.FileID),
			zap.String("user_id", job.UserID))
		if err := w.queue.Ack(ctx, raw); err != nil {
			w.logger.Error("ack poison job", zap.Error(err))
		}

	default:
		w.logger.Error("job failed",
			zap.Error(perr),
			zap.String("file_id", job.FileID),
			zap.Int("attempts", job.Attempts))
		if err := w.queue.Retry(ctx, raw, job); err != nil {
			w.logger.Error("retry job", zap.Error(err))
		}
	}
}

// process generates every target width for one job. All widths must
// succeed: a partial failure fails the whole job so a retry regenerates the
// complete set.
func (w *Worker) process(ctx context.Context, job Job) error {
	fileID, err := primitive.ObjectIDFromHex(job.FileID)
	if err != nil {
		return errors.Wrap(ErrBadJob, "parse file id")
	}
	ownerID, err := primitive.ObjectIDFromHex(job.UserID)
	if err != nil {
		return errors.Wrap(ErrBadJob, "parse user id")
	}

	f, err := w.files.GetOwned(ctx, fileID, ownerID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return errors.Wrap(ErrBadJob, "file not found for owner")
		}

		return errors.Wrap(err, "load file")
	}

	if f.Type != model.KindImage {
		return errors.Wrap(ErrBadJob, "record is not an image")
	}
	if f.LocalPath == "" {
		return errors.Wrap(ErrBadJob, "record has no blob")
	}

	src, err := w.blobs.Read(f.LocalPath)
	if err != nil {
		return errors.Wrap(err, "read original")
	}

	// The widths are independent pure transforms over the same immutable
	// input, so they can run concurrently.
	g, _ := errgroup.WithContext(ctx)
	for _, width := range w.widths {
		g.Go(func() error {
			out, err := ResizeWidth(src, uint(width))
			if err != nil {
				return errors.Wrapf(err, "resize to %d", width)
			}

			if err := w.blobs.Write(blob.VariantPath(f.LocalPath, width), out); err != nil {
				return errors.Wrapf(err, "write %d variant", width)
			}

			return nil
		})
	}

	return g.Wait()
}
