package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"
	"time"

	"github.com/disintegration/imaging"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/gamebay/gamebay-api/internal/config"
	"github.com/gamebay/gamebay-api/internal/pkg/database"
	"github.com/gamebay/gamebay-api/internal/pkg/logger"
	"github.com/gamebay/gamebay-api/internal/pkg/storage"
)

const (
	pollInterval    = 5 * time.Second
	claimBatchSize  = 5
	maxAttempts     = 3
	maxOriginalSide = 2000
	jpegQuality     = 85
)

// variant is a derived rendition of a screenshot. The market grid shows
// fixed-ratio cards, so that one is cropped; the detail page keeps the
// full frame.
type variant struct {
	suffix        string
	width, height int
	crop          bool
}

var variants = []variant{
	{suffix: "card", width: 400, height: 300, crop: true},
	{suffix: "card2x", width: 800, height: 600, crop: true},
	{suffix: "large", width: 1200, height: 1200},
}

type screenshotJob struct {
	ID         string `db:"id"`
	StorageKey string `db:"storage_key"`
	MimeType   string `db:"mime_type"`
}

type worker struct {
	db    *sqlx.DB
	store *storage.R2Storage
}

func main() {
	cfg := config.Load()
	logger.Init(logger.Config{Level: cfg.LogLevel, Environment: cfg.Env})

	log.Info().Msg("Starting image-worker")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	r2, err := storage.NewR2Storage(storage.R2Config{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		AccessKeySecret: cfg.R2AccessKeySecret,
		BucketName:      cfg.R2BucketName,
		PublicURL:       cfg.R2PublicURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create R2 storage client")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigChan
		log.Info().Msg("Shutdown signal received")
		cancel()
	}()

	w := &worker{db: db, store: r2}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	lastIdleLog := time.Time{}
	idleLogEvery := 1 * time.Minute

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("image-worker stopped")
			return
		case <-ticker.C:
		}

		jobs, err := w.claimBatch(ctx)
		if err != nil {
			log.Error().Err(err).Msg("DB error while claiming screenshots")
			continue
		}
		if len(jobs) == 0 {
			now := time.Now()
			if lastIdleLog.IsZero() || now.Sub(lastIdleLog) >= idleLogEvery {
				log.Info().Msg("Idle: no unprocessed screenshots found")
				lastIdleLog = now
			}
			continue
		}

		for _, job := range jobs {
			if ctx.Err() != nil {
				return
			}
			w.processJob(ctx, job)
		}
	}
}

func (w *worker) processJob(ctx context.Context, job screenshotJob) {
	start := time.Now()
	log.Info().
		Str("screenshot_id", job.ID).
		Str("key", job.StorageKey).
		Msg("Processing screenshot")

	width, height, err := w.render(ctx, job.StorageKey)
	if err != nil {
		log.Error().
			Err(err).
			Str("screenshot_id", job.ID).
			Msg("Processing failed")

		if err2 := w.markFailed(ctx, job.ID, err.Error()); err2 != nil {
			log.Error().Err(err2).Str("screenshot_id", job.ID).Msg("Failed to update DB status=failed")
		}
		return
	}

	if err := w.markDone(ctx, job.ID, width, height); err != nil {
		log.Error().Err(err).Str("screenshot_id", job.ID).Msg("Failed to update DB status=done")
		return
	}

	log.Info().
		Str("screenshot_id", job.ID).
		Dur("took", time.Since(start)).
		Int("width", width).
		Int("height", height).
		Msg("Processing done")
}

// render re-encodes the original and uploads every derived variant.
func (w *worker) render(ctx context.Context, originalKey string) (int, int, error) {
	rc, err := w.store.Get(ctx, originalKey)
	if err != nil {
		return 0, 0, fmt.Errorf("download: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return 0, 0, fmt.Errorf("read: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("decode: %w", err)
	}

	// Cap the original at 2000px on the long side and re-encode as JPEG
	opt := img
	b := img.Bounds()
	if b.Dx() > maxOriginalSide || b.Dy() > maxOriginalSide {
		opt = imaging.Fit(img, maxOriginalSide, maxOriginalSide, imaging.Lanczos)
	}

	var optBuf bytes.Buffer
	if err := imaging.Encode(&optBuf, opt, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return 0, 0, fmt.Errorf("encode optimized: %w", err)
	}

	if err := w.store.Put(ctx, originalKey, bytes.NewReader(optBuf.Bytes()), "image/jpeg"); err != nil {
		return 0, 0, fmt.Errorf("upload optimized: %w", err)
	}

	base := strings.TrimSuffix(originalKey, path.Ext(originalKey))
	for _, v := range variants {
		out := renderVariant(opt, v)

		var buf bytes.Buffer
		if err := imaging.Encode(&buf, out, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
			return 0, 0, fmt.Errorf("encode %s: %w", v.suffix, err)
		}
		if err := w.store.Put(ctx, variantKey(base, v), bytes.NewReader(buf.Bytes()), "image/jpeg"); err != nil {
			return 0, 0, fmt.Errorf("upload %s: %w", v.suffix, err)
		}
	}

	return opt.Bounds().Dx(), opt.Bounds().Dy(), nil
}

func renderVariant(src image.Image, v variant) image.Image {
	if v.crop {
		return imaging.Fill(src, v.width, v.height, imaging.Center, imaging.Lanczos)
	}
	return imaging.Fit(src, v.width, v.height, imaging.Lanczos)
}

func variantKey(base string, v variant) string {
	return fmt.Sprintf("%s_%s.jpg", base, v.suffix)
}

// claimBatch moves up to claimBatchSize screenshots into 'processing' in a
// single statement. SKIP LOCKED keeps concurrent workers from claiming the
// same rows.
func (w *worker) claimBatch(ctx context.Context) ([]screenshotJob, error) {
	var jobs []screenshotJob
	err := w.db.SelectContext(ctx, &jobs, `
		UPDATE listing_screenshots
		SET process_status = 'processing',
		    process_attempts = process_attempts + 1,
		    process_error = NULL
		WHERE id IN (
			SELECT id
			FROM listing_screenshots
			WHERE storage_key <> ''
			  AND mime_type IN ('image/jpeg','image/png','image/webp')
			  AND process_status IN ('pending','failed')
			  AND process_attempts < $1
			ORDER BY created_at ASC
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, storage_key, mime_type
	`, maxAttempts, claimBatchSize)
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (w *worker) markDone(ctx context.Context, id string, width, height int) error {
	_, err := w.db.ExecContext(ctx, `
		UPDATE listing_screenshots
		SET process_status = 'done',
		    processed_at = NOW(),
		    width = $2,
		    height = $3,
		    process_error = NULL
		WHERE id = $1
	`, id, width, height)
	return err
}

func (w *worker) markFailed(ctx context.Context, id string, msg string) error {
	// attempts were already incremented in the claim
	if len(msg) > 2000 {
		msg = msg[:2000]
	}
	_, err := w.db.ExecContext(ctx, `
		UPDATE listing_screenshots
		SET process_status = 'failed',
		    process_error = $2
		WHERE id = $1
	`, id, msg)
	return err
}
