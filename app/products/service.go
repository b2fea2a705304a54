// Package products implements the write path of the catalog: saving a
// product together with the derived variant of its image.
package products

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mytheresa/go-shop-catalog/app/logger"
	"github.com/mytheresa/go-shop-catalog/app/media"
	"github.com/mytheresa/go-shop-catalog/models"
)

type Repository interface {
	SaveProduct(ctx context.Context, product *models.Product, beforeWrite func(p *models.Product) error) error
	SetImageVariant(ctx context.Context, sku, image string, status models.VariantStatus) error
	GetByVariantStatus(ctx context.Context, statuses ...models.VariantStatus) ([]models.Product, error)
}

type Deriver interface {
	Derive(ctx context.Context, name string) (media.Result, error)
}

type Queue interface {
	Submit(job func()) error
}

type Options struct {
	// Async commits the product first and derives on Queue afterwards.
	Async bool
	Queue Queue
	// Timeout bounds a single derivation. Zero means no bound.
	Timeout time.Duration
}

type Service struct {
	repo    Repository
	deriver Deriver
	opts    Options
}

func NewService(repo Repository, deriver Deriver, opts Options) *Service {
	if opts.Async && opts.Queue == nil {
		opts.Async = false
	}
	return &Service{repo: repo, deriver: deriver, opts: opts}
}

// Save inserts or updates the product by SKU.
//
// In synchronous mode the variant is derived inside the save transaction and
// a derivation error aborts the save. In asynchronous mode the product is
// committed with a pending variant that a background job later marks ready
// or failed.
func (s *Service) Save(ctx context.Context, product *models.Product) error {
	if s.opts.Async {
		return s.saveAsync(ctx, product)
	}

	return s.repo.SaveProduct(ctx, product, func(p *models.Product) error {
		if _, ok := models.VariantName(p.Image); !ok {
			p.ImageVariant = models.VariantNone
			return nil
		}
		if err := s.derive(ctx, p.Image); err != nil {
			return err
		}
		p.ImageVariant = models.VariantReady
		return nil
	})
}

func (s *Service) saveAsync(ctx context.Context, product *models.Product) error {
	err := s.repo.SaveProduct(ctx, product, func(p *models.Product) error {
		if _, ok := models.VariantName(p.Image); ok {
			p.ImageVariant = models.VariantPending
		} else {
			p.ImageVariant = models.VariantNone
		}
		return nil
	})
	if err != nil || product.ImageVariant != models.VariantPending {
		return err
	}

	sku, image := product.SKU, product.Image
	log := logger.WithCtx(ctx)
	jobCtx := logger.Inject(context.WithoutCancel(ctx), log)
	job := func() { s.deriveAndMark(jobCtx, sku, image) }

	if err := s.opts.Queue.Submit(job); err != nil {
		log.Warn("derivation queue unavailable, deriving inline", "sku", sku, "error", err)
		job()
	}
	return nil
}

// deriveAndMark derives the variant of image and records the outcome on the
// product. The outcome is dropped, and pending returned, when the product was
// saved with another image meanwhile; that save queued its own derivation.
func (s *Service) deriveAndMark(ctx context.Context, sku, image string) models.VariantStatus {
	log := logger.WithCtx(ctx)

	status := models.VariantReady
	if err := s.derive(ctx, image); err != nil {
		log.Error("image variant derivation failed", "sku", sku, "image", image, "error", err)
		status = models.VariantFailed
	}

	switch err := s.repo.SetImageVariant(ctx, sku, image, status); {
	case errors.Is(err, models.ErrImageReplaced):
		log.Info("image replaced during derivation, result discarded", "sku", sku, "image", image)
		return models.VariantPending
	case err != nil:
		log.Error("failed to record image variant", "sku", sku, "status", status, "error", err)
	}
	return status
}

func (s *Service) derive(ctx context.Context, image string) error {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	_, err := s.deriver.Derive(ctx, image)
	return err
}

// BackfillReport summarises a Backfill run.
type BackfillReport struct {
	Ready    int
	Failed   int
	Replaced int
}

// Backfill derives the variant of every product left pending or failed,
// for instance after a crash in asynchronous mode.
func (s *Service) Backfill(ctx context.Context) (BackfillReport, error) {
	var report BackfillReport

	products, err := s.repo.GetByVariantStatus(ctx, models.VariantPending, models.VariantFailed)
	if err != nil {
		return report, fmt.Errorf("products: list pending variants: %w", err)
	}

	log := logger.WithCtx(ctx)
	for _, p := range products {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if _, ok := models.VariantName(p.Image); !ok {
			err := s.repo.SetImageVariant(ctx, p.SKU, p.Image, models.VariantNone)
			if err != nil && !errors.Is(err, models.ErrProductNotFound) && !errors.Is(err, models.ErrImageReplaced) {
				return report, err
			}
			continue
		}

		switch s.deriveAndMark(ctx, p.SKU, p.Image) {
		case models.VariantReady:
			report.Ready++
		case models.VariantPending:
			report.Replaced++
		default:
			report.Failed++
		}
	}

	log.Info("image variant backfill finished", slog.Int("ready", report.Ready), slog.Int("failed", report.Failed), slog.Int("replaced", report.Replaced))
	return report, nil
}
