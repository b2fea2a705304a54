// Package media derives secondary image formats for uploaded product images.
//
// A product image stored as images/<base>.jpg or images/<base>.png gets a
// webp copy at images/<base>.webp on the same disk. Derivation is idempotent:
// when the target already exists nothing is read or encoded.
package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"path"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mytheresa/go-shop-catalog/app/metrics"
	"github.com/mytheresa/go-shop-catalog/app/storage"
	"github.com/mytheresa/go-shop-catalog/models"
)

// ImageProcessingError reports a failed derivation. It wraps the underlying
// read, directory or encode error.
type ImageProcessingError struct {
	Source string
	Target string
	Op     string
	Err    error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("image processing: %s %s -> %s: %v", e.Op, e.Source, e.Target, e.Err)
}

func (e *ImageProcessingError) Unwrap() error {
	return e.Err
}

// Result describes what Derive did.
type Result struct {
	// Target is the stored name of the variant, empty when the source format has none.
	Target string
	// Encoded is true when this call produced the variant.
	Encoded bool
}

// Derivable reports whether a variant exists for the source format.
func (r Result) Derivable() bool {
	return r.Target != ""
}

type Deriver struct {
	disk    storage.Disk
	encoder Encoder
	locker  Locker
	log     *slog.Logger
	group   singleflight.Group
}

type Option func(*Deriver)

// WithLocker guards derivations across processes.
func WithLocker(l Locker) Option {
	return func(d *Deriver) { d.locker = l }
}

func WithLogger(log *slog.Logger) Option {
	return func(d *Deriver) { d.log = log }
}

func NewDeriver(disk storage.Disk, encoder Encoder, opts ...Option) *Deriver {
	d := &Deriver{
		disk:    disk,
		encoder: encoder,
		locker:  nopLocker{},
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Derive ensures the variant of the image stored under name exists.
// Concurrent calls for the same target share one derivation.
func (d *Deriver) Derive(ctx context.Context, name string) (Result, error) {
	target, ok := models.VariantName(name)
	if !ok {
		return Result{}, nil
	}

	v, err, _ := d.group.Do(target, func() (any, error) {
		return d.derive(ctx, name, target)
	})
	if err != nil {
		metrics.Derivations.WithLabelValues("failed").Inc()
		return Result{Target: target}, err
	}

	encoded := v.(bool)
	if encoded {
		metrics.Derivations.WithLabelValues("encoded").Inc()
	} else {
		metrics.Derivations.WithLabelValues("skipped").Inc()
	}
	return Result{Target: target, Encoded: encoded}, nil
}

func (d *Deriver) derive(ctx context.Context, source, target string) (bool, error) {
	fail := func(op string, err error) (bool, error) {
		return false, &ImageProcessingError{Source: source, Target: target, Op: op, Err: err}
	}

	exists, err := d.disk.Exists(ctx, target)
	if err != nil {
		return fail("stat", err)
	}
	if exists {
		return false, nil
	}

	unlock, err := d.locker.Lock(ctx, target)
	if err != nil {
		return fail("lock", err)
	}
	defer unlock()

	// Another process may have finished while we waited for the lock.
	if exists, err = d.disk.Exists(ctx, target); err != nil {
		return fail("stat", err)
	} else if exists {
		return false, nil
	}

	if err := d.disk.MakeDirectory(ctx, path.Dir(target)); err != nil {
		return fail("mkdir", err)
	}

	start := time.Now()
	img, err := d.decode(ctx, source)
	if err != nil {
		return fail("decode", err)
	}
	if err := ctx.Err(); err != nil {
		return fail("decode", err)
	}

	var buf bytes.Buffer
	if err := d.encoder.Encode(&buf, img); err != nil {
		return fail("encode", err)
	}
	if err := ctx.Err(); err != nil {
		return fail("encode", err)
	}

	if err := d.disk.Put(ctx, target, &buf); err != nil {
		return fail("write", err)
	}
	metrics.DerivationDuration.Observe(time.Since(start).Seconds())

	d.log.Info("image variant created", "source", source, "target", target, "duration", time.Since(start).String())
	return true, nil
}

func (d *Deriver) decode(ctx context.Context, name string) (image.Image, error) {
	rc, err := d.disk.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, _, err := image.Decode(rc)
	if err != nil {
		return nil, err
	}
	return img, nil
}
