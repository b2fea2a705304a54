package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"sync"
)

// memDisk is an in-memory storage.Disk.
type memDisk struct {
	mu    sync.Mutex
	files map[string][]byte
	dirs  map[string]bool

	existsErr error
	getErr    error
	putErr    error
	mkdirErr  error

	gets int
	puts int
}

func newMemDisk() *memDisk {
	return &memDisk{files: map[string][]byte{}, dirs: map[string]bool{}}
}

func (d *memDisk) Put(_ context.Context, path string, r io.Reader) error {
	if d.putErr != nil {
		return d.putErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.puts++
	d.files[path] = b
	return nil
}

func (d *memDisk) Get(_ context.Context, path string) (io.ReadCloser, error) {
	if d.getErr != nil {
		return nil, d.getErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gets++
	b, ok := d.files[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, errors.New("file does not exist"))
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (d *memDisk) Exists(_ context.Context, path string) (bool, error) {
	if d.existsErr != nil {
		return false, d.existsErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.files[path]
	return ok, nil
}

func (d *memDisk) MakeDirectory(_ context.Context, path string) error {
	if d.mkdirErr != nil {
		return d.mkdirErr
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dirs[path] = true
	return nil
}

func (d *memDisk) Delete(_ context.Context, path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.files, path)
	return nil
}

func (d *memDisk) URL(path string) string {
	return "/media/" + path
}

func (d *memDisk) file(path string) ([]byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.files[path]
	return b, ok
}

func pngBytes() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 60), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// countingEncoder writes a fixed payload and counts calls.
type countingEncoder struct {
	mu    sync.Mutex
	calls int
	err   error
	gate  chan struct{}
}

func (e *countingEncoder) Encode(w io.Writer, _ image.Image) error {
	if e.gate != nil {
		<-e.gate
	}
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	_, err := w.Write([]byte("RIFFwebp"))
	return err
}

func (e *countingEncoder) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}
