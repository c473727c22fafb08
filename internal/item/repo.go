// Package item provides the catalog item model, the flat-file repository and
// the query, category and stats operations served by the catalog API.
package item

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"
)

var (
	ErrNotFound           = errors.New("item not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrMalformedData      = errors.New("malformed data")
)

type Repository interface {
	LoadAll(ctx context.Context) ([]Item, error)
	GetByID(ctx context.Context, id int64) (*Item, error)
	Append(ctx context.Context, it Item) (Item, error)
	ModTime(ctx context.Context) (time.Time, error)
}

// FileRepo keeps the whole collection as one JSON array on disk. Every call
// reads the file again; nothing is held in memory between calls. Append is a
// read-modify-write without locking, so concurrent creates can lose an item.
type FileRepo struct {
	path string
	now  func() time.Time

	lastID atomic.Int64
}

func NewFileRepo(path string) *FileRepo {
	return &FileRepo{path: path, now: time.Now}
}

func (r *FileRepo) Path() string { return r.path }

func (r *FileRepo) LoadAll(ctx context.Context) ([]Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return decodeItems(data)
}

func decodeItems(data []byte) ([]Item, error) {
	if !bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrMalformedData)
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedData, err)
	}
	if items == nil {
		items = []Item{}
	}
	return items, nil
}

func (r *FileRepo) GetByID(ctx context.Context, id int64) (*Item, error) {
	items, err := r.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID == id {
			return &items[i], nil
		}
	}
	return nil, ErrNotFound
}

// Append assigns an id from the wall clock in milliseconds, bumped past the
// last id this process handed out, and rewrites the whole file.
func (r *FileRepo) Append(ctx context.Context, it Item) (Item, error) {
	items, err := r.LoadAll(ctx)
	if err != nil {
		return Item{}, err
	}
	it.ID = r.nextID()
	items = append(items, it)
	if err := r.save(items); err != nil {
		return Item{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return it, nil
}

func (r *FileRepo) nextID() int64 {
	ms := r.now().UnixMilli()
	for {
		last := r.lastID.Load()
		id := ms
		if id <= last {
			id = last + 1
		}
		if r.lastID.CompareAndSwap(last, id) {
			return id
		}
	}
}

func (r *FileRepo) ModTime(ctx context.Context) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	fi, err := os.Stat(r.path)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	return fi.ModTime(), nil
}

// save writes to a temp file next to the target and renames it over the
// original, so readers never see a half-written array.
func (r *FileRepo) save(items []Item) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}

	tmp := r.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}
