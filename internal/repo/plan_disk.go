package repo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"github.com/pkordes/trip-planner/internal/domain"
)

const (
	diskPlanDir = "plans"
	diskPlanExt = ".json"
	diskTempDir = ".tmp"
)

// diskPlanStore keeps one JSON file per key under <basePath>/plans.
type diskPlanStore struct {
	d *diskv.Diskv
}

// NewDiskPlanStore constructs a PlanStore that writes files below basePath.
// Documents are kept in a small in-memory read cache. Writes go to a temp
// file under <basePath>/.tmp and are renamed into place.
func NewDiskPlanStore(basePath string) PlanStore {
	return &diskPlanStore{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		TempDir:           filepath.Join(basePath, diskTempDir),
		AdvancedTransform: keyToPlanPath,
		InverseTransform:  planPathToKey,
		CacheSizeMax:      1024 * 1024, // 1MB
	})}
}

func (s *diskPlanStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("repo.PlanStore.Get: %w", err)
	}
	doc, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("repo.PlanStore.Get: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("repo.PlanStore.Get: %w", err)
	}
	return doc, nil
}

func (s *diskPlanStore) Put(ctx context.Context, key string, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("repo.PlanStore.Put: %w", err)
	}
	if err := s.d.Write(key, doc); err != nil {
		return fmt.Errorf("repo.PlanStore.Put: %w", err)
	}
	return nil
}

func (s *diskPlanStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("repo.PlanStore.Delete: %w", err)
	}
	if !s.d.Has(key) {
		return nil
	}
	if err := s.d.Erase(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("repo.PlanStore.Delete: %w", err)
	}
	return nil
}

func keyToPlanPath(key string) *diskv.PathKey {
	return &diskv.PathKey{
		Path:     []string{diskPlanDir},
		FileName: key + diskPlanExt,
	}
}

func planPathToKey(pk *diskv.PathKey) string {
	return strings.TrimSuffix(pk.FileName, diskPlanExt)
}
