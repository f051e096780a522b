package storage

import (
	"github.com/vvsotnikov/playwright/internal/config"
	"github.com/vvsotnikov/playwright/internal/domain"
	"github.com/vvsotnikov/playwright/internal/suite"
)

// Storage persists and loads listing reports (e.g. for the show viewer).
type Storage interface {
	Save(root *suite.Suite, errs []domain.TestError) error
	Load() (*domain.ListingOutput, error)
	// SaveOutput writes a prepared report as-is.
	SaveOutput(output *domain.ListingOutput) error
}

// JSONStorage stores listings in a JSON file under the configured output path.
type JSONStorage struct {
	cfg *config.Config
}

// NewJSONStorage returns a Storage that reads/writes the config's output JSON path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg}
}

// Path returns the file the listing is stored in
func (s *JSONStorage) Path() string {
	return s.cfg.GetOutputPath()
}
