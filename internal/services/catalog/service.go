package catalog

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/model"
)

// ImagePrefix is the static path flag images are served from
const ImagePrefix = "/assets/flags/"

// Service holds the read-only flag catalog
type Service struct {
	mu      sync.RWMutex
	records map[model.FlagCode]model.FlagRecord
	codes   []model.FlagCode
	loaded  bool
}

// New creates an empty catalog
func New() *Service {
	return &Service{
		records: make(map[model.FlagCode]model.FlagRecord),
	}
}

// catalogFile is the on-disk layout of a single catalog file
type catalogFile struct {
	Flags []model.FlagRecord `yaml:"flags"`
}

// LoadFile loads the catalog from a single YAML or JSON file
func (s *Service) LoadFile(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse catalog %s: %w", filePath, err)
	}

	return s.LoadRecords(file.Flags)
}

// LoadDir loads one flag per image file in flagsDir. Hints come from
// hintsPath, a YAML or JSON object keyed by flag code; flags without an
// entry have no hints. An empty hintsPath loads no hints.
func (s *Service) LoadDir(flagsDir, hintsPath string) error {
	entries, err := os.ReadDir(flagsDir)
	if err != nil {
		return err
	}

	hints := map[string]model.FlagHints{}
	if hintsPath != "" {
		data, err := os.ReadFile(hintsPath)
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(data, &hints); err != nil {
			return fmt.Errorf("parse hints %s: %w", hintsPath, err)
		}
	}

	records := make([]model.FlagRecord, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := entry.Name()
		code := strings.TrimSuffix(name, filepath.Ext(name))
		records = append(records, model.FlagRecord{
			Code:  model.FlagCode(code),
			Image: path.Join(ImagePrefix, name),
			Hints: hints[code],
		})
	}

	return s.LoadRecords(records)
}

// LoadRecords replaces the catalog with the given records (useful for testing)
func (s *Service) LoadRecords(records []model.FlagRecord) error {
	byCode := make(map[model.FlagCode]model.FlagRecord, len(records))
	codes := make([]model.FlagCode, 0, len(records))
	for _, r := range records {
		if r.Code == "" {
			return fmt.Errorf("catalog record with empty code")
		}
		if _, dup := byCode[r.Code]; dup {
			return fmt.Errorf("duplicate flag code %q", r.Code)
		}
		byCode[r.Code] = r
		codes = append(codes, r.Code)
	}

	// Sorted so a seeded draw is reproducible
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = byCode
	s.codes = codes
	s.loaded = true
	return nil
}

// Lookup returns the record for a flag code
func (s *Service) Lookup(code model.FlagCode) (model.FlagRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[code]
	if !ok {
		return model.FlagRecord{}, model.ErrFlagNotFound
	}
	return r, nil
}

// Codes returns every flag code in a stable order
func (s *Service) Codes() []model.FlagCode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.FlagCode, len(s.codes))
	copy(out, s.codes)
	return out
}

// All returns every record ordered by code
func (s *Service) All() []model.FlagRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.FlagRecord, 0, len(s.codes))
	for _, code := range s.codes {
		out = append(out, s.records[code])
	}
	return out
}

// IsLoaded returns whether the catalog has been loaded
func (s *Service) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Count returns the number of flags in the catalog
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.codes)
}
