package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"energy-predictor/internal/common"

	"github.com/rs/zerolog/log"
)

// CatalogEntry maps a display name to an artifact file in the models directory.
type CatalogEntry struct {
	Name string `json:"name"`
	File string `json:"file"`
}

// ModelInfo is what the catalog reports about one entry.
type ModelInfo struct {
	Name      string        `json:"name"`
	File      string        `json:"file"`
	Loaded    bool          `json:"loaded"`
	Metadata  ModelMetadata `json:"metadata,omitempty"`
	IsDefault bool          `json:"is_default"`
}

// DefaultCatalog is used when the models directory has no catalog file.
func DefaultCatalog() []CatalogEntry {
	return []CatalogEntry{
		{Name: common.ModelRandomForest, File: "random_forest.json"},
		{Name: common.ModelDecisionTree, File: "decision_tree.json"},
		{Name: common.ModelLinearRegression, File: "linear.json"},
	}
}

// ModelManager resolves model names to loaded models. Models are loaded on
// first use and cached; loaded models are immutable and safe to share.
type ModelManager struct {
	modelsDir   string
	catalogFile string
	catalog     []CatalogEntry
	defaultName string
	metrics     MetricsInterface

	mu     sync.RWMutex
	loaded map[string]*LoadedModel
}

// NewModelManager reads the catalog from modelsDir, falling back to
// DefaultCatalog when model_catalog.json is absent.
func NewModelManager(modelsDir, defaultName string, metrics MetricsInterface) (*ModelManager, error) {
	mm := &ModelManager{
		modelsDir:   modelsDir,
		catalogFile: filepath.Join(modelsDir, common.CatalogFileName),
		defaultName: defaultName,
		metrics:     metrics,
		loaded:      make(map[string]*LoadedModel),
	}

	if err := mm.loadCatalog(); err != nil {
		return nil, err
	}

	if mm.defaultName == "" {
		mm.defaultName = mm.catalog[0].Name
	}
	if _, ok := mm.entry(mm.defaultName); !ok {
		return nil, fmt.Errorf("default model %q: %w", mm.defaultName, ErrUnknownModel)
	}

	return mm, nil
}

// Get returns the named model, loading it on first use. An empty name
// selects the default model.
func (mm *ModelManager) Get(name string) (*LoadedModel, error) {
	if name == "" {
		name = mm.defaultName
	}

	mm.mu.RLock()
	m, ok := mm.loaded[name]
	mm.mu.RUnlock()
	if ok {
		return m, nil
	}

	e, ok := mm.entry(name)
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownModel)
	}

	mm.mu.Lock()
	defer mm.mu.Unlock()
	if m, ok := mm.loaded[name]; ok {
		return m, nil
	}

	m, err := LoadModel(filepath.Join(mm.modelsDir, e.File))
	if err != nil {
		return nil, err
	}
	mm.loaded[name] = m

	if mm.metrics != nil && !m.ModTime.IsZero() {
		mm.metrics.MLModelTimestampSet(name, float64(m.ModTime.Unix()))
	}
	log.Info().
		Str("model", name).
		Str("kind", m.Metadata.Kind).
		Str("version", m.Metadata.Version).
		Str("path", m.Path).
		Msg("Model loaded")

	return m, nil
}

// Preload loads every catalog entry, returning the first failure.
func (mm *ModelManager) Preload() error {
	for _, e := range mm.catalog {
		if _, err := mm.Get(e.Name); err != nil {
			return err
		}
	}
	return nil
}

// Reload drops all cached models so the next Get reads the artifacts again.
func (mm *ModelManager) Reload() {
	mm.mu.Lock()
	mm.loaded = make(map[string]*LoadedModel)
	mm.mu.Unlock()
}

// DefaultName returns the model used when a request names none.
func (mm *ModelManager) DefaultName() string {
	return mm.defaultName
}

// Names lists catalog names in display order.
func (mm *ModelManager) Names() []string {
	names := make([]string, len(mm.catalog))
	for i, e := range mm.catalog {
		names[i] = e.Name
	}
	return names
}

// ListModels reports every catalog entry and whether it has been loaded.
func (mm *ModelManager) ListModels() []ModelInfo {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	out := make([]ModelInfo, 0, len(mm.catalog))
	for _, e := range mm.catalog {
		info := ModelInfo{Name: e.Name, File: e.File, IsDefault: e.Name == mm.defaultName}
		if m, ok := mm.loaded[e.Name]; ok {
			info.Loaded = true
			info.Metadata = m.Metadata
		}
		out = append(out, info)
	}
	return out
}

func (mm *ModelManager) entry(name string) (CatalogEntry, bool) {
	for _, e := range mm.catalog {
		if e.Name == name {
			return e, true
		}
	}
	return CatalogEntry{}, false
}

// loadCatalog loads the name -> file mapping from the catalog file
func (mm *ModelManager) loadCatalog() error {
	data, err := os.ReadFile(mm.catalogFile)
	if err != nil {
		if os.IsNotExist(err) {
			mm.catalog = DefaultCatalog()
			return nil
		}
		return fmt.Errorf("failed to read model catalog: %w", err)
	}

	var entries []CatalogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse model catalog: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("model catalog %s is empty", mm.catalogFile)
	}

	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.Name == "" || e.File == "" {
			return fmt.Errorf("model catalog entry needs name and file: %+v", e)
		}
		if seen[e.Name] {
			return fmt.Errorf("duplicate model name %q in catalog", e.Name)
		}
		seen[e.Name] = true
	}

	mm.catalog = entries
	return nil
}

// saveCatalog writes catalog to dir
func saveCatalog(dir string, catalog []CatalogEntry) error {
	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, common.CatalogFileName), data, 0o644)
}
