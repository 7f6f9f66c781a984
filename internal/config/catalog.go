package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"tradebattle/internal/logger"
	"tradebattle/internal/market"

	"github.com/fsnotify/fsnotify"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/shopspring/decimal"
)

// catalogSchema constrains the instrument catalog file. An empty or
// malformed catalog is rejected before it can reach a market.
const catalogSchema = `{
	"type": "object",
	"required": ["instruments"],
	"properties": {
		"instruments": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["symbol", "name", "start_price"],
				"properties": {
					"symbol": {"type": "string", "minLength": 1},
					"name": {"type": "string", "minLength": 1},
					"start_price": {"type": "number", "exclusiveMinimum": 0}
				}
			}
		}
	}
}`

type catalogFile struct {
	Instruments []catalogInstrument `json:"instruments"`
}

type catalogInstrument struct {
	Symbol     string  `json:"symbol"`
	Name       string  `json:"name"`
	StartPrice float64 `json:"start_price"`
}

var (
	catalogSchemaOnce sync.Once
	catalogCompiled   *jsonschema.Schema
)

func compiledCatalogSchema() *jsonschema.Schema {
	catalogSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("catalog.schema.json", strings.NewReader(catalogSchema)); err != nil {
			panic(fmt.Sprintf("catalog schema resource: %v", err))
		}
		schema, err := compiler.Compile("catalog.schema.json")
		if err != nil {
			panic(fmt.Sprintf("catalog schema compile: %v", err))
		}
		catalogCompiled = schema
	})
	return catalogCompiled
}

// LoadCatalog reads and validates the instrument catalog file.
func LoadCatalog(path string) ([]market.Spec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog failed (%s): %w", path, err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("catalog %s is not valid JSON: %w", path, err)
	}
	if err := compiledCatalogSchema().Validate(doc); err != nil {
		return nil, fmt.Errorf("catalog %s failed schema validation: %w", path, err)
	}
	var file catalogFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}
	specs := make([]market.Spec, 0, len(file.Instruments))
	seen := make(map[string]bool, len(file.Instruments))
	for _, ins := range file.Instruments {
		sym := strings.ToUpper(strings.TrimSpace(ins.Symbol))
		if seen[sym] {
			return nil, fmt.Errorf("catalog %s contains duplicate symbol %s", path, sym)
		}
		seen[sym] = true
		specs = append(specs, market.Spec{
			Symbol:      sym,
			DisplayName: ins.Name,
			StartPrice:  decimal.NewFromFloat(ins.StartPrice),
		})
	}
	return specs, nil
}

// CatalogLoader serves the current catalog and hot-reloads it on file
// changes. A reload that fails validation is logged and discarded; the
// previous catalog stays in effect.
type CatalogLoader struct {
	path string

	mu    sync.RWMutex
	specs []market.Spec
}

func NewCatalogLoader(path string) (*CatalogLoader, error) {
	specs, err := LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	return &CatalogLoader{path: path, specs: specs}, nil
}

// Specs returns the current catalog (copied; hot reloads swap the slice).
func (l *CatalogLoader) Specs() []market.Spec {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]market.Spec, len(l.specs))
	copy(out, l.specs)
	return out
}

// Watch reloads the catalog on filesystem changes until stop is closed.
// Editors replace files rather than writing in place, so the watch covers
// the parent directory and filters on the catalog's name.
func (l *CatalogLoader) Watch(stop <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting catalog watcher: %w", err)
	}
	dir := filepath.Dir(l.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	target := filepath.Clean(l.path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-stop:
				return
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(evt.Name) != target {
					continue
				}
				if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) {
					continue
				}
				l.reload()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warnf("catalog watcher error: %v", err)
			}
		}
	}()
	return nil
}

func (l *CatalogLoader) reload() {
	specs, err := LoadCatalog(l.path)
	if err != nil {
		logger.Errorf("catalog reload rejected, keeping previous catalog: %v", err)
		return
	}
	l.mu.Lock()
	l.specs = specs
	l.mu.Unlock()
	logger.Infof("catalog reloaded: %d instruments from %s", len(specs), filepath.Base(l.path))
}
