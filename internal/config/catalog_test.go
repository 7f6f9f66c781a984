package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCatalog = `{
	"instruments": [
		{"symbol": "qbit", "name": "Qubit Dynamics", "start_price": 100},
		{"symbol": "HELIO", "name": "Helio Labs", "start_price": 42.5}
	]
}`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCatalog(t *testing.T) {
	specs, err := LoadCatalog(writeCatalog(t, validCatalog))
	require.NoError(t, err)
	require.Len(t, specs, 2)

	assert.Equal(t, "QBIT", specs[0].Symbol, "symbols are normalized to upper case")
	assert.Equal(t, "Qubit Dynamics", specs[0].DisplayName)
	assert.True(t, specs[0].StartPrice.IsPositive())
	assert.Equal(t, "HELIO", specs[1].Symbol)
}

func TestLoadCatalogRejectsInvalidFiles(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"not json", `{"instruments": [`},
		{"missing instruments", `{"other": []}`},
		{"empty instruments", `{"instruments": []}`},
		{"missing symbol", `{"instruments": [{"name": "X", "start_price": 1}]}`},
		{"empty symbol", `{"instruments": [{"symbol": "", "name": "X", "start_price": 1}]}`},
		{"missing name", `{"instruments": [{"symbol": "X", "start_price": 1}]}`},
		{"zero price", `{"instruments": [{"symbol": "X", "name": "X", "start_price": 0}]}`},
		{"negative price", `{"instruments": [{"symbol": "X", "name": "X", "start_price": -5}]}`},
		{"price not a number", `{"instruments": [{"symbol": "X", "name": "X", "start_price": "5"}]}`},
		{"duplicate symbol", `{"instruments": [
			{"symbol": "QBIT", "name": "A", "start_price": 1},
			{"symbol": "qbit", "name": "B", "start_price": 2}
		]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadCatalog(writeCatalog(t, tc.content))
			assert.Error(t, err)
		})
	}

	_, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestCatalogLoaderServesCopies(t *testing.T) {
	loader, err := NewCatalogLoader(writeCatalog(t, validCatalog))
	require.NoError(t, err)

	first := loader.Specs()
	first[0].Symbol = "MUTATED"
	assert.Equal(t, "QBIT", loader.Specs()[0].Symbol)
}

func TestCatalogLoaderRejectsBadInitialCatalog(t *testing.T) {
	_, err := NewCatalogLoader(writeCatalog(t, `{"instruments": []}`))
	assert.Error(t, err)
}

func TestCatalogLoaderHotReload(t *testing.T) {
	path := writeCatalog(t, validCatalog)
	loader, err := NewCatalogLoader(path)
	require.NoError(t, err)

	stop := make(chan struct{})
	defer close(stop)
	require.NoError(t, loader.Watch(stop))

	updated := `{"instruments": [{"symbol": "NOVA", "name": "Nova Corp", "start_price": 7.5}]}`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	assert.Eventually(t, func() bool {
		specs := loader.Specs()
		return len(specs) == 1 && specs[0].Symbol == "NOVA"
	}, 5*time.Second, 20*time.Millisecond, "a rewritten catalog takes effect")
}

func TestCatalogLoaderKeepsPreviousCatalogOnBadReload(t *testing.T) {
	path := writeCatalog(t, validCatalog)
	loader, err := NewCatalogLoader(path)
	require.NoError(t, err)

	stop := make(chan struct{})
	defer close(stop)
	require.NoError(t, loader.Watch(stop))

	require.NoError(t, os.WriteFile(path, []byte(`{"instruments": [`), 0o644))

	// The broken rewrite must never surface; give the watcher time to see it.
	time.Sleep(300 * time.Millisecond)
	specs := loader.Specs()
	require.Len(t, specs, 2)
	assert.Equal(t, "QBIT", specs[0].Symbol)
}
