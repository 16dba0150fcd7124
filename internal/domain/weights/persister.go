package weights

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/impact/pkg/fileutil"
)

// Persister loads and saves a flat category to weight mapping.
type Persister interface {
	// Load returns the stored mapping, or an error wrapping fs.ErrNotExist
	// when nothing was stored yet.
	Load(ctx context.Context) (map[string]float64, error)
	Save(ctx context.Context, table map[string]float64) error
}

// FilePersister stores weights as a flat JSON document.
type FilePersister struct {
	path string
}

// NewFilePersister creates a persister for path.
func NewFilePersister(path string) *FilePersister {
	return &FilePersister{path: path}
}

// Path returns the document location.
func (p *FilePersister) Path() string { return p.path }

// Load implements Persister.
func (p *FilePersister) Load(_ context.Context) (map[string]float64, error) {
	if _, err := os.Stat(p.path); err != nil {
		return nil, fmt.Errorf("stat weights %s: %w", p.path, err)
	}

	// The delimiter never appears in category names, so keys stay flat.
	k := koanf.New("/")
	if err := k.Load(file.Provider(p.path), json.Parser()); err != nil {
		return nil, fmt.Errorf("parse weights %s: %w", p.path, err)
	}

	out := make(map[string]float64, len(k.Keys()))
	for _, key := range k.Keys() {
		v, ok := k.Get(key).(float64)
		if !ok {
			return nil, fmt.Errorf("weights %s: %q is not a number", p.path, key)
		}
		out[key] = v
	}
	return out, nil
}

// Save implements Persister. The document is replaced atomically.
func (p *FilePersister) Save(_ context.Context, table map[string]float64) error {
	values := make(map[string]any, len(table))
	for cat, w := range table {
		values[cat] = w
	}

	k := koanf.New("/")
	if err := k.Load(confmap.Provider(values, "/"), nil); err != nil {
		return fmt.Errorf("build weights document: %w", err)
	}
	data, err := k.Marshal(json.Parser())
	if err != nil {
		return fmt.Errorf("marshal weights: %w", err)
	}
	return fileutil.WriteAtomic(p.path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// MemoryPersister keeps weights in memory.
type MemoryPersister struct {
	mu     sync.Mutex
	table  map[string]float64
	saves  int
	failOn error
}

// NewMemoryPersister creates an empty in-memory persister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

// Load implements Persister.
func (m *MemoryPersister) Load(_ context.Context) (map[string]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.table == nil {
		return nil, fs.ErrNotExist
	}
	out := make(map[string]float64, len(m.table))
	for k, v := range m.table {
		out[k] = v
	}
	return out, nil
}

// Save implements Persister.
func (m *MemoryPersister) Save(_ context.Context, table map[string]float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != nil {
		return m.failOn
	}
	m.table = make(map[string]float64, len(table))
	for k, v := range table {
		m.table[k] = v
	}
	m.saves++
	return nil
}

// Saves returns how many times Save succeeded.
func (m *MemoryPersister) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// FailWith makes every later Save return err. A nil err clears the failure.
func (m *MemoryPersister) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn = err
}
