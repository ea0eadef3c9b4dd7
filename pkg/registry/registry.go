package registry

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/arthur-debert/hostsub/pkg/atomicfile"
	"github.com/arthur-debert/hostsub/pkg/errors"
	"github.com/arthur-debert/hostsub/pkg/logging"
	"github.com/arthur-debert/hostsub/pkg/types"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/v2"
	gotoml "github.com/pelletier/go-toml/v2"
)

const subscriptionsKey = "subscriptions"

// Registry is the set of subscribed URLs, in subscription order.
type Registry interface {
	// List returns the subscribed URLs
	List() []string

	// Add records url and reports whether it was new
	Add(url string) bool

	// Remove forgets url and reports whether it was present
	Remove(url string) bool

	// Contains checks if url is subscribed
	Contains(url string) bool

	// Count returns the number of subscriptions
	Count() int

	// Persist writes the current set to durable storage
	Persist() error

	// Reload replaces the in-memory set with what is on disk
	Reload() error
}

// document is the on-disk shape of the registry file.
type document struct {
	Subscriptions []string `toml:"subscriptions"`
}

// fileRegistry is a thread-safe Registry backed by a TOML file.
type fileRegistry struct {
	mu    sync.RWMutex
	fs    types.FS
	path  string
	urls  []string
	index map[string]struct{}
}

// Load reads the registry at path. A missing file is an empty registry.
func Load(fsys types.FS, path string) (Registry, error) {
	r := &fileRegistry{
		fs:    fsys,
		path:  path,
		index: make(map[string]struct{}),
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// NewMemory returns an empty registry that persists to path on fsys.
func NewMemory(fsys types.FS, path string) Registry {
	return &fileRegistry{fs: fsys, path: path, index: make(map[string]struct{})}
}

func (r *fileRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.urls))
	copy(out, r.urls)
	return out
}

func (r *fileRegistry) Add(url string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.add(url)
}

func (r *fileRegistry) add(url string) bool {
	if url == "" {
		return false
	}
	if _, exists := r.index[url]; exists {
		return false
	}
	r.index[url] = struct{}{}
	r.urls = append(r.urls, url)
	return true
}

func (r *fileRegistry) Remove(url string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[url]; !exists {
		return false
	}
	delete(r.index, url)
	for i, u := range r.urls {
		if u == url {
			r.urls = append(r.urls[:i], r.urls[i+1:]...)
			break
		}
	}
	return true
}

func (r *fileRegistry) Contains(url string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.index[url]
	return exists
}

func (r *fileRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.urls)
}

// Reload rereads the registry file. Unpersisted changes are dropped, and a
// missing file empties the registry.
func (r *fileRegistry) Reload() error {
	urls, err := r.read()
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.urls = nil
	r.index = make(map[string]struct{}, len(urls))
	for _, url := range urls {
		r.add(url)
	}
	count := len(r.urls)
	r.mu.Unlock()

	logger := logging.GetLogger("registry")
	logger.Debug().
		Str("path", r.path).
		Int("count", count).
		Msg("Registry loaded")
	return nil
}

func (r *fileRegistry) read() ([]string, error) {
	data, err := r.fs.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to read registry %s", r.path)
	}

	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: data}, toml.Parser()); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse registry %s", r.path)
	}
	return k.Strings(subscriptionsKey), nil
}

// Persist replaces the registry file atomically.
func (r *fileRegistry) Persist() error {
	r.mu.RLock()
	doc := document{Subscriptions: make([]string, len(r.urls))}
	copy(doc.Subscriptions, r.urls)
	r.mu.RUnlock()

	data, err := gotoml.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, errors.ErrRegistryPersist, "failed to encode registry")
	}

	dir := filepath.Dir(r.path)
	if err := r.fs.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrRegistryPersist, "failed to create registry directory %s", dir)
	}
	if err := atomicfile.New(r.fs).Write(r.path, data); err != nil {
		return errors.Wrapf(err, errors.ErrRegistryPersist, "failed to write registry %s", r.path)
	}

	logger := logging.GetLogger("registry")
	logger.Debug().
		Str("path", r.path).
		Int("count", len(doc.Subscriptions)).
		Msg("Registry persisted")
	return nil
}

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (p *rawBytesProvider) ReadBytes() ([]byte, error) { return p.bytes, nil }
func (p *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New(errors.ErrInternal, "not implemented")
}
