// Package registry implements identedit's LanguageProvider registry and
// routing order, adapted from the teacher's internal/registry.Registry
// (providers/aliases/extensions maps, LoadPlugin/LoadPluginsFromDir,
// DefaultRegistry singleton) to the routing policy spec.md 4.2 requires:
// dynamic grammar by extension, then bundled by basename alias, then
// bundled by extension, then the line-fallback provider.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"plugin"
	"strings"
	"sync"

	"github.com/oxhq/identedit/internal/provider"
)

// Registry holds bundled providers plus any dynamic providers loaded from
// an installed-grammar manifest. Dynamic providers take precedence over
// bundled ones on extension collision (spec.md 4.2, 9).
type Registry struct {
	mu sync.RWMutex

	bundled      map[string]provider.LanguageProvider // canonical name -> provider
	bundledAlias map[string]string                     // basename alias -> canonical name
	bundledExt   map[string]string                     // extension -> canonical name

	dynamic    map[string]provider.LanguageProvider // canonical name -> provider
	dynamicExt map[string]string                     // extension -> canonical name

	fallback provider.LanguageProvider
}

// New creates an empty registry. Callers register bundled providers and a
// fallback explicitly; nothing is wired in automatically.
func New() *Registry {
	return &Registry{
		bundled:      make(map[string]provider.LanguageProvider),
		bundledAlias: make(map[string]string),
		bundledExt:   make(map[string]string),
		dynamic:      make(map[string]provider.LanguageProvider),
		dynamicExt:   make(map[string]string),
	}
}

// RegisterBundled adds a built-in provider.
func (r *Registry) RegisterBundled(p provider.LanguageProvider) error {
	if p == nil {
		return fmt.Errorf("provider cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if name == "" {
		return fmt.Errorf("provider must have a non-empty name")
	}
	r.bundled[name] = p
	for _, alias := range p.Aliases() {
		if alias != "" {
			r.bundledAlias[alias] = name
		}
	}
	for _, ext := range normalizeExts(p.Extensions()) {
		r.bundledExt[ext] = name
	}
	return nil
}

// SetFallback installs the provider used when nothing else matches.
func (r *Registry) SetFallback(p provider.LanguageProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = p
}

// RegisterDynamic adds a provider loaded from the grammar manifest. It is
// consulted before bundled providers for its claimed extensions.
func (r *Registry) RegisterDynamic(p provider.LanguageProvider) error {
	if p == nil {
		return fmt.Errorf("provider cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if name == "" {
		return fmt.Errorf("provider must have a non-empty name")
	}
	r.dynamic[name] = p
	for _, ext := range normalizeExts(p.Extensions()) {
		r.dynamicExt[ext] = name
	}
	return nil
}

// ForFile resolves the provider for filename per the routing order:
// (a) dynamic by extension, (b) bundled by basename alias, (c) bundled by
// extension, (d) fallback. Never errors: the fallback is always available
// once set, matching spec.md's "unknown extensions fall through" rule.
func (r *Registry) ForFile(filename string) provider.LanguageProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	base := filepath.Base(filename)
	ext := strings.ToLower(filepath.Ext(filename))

	if ext != "" {
		if name, ok := r.dynamicExt[ext]; ok {
			if p, ok := r.dynamic[name]; ok {
				return p
			}
		}
	}
	if name, ok := r.bundledAlias[base]; ok {
		if p, ok := r.bundled[name]; ok {
			return p
		}
	}
	if ext != "" {
		if name, ok := r.bundledExt[ext]; ok {
			if p, ok := r.bundled[name]; ok {
				return p
			}
		}
	}
	return r.fallback
}

func normalizeExts(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		if e == "" {
			continue
		}
		if e[0] != '.' {
			e = "." + e
		}
		out = append(out, strings.ToLower(e))
	}
	return out
}

// LoadPlugin dynamically loads a provider from a .so file, grounded on the
// teacher's LoadPlugin: the plugin must export a symbol named "Provider"
// implementing provider.LanguageProvider.
func (r *Registry) LoadPlugin(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("plugin file does not exist: %s", path)
	}
	plug, err := plugin.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open plugin %s: %w", path, err)
	}
	sym, err := plug.Lookup("Provider")
	if err != nil {
		return fmt.Errorf("plugin %s missing 'Provider' symbol: %w", path, err)
	}
	p, ok := sym.(provider.LanguageProvider)
	if !ok {
		return fmt.Errorf("plugin %s 'Provider' symbol is not a LanguageProvider", path)
	}
	return r.RegisterDynamic(p)
}

// LoadPluginsFromDir scans dir for .so/.dll/.dylib files and loads each as
// a dynamic provider, tolerating per-entry failures (grounded on the
// teacher's LoadPluginsFromDir). internal/manifest does not use it: it
// calls LoadPlugin once per manifest entry.
func (r *Registry) LoadPluginsFromDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read plugin directory %s: %w", dir, err)
	}
	var errs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if isPluginFile(entry.Name()) {
			if err := r.LoadPlugin(filepath.Join(dir, entry.Name())); err != nil {
				errs = append(errs, fmt.Sprintf("%s: %v", entry.Name(), err))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to load some plugins:\n%s", strings.Join(errs, "\n"))
	}
	return nil
}

func isPluginFile(name string) bool {
	return strings.HasSuffix(name, ".so") ||
		strings.HasSuffix(name, ".dll") ||
		strings.HasSuffix(name, ".dylib")
}
