// Package manifest implements identedit's Grammar Manifest Loader
// (spec.md 4.12): on startup, locate IDENTEDIT_HOME/grammars/manifest.json,
// ignore it if malformed, and silently skip entries whose library path
// does not exist. Grounded on the teacher's
// internal/registry.Registry.LoadPluginsFromDir (directory scan tolerant
// of per-entry failure).
package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/oxhq/identedit/internal/registry"
)

// Entry is one installed-grammar record in manifest.json.
type Entry struct {
	Lang       string   `json:"lang"`
	LibPath    string   `json:"lib_path"`
	Extensions []string `json:"extensions"`
	Symbol     string   `json:"symbol"`
}

// Manifest is the on-disk grammar manifest document.
type Manifest struct {
	Entries []Entry `json:"entries"`
}

// Home returns IDENTEDIT_HOME, defaulting to $HOME/.identedit.
func Home() string {
	if v := os.Getenv("IDENTEDIT_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".identedit"
	}
	return filepath.Join(home, ".identedit")
}

// Path returns the manifest.json path under home.
func Path(home string) string {
	return filepath.Join(home, "grammars", "manifest.json")
}

// Load reads and parses the manifest at home's conventional path. A
// missing or malformed manifest is not an error: it returns an empty
// Manifest so bundled providers keep working (spec.md 4.12, 9).
func Load(home string) Manifest {
	data, err := os.ReadFile(Path(home))
	if err != nil {
		return Manifest{}
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}
	}
	return m
}

// ApplyTo loads each manifest entry whose library path exists as a
// dynamic plugin in reg, silently skipping entries whose library is
// missing (spec.md 4.2: "manifest entries whose library path does not
// exist are silently ignored").
func ApplyTo(home string, reg *registry.Registry) {
	m := Load(home)
	for _, e := range m.Entries {
		if e.LibPath == "" {
			continue
		}
		if _, err := os.Stat(e.LibPath); err != nil {
			continue
		}
		_ = reg.LoadPlugin(e.LibPath)
	}
}

// Save writes m to home's conventional manifest path, creating the
// grammars directory if needed.
func Save(home string, m Manifest) error {
	path := Path(home)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
