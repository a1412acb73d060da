// Package grammarinstall backs the `grammar install` verb: build the
// grammar's shared library, validate it exports the expected plugin
// symbol, and only then write the manifest (spec.md 6). On any failure it
// leaves no artifacts. Grounded on the teacher's
// internal/registry.Registry.LoadPlugin (plugin.Open + symbol Lookup),
// run here as a pre-flight check before the manifest is ever touched.
package grammarinstall

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"plugin"

	"github.com/oxhq/identedit/internal/apperr"
	"github.com/oxhq/identedit/internal/manifest"
)

// Request configures one grammar install invocation.
type Request struct {
	Lang   string
	Repo   string // source repo path; optional
	Symbol string // plugin symbol to validate; default "Provider"
	Ext    string // required when Repo is empty
}

const defaultSymbol = "Provider"

// Install builds lang's grammar plugin, validates its exported symbol,
// and writes it into home's manifest. No partial state is left if any
// step fails.
func Install(home string, req Request) error {
	if req.Repo == "" && req.Ext == "" {
		return apperr.New(apperr.InvalidRequest, "--ext is required when --repo is not given")
	}
	symbol := req.Symbol
	if symbol == "" {
		symbol = defaultSymbol
	}

	buildDir, err := os.MkdirTemp("", "identedit-grammar-*")
	if err != nil {
		return apperr.Wrap(apperr.GrammarInstallFailed, "preparing build directory", err)
	}
	defer os.RemoveAll(buildDir)

	libPath := filepath.Join(buildDir, req.Lang+".so")
	if err := build(req, libPath); err != nil {
		return apperr.Wrap(apperr.GrammarInstallFailed, "building grammar plugin", err)
	}

	if err := validateSymbol(libPath, symbol); err != nil {
		return apperr.Wrap(apperr.GrammarInstallFailed, "validating plugin symbol", err)
	}

	ext := req.Ext
	if ext == "" {
		ext = "." + req.Lang
	}

	finalDir := filepath.Join(home, "grammars", req.Lang)
	if err := os.MkdirAll(finalDir, 0o755); err != nil {
		return apperr.Wrap(apperr.GrammarInstallFailed, "installing plugin", err)
	}
	finalPath := filepath.Join(finalDir, req.Lang+".so")
	if err := copyFile(libPath, finalPath); err != nil {
		return apperr.Wrap(apperr.GrammarInstallFailed, "installing plugin", err)
	}

	m := manifest.Load(home)
	m.Entries = append(m.Entries, manifest.Entry{
		Lang:       req.Lang,
		LibPath:    finalPath,
		Extensions: []string{ext},
		Symbol:     symbol,
	})
	if err := manifest.Save(home, m); err != nil {
		os.Remove(finalPath)
		return apperr.Wrap(apperr.GrammarInstallFailed, "writing manifest", err)
	}
	return nil
}

// build compiles req's grammar source into a Go plugin at libPath by
// running `go build -buildmode=plugin` in the Repo checkout. When Repo is
// empty there is nothing to build: build returns an error, so Install
// fails with grammar_install_failed. No prebuilt plugin is looked up.
func build(req Request, libPath string) error {
	if req.Repo == "" {
		return fmt.Errorf("no --repo given and no prebuilt plugin found at %s", libPath)
	}
	cmd := exec.Command("go", "build", "-buildmode=plugin", "-o", libPath, ".")
	cmd.Dir = req.Repo
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, out)
	}
	return nil
}

func validateSymbol(libPath, symbol string) error {
	plug, err := plugin.Open(libPath)
	if err != nil {
		return err
	}
	_, err = plug.Lookup(symbol)
	return err
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o755)
}
