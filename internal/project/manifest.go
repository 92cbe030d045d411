// Package project reads the contract's Cargo manifest for the descriptive
// fields of the metadata document.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"

	"github.com/roach88/inkir/internal/metadata"
)

// ManifestFileName is the manifest looked up next to the sources.
const ManifestFileName = "Cargo.toml"

// tomlManifest is the subset of Cargo.toml that inkir reads.
type tomlManifest struct {
	Package *tomlPackage `toml:"package"`
	Lib     *tomlLib     `toml:"lib"`
}

type tomlPackage struct {
	Name        string   `toml:"name"`
	Authors     []string `toml:"authors"`
	Description string   `toml:"description"`
}

type tomlLib struct {
	Path string `toml:"path"`
}

// Manifest is a contract package's manifest.
type Manifest struct {
	Name        string
	Version     string
	Authors     []string
	Description string
	// LibPath is the crate root relative to the manifest directory.
	LibPath string
	// Dir is the directory holding the manifest.
	Dir string
}

// Load reads a manifest file. path may name the file or its directory.
func Load(path string) (*Manifest, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, ManifestFileName)
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Dir = filepath.Dir(path)
	return m, nil
}

// Parse decodes manifest text. Workspace-inherited fields such as
// `version.workspace = true` are left empty.
func Parse(buf []byte) (*Manifest, error) {
	tree, err := toml.LoadBytes(buf)
	if err != nil {
		return nil, err
	}
	tm := &tomlManifest{}
	if err := tree.Unmarshal(tm); err != nil {
		return nil, err
	}
	if tm.Package == nil {
		return nil, fmt.Errorf("missing [package] table")
	}
	if tm.Package.Name == "" {
		return nil, fmt.Errorf("missing package name")
	}
	m := &Manifest{
		Name:        tm.Package.Name,
		Authors:     tm.Package.Authors,
		Description: tm.Package.Description,
		LibPath:     filepath.Join("src", "lib.rs"),
	}
	// version is a table when inherited from the workspace.
	if v, ok := tree.Get("package.version").(string); ok {
		m.Version = v
	}
	if tm.Lib != nil && tm.Lib.Path != "" {
		m.LibPath = filepath.FromSlash(tm.Lib.Path)
	}
	return m, nil
}

// Info returns the contract-level fields of the metadata document.
func (m *Manifest) Info() metadata.ContractInfo {
	return metadata.ContractInfo{Name: m.Name, Version: m.Version, Authors: m.Authors}
}

// SourceDir is the directory holding the crate root.
func (m *Manifest) SourceDir() string {
	return filepath.Join(m.Dir, filepath.Dir(m.LibPath))
}
