// Package source locates contract declarations on disk and reads them with
// the matching frontend.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/inkir/internal/config"
	"github.com/roach88/inkir/internal/cuefront"
	"github.com/roach88/inkir/internal/ir"
	"github.com/roach88/inkir/internal/rustfront"
	"github.com/roach88/inkir/internal/syntax"
)

// ErrNoSources is returned when a path holds no declaration files.
var ErrNoSources = errors.New("no contract sources found")

// Set is a loaded group of declaration files.
type Set struct {
	// Frontend is the resolved frontend, rust or cue.
	Frontend string
	// Paths are the files read, in load order.
	Paths []string
	Files []*syntax.File
	// Hash is ir.SourceHash over the raw bytes of Paths.
	Hash string
}

// Load reads every path with frontend. With config.FrontendAuto each path
// is classified by extension, or for directories by the files it holds;
// all paths must agree.
func Load(ctx context.Context, paths []string, frontend string) (*Set, error) {
	if len(paths) == 0 {
		return nil, ErrNoSources
	}

	resolved := frontend
	if frontend == "" || frontend == config.FrontendAuto {
		var err error
		if resolved, err = detectAll(paths); err != nil {
			return nil, err
		}
	}

	set := &Set{Frontend: resolved}
	var err error
	switch resolved {
	case config.FrontendRust:
		err = set.loadRust(ctx, paths)
	case config.FrontendCUE:
		err = set.loadCUE(paths)
	default:
		return nil, fmt.Errorf("unknown frontend %q", frontend)
	}
	if err != nil {
		return nil, err
	}

	sources := make([][]byte, len(set.Paths))
	for i, p := range set.Paths {
		if sources[i], err = os.ReadFile(p); err != nil {
			return nil, err
		}
	}
	set.Hash = ir.SourceHash(sources...)
	return set, nil
}

func detectAll(paths []string) (string, error) {
	var found string
	for _, p := range paths {
		fe, err := Detect(p)
		if err != nil {
			return "", err
		}
		if found != "" && fe != found {
			return "", fmt.Errorf("%s: mixed frontends: %s and %s", p, found, fe)
		}
		found = fe
	}
	return found, nil
}

// Detect classifies path. A directory holding .rs files is rust even if it
// also holds .cue files.
func Detect(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		switch filepath.Ext(path) {
		case ".rs":
			return config.FrontendRust, nil
		case ".cue":
			return config.FrontendCUE, nil
		}
		return "", fmt.Errorf("%s: unrecognised source file", path)
	}

	rs, err := rustfront.FindSources(path)
	if err != nil {
		return "", err
	}
	if len(rs) > 0 {
		return config.FrontendRust, nil
	}
	cues, err := cuefront.FindFiles(path)
	if err != nil {
		return "", err
	}
	if len(cues) > 0 {
		return config.FrontendCUE, nil
	}
	return "", fmt.Errorf("%s: %w", path, ErrNoSources)
}

func (s *Set) loadRust(ctx context.Context, paths []string) error {
	seen := map[string]bool{}
	for _, p := range paths {
		files := []string{p}
		if info, err := os.Stat(p); err != nil {
			return err
		} else if info.IsDir() {
			if files, err = rustfront.FindSources(p); err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("%s: %w", p, ErrNoSources)
			}
		}
		for _, f := range files {
			if !seen[f] {
				seen[f] = true
				s.Paths = append(s.Paths, f)
			}
		}
	}

	files, err := rustfront.ParseFiles(ctx, s.Paths)
	if err != nil {
		return err
	}
	s.Files = files
	return nil
}

// loadCUE unifies each directory into one file; single files load alone.
func (s *Set) loadCUE(paths []string) error {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return err
		}
		if info.IsDir() {
			cues, err := cuefront.FindFiles(p)
			if err != nil {
				return err
			}
			f, err := cuefront.Load(p)
			if err != nil {
				return err
			}
			s.Paths = append(s.Paths, cues...)
			s.Files = append(s.Files, f)
			continue
		}

		src, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		f, err := cuefront.LoadString(p, string(src))
		if err != nil {
			return err
		}
		s.Paths = append(s.Paths, p)
		s.Files = append(s.Files, f)
	}
	return nil
}
