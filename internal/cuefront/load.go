package cuefront

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/inkir/internal/syntax"
)

// Load builds the CUE package in dir and decodes its declarations. All
// .cue files in the directory are unified into one value, so the result is
// a single syntax file named after dir.
func Load(dir string) (*syntax.File, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("error accessing declarations directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}
	files, err := FindFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("error scanning directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CUE files found in %s", dir)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err, dir)
	}
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err, dir)
	}
	return Decode(value, dir)
}

// LoadString compiles src as a CUE file called name and decodes it.
func LoadString(name, src string) (*syntax.File, error) {
	ctx := cuecontext.New()
	value := ctx.CompileString(src, cue.Filename(name))
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err, name)
	}
	return Decode(value, name)
}

// FindFiles returns the .cue files directly in dir in lexical order.
func FindFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".cue" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
