package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/inkir/internal/compiler"
	"github.com/roach88/inkir/internal/config"
	"github.com/roach88/inkir/internal/cuefront"
	"github.com/roach88/inkir/internal/ir"
	"github.com/roach88/inkir/internal/metadata"
	"github.com/roach88/inkir/internal/project"
	"github.com/roach88/inkir/internal/rustfront"
	"github.com/roach88/inkir/internal/source"
	"github.com/roach88/inkir/internal/typereg"
)

// Error code constants - unified across all CLI commands. Build failures
// carry the compiler's own E2xx codes.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNoSources   = "E002" // No declaration files found
	ErrCodeConfig      = "E003" // Config or manifest invalid
	ErrCodeParseFailed = "E004" // Frontend could not read a source
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // Metadata could not be derived
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeStoreFailed = "E008" // Metadata archive error
)

// BuildFlags are the flags shared by commands that build a contract.
type BuildFlags struct {
	Config   string
	Frontend string
	Hash     string
	Manifest string
	Workers  int
}

func (f *BuildFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Config, "config", "c", config.FileName, "project config file")
	cmd.Flags().StringVar(&f.Frontend, "frontend", "", "declaration frontend (auto|rust|cue)")
	cmd.Flags().StringVar(&f.Hash, "hash", "", "selector digest (blake2b|keccak256)")
	cmd.Flags().StringVar(&f.Manifest, "manifest", "", "Cargo.toml supplying contract name, version and authors")
	cmd.Flags().IntVar(&f.Workers, "workers", 0, "parallel conversions (0 = config or GOMAXPROCS)")
}

// config loads the project config and applies flag overrides.
func (f *BuildFlags) config() (*config.Config, error) {
	cfg, err := config.Load(f.Config)
	if err != nil {
		return nil, err
	}
	if f.Frontend != "" {
		cfg.Frontend = f.Frontend
	}
	if f.Hash != "" {
		cfg.SelectorHash = f.Hash
	}
	if f.Manifest != "" {
		cfg.Manifest = f.Manifest
	}
	if f.Workers > 0 {
		cfg.Workers = f.Workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadResult is an assembled contract together with its inputs.
type LoadResult struct {
	Config   *config.Config
	Sources  *source.Set
	Contract *ir.Contract
	// Manifest is nil when no Cargo.toml was configured.
	Manifest *project.Manifest
}

// LoadError represents a command-level failure before or around the build.
type LoadError struct {
	Code    string
	Message string
	Pos     string
}

func (e *LoadError) Error() string {
	if e.Pos != "" {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadContract resolves config, reads the sources named by args (or the
// configured ones) and assembles the contract. Build errors are returned
// one per offending declaration.
func LoadContract(ctx context.Context, flags *BuildFlags, args []string) (*LoadResult, []error) {
	cfg, err := flags.config()
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeConfig, Message: err.Error()}}
	}
	res := &LoadResult{Config: cfg}

	if cfg.Manifest != "" {
		m, err := project.Load(cfg.Manifest)
		if err != nil {
			return nil, []error{&LoadError{Code: ErrCodeConfig, Message: fmt.Sprintf("reading manifest: %v", err)}}
		}
		res.Manifest = m
	}

	paths := args
	if len(paths) == 0 {
		paths = cfg.Sources
		if res.Manifest != nil {
			paths = []string{res.Manifest.SourceDir()}
		}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("source not found: %s", p)}}
		}
	}

	set, err := source.Load(ctx, paths, cfg.Frontend)
	if err != nil {
		return nil, []error{convertLoadError(err)}
	}
	res.Sources = set

	c, err := compiler.Build(set.Files, cfg.CompilerOptions())
	if err != nil {
		var diags compiler.Diagnostics
		if errors.As(err, &diags) {
			errs := make([]error, len(diags))
			for i, d := range diags {
				errs[i] = d
			}
			return res, errs
		}
		return res, []error{err}
	}
	res.Contract = c
	return res, nil
}

// Document derives the metadata document of a loaded contract.
func (r *LoadResult) Document() (*metadata.Document, error) {
	spec, err := metadata.Build(r.Contract, r.Config.MetadataOptions())
	if err != nil {
		return nil, err
	}
	info := metadata.ContractInfo{Name: r.Contract.Name}
	if r.Manifest != nil {
		info = r.Manifest.Info()
	}
	return metadata.NewDocument(spec, info, r.Sources.Hash), nil
}

func convertLoadError(err error) *LoadError {
	var (
		rustErr *rustfront.ParseError
		cueErr  *cuefront.Error
	)
	switch {
	case errors.Is(err, source.ErrNoSources):
		return &LoadError{Code: ErrCodeNoSources, Message: err.Error()}
	case errors.As(err, &rustErr):
		return &LoadError{Code: ErrCodeParseFailed, Message: rustErr.Message, Pos: rustErr.Pos.String()}
	case errors.As(err, &cueErr):
		le := &LoadError{Code: ErrCodeParseFailed, Message: cueErr.Message}
		if cueErr.Pos.IsValid() {
			le.Pos = fmt.Sprintf("%s:%d:%d", cueErr.Pos.Filename(), cueErr.Pos.Line(), cueErr.Pos.Column())
		}
		return le
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
}

// toCLIError maps any build or load error to its code, message and position.
func toCLIError(err error) CLIError {
	var (
		loadErr     *LoadError
		compileErr  *compiler.CompileError
		collision   *compiler.CollisionError
		unsupported *typereg.UnsupportedTypeError
	)
	switch {
	case errors.As(err, &loadErr):
		return CLIError{Code: loadErr.Code, Message: loadErr.Message, Pos: loadErr.Pos}
	case errors.As(err, &compileErr):
		e := CLIError{Code: compileErr.Code(), Message: compileErr.Message}
		if compileErr.Pos.IsValid() {
			e.Pos = compileErr.Pos.String()
		}
		if compileErr.Item != "" {
			e.Message = compileErr.Item + ": " + e.Message
		}
		return e
	case errors.As(err, &collision):
		return CLIError{Code: collision.Code(), Message: collision.Error()}
	case errors.As(err, &unsupported):
		return CLIError{Code: ErrCodeBuildFailed, Message: unsupported.Error()}
	}
	return CLIError{Code: ErrCodeGeneric, Message: err.Error()}
}

// outputBuildErrors reports load or build errors. Both are command errors
// (exit code 2).
func outputBuildErrors(formatter *OutputFormatter, errs []error) error {
	cliErrs := make([]CLIError, len(errs))
	for i, err := range errs {
		cliErrs[i] = toCLIError(err)
	}
	if len(errs) == 1 {
		var loadErr *LoadError
		if errors.As(errs[0], &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
			return NewExitError(ExitCommandError, loadErr.Error())
		}
	}
	if err := formatter.Errors("Build failed", cliErrs); err != nil {
		return err
	}
	return NewExitError(ExitCommandError, fmt.Sprintf("build failed with %d error(s)", len(errs)))
}
