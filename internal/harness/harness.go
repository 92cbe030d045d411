package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/inkir/internal/compiler"
	"github.com/roach88/inkir/internal/cuefront"
	"github.com/roach88/inkir/internal/metadata"
	"github.com/roach88/inkir/internal/rustfront"
	"github.com/roach88/inkir/internal/source"
	"github.com/roach88/inkir/internal/typereg"
)

// KindParseError classifies frontend failures, which sit outside the
// compiler's taxonomy.
const KindParseError = "ParseError"

// Run executes a test scenario and returns the result.
//
// Execution flow:
// 1. Load the scenario sources with the selected frontend
// 2. Build the contract IR and its metadata
// 3. Compare the outcome with the expect clause
// 4. Evaluate assertions against the metadata
//
// A returned error means the scenario could not be executed at all, e.g.
// a source path vanished. Build failures are reported through the result.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	result := NewResult()

	buildErr := build(ctx, scenario, result)
	var execErr *executionError
	if errors.As(buildErr, &execErr) {
		return nil, execErr.err
	}
	if buildErr != nil {
		result.BuildError = buildErr.Error()
	}

	switch scenario.Expect.Status {
	case StatusOK:
		if buildErr != nil {
			result.AddError(fmt.Sprintf("expected build to succeed, got: %v", buildErr))
			return result, nil
		}
	case StatusError:
		if buildErr == nil {
			result.AddError(fmt.Sprintf("expected %s error, build succeeded", scenario.Expect.Kind))
			return result, nil
		}
		if msg := matchError(buildErr, scenario.Expect); msg != "" {
			result.AddError(msg)
		}
		return result, nil
	}

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	slog.Debug("scenario finished", "scenario", scenario.Name, "pass", result.Pass, "errors", len(result.Errors))
	return result, nil
}

// executionError marks failures that are not build outcomes.
type executionError struct{ err error }

func (e *executionError) Error() string { return e.err.Error() }

func build(ctx context.Context, scenario *Scenario, result *Result) error {
	set, err := source.Load(ctx, scenario.Sources, scenario.Frontend)
	if err != nil {
		if isParseError(err) {
			return err
		}
		return &executionError{fmt.Errorf("failed to load sources: %w", err)}
	}

	c, err := compiler.Build(set.Files, scenario.CompilerOptions())
	if err != nil {
		return err
	}
	spec, err := metadata.Build(c, scenario.MetadataOptions())
	if err != nil {
		return err
	}

	result.Contract = c
	result.Document = metadata.NewDocument(spec, metadata.ContractInfo{Name: c.Name}, set.Hash)
	return nil
}

// classified is one entry of the error taxonomy found in a build error.
type classified struct {
	Kind    string
	Failure string
	Reason  string
}

// classify maps err to the error taxonomy. Per-item diagnostics report
// every failure they contain, in declaration order.
func classify(err error) []classified {
	var diags compiler.Diagnostics
	if errors.As(err, &diags) {
		out := make([]classified, len(diags))
		for i, d := range diags {
			out[i] = classified{string(d.Kind), string(d.Failure), string(d.Reason)}
		}
		return out
	}

	var (
		compileErr   *compiler.CompileError
		collision    *compiler.CollisionError
		unsupported  *typereg.UnsupportedTypeError
		rustParseErr *rustfront.ParseError
		cueErr       *cuefront.Error
	)
	switch {
	case errors.As(err, &compileErr):
		return []classified{{string(compileErr.Kind), string(compileErr.Failure), string(compileErr.Reason)}}
	case errors.As(err, &collision):
		return []classified{{Kind: string(compiler.SelectorCollision)}}
	case errors.As(err, &unsupported):
		return []classified{{Kind: string(compiler.UnsupportedType)}}
	case errors.As(err, &rustParseErr), errors.As(err, &cueErr):
		return []classified{{Kind: KindParseError}}
	}
	return nil
}

func isParseError(err error) bool {
	for _, c := range classify(err) {
		if c.Kind == KindParseError {
			return true
		}
	}
	return false
}

// matchError returns a failure message, or "" when err satisfies expect.
func matchError(err error, expect Expect) string {
	found := classify(err)
	matched := false
	for _, c := range found {
		if c.Kind != expect.Kind {
			continue
		}
		if expect.Failure != "" && c.Failure != expect.Failure {
			continue
		}
		if expect.Reason != "" && c.Reason != expect.Reason {
			continue
		}
		matched = true
		break
	}
	if !matched {
		var got []string
		for _, c := range found {
			got = append(got, describe(c))
		}
		if len(got) == 0 {
			got = append(got, "unclassified")
		}
		want := describe(classified{expect.Kind, expect.Failure, expect.Reason})
		return (&AssertionError{
			Type:     "expect",
			Expected: want,
			Actual:   fmt.Sprintf("%s: %v", strings.Join(got, ", "), err),
		}).Error()
	}
	if expect.Contains != "" && !strings.Contains(err.Error(), expect.Contains) {
		return (&AssertionError{
			Type:     "expect",
			Expected: fmt.Sprintf("error containing %q", expect.Contains),
			Actual:   err.Error(),
		}).Error()
	}
	return ""
}

func describe(c classified) string {
	s := c.Kind
	if c.Failure != "" {
		s += "/" + c.Failure
	}
	if c.Reason != "" {
		s += "(" + c.Reason + ")"
	}
	return s
}
