package harness

import (
	"context"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/inkir/internal/ir"
	"github.com/roach88/inkir/internal/metadata"
)

// MetadataSnapshot captures the metadata produced by a scenario.
// Source identity is left out so that reformatting a fixture does not
// invalidate its snapshot.
type MetadataSnapshot struct {
	ScenarioName string                 `json:"scenario_name"`
	Contract     string                 `json:"contract"`
	Spec         *metadata.ContractSpec `json:"spec"`
}

// Snapshot renders result as canonical JSON for golden comparison.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	if result.Document == nil || result.Contract == nil {
		return nil, fmt.Errorf("scenario %s produced no metadata", scenarioName)
	}
	return ir.MarshalCanonical(MetadataSnapshot{
		ScenarioName: scenarioName,
		Contract:     result.Contract.Name,
		Spec:         result.Document.Spec,
	})
}

// RunWithGolden executes a scenario and compares its metadata against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Test failure (via goldie)
// occurs if the metadata doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	if !result.Pass {
		return result, nil
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an already computed result against its golden
// file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
