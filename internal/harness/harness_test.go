package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func TestRun_AllScenariosPass(t *testing.T) {
	scenarios, err := LoadScenarios(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			result, err := Run(context.Background(), s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRun_SuccessPopulatesResult(t *testing.T) {
	result, err := Run(context.Background(), loadTestScenario(t, "flipper"))
	require.NoError(t, err)

	require.NotNil(t, result.Contract)
	require.NotNil(t, result.Document)
	assert.Equal(t, "flipper", result.Contract.Name)
	assert.Equal(t, "flipper", result.Document.Contract.Name)
	assert.Len(t, result.Document.Source.Hash, 64)
	assert.Empty(t, result.BuildError)
}

func TestRun_ErrorRecordsBuildError(t *testing.T) {
	result, err := Run(context.Background(), loadTestScenario(t, "clash"))
	require.NoError(t, err)

	assert.True(t, result.Pass)
	assert.Nil(t, result.Document)
	assert.Contains(t, result.BuildError, "SelectorCollision")
}

func TestRun_UnexpectedFailure(t *testing.T) {
	s := loadTestScenario(t, "clash")
	s.Expect = Expect{Status: StatusOK}

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected build to succeed")
}

func TestRun_UnexpectedSuccess(t *testing.T) {
	s := loadTestScenario(t, "counter")
	s.Expect = Expect{Status: StatusError, Kind: "SelectorCollision"}
	s.Assertions = nil

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "build succeeded")
}

func TestRun_WrongErrorKind(t *testing.T) {
	s := loadTestScenario(t, "nostorage")
	s.Expect.Reason = "MultipleStorage"

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Expected: InvariantViolation/InvalidModule(MultipleStorage)")
	assert.Contains(t, result.Errors[0], "InvariantViolation/InvalidModule(NoStorage)")
}

func TestRun_ErrorMessageMismatch(t *testing.T) {
	s := loadTestScenario(t, "clash")
	s.Expect.Contains = "0xdeadbeef"

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], `error containing "0xdeadbeef"`)
}

func TestRun_FailingAssertion(t *testing.T) {
	s := loadTestScenario(t, "counter")
	s.Golden = false
	s.Assertions = []Assertion{{Type: AssertSelector, Item: "get", Selector: "0x00000001"}}

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "assertions[0]")
	assert.Contains(t, result.Errors[0], "selector 0x1e930209")
	assert.Contains(t, result.Errors[0], "message inc 0xcbf8f235")
}

func TestRun_MissingSourceIsExecutionError(t *testing.T) {
	s := loadTestScenario(t, "counter")
	s.Sources = []string{filepath.Join(t.TempDir(), "gone")}

	_, err := Run(context.Background(), s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load sources")
}
