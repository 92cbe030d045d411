package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/inkir/internal/ir"
	"github.com/roach88/inkir/internal/metadata"
	"github.com/roach88/inkir/internal/selector"
	"github.com/roach88/inkir/internal/typereg"
)

func boolPtr(b bool) *bool { return &b }

// testResult builds a result around a hand-written spec.
func testResult(t *testing.T) *Result {
	t.Helper()
	u8 := metadata.TypeSpec{Type: 0, DisplayName: []string{"u8"}}

	ctor, err := metadata.NewConstructorSpec().Label("new").Selector(selector.FromUint32(1)).Payable(true).Done()
	require.NoError(t, err)
	msg, err := metadata.NewMessageSpec().Label("set").Selector(selector.FromUint32(2)).Mutates(true).Done()
	require.NoError(t, err)
	ev, err := metadata.NewEventSpec().Label("Changed").Args(
		metadata.EventParamSpec{Label: "old", Type: u8, Indexed: true},
		metadata.EventParamSpec{Label: "new", Type: u8},
	).Done()
	require.NoError(t, err)

	spec, err := metadata.NewContractSpec().
		Constructors(ctor).
		Messages(msg).
		Events(ev).
		Storage(metadata.StorageLayout{Name: "S"}).
		Types([]typereg.Entry{
			{ID: 0, Type: typereg.Def{Kind: typereg.KindPrimitive, Primitive: "u8"}},
			{ID: 1, Type: typereg.Def{Kind: typereg.KindVariant, Path: []string{"Option"}}},
		}).
		Done()
	require.NoError(t, err)

	return &Result{
		Pass:     true,
		Contract: &ir.Contract{Name: "s", Tests: []ir.Test{{Name: "works"}}},
		Document: metadata.NewDocument(spec, metadata.ContractInfo{Name: "s"}, ""),
	}
}

func TestEvaluateAssertions(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		wantErr   string
	}{
		{"constructor selector", Assertion{Type: AssertSelector, Item: "new", Selector: "0x00000001"}, ""},
		{"message selector decimal", Assertion{Type: AssertSelector, Item: "set", Selector: "2"}, ""},
		{"wrong selector", Assertion{Type: AssertSelector, Item: "set", Selector: "0x03"}, "selector 0x00000002"},
		{"unknown item", Assertion{Type: AssertSelector, Item: "get", Selector: "0x01"}, "no constructor or message"},
		{"count messages", Assertion{Type: AssertCount, Of: SectionMessages, Count: 1}, ""},
		{"count types", Assertion{Type: AssertCount, Of: SectionTypes, Count: 2}, ""},
		{"count tests", Assertion{Type: AssertCount, Of: SectionTests, Count: 1}, ""},
		{"count mismatch", Assertion{Type: AssertCount, Of: SectionEvents, Count: 3}, "1 events"},
		{"payable default want", Assertion{Type: AssertFlag, Item: "new", Flag: FlagPayable}, ""},
		{"mutates", Assertion{Type: AssertFlag, Item: "set", Flag: FlagMutates}, ""},
		{"not payable", Assertion{Type: AssertFlag, Item: "set", Flag: FlagPayable, Want: boolPtr(false)}, ""},
		{"flag mismatch", Assertion{Type: AssertFlag, Item: "set", Flag: FlagPayable}, "set payable = false"},
		{"flag on missing item", Assertion{Type: AssertFlag, Item: "new", Flag: FlagMutates}, "carries the flag"},
		{"anonymous", Assertion{Type: AssertFlag, Item: "Changed", Flag: FlagAnonymous, Want: boolPtr(false)}, ""},
		{"topics", Assertion{Type: AssertTopics, Item: "Changed", Count: 1}, ""},
		{"topics mismatch", Assertion{Type: AssertTopics, Item: "Changed", Count: 2}, "1 indexed fields"},
		{"topics missing event", Assertion{Type: AssertTopics, Item: "Gone", Count: 0}, "not found"},
		{"primitive type", Assertion{Type: AssertType, Path: "u8"}, ""},
		{"path type", Assertion{Type: AssertType, Path: "Option"}, ""},
		{"missing type", Assertion{Type: AssertType, Path: "u128"}, "registered: u8, Option"},
		{"unknown type", Assertion{Type: "trace_order"}, "unknown assertion type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(testResult(t), []Assertion{tt.assertion})
			if tt.wantErr == "" {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.wantErr)
		})
	}
}

func TestEvaluateAssertions_NoMetadata(t *testing.T) {
	errs := EvaluateAssertions(NewResult(), []Assertion{{Type: AssertCount, Of: SectionMessages}})
	assert.Equal(t, []string{"no metadata to assert against"}, errs)
	assert.Empty(t, EvaluateAssertions(NewResult(), nil))
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{
		Type:     AssertSelector,
		Expected: "get with selector 0x00000001",
		Actual:   "selector 0x00000002",
		Members:  []string{"message get 0x00000002"},
	}
	assert.Equal(t, "Assertion failed: selector\n"+
		"  Expected: get with selector 0x00000001\n"+
		"  Actual: selector 0x00000002\n"+
		"\nMembers:\n"+
		"  [1] message get 0x00000002\n", err.Error())
}
