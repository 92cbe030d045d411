// Package harness runs conformance scenarios against the IR and metadata
// builders.
//
// A scenario names declaration sources, the options to build them with,
// and what the build must produce: either a contract whose metadata
// satisfies a list of assertions, or a specific error.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: flipper
//	description: "Flipper builds with computed selectors"
//	sources:
//	  - contracts/flipper        # relative to the scenario file
//	frontend: auto               # auto | rust | cue
//	options:
//	  selector_hash: blake2b
//	  max_event_topics: 4
//	  type_aliases: {Balance: u64}
//	expect:
//	  status: ok                 # ok | error
//	assertions:
//	  - type: selector
//	    item: flip
//	    selector: "0x0c970199"
//	  - type: count
//	    of: messages
//	    count: 2
//
// An error scenario names the expected error instead:
//
//	expect:
//	  status: error
//	  kind: InvariantViolation
//	  failure: InvalidContract
//	  reason: NoStorage
//	  contains: "no #[ink(storage)]"
//
// # Assertion Types
//
//   - selector: a constructor or message has the given selector
//   - count: the number of constructors, messages, events, types or tests
//   - flag: payable, mutates or anonymous is set (or not) on an item
//   - topics: an event has exactly N indexed fields
//   - type: the registry holds a primitive or a type with the given path
//
// # Deterministic Testing
//
// Builds are pure functions of their sources and options, so the metadata
// of a passing scenario can be compared against a golden snapshot:
//
//	go test ./internal/harness -update
package harness
