package metadata

import (
	"fmt"

	"github.com/roach88/inkir/internal/ir"
)

// Document is the published metadata file: the ContractSpec plus source
// identity and the contract-level fields supplied by the project manifest.
type Document struct {
	Version  string        `json:"version"`
	Source   Source        `json:"source"`
	Contract ContractInfo  `json:"contract"`
	Spec     *ContractSpec `json:"spec"`
}

// Source identifies the input and the toolchain that produced the spec.
type Source struct {
	Hash      string `json:"hash"`
	Compiler  string `json:"compiler"`
	IRVersion string `json:"ir_version"`
}

// ContractInfo holds descriptive fields that are not derived from the IR.
type ContractInfo struct {
	Name    string   `json:"name"`
	Version string   `json:"version,omitempty"`
	Authors []string `json:"authors,omitempty"`
}

// NewDocument wraps spec. sourceHash is usually ir.SourceHash over the
// contract sources.
func NewDocument(spec *ContractSpec, info ContractInfo, sourceHash string) *Document {
	return &Document{
		Version: ir.MetadataVersion,
		Source: Source{
			Hash:      sourceHash,
			Compiler:  "inkir " + ir.CompilerVersion,
			IRVersion: ir.IRVersion,
		},
		Contract: info,
		Spec:     spec,
	}
}

// Marshal renders the document as canonical JSON. The output is
// byte-identical for identical input.
func (d *Document) Marshal() ([]byte, error) {
	if d.Spec == nil {
		return nil, fmt.Errorf("metadata document for %q has no spec", d.Contract.Name)
	}
	return ir.MarshalCanonical(d)
}

// Hash is the content hash of the spec alone. Source and contract fields do
// not change it.
func (d *Document) Hash() (string, error) {
	if d.Spec == nil {
		return "", fmt.Errorf("metadata document for %q has no spec", d.Contract.Name)
	}
	return ir.MetadataHash(d.Spec)
}
