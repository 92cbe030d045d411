package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/inkir/internal/ir"
	"github.com/roach88/inkir/internal/metadata"
)

// Build is one archived build of a contract.
type Build struct {
	ID       string `json:"id"`
	Seq      int64  `json:"seq"`
	Contract string `json:"contract"`
	Version  string `json:"version,omitempty"`
	// SourceHash identifies the declaration sources.
	SourceHash string `json:"source_hash"`
	// ContractHash identifies the assembled IR.
	ContractHash string `json:"contract_hash"`
	// MetadataHash identifies the ContractSpec alone.
	MetadataHash string `json:"metadata_hash"`
	// DocumentHash keys the stored document, including source and
	// contract fields.
	DocumentHash string `json:"document_hash"`
}

// Save archives doc and records a build. contractHash is the hash of the IR
// the document was built from.
//
// Documents are written with ON CONFLICT(hash) DO NOTHING, so saving the
// same document twice stores it once and records two builds.
func (s *Store) Save(ctx context.Context, doc *metadata.Document, contractHash string) (Build, error) {
	data, err := doc.Marshal()
	if err != nil {
		return Build{}, fmt.Errorf("save: %w", err)
	}
	specHash, err := doc.Hash()
	if err != nil {
		return Build{}, fmt.Errorf("save: %w", err)
	}
	docHash, err := ir.MetadataHash(doc)
	if err != nil {
		return Build{}, fmt.Errorf("save: %w", err)
	}

	b := Build{
		ID:           s.ids.Generate(),
		Contract:     doc.Contract.Name,
		Version:      doc.Contract.Version,
		SourceHash:   doc.Source.Hash,
		ContractHash: contractHash,
		MetadataHash: specHash,
		DocumentHash: docHash,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Build{}, fmt.Errorf("save: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO documents (hash, contract, document)
		VALUES (?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`, docHash, b.Contract, string(data)); err != nil {
		return Build{}, fmt.Errorf("save document: %w", err)
	}

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM builds`).Scan(&b.Seq); err != nil {
		return Build{}, fmt.Errorf("save: next seq: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO builds
		(id, seq, contract, version, source_hash, contract_hash, metadata_hash, document_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		b.ID,
		b.Seq,
		b.Contract,
		b.Version,
		b.SourceHash,
		b.ContractHash,
		b.MetadataHash,
		b.DocumentHash,
	); err != nil {
		return Build{}, fmt.Errorf("save build: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Build{}, fmt.Errorf("save: commit: %w", err)
	}

	s.cache.Add(docHash, data)
	slog.Debug("archived metadata", "contract", b.Contract, "build", b.ID, "seq", b.Seq, "document", docHash)
	return b, nil
}
