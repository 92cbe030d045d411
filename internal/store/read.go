package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const buildColumns = `id, seq, contract, version, source_hash, contract_hash, metadata_hash, document_hash`

// Document returns the canonical JSON of the document with the given hash.
// Reads are served from the cache when possible.
func (s *Store) Document(ctx context.Context, hash string) ([]byte, error) {
	if data, ok := s.cache.Get(hash); ok {
		return data, nil
	}

	var text string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM documents WHERE hash = ?`, hash).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", hash, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	data := []byte(text)
	s.cache.Add(hash, data)
	return data, nil
}

// Build returns the build with the given id.
func (s *Store) Build(ctx context.Context, id string) (Build, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+buildColumns+` FROM builds WHERE id = ?`, id)
	b, err := scanBuild(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Build{}, fmt.Errorf("build %s: %w", id, ErrNotFound)
	}
	return b, err
}

// History returns builds newest first: ORDER BY seq DESC, id ASC COLLATE BINARY.
// An empty contract matches every contract. limit <= 0 means no limit.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) History(ctx context.Context, contract string, limit int) ([]Build, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+buildColumns+`
		FROM builds
		WHERE ? = '' OR contract = ?
		ORDER BY seq DESC, id COLLATE BINARY ASC
		LIMIT ?
	`, contract, contract, limit)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	builds := []Build{}
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		builds = append(builds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate builds: %w", err)
	}
	return builds, nil
}

// Latest returns the newest build of contract.
func (s *Store) Latest(ctx context.Context, contract string) (Build, error) {
	builds, err := s.History(ctx, contract, 1)
	if err != nil {
		return Build{}, err
	}
	if len(builds) == 0 {
		return Build{}, fmt.Errorf("contract %q: %w", contract, ErrNotFound)
	}
	return builds[0], nil
}

// Lookup returns every build whose spec hash is metadataHash, oldest first.
func (s *Store) Lookup(ctx context.Context, metadataHash string) ([]Build, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+buildColumns+`
		FROM builds
		WHERE metadata_hash = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, metadataHash)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	builds := []Build{}
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		builds = append(builds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate builds: %w", err)
	}
	return builds, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBuild(row scanner) (Build, error) {
	var b Build
	err := row.Scan(
		&b.ID,
		&b.Seq,
		&b.Contract,
		&b.Version,
		&b.SourceHash,
		&b.ContractHash,
		&b.MetadataHash,
		&b.DocumentHash,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Build{}, err
	}
	if err != nil {
		return Build{}, fmt.Errorf("scan build: %w", err)
	}
	return b, nil
}
