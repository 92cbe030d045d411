package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainContract = "inkir/contract/v1"
	DomainMetadata = "inkir/metadata/v1"
	DomainSource   = "inkir/source/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ContractHash is the content hash of an assembled contract IR. Two builds of
// the same declarations under the same configuration produce the same hash.
func ContractHash(c *Contract) (string, error) {
	canonical, err := MarshalCanonical(c)
	if err != nil {
		return "", fmt.Errorf("ContractHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainContract, canonical), nil
}

// MetadataHash is the content hash of any metadata value. It is used for
// the metadata document's own identity.
func MetadataHash(v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("MetadataHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainMetadata, canonical), nil
}

// SourceHash hashes raw source bytes in the order given.
func SourceHash(sources ...[]byte) string {
	h := sha256.New()
	h.Write([]byte(DomainSource))
	h.Write([]byte{0x00})
	for _, s := range sources {
		fmt.Fprintf(h, "%d:", len(s))
		h.Write(s)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// MustContractHash is like ContractHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustContractHash(c *Contract) string {
	h, err := ContractHash(c)
	if err != nil {
		panic(err)
	}
	return h
}
