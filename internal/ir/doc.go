// Package ir provides the contract intermediate representation produced by
// the compiler and consumed by code generation and metadata builders.
//
// This package contains type definitions, canonical JSON and content
// hashing. It imports only the leaf packages syntax (positions) and
// selector; everything else imports ir.
//
// Key design constraints:
//   - IR values are built once by the compiler and never mutated afterwards
//   - Cross-references are by ID (TraitID, type name), never by pointer
//   - All JSON tags use snake_case; positions are excluded from JSON
//   - NO float types anywhere
package ir
