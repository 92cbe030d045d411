// Package syntax defines the raw declaration nodes handed to the IR builder.
//
// Nodes are produced by a frontend (internal/rustfront for Rust sources,
// internal/cuefront for CUE declaration files) and are never mutated after
// parsing. The package imports nothing internal.
//
// Only the shape of a declaration is modelled here: names, attributes,
// receivers, parameter lists and type expressions. Whether a shape is a
// valid storage struct, message or event is decided by internal/compiler.
//
// Attributes are flattened into ink! arguments, so
//
//	#[ink(message, payable, selector = 0xCAFEBABE)]
//
// becomes three Attr values with keys "message", "payable" and "selector".
// Path attributes such as #[ink::contract] contribute their last segment.
package syntax
