package compiler

import (
	"runtime"

	"github.com/roach88/inkir/internal/selector"
)

// DefaultMaxEventTopics is the default limit on indexed event fields.
const DefaultMaxEventTopics = 4

// Options controls conversion and assembly.
type Options struct {
	// Hash is the digest for computed selectors. Empty means Blake2b256.
	Hash selector.Hash
	// MaxEventTopics limits indexed fields per event. Zero means
	// DefaultMaxEventTopics.
	MaxEventTopics int
	// Workers bounds parallel per-item conversion. Zero means GOMAXPROCS.
	Workers int
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{Hash: selector.Blake2b256, MaxEventTopics: DefaultMaxEventTopics}
}

func (o Options) normalized() Options {
	if o.Hash == "" {
		o.Hash = selector.Blake2b256
	}
	if o.MaxEventTopics <= 0 {
		o.MaxEventTopics = DefaultMaxEventTopics
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	return o
}
