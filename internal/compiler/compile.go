package compiler

import (
	"log/slog"

	"github.com/roach88/inkir/internal/ir"
	"github.com/roach88/inkir/internal/syntax"
)

// Build converts every top-level declaration of files and assembles the
// contract.
//
// Phase one converts declarations in parallel and waits for all of them;
// any per-item failures are returned together as Diagnostics. Phase two
// runs Assemble over the converted items in file and declaration order.
func Build(files []*syntax.File, opts Options) (*ir.Contract, error) {
	opts = opts.normalized()

	var raw []syntax.Item
	for _, f := range files {
		raw = append(raw, f.Items...)
	}
	slog.Debug("converting declarations", "files", len(files), "items", len(raw), "workers", opts.Workers)

	items, err := convertAll(len(raw), opts.Workers, func(i int) (ir.Item, error) {
		return ConvertItem(raw[i], opts)
	})
	if err != nil {
		return nil, err
	}
	return Assemble(items, opts)
}
