package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/inkir/internal/selector"
)

// SelectorOptions holds flags for the selector command.
type SelectorOptions struct {
	*RootOptions
	Hash      string
	Namespace string
	Extension int // chain extension id; -1 when unset
}

// SelectorResult is a computed selector and the signature it came from.
type SelectorResult struct {
	Signature string            `json:"signature,omitempty"`
	Hash      string            `json:"hash,omitempty"`
	Selector  selector.Selector `json:"selector"`
	Value     uint32            `json:"value"`
}

// NewSelectorCommand creates the selector command.
func NewSelectorCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SelectorOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "selector <name> [param-types...]",
		Short: "Compute a selector",
		Long: `Compute the 4-byte selector of a constructor or message from its name
and parameter types, the same way the builder does.

With --extension the single argument is a chain extension function id
and the selector is extension<<16 | function.

Examples:
  inkir selector flip
  inkir selector new bool --hash keccak256
  inkir selector transfer AccountId Balance --namespace Erc20
  inkir selector 2 --extension 1101`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelector(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Hash, "hash", "", "selector digest (blake2b|keccak256)")
	cmd.Flags().StringVar(&opts.Namespace, "namespace", "", "trait or namespace prefix")
	cmd.Flags().IntVar(&opts.Extension, "extension", -1, "chain extension id")

	return cmd
}

func runSelector(opts *SelectorOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	result, err := computeSelector(opts, args)
	if err != nil {
		return outputCommandError(formatter, ErrCodeGeneric, err.Error())
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	if result.Signature != "" {
		fmt.Fprintf(formatter.Writer, "%s  %s\n", result.Selector, result.Signature)
		return nil
	}
	fmt.Fprintln(formatter.Writer, result.Selector)
	return nil
}

func computeSelector(opts *SelectorOptions, args []string) (SelectorResult, error) {
	if opts.Extension >= 0 {
		if len(args) != 1 {
			return SelectorResult{}, fmt.Errorf("--extension takes exactly one function id")
		}
		if opts.Extension > 0xFFFF {
			return SelectorResult{}, fmt.Errorf("extension id %d does not fit in 16 bits", opts.Extension)
		}
		fn, err := strconv.ParseUint(args[0], 0, 16)
		if err != nil {
			return SelectorResult{}, fmt.Errorf("function id %q: must be a 16-bit integer", args[0])
		}
		s := selector.ExtensionSelector(uint16(opts.Extension), uint16(fn))
		return SelectorResult{Selector: s, Value: s.Uint32()}, nil
	}

	hash, err := selector.ParseHash(opts.Hash)
	if err != nil {
		return SelectorResult{}, err
	}
	name := args[0]
	if opts.Namespace != "" {
		name = selector.QualifiedName(opts.Namespace, name)
	}
	sig := selector.Signature(name, args[1:])
	s := hash.Compute(sig)
	return SelectorResult{Signature: sig, Hash: string(hash), Selector: s, Value: s.Uint32()}, nil
}
