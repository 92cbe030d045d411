package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/inkir/internal/ir"
	"github.com/roach88/inkir/internal/metadata"
	"github.com/roach88/inkir/internal/store"
)

// MetadataOptions holds flags for the metadata command.
type MetadataOptions struct {
	*RootOptions
	BuildFlags
	Output string // output file path
	Store  string // archive path, overrides config
}

// MetadataResult is the metadata document plus its archive record.
type MetadataResult struct {
	Document *metadata.Document `json:"document"`
	Hash     string             `json:"hash"`
	Build    *store.Build       `json:"build,omitempty"`
}

// NewMetadataCommand creates the metadata command.
func NewMetadataCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MetadataOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "metadata [sources...]",
		Short: "Derive the contract's ABI metadata",
		Long: `Build the contract IR and derive its metadata document: constructors,
messages and events with their selectors, the storage layout and the
deduplicated type registry.

With --store (or store in inkir.yaml) the document is archived in a
SQLite database and can be listed with "inkir history".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMetadata(opts, args, cmd)
		},
	}

	opts.BuildFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().StringVar(&opts.Store, "store", "", "metadata archive database")

	return cmd
}

func runMetadata(opts *MetadataOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := commandContext(cmd)

	loaded, errs := LoadContract(ctx, &opts.BuildFlags, args)
	if len(errs) > 0 {
		return outputBuildErrors(formatter, errs)
	}

	doc, err := loaded.Document()
	if err != nil {
		return outputBuildErrors(formatter, []error{err})
	}
	hash, err := doc.Hash()
	if err != nil {
		return outputCommandError(formatter, ErrCodeGeneric, fmt.Sprintf("hashing metadata: %v", err))
	}
	result := &MetadataResult{Document: doc, Hash: hash}

	if opts.Output != "" {
		if err := writeJSONFile(doc, opts.Output); err != nil {
			return outputCommandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
	}

	dbPath := opts.Store
	if dbPath == "" {
		dbPath = loaded.Config.Store
	}
	if dbPath != "" {
		contractHash, err := ir.ContractHash(loaded.Contract)
		if err != nil {
			return outputCommandError(formatter, ErrCodeGeneric, fmt.Sprintf("hashing contract: %v", err))
		}
		b, err := archive(ctx, dbPath, doc, contractHash)
		if err != nil {
			return outputCommandError(formatter, ErrCodeStoreFailed, err.Error())
		}
		formatter.VerboseLog("Archived build %s (seq %d) in %s", b.ID, b.Seq, dbPath)
		result.Build = &b
	}

	return outputMetadataSuccess(formatter, result, opts.Output)
}

func archive(ctx context.Context, dbPath string, doc *metadata.Document, contractHash string) (store.Build, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return store.Build{}, fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()
	return st.Save(ctx, doc, contractHash)
}

func outputMetadataSuccess(formatter *OutputFormatter, result *MetadataResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	spec := result.Document.Spec
	fmt.Fprintf(w, "\u2713 Metadata for %s: %d constructor(s), %d message(s), %d event(s), %d type(s)\n\n",
		result.Document.Contract.Name, len(spec.Constructors), len(spec.Messages), len(spec.Events), len(spec.Types))

	for _, c := range spec.Constructors {
		payable := ""
		if c.Payable {
			payable = " payable"
		}
		fmt.Fprintf(w, "  constructor %s %s%s\n", c.Selector, c.Label, payable)
	}
	for _, m := range spec.Messages {
		flags := ""
		if m.Mutates {
			flags += " mut"
		}
		if m.Payable {
			flags += " payable"
		}
		fmt.Fprintf(w, "  message     %s %s%s\n", m.Selector, m.Label, flags)
	}
	for _, e := range spec.Events {
		fmt.Fprintf(w, "  event       %s (%d field(s))\n", e.Label, len(e.Args))
	}

	fmt.Fprintf(w, "\nMetadata hash: %s\n", result.Hash)
	if result.Build != nil {
		fmt.Fprintf(w, "Archived as build %s (seq %d)\n", result.Build.ID, result.Build.Seq)
	}
	if outputFile != "" {
		fmt.Fprintf(w, "Wrote metadata to %s\n", outputFile)
	}
	return nil
}
