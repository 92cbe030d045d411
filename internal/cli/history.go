package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/inkir/internal/config"
	"github.com/roach88/inkir/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Config string
	Store  string
	Limit  int
	Show   string // build id whose document is printed
}

// HistoryResult lists archived builds, newest first.
type HistoryResult struct {
	Builds []store.Build `json:"builds"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [contract]",
		Short: "List archived metadata builds",
		Long: `List the metadata builds recorded by "inkir metadata --store", newest
first. Without a contract name every contract is listed.

Examples:
  inkir history --store meta.db
  inkir history flipper --limit 5
  inkir history --show <build-id> --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			contract := ""
			if len(args) == 1 {
				contract = args[0]
			}
			return runHistory(opts, contract, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", config.FileName, "project config file")
	cmd.Flags().StringVar(&opts.Store, "store", "", "metadata archive database")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum builds to list (0 = all)")
	cmd.Flags().StringVar(&opts.Show, "show", "", "print the metadata document of a build")

	return cmd
}

func runHistory(opts *HistoryOptions, contract string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := commandContext(cmd)

	dbPath := opts.Store
	if dbPath == "" {
		cfg, err := config.Load(opts.Config)
		if err != nil {
			return outputCommandError(formatter, ErrCodeConfig, err.Error())
		}
		dbPath = cfg.Store
	}
	if dbPath == "" {
		return outputCommandError(formatter, ErrCodeStoreFailed, "no store configured: use --store or set store in inkir.yaml")
	}

	st, err := store.Open(dbPath)
	if err != nil {
		_ = formatter.Error(ErrCodeStoreFailed, fmt.Sprintf("opening store: %v", err), nil)
		return WrapExitError(ExitCommandError, "opening store", err)
	}
	defer st.Close()

	if opts.Show != "" {
		b, err := st.Build(ctx, opts.Show)
		if errors.Is(err, store.ErrNotFound) {
			return outputCommandError(formatter, ErrCodeNotFound, fmt.Sprintf("build not found: %s", opts.Show))
		}
		if err != nil {
			return outputCommandError(formatter, ErrCodeStoreFailed, err.Error())
		}
		doc, err := st.Document(ctx, b.DocumentHash)
		if err != nil {
			return outputCommandError(formatter, ErrCodeStoreFailed, err.Error())
		}
		if formatter.Format == "json" {
			return formatter.Success(rawJSON(doc))
		}
		fmt.Fprintln(formatter.Writer, string(doc))
		return nil
	}

	builds, err := st.History(ctx, contract, opts.Limit)
	if err != nil {
		return outputCommandError(formatter, ErrCodeStoreFailed, err.Error())
	}

	if formatter.Format == "json" {
		return formatter.Success(HistoryResult{Builds: builds})
	}

	w := formatter.Writer
	if len(builds) == 0 {
		fmt.Fprintln(w, "No builds recorded.")
		return nil
	}
	for _, b := range builds {
		version := b.Version
		if version == "" {
			version = "-"
		}
		fmt.Fprintf(w, "%4d  %s  %-20s %-10s %s\n", b.Seq, b.ID, b.Contract, version, shortHash(b.MetadataHash))
	}
	return nil
}

// rawJSON embeds stored canonical JSON in a response without re-encoding.
type rawJSON []byte

func (r rawJSON) MarshalJSON() ([]byte, error) { return r, nil }

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
