package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/kodegenix/kgtree/pkg/diff"
	"github.com/kodegenix/kgtree/pkg/opath"
	"github.com/kodegenix/kgtree/pkg/tree"
)

// diffArgCount is the number of arguments expected by the diff command.
const diffArgCount = 2

// ErrUnsupportedDiffFmt is returned for an unknown -O value.
var ErrUnsupportedDiffFmt = errors.New("unsupported format")

func diffCmd(cli *cliContext) *cobra.Command {
	var inFormat, output, outFormat, kinds string

	var (
		full        bool
		detectMove  bool
		minCount    uint32
		maxDistance float64
	)

	cmd := &cobra.Command{
		Use:   "diff <file1> <file2>",
		Short: "Compare two documents and report structural changes",
		Long: `Compare two documents and report the changes between their trees.

Examples:
  kgtree diff old.json new.json                  # Minimal change list
  kgtree diff --full old.json new.json           # Expanded change list
  kgtree diff --detect-move old.json new.json    # Reclassify moves
  kgtree diff -O json old.json new.json          # Machine-readable output`,
		Args: cobra.ExactArgs(diffArgCount),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			opts := diff.Options{DetectMove: detectMove || cli.cfg.Diff.DetectMove}

			if !cobraCmd.Flags().Changed("min-count") {
				minCount = cli.cfg.Diff.MinCount
			}

			if minCount > 0 {
				opts.MinCount = &minCount
			}

			if !cobraCmd.Flags().Changed("max-distance") {
				maxDistance = cli.cfg.Diff.MaxDistance
			}

			opts.MaxDistance = &maxDistance

			if !cobraCmd.Flags().Changed("kinds") {
				kinds = cli.cfg.Diff.Kinds
			}

			return runDiff(cli, args[0], args[1], inFormat, output, outFormat, kinds, full, opts, cobraCmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&inFormat, "format", "f", "", "input format (default: by extension)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&outFormat, "out", "O", "summary", "output format (summary, unified, json)")
	cmd.Flags().StringVar(&kinds, "kinds", "all", "change kinds to report (+-*~, words, or \"all\")")
	cmd.Flags().BoolVar(&full, "full", false, "expand the change list with ancestors and descendants")
	cmd.Flags().BoolVar(&detectMove, "detect-move", false, "reclassify matching add/remove pairs as moves")
	cmd.Flags().Uint32Var(&minCount, "min-count", 0, "minimum subtree node count for move candidates")
	cmd.Flags().Float64Var(&maxDistance, "max-distance", diff.DefaultMaxDistance, "maximum structural distance for move candidates")

	return cmd
}

func runDiff(cli *cliContext, file1, file2, inFormat, output, outFormat, kinds string, full bool, opts diff.Options, writer io.Writer) error {
	a, err := loadDocument(cli, file1, inFormat)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", file1, err)
	}

	b, err := loadDocument(cli, file2, inFormat)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", file2, err)
	}

	var changes []diff.NodeChange

	if full {
		changes = diff.Full(a, b, opts)
	} else {
		changes = diff.Minimal(a, b, opts)
	}

	mask := diff.ParseChangeKindMask(kinds)
	changes = filterChanges(changes, mask)

	cli.logger.Debug("diff computed", "old", file1, "new", file2, "changes", len(changes))

	data, err := renderChanges(changes, a, b, outFormat)
	if err != nil {
		return err
	}

	return writeOutput(data, output, writer)
}

func filterChanges(changes []diff.NodeChange, mask diff.ChangeKindMask) []diff.NodeChange {
	if mask.HasAll() {
		return changes
	}

	out := make([]diff.NodeChange, 0, len(changes))

	for _, c := range changes {
		if mask.Has(c.Kind) {
			out = append(out, c)
		}
	}

	return out
}

func renderChanges(changes []diff.NodeChange, a, b *tree.Node, outFormat string) ([]byte, error) {
	switch outFormat {
	case formatJSON:
		return json.MarshalIndent(changes, "", "  ")
	case "summary":
		return renderSummary(changes), nil
	case "unified":
		return renderUnified(changes, a, b), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDiffFmt, outFormat)
	}
}

func renderSummary(changes []diff.NodeChange) []byte {
	var out []byte

	counts := make(map[diff.ChangeKind]int)

	for _, c := range changes {
		counts[c.Kind]++
		out = append(out, c.String()...)
		out = append(out, '\n')
	}

	out = append(out, fmt.Sprintf("%d changes (+%d -%d *%d ~%d)\n",
		len(changes), counts[diff.Added], counts[diff.Removed], counts[diff.Updated], counts[diff.Moved])...)

	return out
}

// renderUnified prints each change with, for updated scalars, an inline
// character diff of the old and new string forms.
func renderUnified(changes []diff.NodeChange, a, b *tree.Node) []byte {
	var out []byte

	dmp := diffmatchpatch.New()

	for _, c := range changes {
		out = append(out, c.String()...)
		out = append(out, '\n')

		if c.Kind != diff.Updated || c.OldPath == nil || c.NewPath == nil {
			continue
		}

		oldStr, okOld := valueAt(a, *c.OldPath)
		newStr, okNew := valueAt(b, *c.NewPath)

		if !okOld || !okNew || oldStr == newStr {
			continue
		}

		diffs := dmp.DiffMain(oldStr, newStr, false)
		out = append(out, "    "...)
		out = append(out, dmp.DiffPrettyText(diffs)...)
		out = append(out, '\n')
	}

	return out
}

// valueAt resolves a canonical change path back to the node's string form.
func valueAt(root *tree.Node, path string) (string, bool) {
	expr, err := opath.Parse(path)
	if err != nil {
		return "", false
	}

	res, err := expr.Apply(root, root)
	if err != nil {
		return "", false
	}

	n, ok := res.First()
	if !ok {
		return "", false
	}

	return n.Value().AsString(), true
}
