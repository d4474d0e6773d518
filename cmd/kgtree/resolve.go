package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kodegenix/kgtree/pkg/format"
	"github.com/kodegenix/kgtree/pkg/resolver"
	"github.com/kodegenix/kgtree/pkg/tree"
)

func resolveCmd(cli *cliContext) *cobra.Command {
	var inFormat, output, openDelim, closeDelim string

	var (
		rooted bool
		pretty bool
	)

	cmd := &cobra.Command{
		Use:   "resolve [file]",
		Short: "Expand interpolation templates inside a document",
		Long: `Expand every <% expr %> template inside a document's string values and
print the resolved tree.

Examples:
  kgtree resolve config.json                  # Resolve against each value's parent
  kgtree resolve --rooted config.json         # Resolve everything against the root
  kgtree resolve --open '{{' --close '}}' t.json   # Custom delimiters`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			file := "-"
			if len(args) == 1 {
				file = args[0]
			}

			return runResolve(cli, file, inFormat, output, openDelim, closeDelim, rooted, pretty, cobraCmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&inFormat, "format", "f", "", "input format (default: by extension)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&openDelim, "open", "<%", "opening template delimiter")
	cmd.Flags().StringVar(&closeDelim, "close", "%>", "closing template delimiter")
	cmd.Flags().BoolVar(&rooted, "rooted", false, "evaluate every template against the tree root")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "pretty-print the output")

	return cmd
}

func runResolve(cli *cliContext, file, inFormat, output, openDelim, closeDelim string, rooted, pretty bool, writer io.Writer) error {
	root, err := loadDocument(cli, file, inFormat)
	if err != nil {
		return err
	}

	r := resolver.NewWithDelims(openDelim, closeDelim).
		WithMaxPasses(cli.cfg.Opath.MaxInterpolationPasses)

	if rooted {
		err = r.ResolveCustom(resolver.RootedResolveStrategy{}, root)
	} else {
		err = r.Resolve(root)
	}

	if err != nil {
		return fmt.Errorf("resolving %s: %w", file, err)
	}

	adapter, err := format.Default().Get(tree.FormatJSON)
	if err != nil {
		return err
	}

	data, err := adapter.Stringify(root, pretty)
	if err != nil {
		return fmt.Errorf("serializing %s: %w", file, err)
	}

	return writeOutput(data, output, writer)
}
