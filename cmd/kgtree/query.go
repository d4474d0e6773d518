package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kodegenix/kgtree/pkg/opath"
	"github.com/kodegenix/kgtree/pkg/opath/nodeset"
)

// Sentinel errors for the query command.
var (
	ErrQueryExprRequired = errors.New("query expression required")
	ErrUnsupportedQFmt   = errors.New("unsupported format")
)

func queryCmd(cli *cliContext) *cobra.Command {
	var inFormat, output, outFormat string

	cmd := &cobra.Command{
		Use:   "query <opath> [files...]",
		Short: "Evaluate an Opath expression against documents",
		Long: `Evaluate an Opath expression against one or more documents and print the
resulting node set.

Examples:
  kgtree query '$.users[0].name' data.json      # Address a single node
  kgtree query '$.items[@.price > 10]' s.json   # Filter array members
  kgtree query '$.**{1,2}' data.json            # Bounded descendants
  kgtree query '$.a.b' - < input.json           # Query from stdin`,
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return ErrQueryExprRequired
			}

			return runQuery(cli, args[0], args[1:], inFormat, output, outFormat, cobraCmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&inFormat, "format", "f", "", "input format (default: by extension)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&outFormat, "out", "O", formatJSON, "output format (json, compact, count)")

	return cmd
}

func runQuery(cli *cliContext, query string, files []string, inFormat, output, outFormat string, writer io.Writer) error {
	expr, err := opath.Parse(query)
	if err != nil {
		return fmt.Errorf("parsing query: %w", err)
	}

	if len(files) == 0 {
		files = []string{"-"}
	}

	for _, file := range files {
		root, err := loadDocument(cli, file, inFormat)
		if err != nil {
			return fmt.Errorf("failed to query %s: %w", file, err)
		}

		result, err := expr.Apply(root, root)
		if err != nil {
			return fmt.Errorf("query error in %s: %w", file, err)
		}

		cli.logger.Debug("query evaluated", "file", file, "expr", query, "results", result.Len())

		data, err := renderNodeSet(result, outFormat)
		if err != nil {
			return err
		}

		if err := writeOutput(data, output, writer); err != nil {
			return err
		}
	}

	return nil
}

func renderNodeSet(result nodeset.NodeSet, outFormat string) ([]byte, error) {
	switch outFormat {
	case formatJSON:
		data, err := opath.NodeSetToJSON(result)
		if err != nil {
			return nil, err
		}

		return json.MarshalIndent(json.RawMessage(data), "", "  ")
	case "compact":
		return opath.NodeSetToJSON(result)
	case "count":
		return []byte(fmt.Sprintf("%d", result.Len())), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedQFmt, outFormat)
	}
}
