package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kodegenix/kgtree/pkg/format"
	"github.com/kodegenix/kgtree/pkg/tree"
)

func parseCmd(cli *cliContext) *cobra.Command {
	var inFormat, output string

	var pretty bool

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a document into a tree and print it back",
		Long: `Parse a document into a tree and print its canonical serialization.

Examples:
  kgtree parse data.json              # Parse and re-serialize a file
  kgtree parse --pretty data.json     # Pretty-printed output
  kgtree parse - < data.json          # Parse from stdin`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			file := "-"
			if len(args) == 1 {
				file = args[0]
			}

			return runParse(cli, file, inFormat, output, pretty, cobraCmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&inFormat, "format", "f", "", "input format (default: by extension, or the configured default)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "pretty-print the output")

	return cmd
}

func runParse(cli *cliContext, file, inFormat, output string, pretty bool, writer io.Writer) error {
	root, err := loadDocument(cli, file, inFormat)
	if err != nil {
		return err
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

// loadDocument reads a tree from a file or stdin ("-"), picking the format
// from the -f flag, the file extension, or the configured default.
func loadDocument(cli *cliContext, file, formatName string) (*tree.Node, error) {
	f := tree.FormatUnknown

	name := formatName
	if name == "" && (file == "-" || format.DetectFormat(file) == tree.FormatUnknown) {
		name = cli.cfg.Opath.DefaultFormat
	}

	if name != "" {
		parsed, err := format.ParseFormatName(name)
		if err != nil {
			return nil, err
		}

		f = parsed
	}

	if file == "-" {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}

		adapter, err := format.Default().Get(f)
		if err != nil {
			return nil, err
		}

		return adapter.Parse(content)
	}

	return format.ParseFile(context.Background(), format.Default(), file, f)
}

func writeOutput(data []byte, output string, writer io.Writer) error {
	if output != "" {
		outFile, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer outFile.Close()

		writer = outFile
	}

	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	_, err := writer.Write(data)

	return err
}
