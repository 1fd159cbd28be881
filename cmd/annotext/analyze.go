package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"annotext/internal/analysis"
	"annotext/internal/server"
)

func newAnalyzeCmd(load configLoader) *cobra.Command {
	var (
		field  string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "analyze [text]",
		Short: "Print the token stream of an annotated value",
		Long: `Print the token stream of an annotated value. The text is read from
the arguments, or from standard input when none are given.`,
		Example: `  annotext analyze 'New mayor is [John Smith](type=person&value=John%20Smith)'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			text, err := inputText(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			svc, err := server.NewService(&cfg.Index, 0, nil, cfg.Log.NewLogger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			tokens, err := svc.Analyze("", field, text)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(tokens)
			}
			return printTokens(cmd.OutOrStdout(), tokens)
		},
	}
	cmd.Flags().StringVarP(&field, "field", "f", "body", "field name passed to the analyzer")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print tokens as JSON")
	return cmd
}

// inputText joins args, or reads all of in when there are none.
func inputText(in io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func printTokens(w io.Writer, tokens []analysis.Token) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "POS\tINC\tLEN\tSTART\tEND\tTYPE\tTERM")
	for _, t := range tokens {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%s\t%s\n",
			t.Position, t.PositionIncrement, t.PositionLength, t.StartByte, t.EndByte, t.Type, t.Term)
	}
	return tw.Flush()
}
