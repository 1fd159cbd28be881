package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"annotext/internal/server"
)

func newHighlightCmd(load configLoader) *cobra.Command {
	var start, end int
	cmd := &cobra.Command{
		Use:   "highlight value...",
		Short: "Print plain text values and the annotations in a window",
		Long: `Treat the arguments as the values of one multi-valued field. Prints the
plain text of each value, then every annotation intersecting [start, end] of
the values joined with a one byte separator. A negative end selects the whole
joined text.`,
		Example: `  annotext highlight --start 0 --end 3 'one [two](value=2)' '[three](value=3)'`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			svc, err := server.NewService(&cfg.Index, 0, nil, cfg.Log.NewLogger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			hl, err := svc.Highlighter("", args)
			if err != nil {
				return err
			}

			joined := hl.PlainText(' ')
			if end < 0 {
				end = len(joined)
			}
			if start < 0 || end < start {
				return fmt.Errorf("invalid window [%d, %d]", start, end)
			}

			out := cmd.OutOrStdout()
			for i, v := range hl.PlainTextValues() {
				fmt.Fprintf(out, "value %d: %s\n", i, v)
			}
			for _, a := range hl.IntersectingAnnotations(start, end) {
				fmt.Fprintf(out, "%d-%d\t%s\t%s\t%q\n", a.Start, a.End, a.TypeOrDefault(), a.Value, joined[a.Start:a.End])
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&start, "start", 0, "window start offset")
	cmd.Flags().IntVar(&end, "end", -1, "window end offset")
	return cmd
}
