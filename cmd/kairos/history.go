package main

import (
	"fmt"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/spf13/cobra"
)

func (c *cli) newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled call results, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := c.app.Store.Recent(limit)
			if err != nil {
				return fmt.Errorf("read journal: %w", err)
			}
			if len(records) == 0 {
				fmt.Fprintln(c.out, "No results journaled.")
				return nil
			}

			w := tabwriter.NewWriter(c.out, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "RECORDED\tJOB\tOPERATION\tKIND\tBODY")
			for _, rec := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					rec.RecordedAt.Local().Format("2006-01-02 15:04:05"),
					rec.JobID, rec.Operation, rec.Kind, truncate(rec.Body, 80))
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of results (0 for all)")
	return cmd
}

// truncate shortens s to n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
