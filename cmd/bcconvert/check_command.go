package main

import (
	"fmt"

	"github.com/handiism/bandcamp-converter/internal/deps"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

func newCheckCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report whether the external programs are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd, opts)
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(deps.Requirements(settings))
			rows := make([][]string, 0, len(statuses))
			var missing []string
			for _, s := range statuses {
				state, where := "ok", s.Path
				if !s.Available {
					state, where = "missing", s.Detail
					missing = append(missing, s.Command)
				}
				rows = append(rows, []string{s.Name, s.Command, state, where, s.Description})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Program", "Command", "Status", "Path", "Purpose"},
				rows,
				[]text.Align{text.AlignLeft, text.AlignLeft, text.AlignLeft, text.AlignLeft, text.AlignLeft},
			))

			if len(missing) > 0 {
				return &deps.PreconditionError{Missing: missing}
			}
			return nil
		},
	}
}
