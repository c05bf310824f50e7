package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vango-dev/modelview/internal/errors"
)

func codesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "codes [code]",
		Short: "Explain error codes",
		Long: `List every error code modelview reports, or explain a single one.

Examples:
  modelview codes
  modelview codes E101`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				t, ok := errors.GetTemplate(args[0])
				if !ok {
					return fmt.Errorf("unknown error code %q", args[0])
				}
				fmt.Fprintf(out, "%s [%s] %s\n\n  %s\n", args[0], t.Category, t.Message, t.Detail)
				return nil
			}

			codes := errors.GetAllCodes()
			sort.Strings(codes)
			for _, code := range codes {
				t, _ := errors.GetTemplate(code)
				fmt.Fprintf(out, "%s  %-10s %s\n", code, t.Category, t.Message)
			}
			return nil
		},
	}
}
