package main

import (
	"fmt"
	"io/fs"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"claimlog/internal/claims"
)

func newTypesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List supported claim types",
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CLAIM TYPE\tFAMILY\tSCHEMA\tFIELDS")
			for _, e := range claims.Entries() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Type, e.Type.Family(), e.SchemaID, strings.Join(e.Fields, ", "))
			}
			return tw.Flush()
		},
	}
}

func newSchemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <claimType>",
		Short: "Print the JSON schema for a claim type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, ok := claims.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown claim type %q (see 'claimlog types')", args[0])
			}
			data, err := fs.ReadFile(claims.SchemaFS(), entry.SchemaID)
			if err != nil {
				return fmt.Errorf("failed to read schema: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
