package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func leadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leads",
		Short: "Lead monitoring operations",
	}
	cmd.AddCommand(leadsExportCmd())
	return cmd
}

func leadsExportCmd() *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the lead table",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			client, err := newAuthedClient(ctx, cmd)
			if err != nil {
				return err
			}
			defer func() { _ = client.Logout(ctx) }()

			data, err := client.ExportLeads(ctx, format)
			if err != nil {
				return err
			}
			if out == "" {
				out = "leads." + format
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "export format (csv, excel)")
	cmd.Flags().StringVar(&out, "out", "", "output file (default leads.<format>)")
	return cmd
}
