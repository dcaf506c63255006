package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Marketplace user operations",
	}
	cmd.AddCommand(usersListCmd(), usersExportCmd())
	return cmd
}

func usersListCmd() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List marketplace users",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			client, err := newAuthedClient(ctx, cmd)
			if err != nil {
				return err
			}
			defer func() { _ = client.Logout(ctx) }()

			params := url.Values{}
			if search != "" {
				params.Set("search", search)
			}
			users, err := client.ListUsers(ctx, params)
			if err != nil {
				return err
			}
			for _, u := range users {
				status := ""
				if u.Blocked {
					status = " [blocked]"
				}
				fmt.Printf("%-36s %-24s %-30s %s%s\n", u.ID, u.Name, u.Email, u.UserType, status)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "filter by name or email")
	return cmd
}

func usersExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the user table as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
			defer cancel()

			client, err := newAuthedClient(ctx, cmd)
			if err != nil {
				return err
			}
			defer func() { _ = client.Logout(ctx) }()

			data, err := client.ExportUsersCSV(ctx)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "users.csv", "output file")
	return cmd
}
