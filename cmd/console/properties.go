package main

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"
)

func propertiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "properties",
		Short: "Listing moderation operations",
	}
	cmd.AddCommand(propertiesListCmd(), propertiesApproveCmd(), propertiesDisapproveCmd())
	return cmd
}

func propertiesListCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List listings",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			client, err := newAuthedClient(ctx, cmd)
			if err != nil {
				return err
			}
			defer func() { _ = client.Logout(ctx) }()

			params := url.Values{}
			if status != "" {
				params.Set("status", status)
			}
			properties, err := client.ListProperties(ctx, params)
			if err != nil {
				return err
			}
			for _, p := range properties {
				fmt.Printf("%-36s %-32s %-14s %s\n", p.ID, p.Title, p.City, p.Status)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status (pending, approved, disapproved)")
	return cmd
}

func propertiesApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <property-id>",
		Short: "Approve a listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			client, err := newAuthedClient(ctx, cmd)
			if err != nil {
				return err
			}
			defer func() { _ = client.Logout(ctx) }()

			if err := client.ApproveProperty(ctx, args[0]); err != nil {
				return err
			}
			fmt.Println("approved")
			return nil
		},
	}
}

func propertiesDisapproveCmd() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "disapprove <property-id>",
		Short: "Disapprove a listing with a reason",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if reason == "" {
				return fmt.Errorf("--reason is required")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			client, err := newAuthedClient(ctx, cmd)
			if err != nil {
				return err
			}
			defer func() { _ = client.Logout(ctx) }()

			if err := client.DisapproveProperty(ctx, args[0], reason); err != nil {
				return err
			}
			fmt.Println("disapproved")
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "reason shown to the owner")
	return cmd
}
