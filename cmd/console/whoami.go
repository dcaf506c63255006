package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the admin identity behind the scripting credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			client, err := newAuthedClient(ctx, cmd)
			if err != nil {
				return err
			}
			defer func() { _ = client.Logout(ctx) }()

			admin, err := client.Profile(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("%s <%s>\n", admin.Name, admin.Email)
			fmt.Printf("role: %s (level %d)\n", admin.Role.DisplayName, admin.Role.Level)
			if len(admin.AdditionalPermissions) > 0 {
				fmt.Printf("permissions: %s\n", strings.Join(admin.AdditionalPermissions, ", "))
			}
			return nil
		},
	}
}
