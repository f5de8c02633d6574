package cli

import (
	"fmt"
	"strings"

	"github.com/SscSPs/fortune_desk/internal/dto"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminCreateCmd)

	adminCreateCmd.Flags().String("email", "", "Operator login email")
	adminCreateCmd.Flags().String("name", "", "Display name")
	adminCreateCmd.Flags().String("password", "", "Initial password (8-72 bytes)")
	adminCreateCmd.Flags().String("role", "editor", "Role label")
	adminCreateCmd.Flags().StringSlice("permissions", []string{"fortune:review"}, "Capabilities, e.g. fortune:review,fortune:approve or *")
	_ = adminCreateCmd.MarkFlagRequired("email")
	_ = adminCreateCmd.MarkFlagRequired("name")
	_ = adminCreateCmd.MarkFlagRequired("password")
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage operator accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an operator account",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		password, _ := cmd.Flags().GetString("password")
		role, _ := cmd.Flags().GetString("role")
		permissions, _ := cmd.Flags().GetStringSlice("permissions")

		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.close()

		admin, err := a.services.Auth.CreateAdmin(cmd.Context(), dto.CreateAdminRequest{
			Email:       email,
			Name:        name,
			Password:    password,
			Role:        role,
			Permissions: permissions,
		})
		if err != nil {
			return fmt.Errorf("failed to create admin: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s) with permissions %s\n",
			admin.AdminID, admin.Email, strings.Join(admin.Permissions.Strings(), ","))
		return nil
	},
}
