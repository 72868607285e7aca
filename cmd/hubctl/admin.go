package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"spectrumhub/db"
	"spectrumhub/models"
	"spectrumhub/utils"

	"github.com/spf13/cobra"
)

var (
	adminEmail    string
	adminPassword string
	adminName     string
	adminRole     string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage moderation accounts",
}

// adminAddCmd creates an admin or moderator. There is no signup endpoint.
var adminAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an admin or moderator account",
	Example: `  hubctl admin add --email mod@example.org --password 'long passphrase' --name "Riley" --role moderator`,
	RunE:  runAdminAdd,
}

func init() {
	adminAddCmd.Flags().StringVar(&adminEmail, "email", "", "Admin email (required)")
	adminAddCmd.Flags().StringVar(&adminPassword, "password", "", "Admin password (required)")
	adminAddCmd.Flags().StringVar(&adminName, "name", "", "Display name (required)")
	adminAddCmd.Flags().StringVar(&adminRole, "role", models.RoleAdmin, "Role: admin or moderator")
	_ = adminAddCmd.MarkFlagRequired("email")
	_ = adminAddCmd.MarkFlagRequired("password")
	_ = adminAddCmd.MarkFlagRequired("name")
}

func validateRole(role string) error {
	switch role {
	case models.RoleAdmin, models.RoleModerator:
		return nil
	default:
		return fmt.Errorf("role must be %q or %q, got %q", models.RoleAdmin, models.RoleModerator, role)
	}
}

func newAdmin(email, password, name, role string, now time.Time) (*models.Admin, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || strings.TrimSpace(password) == "" || strings.TrimSpace(name) == "" {
		return nil, errors.New("email, password, and name are required")
	}
	if err := validateRole(role); err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &models.Admin{
		Email:     email,
		Password:  hashed,
		Role:      role,
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func runAdminAdd(cmd *cobra.Command, _ []string) error {
	admin, err := newAdmin(adminEmail, adminPassword, adminName, adminRole, time.Now())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	_, disconnect, err := connect(ctx)
	if err != nil {
		return err
	}
	defer disconnect()

	if err := db.NewAdminStore(db.MongoDatabase).Insert(ctx, admin); err != nil {
		if errors.Is(err, db.ErrAdminExists) {
			return fmt.Errorf("admin with email %s already exists", admin.Email)
		}
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Admin created")
	fmt.Fprintf(out, "  ID:    %s\n", admin.ID.Hex())
	fmt.Fprintf(out, "  Email: %s\n", admin.Email)
	fmt.Fprintf(out, "  Name:  %s\n", admin.Name)
	fmt.Fprintf(out, "  Role:  %s\n", admin.Role)
	return nil
}
