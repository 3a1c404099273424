// Package user manages API accounts from the command line.
package user

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/libreshelf/librarian/pkg/apperrors"
	"github.com/libreshelf/librarian/pkg/config"
	"github.com/libreshelf/librarian/pkg/database"
	"github.com/libreshelf/librarian/pkg/models"
	"github.com/libreshelf/librarian/pkg/repositories"
)

// passwordEnv lets scripts supply the password without putting it on the
// command line, where it would land in shell history.
const passwordEnv = "LIBRARIAN_PASSWORD"

// Command creates the user command.
func Command(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage API accounts",
	}

	cmd.AddCommand(createCommand(version))

	return cmd
}

func createCommand(version string) *cobra.Command {
	var (
		role     string
		password string
	)

	cmd := &cobra.Command{
		Use:   "create [username]",
		Short: "Create an API account",
		Long:  fmt.Sprintf("Create an API account. The password is read from --password or the %s environment variable.", passwordEnv),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd.Context(), version, args[0], role, password)
		},
	}

	cmd.Flags().StringVarP(&role, "role", "r", models.RoleUser, fmt.Sprintf("Account role (%s)", strings.Join(models.ValidRoles, "|")))
	cmd.Flags().StringVar(&password, "password", "", "Account password (falls back to "+passwordEnv+")")

	return cmd
}

func runCreate(ctx context.Context, version, username, role, password string) error {
	if !models.IsValidRole(role) {
		return fmt.Errorf("invalid role %q, must be one of: %s", role, strings.Join(models.ValidRoles, ", "))
	}
	if password == "" {
		password = os.Getenv(passwordEnv)
	}
	if password == "" {
		return fmt.Errorf("no password given: use --password or set %s", passwordEnv)
	}

	cfg, err := config.Load(version)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	db, err := database.NewConnection(ctx, &database.Config{
		DSN:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := repositories.NewUserRepository(db).Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return fmt.Errorf("user %q already exists", username)
		}
		return err
	}

	fmt.Printf("created user %q with role %s (id %d)\n", user.Username, user.Role, user.UserID)
	return nil
}
