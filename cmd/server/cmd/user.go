package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/delphinium/delphinium/infrastructure/service/password"
	"github.com/delphinium/delphinium/infrastructure/service/validator"
	"github.com/delphinium/delphinium/internal/adapter/persistence"
	"github.com/delphinium/delphinium/internal/domain"
)

var (
	userName     string
	userEmail    string
	userPassword string
	userGroups   []string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage directory users",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create or replace a directory user",
	Long: `Create a directory user that can log in through /auth/login.

Examples:
  delphinium user add --username alice --email alice@example.com --password s3cret --group admin
  delphinium user add --username bob --password hunter2 --group resident`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUserAdd(cmd.Context())
	},
}

func init() {
	userAddCmd.Flags().StringVar(&userName, "username", "", "login name (required)")
	userAddCmd.Flags().StringVar(&userEmail, "email", "", "email address")
	userAddCmd.Flags().StringVar(&userPassword, "password", "", "initial password (required)")
	userAddCmd.Flags().StringSliceVar(&userGroups, "group", []string{domain.GroupResident}, "group membership (repeatable): resident, admin, superadmin")
	_ = userAddCmd.MarkFlagRequired("username")
	_ = userAddCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userAddCmd)
}

func runUserAdd(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := validator.ValidatePassword(userPassword); err != nil {
		return err
	}
	if userEmail != "" {
		if err := validator.ValidateEmail(userEmail); err != nil {
			return err
		}
	}

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	directory := persistence.NewUserDirectory(a.tables().users, password.NewBcryptPasswordService(bcryptCost))
	user := &domain.User{
		Username: userName,
		Email:    userEmail,
		Groups:   userGroups,
	}
	if err := directory.Register(ctx, user, userPassword); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	a.logger.Info(ctx, "User created", map[string]interface{}{
		"username": user.Username,
		"groups":   user.Groups,
	})
	fmt.Printf("User %s created with groups %v\n", user.Username, user.Groups)
	return nil
}
