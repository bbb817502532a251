// Command memomectl runs admin queries directly against the configured store.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Dias221467/MemoMe/internal/config"
	"github.com/Dias221467/MemoMe/internal/database"
	"github.com/Dias221467/MemoMe/internal/models"
	"github.com/Dias221467/MemoMe/internal/repository"
	"github.com/Dias221467/MemoMe/internal/services"
	"github.com/Dias221467/MemoMe/internal/session"
	"github.com/Dias221467/MemoMe/internal/store"
	"github.com/Dias221467/MemoMe/pkg/logger"
)

var (
	timeout    time.Duration
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:           "memomectl",
	Short:         "MemoMe admin tooling",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := os.Getenv("LOG_LEVEL")
		if level == "" {
			level = "warn"
		}
		logger.InitLogger(level)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print user, note and care log totals",
	RunE:  runStats,
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List every user profile",
	RunE:  runUsers,
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", time.Minute, "overall deadline for the query")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of text")
	rootCmd.AddCommand(statsCmd, usersCmd)
}

// adminEnv opens the store and an admin session for the configured admin.
func adminEnv() (*services.AdminService, *session.Session, store.Store, error) {
	cfg := config.LoadConfig()
	st, err := database.OpenStore(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open store: %w", err)
	}
	svc := services.NewAdminService(
		repository.NewUserRepository(st),
		repository.NewNoteRepository(st),
		repository.NewCareRepository(st),
		cfg.AdminStatsConcurrency,
	)
	sess := session.New(models.UserProfile{Email: cfg.AdminEmail, Role: models.RoleAdmin})
	return svc, sess, st, nil
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	svc, sess, st, err := adminEnv()
	if err != nil {
		return err
	}
	defer st.Close(ctx)
	defer sess.Close()

	stats, err := svc.Stats(ctx, sess)
	if err != nil {
		return fmt.Errorf("failed to compute stats: %w", err)
	}
	if jsonOutput {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(stats)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Users:      %d\n", stats.UserCount)
	fmt.Fprintf(out, "Notes:      %d\n", stats.TotalNotes)
	fmt.Fprintf(out, "Care logs:  %d\n", stats.TotalCareLogs)
	for _, email := range stats.FailedUsers {
		fmt.Fprintf(out, "  incomplete: %s\n", email)
	}
	return nil
}

func runUsers(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	svc, sess, st, err := adminEnv()
	if err != nil {
		return err
	}
	defer st.Close(ctx)
	defer sess.Close()

	users, err := svc.ListUsers(ctx, sess)
	if err != nil {
		return err
	}
	if jsonOutput {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(users)
	}
	for _, u := range users {
		fmt.Fprintf(cmd.OutOrStdout(), "%-32s %-20s %s\n", u.Email, u.DisplayName, u.Role)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
