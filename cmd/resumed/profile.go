package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/resume"
	"github.com/spf13/cobra"
)

var profileUserID string

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Print a user's resume sections and saved resumes",
	Long: `Print every live resume section of a user and the list of their saved
resumes, read from the database named by DATABASE_URL.`,
	RunE: runProfile,
}

func init() {
	profileCmd.Flags().StringVar(&profileUserID, "user", "", "User ID (required)")
	_ = profileCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(profileCmd)
}

func runProfile(cmd *cobra.Command, _ []string) error {
	userID, err := uuid.Parse(profileUserID)
	if err != nil {
		return fmt.Errorf("invalid --user: %w", err)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	return printProfile(ctx, cmd.OutOrStdout(), database, userID)
}

func printProfile(ctx context.Context, out io.Writer, store resume.Store, userID uuid.UUID) error {
	sections := resume.NewSections(store)
	snapshots := resume.NewSnapshots(store, sections)

	profile, err := sections.Profile(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	summaries, err := snapshots.List(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list resumes: %w", err)
	}

	printer := observability.NewPrinter(out)
	printer.PrintProfile(profile)
	printer.PrintSnapshots(summaries)
	return nil
}
