package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/barterfeed/backend/internal/domain"
	"github.com/barterfeed/backend/internal/usecase"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Print a user's personalized feed as JSON",
	Long: `Print a user's personalized feed as JSON.

Examples:
  barterfeed feed --user 42
  barterfeed feed --user 42 --config ./config/config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")
		if userID == "" {
			return fmt.Errorf("--user is required")
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		a, err := newApplication(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		feed, err := a.feeds.BuildFeed(cmd.Context(), userID)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), feed)
	},
}

// evaluateInput is the file format accepted by the evaluate command
type evaluateInput struct {
	User     *domain.UserProfile    `json:"user"`
	Offer    *domain.BarterOffer    `json:"offer"`
	Taxonomy *domain.SystemTaxonomy `json:"taxonomy"`
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate one user/offer/taxonomy JSON document offline",
	Long: `Evaluate one user/offer/taxonomy JSON document offline.

The file holds {"user": {...}, "offer": {...}, "taxonomy": {...}}; use "-" for stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		if path == "" {
			return fmt.Errorf("--file is required")
		}

		var r io.Reader = cmd.InOrStdin()
		if path != "-" {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("opening input: %w", err)
			}
			defer f.Close()
			r = f
		}

		var in evaluateInput
		if err := json.NewDecoder(r).Decode(&in); err != nil {
			return fmt.Errorf("decoding input: %w", err)
		}
		if in.User == nil || in.Offer == nil {
			return fmt.Errorf("input must contain user and offer")
		}

		return writeJSON(cmd.OutOrStdout(), usecase.ExplainRelevance(in.User, in.Offer, in.Taxonomy))
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending store migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		a, err := newApplication(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		versions, err := a.store.AppliedMigrations()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "applied migrations: %v\n", versions)
		return nil
	},
}

func init() {
	feedCmd.Flags().String("user", "", "user ID to build the feed for")
	evaluateCmd.Flags().StringP("file", "f", "", "JSON input file, or - for stdin")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
