package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/shopbooks/internal/accounts"
	"github.com/cleared-dev/shopbooks/internal/config"
	"github.com/cleared-dev/shopbooks/internal/gitops"
	"github.com/cleared-dev/shopbooks/internal/source"
)

func newInitCommand() *cobra.Command {
	var name string
	var currency string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new books repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			hash, err := runInit(absDir, name, currency)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized books for %s at %s (%s)\n", name, absDir, hash)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&currency, "currency", "", "reporting currency code (default SGD)")

	return cmd
}

func runInit(dir, name, currency string) (string, error) {
	if _, err := os.Stat(filepath.Join(dir, ConfigFile)); err == nil {
		return "", fmt.Errorf("%s already exists in %s", ConfigFile, dir)
	}

	dirs := []string{
		"accounts",
		"logs",
		source.InputDir,
		ReportDir,
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return "", fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default(name)
	if currency != "" {
		cfg.Business.Currency = currency
	}
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(dir, ConfigFile), cfg); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}

	if err := accounts.SaveChart(dir, accounts.DefaultChart()); err != nil {
		return "", fmt.Errorf("writing chart of accounts: %w", err)
	}

	// Excel lock files.
	gitignore := "~$*\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return "", fmt.Errorf("writing .gitignore: %w", err)
	}
	for _, d := range []string{source.InputDir, ReportDir} {
		if err := os.WriteFile(filepath.Join(dir, d, ".gitkeep"), []byte{}, 0o644); err != nil {
			return "", fmt.Errorf("writing .gitkeep: %w", err)
		}
	}

	if err := gitops.Init(dir); err != nil {
		return "", fmt.Errorf("git init: %w", err)
	}

	hash, err := gitops.CommitAll(dir, "init: Initialize "+name, cfg.Git.AuthorName, cfg.Git.AuthorEmail)
	if err != nil {
		return "", fmt.Errorf("initial commit: %w", err)
	}
	return hash, nil
}
