package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/addons-front/listing-api/internal/app"
	"github.com/addons-front/listing-api/internal/config"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "listingd",
		Short:         "Serve add-on listing permission views",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", "", "Path to config.yaml (default "+config.DefaultConfigPath+")")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		Args:  cobra.NoArgs,
		RunE:  runMigrate,
	}

	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an editor token for the admin API",
		Args:  cobra.NoArgs,
		RunE:  runToken,
	}
	tokenCmd.Flags().String("user", "", "Editor name recorded in the token")
	tokenCmd.Flags().Duration("ttl", 0, "Token lifetime (default from config)")

	rootCmd.AddCommand(serveCmd, migrateCmd, tokenCmd, newGroupCmd())
	return rootCmd
}

func appConfig(cmd *cobra.Command) config.AppConfig {
	path, _ := cmd.Flags().GetString("config")
	return config.AppConfig{ConfigPath: path}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.RunServer(ctx, appConfig(cmd))
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.Migrate(ctx, appConfig(cmd))
}

func runToken(cmd *cobra.Command, _ []string) error {
	user, _ := cmd.Flags().GetString("user")
	ttl, _ := cmd.Flags().GetDuration("ttl")
	if user == "" {
		return fmt.Errorf("--user is required")
	}
	token, err := app.IssueEditorToken(appConfig(cmd), user, ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
