package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/recitals/internal/service"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		// Opening the store applies the schema.
		store, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		slog.Info("Migrations applied")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load initial data",
}

var seedAdminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Create or promote the admin from ADMIN_EMAIL and ADMIN_PASSWORD",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
			return errors.New("admin_email and admin_password must be set")
		}

		store, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		admin, err := service.EnsureAdmin(cmd.Context(), store, cfg.AdminEmail, cfg.AdminPassword, cfg.BcryptCost)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "admin ready: %s (%s)\n", admin.Email, admin.ID)
		return nil
	},
}

var songsFile string

var seedSongsCmd = &cobra.Command{
	Use:   "songs",
	Short: "Import a JSON array of songs into the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		f, err := os.Open(songsFile)
		if err != nil {
			return fmt.Errorf("open songs file: %w", err)
		}
		defer f.Close()

		store, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		imported, skipped, err := service.ImportSongs(cmd.Context(), store, f)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d songs, skipped %d\n", imported, skipped)
		return nil
	},
}

func init() {
	seedSongsCmd.Flags().StringVar(&songsFile, "file", "", "path to a JSON file with an array of songs")
	seedSongsCmd.MarkFlagRequired("file")
	seedCmd.AddCommand(seedAdminCmd, seedSongsCmd)
}
