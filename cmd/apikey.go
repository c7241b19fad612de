package cmd

import (
	"fmt"
	"time"

	"github.com/brk3/habitkeeper/internal/server"
	"github.com/brk3/habitkeeper/internal/storage"
	"github.com/brk3/habitkeeper/internal/storage/bolt"
	"github.com/spf13/cobra"
)

var (
	apikeyUser     string
	apikeyReadOnly bool
)

// The apikey commands open the database directly so the first key can be
// issued before any login exists. Stop the server first; bbolt allows a
// single writer process.
var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage API keys in the local database",
}

var apikeyCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Issue a new API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := bolt.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		key, hash, err := server.NewAPIKey()
		if err != nil {
			return err
		}
		scope := storage.ScopeWrite
		if apikeyReadOnly {
			scope = storage.ScopeRead
		}
		rec := storage.APIKey{Hash: hash, UserID: apikeyUser, Scope: scope, CreatedAt: time.Now().Unix()}
		if err := store.PutAPIKey(rec); err != nil {
			return err
		}
		cmd.Printf("%s API key %s for %s (shown once):\n%s\n", scope, server.KeyID(hash), apikeyUser, key)
		return nil
	},
}

var apikeyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List key ids for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := bolt.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		keys, err := store.ListAPIKeys(apikeyUser)
		if err != nil {
			return err
		}
		for _, k := range keys {
			created := "-"
			if k.CreatedAt > 0 {
				created = time.Unix(k.CreatedAt, 0).Format(time.DateOnly)
			}
			cmd.Printf("%s  %-5s  %s\n", server.KeyID(k.Hash), k.Scope, created)
		}
		return nil
	},
}

var apikeyRevokeCmd = &cobra.Command{
	Use:   "revoke <key-id>",
	Short: "Revoke a key by the id shown in list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := bolt.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		keys, err := store.ListAPIKeys(apikeyUser)
		if err != nil {
			return err
		}
		for _, k := range keys {
			if server.KeyID(k.Hash) == args[0] {
				if err := store.DeleteAPIKey(k.Hash); err != nil {
					return err
				}
				cmd.Println("Revoked", args[0])
				return nil
			}
		}
		return fmt.Errorf("no key %s for user %s", args[0], apikeyUser)
	},
}

func init() {
	apikeyCmd.PersistentFlags().StringVarP(&apikeyUser, "user", "u", "anonymous", "user id the key belongs to")
	apikeyCreateCmd.Flags().BoolVar(&apikeyReadOnly, "read-only", false, "issue a key that can only read")
	apikeyCmd.AddCommand(apikeyCreateCmd, apikeyListCmd, apikeyRevokeCmd)
	rootCmd.AddCommand(apikeyCmd)
}
