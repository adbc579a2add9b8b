package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kekst/socialnuke/pkg/platform"
)

var accountsRefresh bool

// refreshThrottle spaces out the identity calls of a refresh pass so a
// pile of stored accounts does not burst against the APIs.
const refreshThrottle = 200 * time.Millisecond

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List stored accounts",
	Long: `List the accounts stored in the config directory.

With --refresh, each account is re-validated against its platform.
Accounts whose token the platform rejects are removed; purge and dump
never run with a stale login.`,
	RunE: runAccounts,
}

var accountsRemoveCmd = &cobra.Command{
	Use:   "remove <platform> <account-id>",
	Short: "Remove a stored account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		if _, ok := app.store.Get(args[0], args[1]); !ok {
			return fmt.Errorf("no account %s/%s", args[0], args[1])
		}
		if err := app.store.Remove(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Removed %s/%s\n", args[0], args[1])
		return nil
	},
}

func init() {
	accountsCmd.Flags().BoolVar(&accountsRefresh, "refresh", false, "Re-validate every account against its platform")
	accountsCmd.AddCommand(accountsRemoveCmd)
	rootCmd.AddCommand(accountsCmd)
}

func runAccounts(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if accountsRefresh {
		if err := app.refreshAccounts(ctx); err != nil {
			return err
		}
	}

	accounts := app.store.List()
	if len(accounts) == 0 {
		fmt.Println("No accounts stored. Run `socialnuke login <platform>` first.")
		return nil
	}

	for _, acc := range accounts {
		fmt.Printf("%s  %s  %s\n",
			titleStyle.Render(acc.Platform),
			acc.Name,
			dimStyle.Render(fmt.Sprintf("(%s, refreshed %s)", acc.ID, acc.Refreshed.Format("2006-01-02"))))
	}
	return nil
}

// refreshAccounts re-identifies every stored account and drops the ones
// whose tokens no longer work.
func (a *app) refreshAccounts(ctx context.Context) error {
	for i, acc := range a.store.List() {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(refreshThrottle):
			}
		}

		p := a.registry.Get(acc.Platform)
		if p == nil {
			a.log.Warn("account for unknown platform", "platform", acc.Platform, "id", acc.ID)
			continue
		}

		actor, err := p.WithToken(ctx, acc.Token)
		if err != nil {
			if platform.IsUnauthorized(err) {
				fmt.Printf("%s %s/%s: token rejected, removing\n", warnStyle.Render("!"), acc.Platform, acc.Name)
				if err := a.store.Remove(acc.Platform, acc.ID); err != nil {
					return err
				}
				continue
			}
			a.log.Warn("refresh failed, keeping account", "platform", acc.Platform, "id", acc.ID, "error", err)
			continue
		}

		user := actor.User()
		acc.Name = user.Name
		acc.IconURL = user.IconURL
		acc.Refreshed = time.Now()
		if err := a.store.Upsert(acc); err != nil {
			return err
		}
	}
	return nil
}
