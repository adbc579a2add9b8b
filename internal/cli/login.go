package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kekst/socialnuke/pkg/account"
)

var loginCmd = &cobra.Command{
	Use:   "login <platform>",
	Short: "Log in to a platform and store the account",
	Long: `Log in to a platform and store the resulting account locally.

For Discord the token is captured from your own browser: start Chrome
with --remote-debugging-port=9222, then run this command and complete
the login in the tab it opens.

For Reddit a browser OAuth flow is used; register an installed app at
https://www.reddit.com/prefs/apps and pass its ID via --reddit-client-id
or SOCIALNUKE_REDDIT_CLIENT_ID.

Examples:
  socialnuke login discord
  socialnuke login reddit --reddit-client-id abc123`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	p, err := app.platformArg(args)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	token, err := p.TokenFlow(ctx)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	actor, err := p.WithToken(ctx, token)
	if err != nil {
		return fmt.Errorf("token did not validate: %w", err)
	}
	user := actor.User()

	acc := account.Account{
		Platform:  p.Key(),
		ID:        user.ID,
		Name:      user.Name,
		IconURL:   user.IconURL,
		Token:     token,
		Refreshed: time.Now(),
	}
	if err := app.store.Upsert(acc); err != nil {
		return fmt.Errorf("failed to store account: %w", err)
	}

	fmt.Printf("Logged in to %s as %s\n", p.Name(), titleStyle.Render(user.Name))
	return nil
}
