package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	targetsAccount  string
	targetsType     string
	targetsChildren bool
)

var targetsCmd = &cobra.Command{
	Use:   "targets <platform>",
	Short: "List purgeable targets for an account",
	Long: `List the targets a purge or dump could run against: DM threads
and guilds on Discord, your post and comment listings on Reddit.

Examples:
  socialnuke targets discord
  socialnuke targets discord --type guilds --children
  socialnuke targets reddit`,
	Args: cobra.ExactArgs(1),
	RunE: runTargets,
}

func init() {
	targetsCmd.Flags().StringVar(&targetsAccount, "account", "", "Account ID (defaults to the only stored account)")
	targetsCmd.Flags().StringVar(&targetsType, "type", "", "Target type key (e.g. dms, guilds)")
	targetsCmd.Flags().BoolVar(&targetsChildren, "children", false, "Also list each target's channels")
	rootCmd.AddCommand(targetsCmd)
}

func runTargets(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	p, err := app.platformArg(args)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	acc, err := app.pickAccount(p, targetsAccount)
	if err != nil {
		return err
	}
	actor, err := p.WithToken(ctx, acc.Token)
	if err != nil {
		return err
	}

	typeKey, err := pickTargetType(p, targetsType)
	if err != nil {
		return err
	}

	targets, err := actor.Targets(ctx, typeKey)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		fmt.Println("No targets.")
		return nil
	}

	for _, t := range targets {
		fmt.Printf("%s  %s\n", t.Name(), dimStyle.Render(t.ID()))

		if !targetsChildren || !t.HasChildren() {
			continue
		}
		children, err := t.Children(ctx)
		if err != nil {
			return err
		}
		for _, c := range children {
			name := c.Name()
			if c.Disabled() {
				name = dimStyle.Render(name)
			}
			fmt.Printf("    %s  %s\n", name, dimStyle.Render(c.ID()))
		}
	}
	return nil
}
