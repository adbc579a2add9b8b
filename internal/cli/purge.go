package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kekst/socialnuke/pkg/queue"
)

var (
	purgeAccount string
	purgeType    string
	purgeYes     bool
	purgeFilters filterFlags
)

var purgeCmd = &cobra.Command{
	Use:   "purge <platform>",
	Short: "Delete your own messages in a target",
	Long: `Delete your own messages in a target, one by one, under the
platform's rate limits. Deletion is permanent; you will be asked to
confirm unless --yes is given.

Filters narrow what gets deleted. Discord supports --content, --after,
--before and --has; Reddit supports --content, --after and --before.

Examples:
  socialnuke purge discord
  socialnuke purge discord --content "password" --yes
  socialnuke purge reddit --before 2020-01-01`,
	Args: cobra.ExactArgs(1),
	RunE: runPurge,
}

func init() {
	purgeCmd.Flags().StringVar(&purgeAccount, "account", "", "Account ID (defaults to the only stored account)")
	purgeCmd.Flags().StringVar(&purgeType, "type", "", "Target type key (e.g. dms, guilds)")
	purgeCmd.Flags().BoolVarP(&purgeYes, "yes", "y", false, "Skip the confirmation prompt")
	purgeCmd.Flags().StringVar(&purgeFilters.content, "content", "", "Only messages containing this text")
	purgeCmd.Flags().StringVar(&purgeFilters.after, "after", "", "Only messages after this date (YYYY-MM-DD)")
	purgeCmd.Flags().StringVar(&purgeFilters.before, "before", "", "Only messages before this date (YYYY-MM-DD)")
	purgeCmd.Flags().StringVar(&purgeFilters.has, "has", "", "Only messages containing this kind of content (file, image, ...)")
	purgeCmd.Flags().BoolVar(&purgeFilters.oldest, "oldest", true, "Start from the oldest messages")
	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	p, err := app.platformArg(args)
	if err != nil {
		return err
	}
	if !p.Features().Purge {
		return fmt.Errorf("%s does not support purging", p.Name())
	}
	ctx := cmd.Context()

	filters, err := purgeFilters.build(p)
	if err != nil {
		return err
	}

	acc, err := app.pickAccount(p, purgeAccount)
	if err != nil {
		return err
	}
	actor, err := p.WithToken(ctx, acc.Token)
	if err != nil {
		return err
	}

	typeKey, err := pickTargetType(p, purgeType)
	if err != nil {
		return err
	}
	target, err := pickTarget(ctx, actor, typeKey)
	if err != nil {
		return err
	}

	t := queue.NewTask(queue.KindPurge, target.Query(filters))
	t.Platform = p.Key()
	t.Owner = acc.Name
	t.Description = target.Name()
	t.IconURL = target.IconURL()
	t.Delay = p.Delay()

	prompt := fmt.Sprintf("Delete your messages in %s?", target.Name())
	if target.CanEstimate() {
		est, err := target.Estimate(ctx, filters)
		if err != nil {
			app.log.Warn("estimate failed", "target", target.ID(), "error", err)
		} else {
			t.SetTotal(est)
			prompt = fmt.Sprintf("Delete about %d of your messages in %s?", est, target.Name())
		}
	}

	if !purgeYes {
		fmt.Println(warnStyle.Render("Deletion is permanent and cannot be undone."))
		ok, err := confirm(prompt)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}
	}

	q := newProgressQueue(app.log)
	q.Add(t)

	if err := q.Run(ctx); err != nil {
		fmt.Println()
		return err
	}
	fmt.Println()
	fmt.Println("Done.")
	return nil
}
