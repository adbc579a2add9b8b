package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kekst/socialnuke/pkg/dump"
	"github.com/kekst/socialnuke/pkg/queue"
)

var (
	dumpAccount string
	dumpType    string
	dumpOut     string
	dumpDrive   bool
	dumpFolder  string
	dumpFilters filterFlags
)

var dumpCmd = &cobra.Command{
	Use:   "dump <platform>",
	Short: "Export your own messages in a target without deleting",
	Long: `Export your own messages in a target to a JSON Lines file,
walking the same search the purge command would, without deleting
anything. Useful as a dry run before a purge, or as a backup.

With --drive the dump is uploaded to Google Drive instead; this needs a
credentials.json in the config directory (OAuth client from Google
Cloud Console with the Drive API enabled).

Examples:
  socialnuke dump discord
  socialnuke dump discord --content "password" --out ./dumps
  socialnuke dump reddit --drive`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().StringVar(&dumpAccount, "account", "", "Account ID (defaults to the only stored account)")
	dumpCmd.Flags().StringVar(&dumpType, "type", "", "Target type key (e.g. dms, guilds)")
	dumpCmd.Flags().StringVar(&dumpOut, "out", "dumps", "Output directory for dump files")
	dumpCmd.Flags().BoolVar(&dumpDrive, "drive", false, "Upload the dump to Google Drive instead of writing a local file")
	dumpCmd.Flags().StringVar(&dumpFolder, "folder", "socialnuke dumps", "Google Drive folder name (with --drive)")
	dumpCmd.Flags().StringVar(&dumpFilters.content, "content", "", "Only messages containing this text")
	dumpCmd.Flags().StringVar(&dumpFilters.after, "after", "", "Only messages after this date (YYYY-MM-DD)")
	dumpCmd.Flags().StringVar(&dumpFilters.before, "before", "", "Only messages before this date (YYYY-MM-DD)")
	dumpCmd.Flags().StringVar(&dumpFilters.has, "has", "", "Only messages containing this kind of content (file, image, ...)")
	dumpCmd.Flags().BoolVar(&dumpFilters.oldest, "oldest", true, "Start from the oldest messages")
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	p, err := app.platformArg(args)
	if err != nil {
		return err
	}
	if !p.Features().Dump {
		return fmt.Errorf("%s does not support dumping", p.Name())
	}
	ctx := cmd.Context()

	filters, err := dumpFilters.build(p)
	if err != nil {
		return err
	}

	acc, err := app.pickAccount(p, dumpAccount)
	if err != nil {
		return err
	}
	actor, err := p.WithToken(ctx, acc.Token)
	if err != nil {
		return err
	}

	typeKey, err := pickTargetType(p, dumpType)
	if err != nil {
		return err
	}
	target, err := pickTarget(ctx, actor, typeKey)
	if err != nil {
		return err
	}

	t := queue.NewTask(queue.KindDump, target.Query(filters))
	t.Platform = p.Key()
	t.Owner = acc.Name
	t.Description = target.Name()
	t.IconURL = target.IconURL()
	t.Delay = p.Delay()

	if target.CanEstimate() {
		if est, err := target.Estimate(ctx, filters); err == nil {
			t.SetTotal(est)
		} else {
			app.log.Warn("estimate failed", "target", target.ID(), "error", err)
		}
	}

	if dumpDrive {
		sink, err := dump.NewDriveSink(ctx, &dump.DriveConfig{
			CredentialsPath: filepath.Join(configDir, "credentials.json"),
			TokenPath:       filepath.Join(configDir, "drive-token.json"),
			Folder:          dumpFolder,
		}, target.Name())
		if err != nil {
			return err
		}
		t.Sink = sink

		if err := runDumpQueue(app, t, cmd); err != nil {
			return err
		}
		if err := sink.Close(); err != nil {
			return err
		}
		if sink.URL() != "" {
			fmt.Printf("Uploaded to %s\n", sink.URL())
		}
		return nil
	}

	sink, err := dump.NewFileSink(dumpOut, target.Name())
	if err != nil {
		return err
	}
	t.Sink = sink

	if err := runDumpQueue(app, t, cmd); err != nil {
		sink.Close()
		return err
	}
	if err := sink.Close(); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", sink.Path())
	return nil
}

func runDumpQueue(app *app, t *queue.Task, cmd *cobra.Command) error {
	q := newProgressQueue(app.log)
	q.Add(t)
	err := q.Run(cmd.Context())
	fmt.Println()
	return err
}
