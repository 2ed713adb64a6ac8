package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/apex/log"
	"github.com/mitchellh/colorstring"
	"github.com/spf13/cobra"

	"github.com/pterodactyl/transactfs/config"
	"github.com/pterodactyl/transactfs/filesystem"
	"github.com/pterodactyl/transactfs/plan"
	"github.com/pterodactyl/transactfs/system"
)

var dryRun = false

var applyCmd = &cobra.Command{
	Use:   "apply <plan.yml>",
	Short: "Apply the operations described in a plan file",
	Args:  cobra.ExactArgs(1),
	RunE:  applyCmdRun,
}

func init() {
	applyCmd.Flags().BoolVar(&dryRun, "dry-run", false, "run the plan in a transaction and roll it back once every step succeeded")
}

func applyCmdRun(cmd *cobra.Command, args []string) error {
	p, err := plan.Load(args[0])
	if err != nil {
		return err
	}

	fs, err := filesystem.New(config.Get())
	if err != nil {
		return err
	}
	defer func() {
		if err := fs.Close(); err != nil {
			log.WithField("error", err).Warn("failed to clean up the recycle bin")
		}
	}()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.WithFields(log.Fields{"path": args[0], "steps": len(p.Steps), "dry_run": dryRun}).Info("applying plan")
	report, err := plan.NewRunner(fs, dryRun).Run(ctx, p)
	printSummary(cmd.OutOrStdout(), report, err)
	return err
}

func printSummary(w io.Writer, r *plan.Report, err error) {
	var s string
	switch {
	case err != nil && r.RolledBack:
		s = fmt.Sprintf("[red][bold]Plan failed[reset] after %d of %d steps, every change was rolled back.", r.Applied, r.Total)
	case err != nil:
		s = fmt.Sprintf("[red][bold]Plan failed[reset] after %d of %d steps, completed steps were kept.", r.Applied, r.Total)
	case r.RolledBack:
		s = fmt.Sprintf("[yellow][bold]Dry run[reset] all %d steps can be applied, nothing was changed.", r.Total)
	default:
		s = fmt.Sprintf("[green][bold]Plan applied[reset] %d steps completed.", r.Applied)
	}
	if r.Written > 0 && err == nil {
		s += fmt.Sprintf(" Wrote %s.", system.FormatBytes(r.Written))
	}
	if r.TransactionID != "" {
		s += fmt.Sprintf(" [dark_gray](transaction %s)[reset]", r.TransactionID)
	}
	fmt.Fprintln(w, colorstring.Color(s))
}
