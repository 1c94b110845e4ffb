package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MarvelOlas/aws-health-checker/config"
	"github.com/MarvelOlas/aws-health-checker/storage"
)

var (
	historyStorePath string
	historyLimit     int
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored health check snapshots",
	Long: `List stored snapshots, newest first, and show the state
transitions between the two most recent checks.`,
	Example: `  awshealth history              # Last 10 snapshots
  awshealth history --limit 50   # More history
  awshealth history --store /var/lib/awshealth`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyStorePath, "store", "", "Snapshot store directory")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Maximum snapshots to list")
}

func runHistory(cmd *cobra.Command, args []string) error {
	storePath := historyStorePath
	if storePath == "" {
		storePath = config.Default().Store.Path
	}

	store, err := storage.Open(storePath)
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	defer func() { _ = store.Close() }()

	metas := store.ListSnapshots(historyLimit)
	if len(metas) == 0 {
		fmt.Println("No snapshots recorded yet. Run 'awshealth check' first.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SEQ\tTAKEN AT\tREGIONS\tINSTANCES\tALARMS\tVERDICT")
	_, _ = fmt.Fprintln(w, "---\t--------\t-------\t---------\t------\t-------")

	for _, meta := range metas {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\n",
			meta.Sequence,
			meta.TakenAt.Format("2006-01-02 15:04:05"),
			strings.Join(meta.Regions, ","),
			meta.InstanceCount,
			meta.AlarmCount,
			meta.Verdict,
		)
	}
	_ = w.Flush()

	return showLatestTransitions(store)
}

// showLatestTransitions diffs the two most recent snapshots.
func showLatestTransitions(store *storage.Store) error {
	seq := store.CurrentSequence()
	if seq < 2 {
		return nil
	}

	current, _, err := store.GetSnapshot(seq)
	if err != nil {
		return fmt.Errorf("failed to load snapshot %d: %w", seq, err)
	}
	previous, _, err := store.GetSnapshot(seq - 1)
	if err != nil {
		return fmt.Errorf("failed to load snapshot %d: %w", seq-1, err)
	}

	transitions := storage.DetectTransitions(previous, current)
	fmt.Printf("\n")
	if len(transitions) == 0 {
		fmt.Printf("No changes between snapshots %d and %d.\n", seq-1, seq)
		return nil
	}

	printTransitions(transitions, seq-1, seq)
	return nil
}
