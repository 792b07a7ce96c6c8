package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/circlepack/internal/store"
)

var (
	checkpointsDataDir string
	cleanKeepLast      int
	cleanOlderThan     time.Duration
	cleanForce         bool
)

var checkpointsCmd = &cobra.Command{
	Use:   "checkpoints",
	Short: "Manage saved job checkpoints",
}

var checkpointsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved checkpoints",
	RunE:  runCheckpointsList,
}

var checkpointsCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete old checkpoints",
	RunE:  runCheckpointsClean,
}

var checkpointsTraceCmd = &cobra.Command{
	Use:   "trace <job-id>",
	Short: "Print a job's improvement history",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheckpointsTrace,
}

func init() {
	checkpointsCmd.PersistentFlags().StringVar(&checkpointsDataDir, "data-dir", "./data", "Directory for job checkpoints")
	checkpointsCleanCmd.Flags().IntVar(&cleanKeepLast, "keep-last", 0, "Keep N most recent checkpoints")
	checkpointsCleanCmd.Flags().DurationVar(&cleanOlderThan, "older-than", 0, "Delete checkpoints older than this duration")
	checkpointsCleanCmd.Flags().BoolVar(&cleanForce, "force", false, "Skip confirmation prompt")

	checkpointsCmd.AddCommand(checkpointsListCmd)
	checkpointsCmd.AddCommand(checkpointsCleanCmd)
	checkpointsCmd.AddCommand(checkpointsTraceCmd)
	rootCmd.AddCommand(checkpointsCmd)
}

func runCheckpointsTrace(cmd *cobra.Command, args []string) error {
	reader, err := store.NewTraceReader(checkpointsDataDir, args[0])
	if err != nil {
		return err
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("Trace is empty")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EVALS\tBEST SUM\tPHASE\tTIME")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%.6f\t%s\t%s\n",
			e.Evals, e.BestSum, e.Phase, e.Timestamp.Format(time.RFC3339))
	}
	return w.Flush()
}

func runCheckpointsList(cmd *cobra.Command, args []string) error {
	checkpointStore, err := store.NewFSStore(checkpointsDataDir)
	if err != nil {
		return err
	}

	infos, err := checkpointStore.ListCheckpoints()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("No checkpoints found")
		return nil
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Timestamp.After(infos[j].Timestamp)
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "JOB ID\tN\tBEST SUM\tEVALS\tSAVED")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%d\t%.6f\t%d\t%s\n",
			info.JobID, info.N, info.BestSum, info.Evals,
			info.Timestamp.Format(time.RFC3339))
	}
	return w.Flush()
}

func runCheckpointsClean(cmd *cobra.Command, args []string) error {
	if cleanKeepLast == 0 && cleanOlderThan == 0 {
		return fmt.Errorf("specify --keep-last or --older-than")
	}

	checkpointStore, err := store.NewFSStore(checkpointsDataDir)
	if err != nil {
		return err
	}

	infos, err := checkpointStore.ListCheckpoints()
	if err != nil {
		return err
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Timestamp.After(infos[j].Timestamp)
	})

	var toDelete []store.CheckpointInfo
	cutoff := time.Now().Add(-cleanOlderThan)
	for i, info := range infos {
		if cleanKeepLast > 0 && i >= cleanKeepLast {
			toDelete = append(toDelete, info)
			continue
		}
		if cleanOlderThan > 0 && info.Timestamp.Before(cutoff) {
			toDelete = append(toDelete, info)
		}
	}

	if len(toDelete) == 0 {
		fmt.Println("Nothing to delete")
		return nil
	}

	if !cleanForce {
		fmt.Printf("Delete %d checkpoint(s)? [y/N] ", len(toDelete))
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "y") {
			fmt.Println("Aborted")
			return nil
		}
	}

	for _, info := range toDelete {
		if err := checkpointStore.DeleteCheckpoint(info.JobID); err != nil {
			fmt.Fprintf(os.Stderr, "failed to delete %s: %v\n", info.JobID, err)
			continue
		}
		fmt.Printf("Deleted %s\n", info.JobID)
	}
	return nil
}
