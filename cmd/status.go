package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var statusServerURL string

var statusCmd = &cobra.Command{
	Use:   "status [job-id]",
	Short: "Show status of server jobs",
	Long:  `Lists all jobs on a running server, or shows detailed status for one job.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusServerURL, "server", "http://localhost:8080", "Server URL")

	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: 10 * time.Second}

	if len(args) == 0 {
		return listServerJobs(client)
	}
	return showJobStatus(client, args[0])
}

func listServerJobs(client *http.Client) error {
	resp, err := client.Get(statusServerURL + "/api/v1/jobs")
	if err != nil {
		return fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s", resp.Status)
	}

	var jobs []struct {
		ID      string  `json:"id"`
		State   string  `json:"state"`
		Phase   string  `json:"phase"`
		BestSum float64 `json:"bestSum"`
		Evals   int     `json:"evals"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Println("No jobs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "JOB ID\tSTATE\tPHASE\tBEST SUM\tEVALS")
	for _, job := range jobs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.6f\t%d\n",
			job.ID, job.State, job.Phase, job.BestSum, job.Evals)
	}
	return w.Flush()
}

func showJobStatus(client *http.Client, jobID string) error {
	resp, err := client.Get(statusServerURL + "/api/v1/jobs/" + jobID + "/status")
	if err != nil {
		return fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("job %s not found", jobID)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s", resp.Status)
	}

	var status map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
