package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hamed0406/healthcheck/internal/domain"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show the current health of every running service",
	Aliases: []string{"s", "ls"},
	Args:    cobra.NoArgs,
	RunE:    runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	rows, err := fetchServices(cmd, strings.TrimRight(apiURL, "/")+"/api/services")
	if err != nil {
		return err
	}
	renderStatus(cmd.OutOrStdout(), rows, time.Now())
	return nil
}

func fetchServices(cmd *cobra.Command, url string) ([]domain.ServiceStatus, error) {
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("contact API: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status: %s", resp.Status)
	}
	var rows []domain.ServiceStatus
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode services: %w", err)
	}
	return rows, nil
}

func renderStatus(w io.Writer, rows []domain.ServiceStatus, now time.Time) {
	if len(rows) == 0 {
		fmt.Fprintln(w, dimText.Render("No services running."))
		return
	}
	header := fmt.Sprintf("  %-24s %-9s %-8s %-10s %s", "SERVICE", "STATE", "FAILS", "UPTIME", "MESSAGE")
	fmt.Fprintln(w, tableHeader.Render(header))

	for _, r := range rows {
		state := fmt.Sprintf("%-9s", r.State.String())
		switch r.State {
		case domain.StatusSuccess:
			state = passed.Render(state)
		case domain.StatusFailure:
			state = failed.Render(state)
		default:
			state = dimText.Render(state)
		}
		uptime := "-"
		if d := r.Uptime(now); d > 0 {
			uptime = d.Truncate(time.Second).String()
		}
		fmt.Fprintf(w, "  %-24s %s %-8d %-10s %s\n",
			r.Name, state, r.ConsecutiveFailures, uptime, r.Message)
	}
}
