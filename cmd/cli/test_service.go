package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hamed0406/healthcheck/internal/config"
	"github.com/hamed0406/healthcheck/internal/probe"
)

var testServiceCmd = &cobra.Command{
	Use:   "test-service <id>",
	Short: "Run one service's probe once and report the outcome",
	Args:  cobra.ExactArgs(1),
	RunE:  runTestService,
}

func init() {
	rootCmd.AddCommand(testServiceCmd)
}

func runTestService(cmd *cobra.Command, args []string) error {
	f, err := config.Load(configPath)
	if err != nil {
		return err
	}
	id := args[0]
	svc, ok := f.Services[id]
	if !ok {
		return fmt.Errorf("unknown service %q (known: %s)", id, strings.Join(serviceIDs(f), ", "))
	}

	p, err := probe.New(svc.Check)
	if err != nil {
		return fmt.Errorf("service %q: %w", id, err)
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), svc.Check.Timeout())
	defer cancel()
	out := p.Execute(ctx)

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s %s\n", bold.Render(svc.Name), dimText.Render("("+svc.Check.Kind()+")"))
	if out.Success {
		fmt.Fprintf(w, "%s %s %s\n", passed.Render("PASSED"), out.Message, dimText.Render(out.Latency.String()))
		return nil
	}
	fmt.Fprintf(w, "%s %s %s\n", failed.Render("FAILED"), out.Message, dimText.Render(out.Latency.String()))
	return fmt.Errorf("service %q failed its check", id)
}

func serviceIDs(f *config.File) []string {
	ids := make([]string, 0, len(f.Services))
	for id := range f.Services {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
