// Package ui renders discovery, scan, and import results to stdout.
package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/mcpherd/mcpherd/pkg/detect"
	"github.com/mcpherd/mcpherd/pkg/discovery"
	"github.com/mcpherd/mcpherd/pkg/importer"
	"github.com/mcpherd/mcpherd/pkg/scanner"
)

// newTable builds a bordered, left-aligned table with the given headers.
func newTable(headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.Options(
		tablewriter.WithHeader(headers),
		tablewriter.WithRendition(
			tw.Rendition{
				Borders: tw.Border{
					Left:   tw.State(1),
					Top:    tw.State(1),
					Right:  tw.State(1),
					Bottom: tw.State(1),
				},
			},
		),
		tablewriter.WithAlignment(tw.MakeAlign(len(headers), tw.AlignLeft)),
	)
	return table
}

// RenderDiscoveryTable renders the per-client detection results to stdout.
func RenderDiscoveryTable(outcome discovery.Outcome) error {
	table := newTable([]string{"Client", "Status", "Source", "Location", "Version"})

	for _, result := range outcome.Results {
		location := result.BinaryPath
		if location == "" {
			location = result.AppBundlePath
		}
		if err := table.Append([]string{
			string(result.Client),
			statusLabel(result.Status),
			string(result.Source),
			location,
			result.Version,
		}); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	fmt.Printf("\n%d detected, %d not found, %d skipped",
		outcome.Summary.Detected, outcome.Summary.NotFound, outcome.Summary.Skipped)
	if outcome.Summary.WSLFallback > 0 {
		fmt.Printf(" (%d via Windows host install)", outcome.Summary.WSLFallback)
	}
	fmt.Println()

	for _, result := range outcome.Results {
		for _, warning := range result.Warnings {
			fmt.Printf("warning: %s: %s\n", result.Client, warning)
		}
	}
	return nil
}

func statusLabel(status detect.Status) string {
	switch status {
	case detect.StatusFound:
		return "✅ Found"
	case detect.StatusSkipped:
		return "⏭ Skipped"
	default:
		return "❌ Not found"
	}
}

// RenderScanReport renders discovered entries, conflicts, and parse problems
// to stdout.
func RenderScanReport(report scanner.Report) error {
	if len(report.Discovered) == 0 && len(report.Conflicts) == 0 {
		fmt.Println("No unmanaged MCP server entries found.")
	}

	if len(report.Discovered) > 0 {
		table := newTable([]string{"Name", "Command", "Scope", "Found In"})
		for _, server := range report.Discovered {
			command := server.Command
			if len(server.Args) > 0 {
				command = command + " " + strings.Join(server.Args, " ")
			}
			if err := table.Append([]string{
				server.Name,
				command,
				string(server.SuggestedScope),
				server.Source.Location,
			}); err != nil {
				return fmt.Errorf("failed to append row: %w", err)
			}
		}
		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}
	}

	for _, conflict := range report.Conflicts {
		fmt.Printf("\nconflict: %q is defined differently (%s):\n", conflict.Name, conflict.Reason)
		for i, source := range conflict.Sources {
			cfg := conflict.Configs[i]
			fmt.Printf("  - %s: %s %s\n", source.Location, cfg.Command, strings.Join(cfg.Args, " "))
		}
	}
	if len(report.Conflicts) > 0 {
		fmt.Println("\nConflicting entries are excluded from import. Resolve them manually.")
	}

	for _, status := range report.PathStatuses {
		if status.Status != detect.ParseInvalid {
			continue
		}
		detail := status.Error.Message
		if status.Error.Line > 0 {
			detail = fmt.Sprintf("%s (line %d, column %d)", detail, status.Error.Line, status.Error.Column)
		}
		fmt.Printf("warning: %s could not be parsed: %s\n", status.Path, detail)
	}
	return nil
}

// RenderManagedTable renders the centrally managed entries. Each row is
// name, command, transport.
func RenderManagedTable(rows [][]string) error {
	table := newTable([]string{"Name", "Command", "Transport"})
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}

// RenderImportResult renders the outcome of an import run to stdout.
func RenderImportResult(result importer.Result, dryRun bool) error {
	verb := "Imported"
	if dryRun {
		verb = "Would import"
	}

	if len(result.Imported) == 0 {
		fmt.Println("Nothing to import.")
	} else {
		table := newTable([]string{"Name", "Command", "Scope"})
		for _, server := range result.Imported {
			if err := table.Append([]string{
				server.Name,
				server.Command,
				string(server.SuggestedScope),
			}); err != nil {
				return fmt.Errorf("failed to append row: %w", err)
			}
		}
		if err := table.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}
		fmt.Printf("%s %d entries.\n", verb, len(result.Imported))
	}

	if len(result.Skipped) > 0 {
		fmt.Printf("Skipped %d entries due to write failures; see warnings above.\n", len(result.Skipped))
	}

	if len(result.EnvVarsToSet) > 0 {
		fmt.Println("\nSet these environment variables for the imported entries to work:")
		for _, name := range result.EnvVarsToSet {
			fmt.Printf("  export %s=...\n", name)
		}
	}
	return nil
}
