// SPDX-License-Identifier: MIT
package client

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
)

var (
	searchPage    int
	searchEngines string
	searchSafe    bool
)

func runSearch(args []string) error {
	var queryParts []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--page":
			if i+1 < len(args) {
				fmt.Sscanf(args[i+1], "%d", &searchPage)
				i++
			}
		case "--engines":
			if i+1 < len(args) {
				searchEngines = args[i+1]
				i++
			}
		case "--safe":
			searchSafe = true
		case "--help", "-h":
			printSearchHelp()
			return nil
		default:
			if !strings.HasPrefix(args[i], "-") {
				queryParts = append(queryParts, args[i])
			}
		}
	}

	if len(queryParts) == 0 {
		return fmt.Errorf("search query required")
	}
	query := strings.Join(queryParts, " ")

	var engines []string
	if searchEngines != "" {
		engines = strings.Split(searchEngines, ",")
	}

	resp, err := apiClient.Search(query, searchPage, engines, searchSafe)
	if err != nil {
		return err
	}

	switch cfg.Output.Format {
	case "json":
		return outputJSON(resp)
	case "plain":
		return outputPlain(resp)
	default:
		return outputTable(resp)
	}
}

func printSearchHelp() {
	fmt.Printf(`Search and print results

Usage:
  %s search [flags] <query>
  %s <query>              (shortcut)

Flags:
      --page int        Page number (default: 1)
      --engines string  Comma-separated list of engine names
      --safe            Enable safesearch
  -h, --help            Show help
`, binaryName, binaryName)
}

func outputJSON(resp *SearchResponse) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func outputPlain(resp *SearchResponse) error {
	for _, r := range resp.Results {
		fmt.Println(r.Title)
		fmt.Printf("  %s\n", r.URL)
		if r.Content != "" {
			fmt.Printf("  %s\n", r.Content)
		}
		fmt.Println()
	}
	fmt.Printf("Found %d results for %q\n", resp.NumberOfResults, resp.Query)
	return nil
}

func outputTable(resp *SearchResponse) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "TITLE\tENGINE\tURL\n")
	fmt.Fprintf(tw, "-----\t------\t---\n")
	for _, r := range resp.Results {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", truncate(r.Title, 50), r.Engine, r.URL)
	}
	tw.Flush()

	if len(resp.UnresponsiveEngines) > 0 {
		fmt.Printf("\nUnresponsive: %s\n", strings.Join(resp.UnresponsiveEngines, ", "))
	}
	fmt.Printf("\nFound %d results for %q\n", resp.NumberOfResults, resp.Query)
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
