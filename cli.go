package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"search-adapters/office"
)

var version = "1.0.0"

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	labelStyle   = lipgloss.NewStyle().Bold(true)
)

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	if width > 120 {
		width = 120
	}
	return width
}

func separator() string {
	return dimStyle.Render(strings.Repeat("━", terminalWidth()))
}

// serveAddr resolves the listen address for a serve subcommand: the -addr flag
// wins over the env-resolved fallback.
func serveAddr(name string, args []string, fallback string) string {
	flags := flag.NewFlagSet(name, flag.ExitOnError)
	addr := flags.String("addr", fallback, "listen address")
	if err := flags.Parse(args); err != nil {
		os.Exit(2)
	}
	return *addr
}

// runReindex triggers a one-shot reindex against a running office adapter and
// prints the returned summary.
func runReindex(args []string) {
	defaultURL := strings.TrimSpace(os.Getenv("OFFICEINDEX_REINDEX_URL"))
	if defaultURL == "" {
		defaultURL = "http://127.0.0.1:8103/reindex"
	}

	flags := flag.NewFlagSet("reindex", flag.ExitOnError)
	urlFlag := flags.String("url", defaultURL, "reindex endpoint of a running officeindex adapter")
	modeFlag := flags.String("mode", office.ModeFull, "refresh mode: full or incremental")
	timeoutFlag := flags.Int("timeout", 25, "request timeout in seconds")
	if err := flags.Parse(args); err != nil {
		os.Exit(2)
	}

	mode, err := office.ParseRefreshMode(*modeFlag, office.ModeFull)
	if err != nil {
		fmt.Println(errorStyle.Render("Error: " + err.Error()))
		os.Exit(2)
	}

	fmt.Println(headerStyle.Render("Office index reindex"))
	fmt.Println(separator())
	fmt.Printf("%s %s\n", labelStyle.Render("Endpoint:"), *urlFlag)
	fmt.Printf("%s %s\n", labelStyle.Render("Mode:"), mode)
	fmt.Println()

	body, _ := json.Marshal(map[string]string{"mode": mode})
	client := &http.Client{Timeout: time.Duration(*timeoutFlag) * time.Second}

	startedAt := time.Now()
	resp, err := client.Post(*urlFlag, "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Println(errorStyle.Render("Error: " + err.Error()))
		os.Exit(1)
	}
	defer resp.Body.Close()

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		fmt.Println(errorStyle.Render(fmt.Sprintf("Error: unreadable response (HTTP %d)", resp.StatusCode)))
		os.Exit(1)
	}

	if resp.StatusCode != http.StatusOK {
		message, _ := payload["message"].(string)
		errorCode, _ := payload["errorCode"].(string)
		fmt.Println(errorStyle.Render(fmt.Sprintf("Error: %s (%s, HTTP %d)", message, errorCode, resp.StatusCode)))
		os.Exit(1)
	}

	printReindexSummary(payload, time.Since(startedAt))
}

func printReindexSummary(payload map[string]any, elapsed time.Duration) {
	status, _ := payload["status"].(string)
	switch status {
	case "ok":
		fmt.Println(successStyle.Render("Reindex complete"))
	case "degraded":
		fmt.Println(warnStyle.Render("Reindex complete with failures"))
	default:
		fmt.Println(warnStyle.Render("Reindex finished: " + status))
	}
	fmt.Println(separator())

	intField := func(key string) int64 {
		if value, ok := payload[key].(float64); ok {
			return int64(value)
		}
		return 0
	}

	fmt.Printf("%s %d\n", labelStyle.Render("Indexed files:"), intField("indexedFiles"))
	fmt.Printf("%s %d\n", labelStyle.Render("Scanned files:"), intField("scannedFiles"))
	fmt.Printf("%s %d\n", labelStyle.Render("Reused files:"), intField("reusedFiles"))
	fmt.Printf("%s %d\n", labelStyle.Render("Updated files:"), intField("updatedFiles"))
	fmt.Printf("%s %d\n", labelStyle.Render("Removed files:"), intField("removedFiles"))
	if failed := intField("failedFiles"); failed > 0 {
		fmt.Printf("%s %s\n", labelStyle.Render("Failed files:"), warnStyle.Render(fmt.Sprintf("%d", failed)))
		if diagnostics, ok := payload["diagnostics"].([]any); ok {
			for _, diagnostic := range diagnostics {
				if message, ok := diagnostic.(string); ok {
					fmt.Printf("  %s\n", dimStyle.Render(message))
				}
			}
		}
	}
	fmt.Printf("%s %dms (server) / %s (total)\n", labelStyle.Render("Took:"), intField("tookMs"), elapsed.Round(time.Millisecond))
}

func showUsage() {
	fmt.Println(headerStyle.Render("search-adapters - workspace search services"))
	fmt.Println()
	fmt.Println(labelStyle.Render("USAGE:"))
	fmt.Println("  search-adapters officeindex [-addr :8103]   serve the office document index")
	fmt.Println("  search-adapters chatindex [-addr :8101]     serve the chat search adapter")
	fmt.Println("  search-adapters pageindex [-addr :8102]     serve the page search adapter")
	fmt.Println("  search-adapters reindex                     trigger a reindex on a running office adapter")
	fmt.Println()
	fmt.Println(labelStyle.Render("SERVE OPTIONS:"))
	fmt.Println("  -addr     listen address, default from the matching *_ADDR env var")
	fmt.Println()
	fmt.Println(labelStyle.Render("REINDEX OPTIONS:"))
	fmt.Println("  -url      endpoint, default $OFFICEINDEX_REINDEX_URL or http://127.0.0.1:8103/reindex")
	fmt.Println("  -mode     full (default) or incremental")
	fmt.Println("  -timeout  request timeout in seconds, default 25")
	fmt.Println()
	fmt.Println(labelStyle.Render("ENVIRONMENT:"))
	fmt.Println("  WORKSPACE_FILES_ROOT, DATABASE_URL, LOG_LEVEL")
	fmt.Println("  OFFICEINDEX_ADDR, CHATINDEX_ADDR, PAGEINDEX_ADDR")
	fmt.Println("  OFFICEINDEX_REFRESH_INTERVAL_SECONDS, OFFICEINDEX_BACKGROUND_SYNC_SECONDS")
	fmt.Println("  OFFICEINDEX_EXTRACT_WORKERS, OFFICEINDEX_INCLUDE_PDF")
	fmt.Println("  OFFICEINDEX_OPENSEARCH_URL, OFFICEINDEX_OPENSEARCH_PIPELINE")
}

func showVersion() {
	fmt.Println(successStyle.Render("search-adapters v" + version))
}
