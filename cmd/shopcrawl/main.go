// Command shopcrawl runs one interactive scrape from the terminal: pick a
// site, type a keyword, watch the browser, and get a CSV (plus XLSX) of the
// listings it found.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/shopcrawl/shopcrawl/internal/browser"
	"github.com/shopcrawl/shopcrawl/internal/config"
	"github.com/shopcrawl/shopcrawl/internal/detect"
	"github.com/shopcrawl/shopcrawl/internal/export"
	"github.com/shopcrawl/shopcrawl/internal/extract"
	"github.com/shopcrawl/shopcrawl/internal/session"
	"github.com/shopcrawl/shopcrawl/internal/sites"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	registry, err := sites.Load(cfg.SitesFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load site registry:", err)
		os.Exit(1)
	}

	in := bufio.NewReader(os.Stdin)

	fmt.Println("Available sites:")
	for i, s := range registry.All() {
		fmt.Printf("  %d. %s\n", i+1, s.DisplayName)
	}
	fmt.Printf("Choose a site [1-%d]: ", registry.Len())
	choice, _ := readLine(in)
	idx, err := strconv.Atoi(choice)
	if err != nil {
		fmt.Println("invalid choice, exiting")
		os.Exit(1)
	}
	site, ok := registry.ByIndex(idx - 1)
	if !ok {
		fmt.Println("invalid choice, exiting")
		os.Exit(1)
	}

	fmt.Print("Search keyword: ")
	query, _ := readLine(in)
	if query == "" {
		fmt.Println("no keyword given, exiting")
		return
	}

	fmt.Printf("Pages to scrape [default %d]: ", cfg.Session.PageBudget)
	pagesRaw, _ := readLine(in)
	pages := cfg.Session.PageBudget
	if n, err := strconv.Atoi(pagesRaw); err == nil && n > 0 {
		pages = n
	}

	fmt.Print("Run headless? [y/N]: ")
	headlessRaw, _ := readLine(in)
	headless := strings.EqualFold(headlessRaw, "y") || strings.EqualFold(headlessRaw, "yes")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		fmt.Println("\ninterrupted, stopping...")
		cancel()
	}()

	opts := browser.DefaultOptions()
	opts.Headless = headless
	opts.Timeout = cfg.Browser.Timeout

	b, err := browser.New(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to start browser:", err)
		os.Exit(1)
	}
	defer b.Close()

	page, err := b.NewPage()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to open page:", err)
		os.Exit(1)
	}

	sessCfg := session.Config{
		PageBudget:   pages,
		WaitCeiling:  cfg.Session.WaitCeiling,
		PollInterval: cfg.Session.PollInterval,
		ScrollSteps:  cfg.Session.ScrollSteps,
		ScrollPause:  cfg.Session.ScrollPause,
		SettleDelay:  cfg.Session.SettleDelay,
		SnapshotDir:  cfg.Session.SnapshotDir,
		Notify: func(msg string) {
			fmt.Println(">>", msg)
		},
		OnPage: func(pageIndex int, items []extract.Listing) {
			fmt.Printf("page %d: %d listings\n", pageIndex+1, len(items))
		},
	}

	s := session.New(page, site, detect.NewDefault(), sessCfg, logger)
	listings := s.Run(ctx, query)

	stem := export.FileStem(site.ID, query)
	csvPath := stem + ".csv"
	if err := export.WriteCSV(csvPath, listings); err != nil {
		fmt.Fprintln(os.Stderr, "failed to write CSV:", err)
		os.Exit(1)
	}

	xlsxPath := stem + ".xlsx"
	if err := export.WriteXLSX(xlsxPath, listings); err != nil {
		fmt.Fprintln(os.Stderr, "could not write XLSX:", err)
		xlsxPath = ""
	}

	if len(listings) == 0 {
		fmt.Printf("no listings found; wrote headers to %s\n", csvPath)
		return
	}
	fmt.Printf("saved %d records to %s", len(listings), csvPath)
	if xlsxPath != "" {
		fmt.Printf(" and %s", xlsxPath)
	}
	fmt.Println()
}

func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	return strings.TrimSpace(line), err
}
