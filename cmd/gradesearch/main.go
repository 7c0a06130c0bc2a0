// Package main is the gradesearch CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/hyperjump/gradesearch/internal/cache"
	"github.com/hyperjump/gradesearch/internal/cli"
	"github.com/hyperjump/gradesearch/internal/config"
	"github.com/hyperjump/gradesearch/internal/indexer"
	"github.com/hyperjump/gradesearch/internal/keyword"
	"github.com/hyperjump/gradesearch/internal/models"
	"github.com/hyperjump/gradesearch/internal/search"
	"github.com/hyperjump/gradesearch/internal/server"
	"github.com/hyperjump/gradesearch/internal/storage"
	"github.com/hyperjump/gradesearch/internal/summary"
	"github.com/hyperjump/gradesearch/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/gradesearch/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in the current
// directory wins if it exists. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch("search")
	case "autocomplete":
		runSearch("autocomplete")
	case "show":
		runShow()
	case "load":
		runLoad()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("gradesearch version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// setup loads config, builds the logger, and opens every component.
func setup(configPath string, debugFlag bool) (*config.Config, *zap.Logger, *Components) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debugFlag
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("config loaded", zap.String("config_path", resolved), zap.Bool("debug", debugMode))

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	return cfg, logger, components
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (cache hits, index batches, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, logger, components := setup(*configPath, *debug)
	defer logger.Sync()
	defer components.Close()

	srv := server.NewServer(components.Engine, components.Storage, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// printSearchUsage prints search subcommand usage.
func printSearchUsage(fs *flag.FlagSet, mode string) {
	fmt.Fprintf(fs.Output(), "Usage: gradesearch %s [flags] <query>\n\n", mode)
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Results are split into departments, classes, and professors.
  • Course codes (CS1332, "cs 1332") return that course first.
  • Department prefixes (CS, math) list the department's courses.
  • Anything else is matched against titles and names, with typo tolerance when few results match.

Examples:
  gradesearch %[1]s cs1332
  gradesearch %[1]s data structures
  gradesearch %[1]s --scope MATH barone
  gradesearch %[1]s --format json calculus
`, mode)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runSearch(mode string) {
	fs := flag.NewFlagSet(mode, flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = query the database directly)")
	scope := fs.String("scope", "", "restrict results to one department, e.g. CS")
	outputFormat := fs.String("format", "text", "output format: text or json")
	fs.Usage = func() { printSearchUsage(fs, mode) }
	_ = fs.Parse(searchArgsReorder(os.Args[2:]))

	queryStr := buildSearchQuery(fs.Args())
	if queryStr == "" {
		printSearchUsage(fs, mode)
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var response *models.SearchResponse
	if *serverURL != "" {
		response, err = searchViaHTTP(*serverURL, mode, queryStr, *scope)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		_, logger, components := setup(*configPath, false)
		defer logger.Sync()
		defer components.Close()

		fn := components.Engine.Search
		if mode == "autocomplete" {
			fn = components.Engine.Autocomplete
		}
		// Per-kind failures stay visible in response.Failures.
		response, err = fn(context.Background(), queryStr, *scope)
		if err != nil {
			logger.Warn("search returned partial results", zap.Error(err))
		}
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL, mode, q, scope string) (*models.SearchResponse, error) {
	params := url.Values{"q": {q}}
	if scope != "" {
		params.Set("scope", scope)
	}
	var response models.SearchResponse
	if err := getJSON(serverURL+"/api/v1/"+mode+"?"+params.Encode(), &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func getJSON(target string, out any) error {
	resp, err := http.Get(target)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func runShow() {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("format", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() != 2 {
		fmt.Println("Usage: gradesearch show [flags] <course|professor|department> <id>")
		os.Exit(1)
	}
	kind, err := models.ParseEntityKind(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	_, logger, components := setup(*configPath, false)
	defer logger.Sync()
	defer components.Close()

	result, err := components.Engine.Describe(context.Background(), kind, fs.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Lookup failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteResult(os.Stdout, result, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// readCatalog decodes a catalog JSON document.
func readCatalog(r io.Reader) (*models.Catalog, error) {
	var cat models.Catalog
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cat); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return &cat, nil
}

// validateCatalog rejects distributions with term codes outside the YYYY02/05/08 scheme.
func validateCatalog(cat *models.Catalog) error {
	for _, d := range cat.Distributions {
		for _, t := range d.Terms {
			if summary.TermName(t.Term) == summary.InvalidTerm {
				return fmt.Errorf("distribution %d: invalid term code %d", d.ID, t.Term)
			}
		}
	}
	return nil
}

func runLoad() {
	fs := flag.NewFlagSet("load", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() != 1 {
		fmt.Println("Usage: gradesearch load [flags] <catalog.json>")
		os.Exit(1)
	}
	f, err := os.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Open catalog: %v\n", err)
		os.Exit(1)
	}
	cat, err := readCatalog(f)
	_ = f.Close()
	if err == nil {
		err = validateCatalog(cat)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	_, logger, components := setup(*configPath, *debug)
	defer logger.Sync()
	defer components.Close()

	ctx := context.Background()
	if err := components.Storage.ImportCatalog(ctx, cat); err != nil {
		logger.Fatal("Import failed", zap.Error(err))
	}
	logger.Info("catalog imported",
		zap.Int("departments", len(cat.Departments)),
		zap.Int("courses", len(cat.Courses)),
		zap.Int("professors", len(cat.Professors)),
		zap.Int("distributions", len(cat.Distributions)))

	if components.Bleve != nil {
		stats, err := indexer.NewIndexer(components.Storage, components.Bleve, indexer.WithLogger(logger)).Sync(ctx)
		if err != nil {
			logger.Fatal("Index sync failed", zap.Error(err))
		}
		fmt.Printf("Indexed %d documents in %s\n", stats.Total(), stats.Duration.Round(time.Millisecond))
	}
	fmt.Printf("Loaded %s\n", fs.Arg(0))
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Counts         storage.Counts `json:"counts"`
	Index          string         `json:"index"`
	Caches         []cache.Stats  `json:"caches,omitempty"`
	DiskUsageBytes *int64         `json:"disk_usage_bytes,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = read the database directly)")
	outputFormat := fs.String("format", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseOutputFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var status statusResponse
	if *serverURL != "" {
		if err := getJSON(*serverURL+"/api/v1/status", &status); err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, logger, components := setup(*configPath, false)
		defer logger.Sync()
		defer components.Close()

		counts, err := components.Storage.Counts(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Counts failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{Counts: counts, Index: components.Engine.IndexName()}
		paths := storage.DatabaseFiles(components.Storage.Path())
		if components.Bleve != nil {
			paths = append(paths, cfg.Storage.BleveIndexPath)
		}
		if diskBytes, err := storage.DiskUsageBytes(paths...); err == nil {
			status.DiskUsageBytes = &diskBytes
		}
	}

	if format == cli.OutputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}
	writeStatusText(os.Stdout, &status)
}

func writeStatusText(w io.Writer, status *statusResponse) {
	fmt.Fprintf(w, "departments:        %d\n", status.Counts.Departments)
	fmt.Fprintf(w, "courses:            %d\n", status.Counts.Courses)
	fmt.Fprintf(w, "professors:         %d\n", status.Counts.Professors)
	fmt.Fprintf(w, "distributions:      %d\n", status.Counts.Distributions)
	fmt.Fprintf(w, "index:              %s\n", status.Index)
	if status.DiskUsageBytes != nil {
		fmt.Fprintf(w, "disk_usage_bytes:   %d   # database + index on disk\n", *status.DiskUsageBytes)
	}
	for _, c := range status.Caches {
		fmt.Fprintf(w, "cache %-12s  %d/%d entries, %d hits, %d misses\n", c.Name+":", c.Len, c.Capacity, c.Hits, c.Misses)
	}
}

// Components holds initialized services.
type Components struct {
	Storage *storage.SQLiteStorage
	Index   keyword.FullTextIndex
	Bleve   *keyword.BleveIndex // set when index.backend is bleve
	Engine  *search.Engine
}

func (c *Components) Close() {
	if c.Index != nil {
		_ = c.Index.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath,
		storage.WithStatementCapacity(cfg.Cache.StatementCapacity),
		storage.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	c := &Components{Storage: store}

	switch cfg.Index.Backend {
	case config.BackendBleve:
		c.Bleve, err = keyword.NewBleveIndex(cfg.Storage.BleveIndexPath)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to initialize keyword index: %w", err)
		}
		c.Index = c.Bleve
	default:
		if store.FTS5Available() {
			c.Index = keyword.NewFTS5Index(store)
		}
	}

	caches, err := search.NewCaches(cfg.Cache)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize caches: %w", err)
	}
	c.Engine = search.NewEngine(store, c.Index, cfg, caches, search.WithLogger(logger))
	logger.Info("components initialized",
		zap.String("database", cfg.Storage.DatabasePath),
		zap.String("index", c.Engine.IndexName()))
	return c, nil
}

func printUsage() {
	fmt.Println(`gradesearch - course, professor, and department search over grade distributions

Usage:
  gradesearch server [flags]                  Start the HTTP server
  gradesearch search [flags] <query>          Search departments, classes, and professors
  gradesearch autocomplete [flags] <query>    Search with the short autocomplete page
  gradesearch show [flags] <kind> <id>        Show one course, professor, or department
  gradesearch load [flags] <catalog.json>     Import a catalog (and rebuild the bleve index)
  gradesearch status [flags]                  Show row counts, index backend, and disk usage
  gradesearch version                         Show version
  gradesearch help                            Show this help

Common Flags:
  --config string    Config file path (default: /usr/local/etc/gradesearch/config.yaml;
                     ./config.yaml is used instead when it exists)

Server Flags:
  --debug            Enable debug logging

Search / Autocomplete Flags:
  --scope string     Restrict results to one department, e.g. CS
  --format string    Output format: text or json (default: text)
  --server string    Query a running server instead of the database

Status Flags:
  --server string    Server URL; includes cache stats
  --format string    Output format: text or json (default: text)

Examples:
  gradesearch load catalog.json
  gradesearch server
  gradesearch search cs1332
  gradesearch search --scope MATH calculus
  gradesearch autocomplete "data struc"
  gradesearch show course 3
  gradesearch status --server http://localhost:8080`)
}
