// Command contentcache runs an interactive shell over the content-aware
// file cache.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/contentcache/contentcache/internal/cache"
	"github.com/contentcache/contentcache/internal/config"
	"github.com/contentcache/contentcache/internal/logging"
	"github.com/contentcache/contentcache/internal/metrics"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML configuration file")
		sizeFlag   = flag.String("size", "", "cache size override, e.g. 64MB")
		levelFlag  = flag.String("log-level", "", "log level override")
	)
	flag.Parse()

	cfg := config.NewDefault()
	if *configPath != "" {
		if err := cfg.LoadFromFile(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *sizeFlag != "" {
		cfg.Cache.MaxSize = *sizeFlag
	}
	if *levelFlag != "" {
		cfg.Logging.Level = *levelFlag
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	collector, err := metrics.NewCollector(&cfg.Metrics)
	if err != nil {
		logger.Fatal("creating metrics collector", zap.Error(err))
	}
	ctx := context.Background()
	if err := collector.Start(ctx); err != nil {
		logger.Fatal("starting metrics endpoint", zap.Error(err))
	}
	defer func() { _ = collector.Stop(ctx) }()

	maxSize, err := cfg.MaxSizeBytes()
	if err != nil {
		logger.Fatal("parsing cache size", zap.Error(err))
	}

	c := cache.New(&cache.Options{
		MaxSize:        maxSize,
		TypePriorities: cfg.Cache.TypePriorities,
		Logger:         logger,
		Metrics:        collector,
		WriteRetry:     cfg.WriteRetry,
	})
	defer func() {
		if err := c.Flush(); err != nil {
			logger.Error("final flush failed", zap.Error(err))
		}
	}()

	logger.Info("cache ready",
		zap.Int64("max_size", maxSize),
		zap.Bool("metrics", cfg.Metrics.Enabled))

	runShell(c, os.Stdin, os.Stdout)
}

func runShell(c *cache.Cache, in io.Reader, out io.Writer) {
	fmt.Fprintln(out, "Content-Aware File Cache")
	fmt.Fprintln(out, `Type "help" for commands.`)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		args := strings.SplitN(line, " ", 3)
		cmd := args[0]

		switch cmd {
		case "help":
			printHelp(out)
		case "exit", "quit":
			return
		case "read":
			if len(args) < 2 {
				fmt.Fprintln(out, "usage: read <filename>")
				continue
			}
			readFile(c, out, args[1])
		case "write", "append":
			if len(args) < 3 {
				fmt.Fprintf(out, "usage: %s <filename> <content>\n", cmd)
				continue
			}
			mode := "w"
			if cmd == "append" {
				mode = "a"
			}
			writeFile(c, out, args[1], args[2], mode)
		case "flush":
			if err := c.Flush(); err != nil {
				fmt.Fprintf(out, "flush failed: %v\n", err)
			} else {
				fmt.Fprintln(out, "All changes flushed to disk.")
			}
		case "clear":
			if err := c.Clear(); err != nil {
				fmt.Fprintf(out, "clear failed: %v\n", err)
			} else {
				fmt.Fprintln(out, "Cache cleared.")
			}
		case "stats":
			c.WriteStats(out)
		case "types":
			printTypeStats(c, out)
		case "resize":
			if len(args) < 2 {
				fmt.Fprintln(out, "usage: resize <size_mb>")
				continue
			}
			mb, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil || mb <= 0 {
				fmt.Fprintln(out, "size must be a positive number of megabytes")
				continue
			}
			c.Resize(mb * 1024 * 1024)
			fmt.Fprintf(out, "Cache resized to %d MB.\n", mb)
		case "priority":
			if len(args) < 3 {
				fmt.Fprintln(out, "usage: priority <ext> <value>")
				continue
			}
			value, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				fmt.Fprintln(out, "value must be a number in [0,1]")
				continue
			}
			c.SetTypePriority(args[1], value)
			fmt.Fprintf(out, "Priority for %s set.\n", args[1])
		default:
			fmt.Fprintf(out, "Unknown command %q; type \"help\".\n", cmd)
		}
	}
}

func readFile(c *cache.Cache, out io.Writer, filename string) {
	start := time.Now()

	f, err := c.Open(filename, "r")
	if err != nil {
		fmt.Fprintf(out, "Error: could not open %q for reading: %v\n", filename, err)
		return
	}
	content, err := io.ReadAll(f)
	closeErr := f.Close()
	if err != nil {
		fmt.Fprintf(out, "Error: reading %q: %v\n", filename, err)
		return
	}
	if closeErr != nil {
		fmt.Fprintf(out, "Error: closing %q: %v\n", filename, closeErr)
	}

	elapsed := time.Since(start)

	fmt.Fprintf(out, "File content (%d bytes):\n", len(content))
	if len(content) > 1024 {
		fmt.Fprintf(out, "%s...\n...%s\n", content[:512], content[len(content)-512:])
	} else {
		fmt.Fprintf(out, "%s\n", content)
	}
	fmt.Fprintf(out, "Read completed in %v.\n", elapsed)
}

func writeFile(c *cache.Cache, out io.Writer, filename, content, mode string) {
	start := time.Now()

	f, err := c.Open(filename, mode)
	if err != nil {
		fmt.Fprintf(out, "Error: could not open %q for writing: %v\n", filename, err)
		return
	}
	n, err := f.Write([]byte(content))
	closeErr := f.Close()
	if err != nil {
		fmt.Fprintf(out, "Error: writing %q: %v\n", filename, err)
		return
	}
	if closeErr != nil {
		fmt.Fprintf(out, "Error: closing %q: %v\n", filename, closeErr)
	}

	fmt.Fprintf(out, "Wrote %d bytes to %q in %v.\n", n, filename, time.Since(start))
}

func printTypeStats(c *cache.Cache, out io.Writer) {
	snap := c.ExtensionStats()
	if len(snap) == 0 {
		fmt.Fprintln(out, "No traffic recorded yet.")
		return
	}

	fmt.Fprintf(out, "%-10s %8s %8s %10s %12s\n", "Type", "Hits", "Misses", "Evictions", "Bytes Read")
	for _, s := range snap {
		ext := s.Extension
		if ext == "" {
			ext = "(none)"
		}
		fmt.Fprintf(out, "%-10s %8d %8d %10d %12d\n", ext, s.Hits, s.Misses, s.Evictions, s.BytesRead)
	}
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  read <filename>             Read a file through the cache")
	fmt.Fprintln(out, "  write <filename> <content>  Write content to a file through the cache")
	fmt.Fprintln(out, "  append <filename> <content> Append content to a file through the cache")
	fmt.Fprintln(out, "  flush                       Flush all changes to disk")
	fmt.Fprintln(out, "  clear                       Clear the cache")
	fmt.Fprintln(out, "  stats                       Show cache statistics")
	fmt.Fprintln(out, "  types                       Show per-extension traffic")
	fmt.Fprintln(out, "  resize <size_mb>            Resize the cache (in MB)")
	fmt.Fprintln(out, "  priority <ext> <value>      Set priority for a file type (0.0-1.0)")
	fmt.Fprintln(out, "  help                        Show this help")
	fmt.Fprintln(out, "  exit                        Exit")
}
