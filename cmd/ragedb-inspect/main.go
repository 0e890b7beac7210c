// Command ragedb-inspect fetches diagnostic data from a target process
// exposing ragedb's debug endpoint and prints it either as pretty text or
// JSON. It also supports periodic watch mode and pprof snapshot download.
//
// The target Go service is expected to expose:
//   - GET /debug/ragedb/stats        – JSON payload, see pkg/ragedb.Stats.
//   - GET /debug/pprof/{heap,goroutine} – standard pprof handlers (net/http/pprof).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

var version = "dev"

type options struct {
	target           string
	json             bool
	watch            bool
	interval         time.Duration
	heapProfile      string
	goroutineProfile string
	showVersion      bool
}

func parseFlags() *options {
	opts := &options{}
	flag.StringVar(&opts.target, "target", "http://localhost:8080", "base URL of the ragedb process to inspect")
	flag.BoolVar(&opts.json, "json", false, "print the raw JSON snapshot instead of a formatted summary")
	flag.BoolVar(&opts.watch, "watch", false, "poll the target repeatedly")
	flag.DurationVar(&opts.interval, "interval", 2*time.Second, "polling interval in watch mode")
	flag.StringVar(&opts.heapProfile, "heap-profile", "", "download a heap profile to this path and exit")
	flag.StringVar(&opts.goroutineProfile, "goroutine-profile", "", "download a goroutine profile to this path and exit")
	flag.BoolVar(&opts.showVersion, "version", false, "print the CLI version and exit")
	flag.Parse()
	return opts
}

func main() {
	opts := parseFlags()

	if opts.showVersion {
		fmt.Println(version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	if opts.heapProfile != "" {
		if err := downloadProfile(ctx, opts.target, "heap", opts.heapProfile); err != nil {
			fatal(err)
		}
		return
	}
	if opts.goroutineProfile != "" {
		if err := downloadProfile(ctx, opts.target, "goroutine", opts.goroutineProfile); err != nil {
			fatal(err)
		}
		return
	}

	if opts.watch {
		ticker := time.NewTicker(opts.interval)
		defer ticker.Stop()
		for {
			if err := dumpOnce(ctx, opts); err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
			}
			select {
			case <-ticker.C:
				continue
			case <-ctx.Done():
				return
			}
		}
	}

	if err := dumpOnce(ctx, opts); err != nil {
		fatal(err)
	}
}

func dumpOnce(ctx context.Context, opts *options) error {
	snap, err := fetchStats(ctx, opts.target)
	if err != nil {
		return err
	}

	if opts.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	return prettyPrint(snap)
}

func fetchStats(ctx context.Context, base string) (map[string]any, error) {
	url := base + "/debug/ragedb/stats"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", res.Status)
	}
	var data map[string]any
	if err := json.NewDecoder(res.Body).Decode(&data); err != nil {
		return nil, err
	}
	return data, nil
}

func prettyPrint(data map[string]any) error {
	fmt.Printf("Shards:              %v\n", data["shard_count"])
	fmt.Printf("Node types:          %v\n", data["node_types"])
	fmt.Printf("Relationship types:  %v\n", data["relationship_types"])
	fmt.Println("Node counts:")
	for typeName, count := range asMap(data["node_counts_by_type"]) {
		fmt.Printf("  %-20s %v\n", typeName, count)
	}
	fmt.Println("Relationship counts:")
	for typeName, count := range asMap(data["relationship_counts_by_type"]) {
		fmt.Printf("  %-20s %v\n", typeName, count)
	}
	return nil
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func downloadProfile(ctx context.Context, base, name, path string) error {
	url := fmt.Sprintf("%s/debug/pprof/%s", base, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", res.Status)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, res.Body); err != nil {
		return err
	}
	fmt.Printf("%s profile saved to %s\n", name, path)
	return nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "ragedb-inspect:", err)
	os.Exit(1)
}
