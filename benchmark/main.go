// Package main benchmarks the swagent CLI against a running origin.
// Each URL is fetched through the worker several times: without a cache, then
// with the SQLite cache where the first run fills the cache (cold) and the rest
// are served from it (warm). Results are written to CSV.
//
// Prerequisites:
// - swagent binary installed and available in PATH
// - The web application reachable at the given origin
//
// Usage: go run benchmark/main.go [origin]
//
//	origin: Base URL of the web application, e.g. http://localhost:8000
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	URL         string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Origin      string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Paths       []string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [origin]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		Origin:      os.Args[1],
		Timeout:     time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   5,
		Paths: []string{
			"/",
			"/manifest.json",
			"/static/icons/icon-512x512.png",
		},
	}

	if _, err := exec.LookPath("swagent"); err != nil {
		fmt.Println("Prerequisites check failed: swagent binary not found in PATH")
		os.Exit(1)
	}

	var results []BenchmarkResult
	for _, path := range config.Paths {
		results = append(results, runBenchmarkSuite(config, path))
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}
	for _, r := range results {
		fmt.Printf("%-40s no-cache %-9s cold %-9s warm %s\n", r.URL, r.NoCacheTime, r.ColdTime, r.WarmTime)
	}
}

// runBenchmarkSuite runs the no-cache and cache phases for one path.
func runBenchmarkSuite(config BenchmarkConfig, path string) BenchmarkResult {
	fmt.Printf("Benchmarking %s\n", path)

	_, noCache := runPhase(config, path, "none", config.NoCacheRuns)

	// The cold run must miss, so start from an empty cache.
	if output, err := exec.Command("swagent", "cache", "clear").CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, output)
	}
	cold, warm := runPhase(config, path, "sqlite", config.CacheRuns)

	return BenchmarkResult{
		URL:         path,
		NoCacheTime: formatAverage(noCache),
		ColdTime:    formatAverage(cold),
		WarmTime:    formatAverage(warm),
	}
}

// runPhase fetches path numRuns times and returns the first successful time and the rest.
func runPhase(config BenchmarkConfig, path, backend string, numRuns int) (first, rest []float64) {
	args := []string{"fetch", path, "--origin", config.Origin, "--cache-backend", backend, "--output", "json"}
	for range numRuns {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		err := exec.CommandContext(ctx, "swagent", args...).Run()
		elapsed := time.Since(start).Seconds()
		cancel()
		if err != nil {
			continue // timeouts and failures are left out of the averages
		}
		if first == nil {
			first = []float64{elapsed}
		} else {
			rest = append(rest, elapsed)
		}
	}
	return first, rest
}

func formatAverage(times []float64) string {
	if len(times) == 0 {
		return "FAILED"
	}
	var sum float64
	for _, t := range times {
		sum += t
	}
	return fmt.Sprintf("%.3fs", sum/float64(len(times)))
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	filename := "benchmark_results_" + strconv.FormatInt(time.Now().Unix(), 10) + ".csv"
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"url", "no_cache", "cold", "warm"}); err != nil {
		return err
	}
	for _, r := range results {
		if err := writer.Write([]string{r.URL, r.NoCacheTime, r.ColdTime, r.WarmTime}); err != nil {
			return err
		}
	}
	fmt.Printf("Results saved to %s\n", filename)
	return nil
}
