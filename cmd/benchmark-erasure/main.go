package main

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ppopth/availability-ec/ec"
	"github.com/ppopth/availability-ec/ec/encode/rs"

	logging "github.com/ipfs/go-log/v2"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/segmentio/ksuid"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var log = logging.Logger("benchmark")

// BenchmarkResult stores timing data for one validator count
type BenchmarkResult struct {
	Validators  int           `json:"validators"`
	Threshold   int           `json:"threshold"`
	PayloadSize int           `json:"payload_size"`
	ChunkSize   int           `json:"chunk_size"`
	Iterations  int           `json:"iterations"`
	Encode      time.Duration `json:"encode_ns"`      // Average time for ObtainChunks
	Reconstruct time.Duration `json:"reconstruct_ns"` // Average time for Reconstruct from k random chunks
}

// BenchmarkReport is the document written to --output
type BenchmarkReport struct {
	RunID     string            `json:"run_id"`
	StartedAt time.Time         `json:"started_at"`
	Parallel  int               `json:"parallel"`
	Results   []BenchmarkResult `json:"results"`
}

// timing holds the measurements of a single iteration
type timing struct {
	encode      time.Duration
	reconstruct time.Duration
	chunkSize   int
}

func runIteration(codec *ec.Codec, n int, payload []byte) (timing, error) {
	var t timing

	start := time.Now()
	chunks, err := codec.ObtainChunks(n, payload)
	if err != nil {
		return t, errors.Wrapf(err, "obtain chunks for %d validators", n)
	}
	t.encode = time.Since(start)
	t.chunkSize = len(chunks[0])

	k, err := ec.RecoveryThreshold(n)
	if err != nil {
		return t, err
	}
	// Any k distinct chunks must suffice
	subset := lo.Shuffle(ec.IndexChunks(chunks))[:k]

	start = time.Now()
	recovered, err := codec.Reconstruct(n, subset)
	if err != nil {
		return t, errors.Wrapf(err, "reconstruct for %d validators", n)
	}
	t.reconstruct = time.Since(start)

	if !bytes.Equal(recovered, payload) {
		return t, errors.Errorf("reconstructed payload differs for %d validators", n)
	}
	return t, nil
}

func benchmark(codec *ec.Codec, n, size, iterations, parallel int) (BenchmarkResult, error) {
	k, err := ec.RecoveryThreshold(n)
	if err != nil {
		return BenchmarkResult{}, err
	}

	payload := make([]byte, size)
	if _, err := rand.Read(payload); err != nil {
		return BenchmarkResult{}, errors.Wrap(err, "generate payload")
	}

	timings := make([]timing, iterations)
	var g errgroup.Group
	g.SetLimit(parallel)
	for i := 0; i < iterations; i++ {
		i := i
		g.Go(func() error {
			t, err := runIteration(codec, n, payload)
			if err != nil {
				return err
			}
			timings[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BenchmarkResult{}, err
	}

	result := BenchmarkResult{
		Validators:  n,
		Threshold:   k,
		PayloadSize: size,
		ChunkSize:   timings[0].chunkSize,
		Iterations:  iterations,
	}
	result.Encode = lo.SumBy(timings, func(t timing) time.Duration { return t.encode }) / time.Duration(iterations)
	result.Reconstruct = lo.SumBy(timings, func(t timing) time.Duration { return t.reconstruct }) / time.Duration(iterations)
	return result, nil
}

func run(c *cli.Context) error {
	level, err := logging.LevelFromString(c.String("log-level"))
	if err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	logging.SetAllLoggers(level)

	validators := c.IntSlice("validators")
	size := c.Int("size")
	iterations := c.Int("iterations")
	parallel := c.Int("parallel")
	if size <= 0 {
		return errors.Errorf("payload size must be positive, got %d", size)
	}
	if iterations <= 0 {
		return errors.Errorf("iterations must be positive, got %d", iterations)
	}
	if parallel <= 0 {
		return errors.Errorf("parallel must be positive, got %d", parallel)
	}

	engine, err := rs.NewLeopardEngine(&rs.LeopardConfig{MaxGoroutines: c.Int("engine-goroutines")})
	if err != nil {
		return err
	}
	codec, err := ec.NewCodec(ec.WithEngine(engine))
	if err != nil {
		return err
	}

	report := BenchmarkReport{
		RunID:     ksuid.New().String(),
		StartedAt: time.Now().UTC(),
		Parallel:  parallel,
	}
	log.Infof("benchmark run %s: %d validator counts, %d bytes, %d iterations", report.RunID, len(validators), size, iterations)

	for _, n := range validators {
		fmt.Printf("Benchmarking %d validators... ", n)
		result, err := benchmark(codec, n, size, iterations, parallel)
		if err != nil {
			fmt.Println()
			return err
		}
		fmt.Printf("encode %v, reconstruct %v\n", result.Encode, result.Reconstruct)
		report.Results = append(report.Results, result)
	}

	tb := table.NewWriter()
	tb.SetTitle("run " + report.RunID)
	tb.AppendHeader(table.Row{"Validators", "k", "Payload", "Chunk", "Encode", "Reconstruct"})
	for _, r := range report.Results {
		tb.AppendRow(table.Row{r.Validators, r.Threshold, r.PayloadSize, r.ChunkSize, r.Encode, r.Reconstruct})
	}
	fmt.Println()
	fmt.Println(tb.Render())

	output := c.String("output")
	if output == "" {
		return nil
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal results")
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return errors.Wrap(err, "write results")
	}
	fmt.Printf("\nBenchmark results written to: %s\n", output)
	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "benchmark-erasure"
	app.Usage = "measure chunk encoding and reconstruction for a set of validator counts"
	app.Flags = []cli.Flag{
		&cli.IntSliceFlag{Name: "validators", Aliases: []string{"n"}, Value: cli.NewIntSlice(10, 100, 1000, 10000)},
		&cli.IntFlag{Name: "size", Aliases: []string{"s"}, Value: 1 << 20, Usage: "payload size in bytes"},
		&cli.IntFlag{Name: "iterations", Aliases: []string{"i"}, Value: 10},
		&cli.IntFlag{Name: "parallel", Aliases: []string{"p"}, Value: 1, Usage: "iterations run concurrently"},
		&cli.IntFlag{Name: "engine-goroutines", Value: 0, Usage: "goroutine limit inside the engine, 0 for the library default"},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "erasure_benchmark.json"},
		&cli.StringFlag{Name: "log-level", Value: "warn"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
