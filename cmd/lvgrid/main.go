// Command lvgrid runs one analysis job from a JSON file.
//
//	lvgrid -job job.json [-out result.json] [-png out.png -layer z -cell px]
//
// The job file has the layout of the service's POST /api/v1/analyses body.
// Limits come from the environment (and an optional .env file) as for the
// server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/katalvlaran/lvgrid/internal/analysis"
	"github.com/katalvlaran/lvgrid/internal/config"
	"github.com/katalvlaran/lvgrid/render"
)

func main() {
	var (
		jobPath = flag.String("job", "", "job file (JSON analysis request)")
		outPath = flag.String("out", "-", "result file, - for stdout")
		pngPath = flag.String("png", "", "optional PNG rendering of the result field")
		layer   = flag.Int("layer", 0, "z layer rendered from a 3D result")
		cell    = flag.Int("cell", 0, "pixels per cell, 0 for the configured default")
		workers = flag.Int("workers", 0, "override the job's worker count")
		timeout = flag.Duration("timeout", 0, "abort after this long, 0 for no limit")
		verbose = flag.Bool("v", false, "log progress")
	)
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)
	log.SetPrefix("lvgrid: ")

	if *jobPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("ignoring .env: %v", err)
	}

	if err := run(*jobPath, *outPath, *pngPath, *layer, *cell, *workers, *timeout, *verbose); err != nil {
		log.Fatal(err)
	}
}

func run(jobPath, outPath, pngPath string, layer, cell, workers int, timeout time.Duration, verbose bool) error {
	req, err := readJob(jobPath)
	if err != nil {
		return err
	}
	if workers > 0 {
		req.Options.Workers = workers
	}
	if verbose {
		req.Progress = progressLogger()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cfg := config.Load()
	res, err := analysis.NewRunner(cfg.Limits).Run(ctx, req)
	if err != nil {
		return err
	}
	log.Printf("%s on %v finished in %v", res.Kind, req.Grid.Shape(), res.Elapsed)

	if err = writeResult(outPath, res); err != nil {
		return err
	}
	if pngPath == "" {
		return nil
	}
	if cell < 1 {
		cell = cfg.Render.CellSize
	}

	return writePNG(pngPath, res, layer, cell, cfg.Limits.MaxPixels)
}

func readJob(path string) (*analysis.Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var req analysis.Request
	if err = json.NewDecoder(f).Decode(&req); err != nil {
		return nil, fmt.Errorf("read job %s: %w", path, err)
	}

	return &req, nil
}

func writeResult(path string, res *analysis.Result) error {
	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(res)
}

func writePNG(path string, res *analysis.Result, layer, cell, maxPixels int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = render.PNG(f, res.Field, render.WithLayer(layer), render.WithCellSize(cell), render.WithMaxPixels(maxPixels)); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}

	return f.Close()
}

// progressLogger logs every tenth of the work.
func progressLogger() func(done, total int) {
	last := -1
	return func(done, total int) {
		if total == 0 {
			return
		}
		if step := done * 10 / total; step != last {
			last = step
			log.Printf("progress %d/%d", done, total)
		}
	}
}
