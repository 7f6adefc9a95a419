// Command outliers runs a small flower-measurement cleaning pipeline and logs every
// step with steplog.
//
// Usage:
//
//	go run ./example/outliers -config example/outliers/steplog.yml -rows 578
//
// Step fields and sink levels come from the YAML file and STEPLOG__ environment
// variables. With -metrics-addr the step metrics are served for Prometheus and the
// process keeps running until interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/AntonStoeckl/steplog-go/frame"
	"github.com/AntonStoeckl/steplog-go/steplog"
	"github.com/AntonStoeckl/steplog-go/steplog/promadapters"
	"github.com/AntonStoeckl/steplog-go/steplog/stepconfig"
	"github.com/AntonStoeckl/steplog-go/steplog/zapadapters"
)

type flags struct {
	configPath  string
	rows        int
	seed        uint64
	metricsAddr string
	useZap      bool
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.configPath, "config", "steplog.yml", "step logging config file (optional)")
	flag.IntVar(&f.rows, "rows", 578, "number of generated rows")
	flag.Uint64Var(&f.seed, "seed", 42, "random seed")
	flag.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	flag.BoolVar(&f.useZap, "zap", false, "log through zap instead of log/slog")
	flag.Parse()

	return f
}

func main() {
	f := parseFlags()

	cfg, err := stepconfig.Load(f.configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	closeSinks, err := cfg.ConfigureSinks()
	if err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}
	defer closeSinks()

	var shared []steplog.Option

	registry := prometheus.NewRegistry()
	if f.metricsAddr != "" {
		shared = append(shared, steplog.WithMetrics(promadapters.NewMetricsCollector(registry)))
	}

	if f.useZap {
		z, err := zap.NewDevelopment()
		if err != nil {
			log.Fatalf("Failed to create zap logger: %v", err)
		}
		defer func() { _ = z.Sync() }()

		shared = append(shared, steplog.WithLoggerFactory(zapadapters.Factory(z)))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	p, err := newPipeline(cfg, shared...)
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}

	out, err := p.run(ctx, generateFlowers(f.rows, f.seed))
	if err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}

	log.Printf("Pipeline done: %d rows, %d columns", out.NumRows(), out.NumCols())

	if f.metricsAddr == "" {
		return
	}

	serveMetrics(ctx, f.metricsAddr, registry)
}

func serveMetrics(ctx context.Context, addr string, registry *prometheus.Registry) {
	server := &http.Server{
		Addr:              addr,
		Handler:           promadapters.Handler(registry),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("Serving metrics on %s", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("Metrics server stopped: %v", err)
	}
}

// pipeline is an ordered list of logged steps.
type pipeline struct {
	steps []steplog.Step[*frame.Frame]
}

// newPipeline wraps every step with the options configured for its name, followed by shared.
func newPipeline(cfg stepconfig.Config, shared ...steplog.Option) (*pipeline, error) {
	optionsFor := func(name string) ([]steplog.Option, error) {
		opts, err := cfg.StepOptions(name)
		if err != nil {
			return nil, err
		}

		return append(opts, shared...), nil
	}

	p := &pipeline{}

	for _, fn := range []struct {
		name string
		fn   func(*frame.Frame) *frame.Frame
	}{
		{"removeOutliers", removeOutliers},
		{"dropSpecies", dropSpecies},
		{"addPetalRatio", addPetalRatio},
	} {
		opts, err := optionsFor(fn.name)
		if err != nil {
			return nil, err
		}

		step, err := steplog.LogFunc(fn.fn, opts...)
		if err != nil {
			return nil, err
		}

		p.steps = append(p.steps, step)
	}

	opts, err := optionsFor("summary")
	if err != nil {
		return nil, err
	}

	summary, err := steplog.LogFuncExtra(func(f *frame.Frame) *frame.Frame { return f },
		[]steplog.Extractor[*frame.Frame]{rowCount, columnMean},
		append(opts, steplog.WithName("summary"), steplog.WithKwargs(steplog.Kwargs{"column": "petal_ratio"}))...,
	)
	if err != nil {
		return nil, err
	}

	p.steps = append(p.steps, summary)

	return p, nil
}

func (p *pipeline) run(ctx context.Context, in *frame.Frame) (*frame.Frame, error) {
	out := in
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var err error
		if out, err = step(ctx, out); err != nil {
			return nil, err
		}
	}

	return out, nil
}
