package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"warehouse-sim/internal/analytics"
	"warehouse-sim/internal/config"
	"warehouse-sim/internal/core"
	"warehouse-sim/internal/report"
	"warehouse-sim/internal/sim"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath        string
		orderProbability  float64
		cancelProbability float64
		cancelDelayMax    time.Duration
		idleTimeout       time.Duration
		joinTimeout       time.Duration
		poolSize          int
		queueCapacity     int
		bestsellers       int
		seed              uint64
	)

	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "warehouse-sim <customers> <workers> [maxProducts] [maxQuantity] [debug]",
		Short: "Simulate a retail warehouse under concurrent customer load",
		Long: "warehouse-sim runs a producer/consumer simulation: customers place random\n" +
			"orders and stock reservations against a shared warehouse while a pool of\n" +
			"workers drains the order queue and commits stock changes.",
		Args:         cobra.RangeArgs(2, 5),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()

			cfg := config.Default()
			if configPath != "" {
				if err := cfg.LoadFile(configPath); err != nil {
					return err
				}
			}
			if err := cfg.LoadEnv(); err != nil {
				return err
			}

			// Flags win over the file and the environment, but only when
			// actually set on the command line.
			flagOverrides := map[string]func(){
				"order-probability":  func() { cfg.OrderProbability = orderProbability },
				"cancel-probability": func() { cfg.CancelProbability = cancelProbability },
				"cancel-delay-max":   func() { cfg.CancelDelayMax = config.Duration(cancelDelayMax) },
				"idle-timeout":       func() { cfg.IdleTimeout = config.Duration(idleTimeout) },
				"join-timeout":       func() { cfg.JoinTimeout = config.Duration(joinTimeout) },
				"pool-size":          func() { cfg.PoolSize = poolSize },
				"queue-capacity":     func() { cfg.QueueCapacity = queueCapacity },
				"bestsellers":        func() { cfg.Bestsellers = bestsellers },
				"seed":               func() { cfg.Seed = seed },
			}
			for name, apply := range flagOverrides {
				if cmd.Flags().Changed(name) {
					apply()
				}
			}

			if err := parseArgs(&cfg, args); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "path to a YAML tuning file")
	flags.Float64Var(&orderProbability, "order-probability", defaults.OrderProbability, "chance a customer orders instead of reserving")
	flags.Float64Var(&cancelProbability, "cancel-probability", defaults.CancelProbability, "chance a placed reservation is cancelled")
	flags.DurationVar(&cancelDelayMax, "cancel-delay-max", defaults.CancelDelayMax.Std(), "upper bound of the random delay before a cancellation")
	flags.DurationVar(&idleTimeout, "idle-timeout", defaults.IdleTimeout.Std(), "how long a worker waits on an empty queue before exiting")
	flags.DurationVar(&joinTimeout, "join-timeout", defaults.JoinTimeout.Std(), "overall bound on waiting for all tasks")
	flags.IntVar(&poolSize, "pool-size", defaults.PoolSize, "task pool size (0 = customers+workers)")
	flags.IntVar(&queueCapacity, "queue-capacity", defaults.QueueCapacity, "order queue capacity (0 = unbounded)")
	flags.IntVar(&bestsellers, "bestsellers", defaults.Bestsellers, "how many bestsellers the summary ranks")
	flags.Uint64Var(&seed, "seed", defaults.Seed, "random seed (0 = random)")

	return cmd
}

// parseArgs maps the positional arguments onto the config. Customer and
// worker counts must be valid integers; the optional maxProducts and
// maxQuantity fall back to their defaults with a warning when malformed.
func parseArgs(cfg *config.Config, args []string) error {
	customers, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("number of customers must be an integer, got %q", args[0])
	}
	workers, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("number of workers must be an integer, got %q", args[1])
	}
	cfg.Customers = customers
	cfg.Workers = workers

	if len(args) > 2 {
		cfg.MaxProducts = intOrDefault(args[2], cfg.MaxProducts)
	}
	if len(args) > 3 {
		cfg.MaxQuantity = intOrDefault(args[3], cfg.MaxQuantity)
	}
	if len(args) > 4 {
		debug, err := strconv.ParseBool(args[4])
		if err != nil {
			debug = false
		}
		cfg.Debug = debug
	}
	return nil
}

func intOrDefault(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid integer value %s, using default value %d\n", raw, fallback)
		return fallback
	}
	return value
}

func run(ctx context.Context, cfg config.Config) error {
	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck
	log := logger.Sugar()

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, 0))

	stock, err := sim.GenerateWarehouse(rng, cfg.MaxProducts, cfg.MaxQuantity)
	if err != nil {
		return err
	}
	ledger, err := core.NewStockLedger(stock)
	if err != nil {
		return fmt.Errorf("initialize warehouse: %w", err)
	}

	fmt.Printf("There are %d products in the warehouse:\n", len(stock))
	for _, sp := range stock {
		fmt.Printf("%s (x%d)\n", sp.Product, sp.Quantity)
	}

	queue := core.NewOrderQueue(cfg.QueueCapacity)
	processedLog := core.NewProcessedLog()

	// The end hook prints the collector's own summary, so the closure has to
	// capture the variable before the collector is constructed.
	var collector *analytics.Collector
	collector = analytics.NewCollector(analytics.WithSimulationEndHook(func() {
		if cfg.Debug {
			fmt.Println("----")
			report.WriteWarehouse(os.Stdout, ledger.Positions())
			fmt.Println("----")
			report.WriteSoldProducts(os.Stdout, processedLog.Snapshot())
			fmt.Println("----")
		}
		report.WriteSummary(os.Stdout, collector.Summarize(cfg.Bestsellers))
	}))

	fulfillment := core.NewFulfillmentService(ledger, processedLog, collector)
	reservations := core.NewReservationService(ledger, collector)

	runner, err := sim.NewRunner(sim.Params{
		Customers:   cfg.Customers,
		Workers:     cfg.Workers,
		PoolSize:    cfg.PoolSize,
		IdleTimeout: cfg.IdleTimeout.Std(),
		JoinTimeout: cfg.JoinTimeout.Std(),
		Seed:        seed,
		Tuning: sim.Tuning{
			OrderProbability:  cfg.OrderProbability,
			CancelProbability: cfg.CancelProbability,
			CancelDelayMax:    cfg.CancelDelayMax.Std(),
		},
	}, ledger, queue, fulfillment, reservations, collector, log)
	if err != nil {
		return err
	}

	return runner.Run(ctx)
}

func newLogger(debug bool) (*zap.Logger, error) {
	logCfg := zap.NewDevelopmentConfig()
	if !debug {
		logCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return logCfg.Build()
}
