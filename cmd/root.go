package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/platefull/storefront/internal/addressbook"
	"github.com/platefull/storefront/internal/broadcast"
	"github.com/platefull/storefront/internal/cartops"
	"github.com/platefull/storefront/internal/checkout"
	"github.com/platefull/storefront/internal/estimator"
	"github.com/platefull/storefront/internal/kvstore"
	"github.com/platefull/storefront/internal/models"
	"github.com/platefull/storefront/internal/repositories"
	"github.com/platefull/storefront/internal/repositories/postgres"
	"github.com/platefull/storefront/internal/selection"
	"github.com/platefull/storefront/internal/services"
	"github.com/platefull/storefront/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront client for a food-delivery marketplace",
	Long:  `storefront is the cart/checkout engine of a food-delivery storefront: it keeps a selection overlay over the remote cart, aggregates per-dish delivery estimates, rebuilds the cart for quantity changes, and splits one checkout into independently paid orders.`,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.storefront.yaml)")

	rootCmd.PersistentFlags().String("cart-service-url", "http://localhost:8081", "Base URL of the cart service")
	rootCmd.PersistentFlags().String("estimate-service-url", "http://localhost:8082", "Base URL of the estimate service")
	rootCmd.PersistentFlags().String("order-service-url", "http://localhost:8083", "Base URL of the order service")
	rootCmd.PersistentFlags().Bool("redis-enabled", false, "Keep the selection overlay in Redis instead of process memory")
	rootCmd.PersistentFlags().String("redis-addr", "localhost:6379", "Redis address")
	rootCmd.PersistentFlags().String("storage-scope", "cart", "Scope name for the selection overlay")
	rootCmd.PersistentFlags().String("telemetry-sink", "console", "Telemetry sink: console, file, kafka or s3")
	rootCmd.PersistentFlags().String("telemetry-folder", "telemetry", "Folder for the file telemetry sink")
	rootCmd.PersistentFlags().String("kafka-broker-list", "localhost:9092", "Kafka broker list for the kafka sink")
	rootCmd.PersistentFlags().String("s3-bucket", "", "Bucket for the s3 sink")
	rootCmd.PersistentFlags().String("s3-region", "eu-west-1", "Region for the s3 sink")
	rootCmd.PersistentFlags().Bool("postgres-enabled", false, "Persist checkout receipts to Postgres")
	rootCmd.PersistentFlags().String("database-url", "", "Postgres connection string for receipts")

	viper.BindPFlags(rootCmd.PersistentFlags())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".storefront")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// engine bundles the wired components a command works with.
type engine struct {
	cfg         *models.Config
	selection   *selection.Store
	addressBook *addressbook.Book
	estimator   *estimator.Aggregator
	cartOps     *cartops.Coordinator
	checkout    *checkout.Orchestrator
	cart        services.CartService
	events      *telemetry.Recorder
	sink        telemetry.Sink
	pool        *pgxpool.Pool
}

func (e *engine) Close() {
	if e.sink != nil {
		if err := e.sink.Close(); err != nil {
			log.Printf("closing telemetry sink: %v", err)
		}
	}
	if e.pool != nil {
		e.pool.Close()
	}
}

func buildEngine(ctx context.Context, cfg *models.Config) (*engine, error) {
	var (
		kv kvstore.Store
		bc broadcast.Broadcaster
	)
	if cfg.RedisEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		redisKV, err := kvstore.NewRedisStore(ctx, rdb)
		if err != nil {
			return nil, fmt.Errorf("connecting overlay store: %w", err)
		}
		kv = redisKV
		bc = broadcast.NewRedisBroadcaster(ctx, rdb, "storefront:changes")
	} else {
		kv = kvstore.NewMemoryStore()
		bc = broadcast.NewChannelBroadcaster()
	}

	sink, err := telemetry.NewSinkFromConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("configuring telemetry: %w", err)
	}
	events := telemetry.NewRecorder(sink)

	var pool *pgxpool.Pool
	var receipts repositories.ReceiptRepository
	if cfg.PostgresEnabled {
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connecting receipt store: %w", err)
		}
		receipts = postgres.NewReceiptRepository(pool)
	}

	cart := services.NewCartClient(cfg.CartServiceURL, cfg.RequestTimeout)
	estimates := services.NewEstimateClient(cfg.EstimateServiceURL, cfg.RequestTimeout)
	orders := services.NewOrderClient(cfg.OrderServiceURL, cfg.RequestTimeout)

	sel := selection.New(kv, bc)
	return &engine{
		cfg:         cfg,
		selection:   sel,
		addressBook: addressbook.New(kv, bc),
		estimator:   estimator.New(estimates),
		cartOps:     cartops.New(cart, sel, events),
		checkout:    checkout.New(cart, orders, sel, receipts, events),
		cart:        cart,
		events:      events,
		sink:        sink,
		pool:        pool,
	}, nil
}

func loadConfigOrExit() *models.Config {
	cfg, err := models.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
