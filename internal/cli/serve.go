package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mosaic/pkg/pipeline"
	"github.com/matzehuels/mosaic/pkg/server"
	"github.com/matzehuels/mosaic/pkg/store"
)

const (
	storeMemory = "memory"
	storeMongo  = "mongo"

	defaultAddr = ":8080"
)

type serveOpts struct {
	addr      string
	store     string
	mongoURI  string
	mongoDB   string
	cache     string
	redisAddr string
}

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:      defaultAddr,
		store:     storeMemory,
		mongoURI:  os.Getenv("MOSAIC_MONGO_URI"),
		mongoDB:   appName,
		cache:     cacheMemory,
		redisAddr: os.Getenv("MOSAIC_REDIS_ADDR"),
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chart HTTP API",
		Long: `Run the chart HTTP API.

Charts are created, edited and rendered over JSON endpoints under /charts.
They live in memory by default; use --store mongo to share them between
instances. Layouts and artifacts are cached in memory, on disk or in Redis.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.store, "store", opts.store, "chart store: memory, mongo")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", opts.mongoURI, "MongoDB connection string (env MOSAIC_MONGO_URI)")
	cmd.Flags().StringVar(&opts.mongoDB, "mongo-db", opts.mongoDB, "MongoDB database name")
	cmd.Flags().StringVar(&opts.cache, "cache", opts.cache, "render cache: memory, file, redis, none")
	cmd.Flags().StringVar(&opts.redisAddr, "redis-addr", opts.redisAddr, "Redis address (env MOSAIC_REDIS_ADDR)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	st, err := c.newStore(ctx, opts)
	if err != nil {
		return err
	}
	defer st.Close()

	cc, err := c.newCache(ctx, opts.cache, opts.redisAddr)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	runner := pipeline.NewRunner(cc, newKeyer(), c.Logger)
	defer runner.Close()

	printSuccess("Serving chart API")
	printKeyValue("address", StyleLink.Render("http://"+displayAddr(opts.addr)))
	printKeyValue("store", opts.store)
	printKeyValue("cache", opts.cache)

	return server.New(st, runner, c.Logger).ListenAndServe(ctx, opts.addr)
}

func (c *CLI) newStore(ctx context.Context, opts serveOpts) (store.Store, error) {
	switch opts.store {
	case storeMemory:
		return store.NewMemoryStore(), nil
	case storeMongo:
		if opts.mongoURI == "" {
			return nil, fmt.Errorf("--mongo-uri or MOSAIC_MONGO_URI is required for the mongo store")
		}
		return store.NewMongoStore(ctx, store.MongoOptions{
			URI:      opts.mongoURI,
			Database: opts.mongoDB,
			Timeout:  10 * time.Second,
		})
	default:
		return nil, fmt.Errorf("invalid store: %s (must be memory or mongo)", opts.store)
	}
}

// displayAddr turns a listen address like ":8080" into "localhost:8080".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
