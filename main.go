package main

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"

	"github.com/oaiiae/contacts-api/cli/api"
	"github.com/oaiiae/contacts-api/cli/logger"
	"github.com/oaiiae/contacts-api/cli/tools"
	"github.com/oaiiae/contacts-api/datastores"
)

// Set at build time with -ldflags "-X main.version=...".
var (
	version  = "1.0.0"
	revision = ""
	created  = ""
)

const (
	storeMongo  = "mongo"
	storeMemory = "memory"
)

// Options for the CLI. Pass `--port` or set the `SERVICE_PORT` env var.
// The MongoDB options also fall back to MONGODB_URI and DB_NAME.
type Options struct {
	api.ServerOptions
	api.RouterOptions
	logger.Options
	datastores.MongoOptions

	Store string `doc:"contacts backend, mongo or memory" default:"mongo"`
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		log := logger.New(&options.Options)
		conn := new(datastores.Mongo)
		srv := api.NewServer(&options.ServerOptions, nil, log)

		hooks.OnStart(func() {
			store, ready, err := newStore(options.Store, conn)
			if err != nil {
				log.Error("invalid store", "err", err)
				os.Exit(1)
			}
			if options.Store == storeMongo {
				err := connect(context.Background(), conn, options.MongoOptions, "")
				if err != nil {
					log.Error("could not connect to mongodb", "err", err)
					os.Exit(1)
				}
				log.Info("connected to mongodb")
			}
			srv.Handler, _ = api.NewRouter(&options.RouterOptions, version, revision, created, store, ready, log)

			log.Info("listening", "addr", srv.Addr, "store", options.Store)
			err = srv.ListenAndServe()
			if err != http.ErrServerClosed {
				log.Error("failed to listen and serve", "err", err)
			} else {
				log.Info("server closed")
			}
		})
		hooks.OnStop(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			err := srv.Shutdown(ctx)
			if err != nil {
				log.Warn("could not shutdown the server", "err", err)
			}
			err = conn.Close(ctx)
			if err != nil {
				log.Warn("could not close mongodb client", "err", err)
			}
		})
	})

	root := cli.Root()
	root.Use = "contacts-api"
	root.Version = version
	root.AddCommand(
		openapiCommand(),
		seedCommand(),
		countCommand(),
	)
	cli.Run()
}

// newStore returns the contacts backend named by store and its readiness check.
func newStore(store string, conn *datastores.Mongo) (datastores.ContactsStore, func(context.Context) error, error) {
	switch store {
	case storeMongo:
		return &datastores.ContactsMongo{Handle: conn}, conn.Ping, nil
	case storeMemory:
		return datastores.NewContactsInmem(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q, want %s or %s", store, storeMongo, storeMemory)
	}
}

func openapiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "openapi",
		Short: "Print the OpenAPI document",
		Args:  cobra.NoArgs,
		Run: humacli.WithOptions(func(cmd *cobra.Command, _ []string, options *Options) {
			b, err := openapi(options)
			if err != nil {
				slog.Error("could not render openapi", "err", err)
				os.Exit(1)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(b))
		}),
	}
}

// openapi renders the API description as YAML. The document does not depend
// on the store, so an empty in-memory one backs the router.
func openapi(options *Options) ([]byte, error) {
	_, humaAPI := api.NewRouter(&options.RouterOptions, version, revision, created,
		datastores.NewContactsInmem(), nil, slog.New(slog.DiscardHandler))
	return humaAPI.OpenAPI().YAML()
}

// connect fills options from the environment and connects conn.
// An empty database name falls back to defaultDB.
func connect(ctx context.Context, conn *datastores.Mongo, options datastores.MongoOptions, defaultDB string) error {
	options, err := options.WithEnv()
	if err != nil {
		return err
	}
	_, err = conn.Connect(ctx, options.MongodbURI, cmp.Or(options.DBName, defaultDB))
	return err
}

// runOnMongo connects to MongoDB, runs do on the contacts collection and exits non-zero on failure.
func runOnMongo(cmd *cobra.Command, options *Options, do func(context.Context, *datastores.ContactsMongo) error) {
	log := logger.New(&options.Options)
	ctx := cmd.Context()

	conn := new(datastores.Mongo)
	err := connect(ctx, conn, options.MongoOptions, tools.DefaultDBName)
	if err == nil {
		err = do(ctx, &datastores.ContactsMongo{Handle: conn})
	}
	closeErr := conn.Close(context.WithoutCancel(ctx))
	if closeErr != nil {
		log.Warn("could not close mongodb client", "err", closeErr)
	}
	if err != nil {
		log.Error(cmd.Name()+" failed", "err", err)
		os.Exit(1)
	}
}

func seedCommand() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the contacts of a JSON file directly into MongoDB",
		Args:  cobra.NoArgs,
		Run: humacli.WithOptions(func(cmd *cobra.Command, _ []string, options *Options) {
			runOnMongo(cmd, options, func(ctx context.Context, store *datastores.ContactsMongo) error {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				return tools.Seed(ctx, store, f, cmd.OutOrStdout())
			})
		}),
	}
	cmd.Flags().StringVarP(&file, "input", "i", "data/contacts.json", "JSON array of contacts to insert")
	return cmd
}

func countCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of contacts stored in MongoDB",
		Args:  cobra.NoArgs,
		Run: humacli.WithOptions(func(cmd *cobra.Command, _ []string, options *Options) {
			runOnMongo(cmd, options, func(ctx context.Context, store *datastores.ContactsMongo) error {
				return tools.Count(ctx, store, cmd.OutOrStdout())
			})
		}),
	}
}
