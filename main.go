package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	chatx "github.com/taskwire/taskwire/agent/chat"
	contractx "github.com/taskwire/taskwire/agent/contract"
	enginex "github.com/taskwire/taskwire/agent/engine"
	mcpx "github.com/taskwire/taskwire/agent/mcp"
	storex "github.com/taskwire/taskwire/agent/store"
	toolx "github.com/taskwire/taskwire/agent/tool"
	configx "github.com/taskwire/taskwire/pkg/config"
	_ "github.com/taskwire/taskwire/pkg/logger/autoload"
	openrouterx "github.com/taskwire/taskwire/pkg/openrouter"
)

type AppConfig struct {
	// StoreBackend selects "postgres" or "memory".
	StoreBackend string `envconfig:"STORE_BACKEND" split_words:"true" default:"postgres"`
}

func main() {
	appCfg := configx.MustNew[AppConfig]("TASKWIRE")

	store, cleanup := newStore(appCfg.StoreBackend)
	defer cleanup()

	registry, err := toolx.NewCatalog(store)
	if err != nil {
		log.Fatal().Err(err).Msg("build tool catalog")
	}
	invoker := toolx.NewInvoker(registry)

	chatOpts := []chatx.Option{}
	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	if client := openrouterx.NewClient(*openRouterCfg); client != nil {
		chatOpts = append(chatOpts, chatx.WithEngine(enginex.New(client, *openRouterCfg, registry)))
		log.Info().Str("model", openRouterCfg.Model).Msg("reasoning engine configured")
	} else {
		log.Info().Msg("no reasoning engine configured, extractor serves every turn")
	}

	orch, err := chatx.New(store, invoker, chatOpts...)
	if err != nil {
		log.Fatal().Err(err).Msg("build chat orchestrator")
	}

	srv, err := mcpx.NewServer(invoker, mcpx.WithChat(orch))
	if err != nil {
		log.Fatal().Err(err).Msg("build server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Str("store", appCfg.StoreBackend).Msg("server starting")
	if err := mcpx.Serve(ctx, os.Stdin, os.Stdout, srv); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newStore(backend string) (contractx.Store, func()) {
	switch backend {
	case "memory":
		return storex.NewMemoryStore(), func() {}
	case "postgres":
		pgCfg := configx.MustNew[storex.PostgresConfig]("POSTGRES")
		pg, err := storex.NewPostgresStore(*pgCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("open postgres store")
		}
		return pg, func() {
			if err := pg.Close(); err != nil {
				log.Warn().Err(err).Msg("close postgres store")
			}
		}
	default:
		log.Fatal().Str("backend", backend).Msg("unknown store backend")
		return nil, nil
	}
}
