package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"wordclash-service/internal/config"
	"wordclash-service/internal/domain"
	"wordclash-service/internal/game"
	"wordclash-service/internal/infra/memory"
	pgloader "wordclash-service/internal/infra/postgres"
	redisinfra "wordclash-service/internal/infra/redis"
	transport "wordclash-service/internal/transport/http"
)

const defaultJokerStart = 20

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz room server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.Duration(cfg.Redis.TTL, 24*time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.PackLoader = memory.NewStaticPackLoader(samplePacks())
	if pool != nil {
		loader = pgloader.NewPackLoader(pool)
	}
	packTTL := config.Duration(cfg.Packs.TTL, 10*time.Minute)
	questions := memory.NewPackRepository(loader, packTTL)

	var store game.RoomStore = memory.NewRoomStore()
	if redisClient != nil {
		store = redisinfra.NewRoomStore(redisClient, redisTTL)
	}

	jokerStart := cfg.Game.JokerStart
	if jokerStart == 0 {
		jokerStart = defaultJokerStart
	}
	var wallet game.JokerWallet = memory.NewJokerWallet(jokerStart)
	if redisClient != nil {
		wallet = redisinfra.NewJokerWallet(redisClient, jokerStart)
	}

	timing := game.DefaultTiming()
	timing.MinWait = config.Duration(cfg.Game.MinWait, timing.MinWait)
	timing.AdvanceDelay = config.Duration(cfg.Game.AdvanceDelay, timing.AdvanceDelay)
	timing.BotDelayMin = config.Duration(cfg.Game.BotDelayMin, timing.BotDelayMin)
	timing.BotDelayMax = config.Duration(cfg.Game.BotDelayMax, timing.BotDelayMax)
	timing.AnswerBudget = config.Duration(cfg.Game.AnswerBudget, timing.AnswerBudget)

	engine := game.NewEngineWithTiming(questions, store, wallet, timing)
	wsHandler := transport.NewWSHandler(engine)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting wordclash service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// samplePacks provides built-in demo content for running without Postgres.
func samplePacks() map[string][]domain.QuestionItem {
	return map[string][]domain.QuestionItem{
		"basics": {
			{ID: "b1", PackID: "basics", Prompt: "the house", Answer: "das Haus"},
			{ID: "b2", PackID: "basics", Prompt: "the tree", Answer: "der Baum"},
			{ID: "b3", PackID: "basics", Prompt: "the water", Answer: "das Wasser"},
			{ID: "b4", PackID: "basics", Prompt: "the book", Answer: "das Buch"},
			{ID: "b5", PackID: "basics", Prompt: "the street", Answer: "die Straße"},
			{ID: "b6", PackID: "basics", Prompt: "the city", Answer: "die Stadt"},
		},
		"animals": {
			{ID: "a1", PackID: "animals", Prompt: "the dog", Answer: "der Hund"},
			{ID: "a2", PackID: "animals", Prompt: "the cat", Answer: "die Katze"},
			{ID: "a3", PackID: "animals", Prompt: "the bird", Answer: "der Vogel"},
			{ID: "a4", PackID: "animals", Prompt: "the horse", Answer: "das Pferd"},
			{ID: "a5", PackID: "animals", Prompt: "the fish", Answer: "der Fisch"},
		},
	}
}
