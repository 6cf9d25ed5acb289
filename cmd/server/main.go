package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/ragstackgen/studyhub/internal/ai"
	"github.com/ragstackgen/studyhub/internal/chat"
	"github.com/ragstackgen/studyhub/internal/config"
	"github.com/ragstackgen/studyhub/internal/db"
	"github.com/ragstackgen/studyhub/internal/github"
	"github.com/ragstackgen/studyhub/internal/httpapi"
	"github.com/ragstackgen/studyhub/internal/httpapi/handlers"
	"github.com/ragstackgen/studyhub/internal/models"
	"github.com/ragstackgen/studyhub/internal/notes"
	"github.com/ragstackgen/studyhub/internal/placement"
	"github.com/ragstackgen/studyhub/internal/retrieval"
	"github.com/ragstackgen/studyhub/internal/store/rabbitmq"
	"github.com/ragstackgen/studyhub/internal/store/redisstore"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)
	if err := gdb.AutoMigrate(
		&models.User{},
		&chat.Session{},
		&chat.Message{},
		&notes.Note{},
		&placement.Question{},
		&github.StoredRepo{},
		&github.AnalysisJob{},
	); err != nil {
		log.Fatalf("automigrate: %v", err)
	}

	rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	rabbit, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		log.Fatalf("rabbit connect: %v", err)
	}
	defer rabbit.Close()

	provider := ai.NewGroqProvider(cfg.GroqBaseURL, cfg.GroqAPIKey, cfg.GroqModel)

	notesRepo := notes.NewRepo(gdb)
	placementRepo := placement.NewRepo(gdb)
	githubRepo := github.NewRepo(gdb)
	githubSvc := github.NewService(githubRepo, github.NewClient(cfg.GitHubBaseURL), provider)

	selector := retrieval.NewSelector(notesRepo, githubRepo, placementRepo)
	limits := retrieval.Limits{
		MaxNotes:         cfg.ContextMaxNotes,
		MaxRepoSummaries: cfg.ContextMaxRepos,
		MaxQuestions:     cfg.ContextMaxQuestions,
		MaxTotalChars:    cfg.ContextMaxTotalChars,
	}
	chatSvc := chat.NewService(chat.NewRepo(gdb), provider, selector, limits, cfg.ChatHistoryWindowSize)

	h := &handlers.Handler{
		DB:            gdb,
		Cfg:           cfg,
		Redis:         rds,
		Rabbit:        rabbit,
		ChatSvc:       chatSvc,
		NotesRepo:     notesRepo,
		GitHubSvc:     githubSvc,
		PlacementRepo: placementRepo,
	}

	r := httpapi.NewRouter(h)

	log.Printf("serving on %s", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
