package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/felipetav/dialogue-backend/app/api"
	"github.com/felipetav/dialogue-backend/app/middleware"
	"github.com/felipetav/dialogue-backend/drive"
	"github.com/felipetav/dialogue-backend/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

var config = fiber.Config{
	ErrorHandler: api.ErrorHandler,
}

type Server struct {
	listenAddr string
	logger     *slog.Logger
	app        *fiber.App
}

func NewServer(addr string) *Server {
	if addr == "" {
		addr = ":3000"
	}
	return &Server{
		listenAddr: addr,
		logger:     slog.Default(),
	}
}

func (s *Server) Stop() {
	if s.app != nil {
		if err := s.app.Shutdown(); err != nil {
			s.logger.Error("error to shutdown server", "error", err.Error())
		}
	}
	s.logger.Info("server stopped")
}

func (s *Server) Run() {
	ctx := context.Background()
	port, _ := strconv.Atoi(os.Getenv("PG_PORT"))
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", os.Getenv("PG_HOST"), port, os.Getenv("PG_USER"), os.Getenv("PG_PASS"), os.Getenv("PG_DB_NAME"))
	pool, err := store.NewPostgresStore(ctx, connStr)
	if err != nil {
		log.Fatal("error to connect to Postgres database", err)
		return
	}

	if err := pool.Init(ctx); err != nil {
		log.Fatal("error to create tables", err)
		return
	}

	// Credentials are validated lazily inside the client: a bad blob fails
	// requests with a 500, not the process.
	files := drive.NewClient([]byte(os.Getenv("GOOGLE_CREDENTIALS")))
	folderID := os.Getenv("DRIVE_FOLDER_ID")

	var (
		app             = fiber.New(config)
		checkHandler    = api.NewCheckHandler()
		dialogueHandler = api.NewDialogueHandler(pool, files, folderID)
		audioHandler    = api.NewAudioHandler(files)
		check           = app.Group("/check")
		apiGroup        = app.Group("/api")
	)

	app.Use(cors.New())
	app.Use(middleware.RequestLogger(s.logger))

	app.Get("/", checkHandler.HandleRoot)
	check.Get("/healthy", checkHandler.HandleHealthy)
	apiGroup.Get("/dialogues", dialogueHandler.HandleListDialogues)
	apiGroup.Get("/dialogues/:number", dialogueHandler.HandleGetDialogue)
	apiGroup.Post("/dialogues/:number/highlights", dialogueHandler.HandleSaveHighlights)
	apiGroup.Get("/all-highlights", dialogueHandler.HandleAllHighlights)
	apiGroup.Get("/audio/:fileId", audioHandler.HandleAudio)

	s.app = app

	err = app.Listen(s.listenAddr)
	if err != nil {
		s.logger.Error("error to start server", "error", err.Error())
		return
	}
}
