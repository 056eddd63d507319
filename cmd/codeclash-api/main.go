package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/mveljko/codeclash-api/internal/config"
	"github.com/mveljko/codeclash-api/internal/database"
	"github.com/mveljko/codeclash-api/internal/handlers"
	"github.com/mveljko/codeclash-api/internal/judge"
	authmw "github.com/mveljko/codeclash-api/internal/middleware"
	"github.com/mveljko/codeclash-api/internal/services"
	"github.com/mveljko/codeclash-api/internal/sse"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Invalid redis url: %v", err)
		}
		rdb = redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("Redis unavailable, leaderboards fall back to postgres: %v", err)
		}
		defer rdb.Close()
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	userService := services.NewUserService(db)
	tokenService := services.NewTokenService(db)
	teamService := services.NewTeamService(db)
	contestService := services.NewContestService(db, teamService)
	problemService := services.NewProblemService(db)
	judgeClient := judge.NewClient(cfg.Judge)
	submissionService := services.NewSubmissionService(db, problemService, contestService, teamService, judgeClient)
	leaderboardService := services.NewLeaderboardService(db, rdb)
	apiKeyService := services.NewAPIKeyService(db)
	emailService := services.NewEmailService(cfg.SMTP)

	hub := sse.NewHub()
	go hub.Run()

	authHandler := handlers.NewAuthHandler(cfg, userService, tokenService, jwtService)
	userHandler := handlers.NewUserHandler(userService)
	teamHandler := handlers.NewTeamHandler(teamService, contestService, userService, emailService, hub, cfg.BaseURL)
	contestHandler := handlers.NewContestHandler(contestService, cfg)
	problemHandler := handlers.NewProblemHandler(problemService)
	submissionHandler := handlers.NewSubmissionHandler(submissionService, leaderboardService, hub)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)
	apiKeyHandler := handlers.NewAPIKeyHandler(apiKeyService)
	sseHandler := handlers.NewSSEHandler(hub, teamService, contestService)
	joinHandler := handlers.NewJoinHandler(teamService, contestService, cfg.FrontendCallbackURL)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Get("/:provider/consent", authHandler.GetConsentURL)
	auth.Get("/:provider/callback", authHandler.Callback)
	auth.Post("/exchange", authHandler.ExchangeCode)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))

	protected.Post("/auth/logout-all", authHandler.LogoutAll)

	protected.Get("/users/me", userHandler.GetMe)
	protected.Patch("/users/me", userHandler.UpdateMe)

	protected.Get("/contests", contestHandler.List)
	protected.Get("/contests/:contestId", contestHandler.Get)
	protected.Post("/contests/:contestId/enter", contestHandler.Enter)
	protected.Get("/contests/:contestId/leaderboard", leaderboardHandler.Get)

	protected.Post("/contestParticipants", contestHandler.RegisterParticipant)
	protected.Get("/contestParticipants", contestHandler.ListParticipants)

	protected.Post("/teams", teamHandler.Create)
	protected.Post("/teams/join", teamHandler.JoinByCode)
	protected.Get("/teams/code/:code", teamHandler.GetByCode)
	protected.Get("/teams/user/:userId", teamHandler.GetMine)
	protected.Patch("/teams/:code/ready", teamHandler.SetReady)
	protected.Patch("/teams/:code/start", teamHandler.Start)
	protected.Post("/teams/:code/invite", teamHandler.Invite)
	protected.Get("/teams/:code/invite-link", teamHandler.GetInviteLink)
	protected.Get("/teams/:code/events", sseHandler.Connect)

	protected.Get("/problems", problemHandler.List)
	protected.Get("/problems/:problemId", problemHandler.Get)

	protected.Post("/submissions", submissionHandler.Create)
	protected.Get("/submissions", submissionHandler.ListMine)
	protected.Get("/submissions/:submissionId", submissionHandler.Get)

	admin := api.Group("/admin")
	admin.Use(authmw.Auth(jwtService))
	admin.Use(authmw.RequireAdmin())

	admin.Post("/contests", contestHandler.Create)
	admin.Patch("/contests/:contestId", contestHandler.Update)
	admin.Delete("/contests/:contestId", contestHandler.Delete)
	admin.Post("/contests/:contestId/problems", contestHandler.AddProblem)
	admin.Delete("/contests/:contestId/problems/:problemId", contestHandler.RemoveProblem)
	admin.Post("/contests/:contestId/leaderboard/rebuild", leaderboardHandler.Rebuild)
	admin.Get("/submissions", submissionHandler.ListByContest)

	admin.Post("/problems", problemHandler.Create)
	admin.Patch("/problems/:problemId", problemHandler.Update)
	admin.Delete("/problems/:problemId", problemHandler.Delete)

	admin.Post("/api-keys", apiKeyHandler.Create)
	admin.Get("/api-keys", apiKeyHandler.List)
	admin.Delete("/api-keys/:keyId", apiKeyHandler.Revoke)

	judgeGroup := api.Group("/judge")
	judgeGroup.Use(authmw.APIKeyAuth(apiKeyService))
	judgeGroup.Post("/results", submissionHandler.RecordResult)

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	// Public join pages (no auth required)
	app.Get("/join/:code", joinHandler.ViewJoinPage)

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		for range ticker.C {
			_ = tokenService.CleanupExpired(context.Background())
			_ = apiKeyService.CleanupExpired(context.Background())
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Printf("Server starting on %s", addr)
		if err := app.Run(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}
