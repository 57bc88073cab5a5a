package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/JonathanFoo0523/extreme-startup-scaled/dynamo"
	"github.com/JonathanFoo0523/extreme-startup-scaled/handlers"
	"github.com/JonathanFoo0523/extreme-startup-scaled/questions"
	"github.com/JonathanFoo0523/extreme-startup-scaled/services"
	"github.com/JonathanFoo0523/extreme-startup-scaled/taskqueue"
	"github.com/JonathanFoo0523/extreme-startup-scaled/utils"
	"github.com/JonathanFoo0523/extreme-startup-scaled/workers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := utils.LoadAWSConfig(ctx)
	if err != nil {
		log.Fatal("failed to load AWS config:", err)
	}

	ddb := dynamodb.NewFromConfig(cfg)
	games := dynamo.NewGames(ddb, os.Getenv("GAMES_TABLE"))
	players := dynamo.NewPlayers(ddb, os.Getenv("PLAYERS_TABLE"))

	questionQueue, err := taskqueue.NewSQSQueue(ctx, cfg, envOr("QUESTION_QUEUE", taskqueue.QuestionQueueName))
	if err != nil {
		log.Fatal("failed to open question queue:", err)
	}
	monitorQueue, err := taskqueue.NewSQSQueue(ctx, cfg, envOr("MONITOR_QUEUE", taskqueue.MonitorQueueName))
	if err != nil {
		log.Fatal("failed to open monitor queue:", err)
	}

	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	rdb, err := questions.NewRedisClient(ctx, envOr("REDIS_ADDR", "localhost:6379"), os.Getenv("REDIS_PASSWORD"), redisDB)
	if err != nil {
		log.Fatal("failed to connect to redis:", err)
	}
	bank := questions.NewBank(rdb)

	if seedURI := os.Getenv("QUESTIONS_URI"); seedURI != "" {
		seed, err := questions.ReadSeed(ctx, cfg, seedURI)
		if err != nil {
			log.Fatal("failed to read question seed:", err)
		}
		if err := bank.Load(ctx, seed); err != nil {
			log.Fatal("failed to load question bank:", err)
		}
		log.Printf("✅ Question bank loaded from %s", seedURI)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}
	eventLog := services.NewEventLog(db)
	if err := eventLog.Migrate(); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	quizMaster := services.NewQuizMaster(games, players, eventLog, questionQueue, bank)
	gameMonitor := services.NewGameMonitor(games, players, eventLog, monitorQueue)
	manager := services.NewGamesManager(games, players, eventLog, bank, questionQueue, monitorQueue)
	stats := services.NewStatsService(games, players)

	workers.NewQuestionWorker(questionQueue, quizMaster).Start(ctx)
	workers.NewMonitorWorker(monitorQueue, gameMonitor).Start(ctx)

	statsScheduler, err := stats.StartScheduler(ctx)
	if err != nil {
		log.Fatal("failed to start stats scheduler:", err)
	}
	defer func() { _ = statsScheduler.Shutdown() }()

	app := fiber.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: envOr("ALLOWED_ORIGINS", "http://localhost:3000"),
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	handlers.SetupGameRoutes(app, manager, eventLog)
	handlers.SetupPlayerRoutes(app, manager, eventLog)

	port := envOr("PORT", "5300")
	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Question Worker running")
	log.Println("✅ Monitor Worker running")
	log.Println("✅ Stats scheduler running (every 1m)")

	<-ctx.Done()
	log.Println("Shutting down server...")
	_ = app.Shutdown()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
