package protocal

import (
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/ZHANGV25/Prune/configs"
	httpAdapter "github.com/ZHANGV25/Prune/internal/adapters/input/http"
	"github.com/ZHANGV25/Prune/internal/adapters/output/adserver"
	"github.com/ZHANGV25/Prune/internal/adapters/output/mediaserver"
	"github.com/ZHANGV25/Prune/internal/adapters/output/memory"
	"github.com/ZHANGV25/Prune/internal/adapters/output/postgres"
	redisAdapter "github.com/ZHANGV25/Prune/internal/adapters/output/redis"
	"github.com/ZHANGV25/Prune/internal/adapters/output/telemetry"
	"github.com/ZHANGV25/Prune/internal/application"
	"github.com/ZHANGV25/Prune/internal/ports/output"
	"github.com/ZHANGV25/Prune/pkg/database_driver/gorm"

	swagger "github.com/arsmn/fiber-swagger/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"
	gormDB "gorm.io/gorm"
)

type config struct {
	ENV string `mapstructure:"env"`
}

// ServeHTTP func
func ServeHTTP() error {
	app := fiber.New()
	var cfg config
	flag.StringVar(&cfg.ENV, "env", "", "the environment to use")
	flag.Parse()
	configs.InitViper("./configs", cfg.ENV)
	logrus.Info(configs.GetViper().Env)
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept,Authorization",
	}))

	// Seen-set persistence backend: redis when configured, postgres when a
	// database host is set, process memory otherwise.
	var (
		seenStore  output.SeenStore
		pgConn     *gormDB.DB
		redisStore *redisAdapter.SeenStore
	)
	switch {
	case configs.GetViper().Redis.Addr != "":
		redisStore = redisAdapter.New(
			configs.GetViper().Redis.Addr,
			configs.GetViper().Redis.Password,
			configs.GetViper().Redis.Db,
		)
		seenStore = redisStore
		logrus.Info("Seen set backed by redis at ", configs.GetViper().Redis.Addr)
	case configs.GetViper().Postgres.Host != "":
		dbConGorm, err := gorm.ConnectToPostgreSQL(
			configs.GetViper().Postgres.Host,
			configs.GetViper().Postgres.Port,
			configs.GetViper().Postgres.Username,
			configs.GetViper().Postgres.Password,
			configs.GetViper().Postgres.DbName,
			configs.GetViper().Postgres.SSLMode,
		)
		if err != nil {
			return err
		}
		pgConn = dbConGorm.Postgres
		seenStore = postgres.NewSeenRepository(pgConn)
		logrus.Info("Seen set backed by postgres")
	default:
		seenStore = memory.NewSeenStore()
		logrus.Warn("No seen-set backend configured, the seen record will not survive restarts")
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		for range c {
			log.Println("Gracefull shut down ...")
			if pgConn != nil {
				gorm.DisconnectPostgres(pgConn)
			}
			if redisStore != nil {
				if err := redisStore.Close(); err != nil {
					log.Println("Error when closing redis: ", err)
				}
			}
			err := app.Shutdown()
			if err != nil {
				log.Println("Error when shutdown server: ", err)
			}
		}
	}()

	// Wire up the hexagonal architecture layers
	// Output adapters
	mediaClient, err := mediaserver.NewMediaClientAdapter(configs.GetViper().MediaServer)
	if err != nil {
		logrus.Fatalf("Failed to create media server client: %v", err)
	}
	adClient, err := adserver.NewAdClientAdapter(configs.GetViper().AdServer)
	if err != nil {
		logrus.Fatalf("Failed to create ad network client: %v", err)
	}
	entitlements := memory.NewEntitlementProvider(configs.GetViper().Entitlement.Pro)
	events := telemetry.New()

	// Application services (use cases)
	seenSet, err := application.NewSeenSet(seenStore)
	if err != nil {
		logrus.Fatalf("Failed to load seen set: %v", err)
	}
	srv := application.NewReviewService(
		mediaClient,
		mediaClient,
		mediaClient,
		entitlements,
		adClient,
		events,
		seenSet,
		application.DeckConfig{
			AdFrequency:    configs.GetViper().Deck.AdFrequency,
			PrefetchWindow: configs.GetViper().Deck.PrefetchWindow,
		},
	)

	// Input adapter (HTTP handler)
	hdl := httpAdapter.New(srv, seenSet, pgConn)

	app.Get("/swagger/*", swagger.HandlerDefault) // default
	app.Get("/health", hdl.HealthCheck)

	magnolia := app.Group("/v1/api")
	{
		magnolia.Post("/session", hdl.StartSession)
		magnolia.Get("/session/:id", hdl.GetSession)
		magnolia.Delete("/session/:id", hdl.AbandonSession)
		magnolia.Post("/session/:id/swipe", hdl.Swipe)
		magnolia.Post("/session/:id/undo", hdl.Undo)
		magnolia.Post("/session/:id/commit", hdl.CommitDeletions)
		magnolia.Get("/session/:id/payload/:itemID", hdl.GetPayload)
		magnolia.Get("/session/:id/events", hdl.StreamEvents)
		magnolia.Get("/seen", hdl.GetSeen)
		magnolia.Delete("/seen", hdl.ClearSeen)
	}

	err = app.Listen(":" + configs.GetViper().App.Port)
	if err != nil {
		return err
	}

	logrus.Println("Listerning on port: ", configs.GetViper().App.Port)
	return nil
}
