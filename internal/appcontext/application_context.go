package appcontext

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/roundsale/internal/api"
	"github.com/RoyceAzure/lab/roundsale/internal/api/handler"
	"github.com/RoyceAzure/lab/roundsale/internal/api/router"
	"github.com/RoyceAzure/lab/roundsale/internal/config"
	"github.com/RoyceAzure/lab/roundsale/internal/constants"
	"github.com/RoyceAzure/lab/roundsale/internal/infra/producer"
	"github.com/RoyceAzure/lab/roundsale/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/roundsale/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/roundsale/internal/pkg/metrics"
	"github.com/RoyceAzure/lab/roundsale/internal/pkg/ratelimit"
	"github.com/RoyceAzure/lab/roundsale/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ApplicationContext struct {
	Cf               *config.Config
	Logger           *zerolog.Logger
	DbConn           *gorm.DB
	DbDao            db.UnifiedDB
	RedisClient      *redis.Client
	Notifier         producer.Notifier
	Metrics          *metrics.ServerMetrics
	Limiter          ratelimit.Limiter
	InventoryService *service.InventoryService
	CheckoutService  *service.CheckoutService
	StateMachine     *service.OrderStateMachine
	CatalogService   service.ICatalogService
	RoundService     service.IRoundService
	OrderService     service.IOrderService
	CartService      service.ICartService
	Router           *chi.Mux
}

func NewApplicationContext(cf *config.Config) (*ApplicationContext, error) {
	app := ApplicationContext{
		Cf: cf,
	}
	if err := app.Init(); err != nil {
		app.closeResources()
		return nil, err
	}
	return &app, nil
}

func (app *ApplicationContext) Init() error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"logger", app.setUpLogger},
		{"database connection", app.setUpdbConn},
		{"database DAO", app.setUpdbDao},
		{"redis client", app.setUpRedis},
		{"notifier", app.setUpNotifier},
		{"metrics", app.setUpMetrics},
		{"rate limiter", app.setUpLimiter},
		{"services", app.setUpServices},
		{"router", app.setUpRouter},
	}
	for _, step := range steps {
		if app.Logger != nil {
			app.Logger.Info().Msgf("Start setup %s", step.name)
		}
		if err := step.fn(); err != nil {
			return fmt.Errorf("setup %s: %w", step.name, err)
		}
		app.Logger.Info().Msgf("Finish setup %s", step.name)
	}
	return nil
}

func (app *ApplicationContext) setUpLogger() error {
	level, err := zerolog.ParseLevel(strings.ToLower(app.Cf.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if constants.ENV(app.Cf.Env) == constants.Debug {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	logger = logger.Level(level).With().Timestamp().Str("service", app.Cf.ServiceName).Logger()
	app.Logger = &logger
	return nil
}

func (app *ApplicationContext) setUpdbConn() error {
	var (
		conn *gorm.DB
		err  error
	)
	switch app.Cf.DbDriver {
	case db.DriverSqlite:
		conn, err = db.GetSqliteConn(app.Cf.SqliteDsn)
	case db.DriverPostgres, "":
		conn, err = db.GetDbConn(app.Cf.DbName, app.Cf.DbHost, app.Cf.DbPort, app.Cf.DbUser, app.Cf.DbPas)
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", app.Cf.DbDriver)
	}
	if err != nil {
		return err
	}
	app.DbConn = conn
	return nil
}

func (app *ApplicationContext) setUpdbDao() error {
	app.DbDao = db.NewUnifiedDB(app.DbConn)
	return app.DbDao.InitMigrate()
}

func (app *ApplicationContext) setUpRedis() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := redis_repo.NewRedisClient(ctx, app.Cf.RedisAddr,
		redis_repo.WithPassword(app.Cf.RedisPassword),
		redis_repo.WithDB(app.Cf.RedisDB),
	)
	if err != nil {
		return err
	}
	app.RedisClient = client
	return nil
}

// setUpNotifier 沒有設定 kafka brokers 時只寫 log
func (app *ApplicationContext) setUpNotifier() error {
	brokers := app.Cf.KafkaBrokerList()
	if len(brokers) == 0 {
		app.Logger.Warn().Msg("KAFKA_BROKERS is empty, order notifications are logged only")
		app.Notifier = producer.NewLogNotifier(app.Logger)
		return nil
	}
	writer := producer.NewKafkaWriter(producer.WriterConfig{
		Brokers:      brokers,
		Topic:        app.Cf.KafkaOrderTopic,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: 1,
	}, app.Logger)
	app.Notifier = producer.NewKafkaNotifier(writer, app.Cf.KafkaOrderTopic, 3)
	return nil
}

func (app *ApplicationContext) setUpMetrics() error {
	app.Metrics = metrics.NewServerMetrics(strings.ReplaceAll(app.Cf.ServiceName, "-", "_"), nil)
	return nil
}

// setUpLimiter debug 環境使用單機限流
func (app *ApplicationContext) setUpLimiter() error {
	cfg := ratelimit.LimiterConfig{
		Capacity: app.Cf.RateLimitCapacity,
		RatePS:   app.Cf.RateLimitRPS,
	}
	if constants.ENV(app.Cf.Env) == constants.Debug {
		app.Limiter = ratelimit.NewLocalLimiter(cfg)
		return nil
	}
	app.Limiter = ratelimit.NewRedisTokenBucket(app.RedisClient, cfg, app.Logger)
	return nil
}

func (app *ApplicationContext) setUpServices() error {
	carts := redis_repo.NewCartRepo(app.RedisClient, app.Cf.CartTTL)
	cache := redis_repo.NewAvailabilityRepo(app.RedisClient, app.Cf.AvailabilityCacheTTL)

	app.InventoryService = service.NewInventoryService(app.DbDao, cache, app.Logger)
	app.CheckoutService = service.NewCheckoutService(
		app.DbDao,
		service.NewShippingCalculator(decimal.NewFromFloat(app.Cf.DefaultShippingCost)),
		app.InventoryService,
		app.Notifier,
		service.CheckoutConfig{
			OrderCodeRetry: app.Cf.OrderCodeRetry,
			NotifyTimeout:  app.Cf.NotifyTimeout,
		},
		app.Logger,
		service.WithCartStore(carts),
	)
	app.StateMachine = service.NewOrderStateMachine(app.DbDao, app.InventoryService, app.Notifier, app.Cf.NotifyTimeout, app.Logger)
	app.CatalogService = service.NewCatalogService(app.DbDao)
	app.RoundService = service.NewRoundService(app.DbDao, app.Logger)
	app.OrderService = service.NewOrderService(app.DbDao)
	app.CartService = service.NewCartService(app.DbDao, carts)
	return nil
}

func (app *ApplicationContext) setUpRouter() error {
	server := api.NewServer(
		handler.NewShopHandler(app.CatalogService),
		handler.NewRoundHandler(app.RoundService, app.InventoryService, app.OrderService),
		handler.NewCartHandler(app.CartService),
		handler.NewCheckoutHandler(app.CheckoutService, app.Metrics),
		handler.NewOrderHandler(app.OrderService, app.StateMachine),
	)
	app.Router = router.SetupRouter(server, app.Logger,
		router.WithMetrics(app.Metrics),
		router.WithCheckoutLimiter(app.Limiter),
	)
	return nil
}

// Shutdown 先等待尚未送出的通知，再關閉連線
func (app *ApplicationContext) Shutdown(ctx context.Context) error {
	app.Logger.Info().Msg("Start application shutdown")

	done := make(chan struct{})
	go func() {
		defer close(done)
		if app.CheckoutService != nil {
			app.CheckoutService.Wait()
		}
		if app.StateMachine != nil {
			app.StateMachine.Wait()
		}
	}()

	select {
	case <-done:
	case <-ctx.Done():
		app.closeResources()
		return fmt.Errorf("shutdown timeout: %w", ctx.Err())
	}

	app.closeResources()
	app.Logger.Info().Msg("Application shutdown complete")
	return nil
}

func (app *ApplicationContext) closeResources() {
	if app.Notifier != nil {
		if err := app.Notifier.Close(); err != nil {
			app.logWarn(err, "notifier close error")
		}
	}
	if app.RedisClient != nil {
		if err := app.RedisClient.Close(); err != nil {
			app.logWarn(err, "redis close error")
		}
	}
	if app.DbConn != nil {
		if sqlDB, err := app.DbConn.DB(); err == nil {
			sqlDB.Close()
		}
	}
}

func (app *ApplicationContext) logWarn(err error, msg string) {
	if app.Logger != nil {
		app.Logger.Warn().Err(err).Msg(msg)
	}
}
