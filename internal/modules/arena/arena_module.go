package arena

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/liangdas/mqant/conf"
	"github.com/liangdas/mqant/module"
	basemodule "github.com/liangdas/mqant/module/base"
	"github.com/liangdas/mqant/server"
	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "robot-arena/docs/arena" // Swagger 生成的文档
	custommiddleware "robot-arena/internal/middleware"
	"robot-arena/internal/modules/arena/handler"
	"robot-arena/internal/modules/arena/service"
	"robot-arena/internal/modules/arena/tasks"
	"robot-arena/internal/pkg/config"
	"robot-arena/internal/pkg/i18n"
	"robot-arena/internal/pkg/log"
	"robot-arena/internal/pkg/metrics"
	natsclient "robot-arena/internal/pkg/nats"
	"robot-arena/internal/pkg/notify"
	redisClient "robot-arena/internal/pkg/redis"
	"robot-arena/internal/pkg/response"
	"robot-arena/internal/pkg/security"
	"robot-arena/internal/pkg/validator"
	"robot-arena/internal/pkg/wshub"
	"robot-arena/internal/repository/impl"
	"robot-arena/internal/repository/interfaces"
)

type ArenaModule struct {
	basemodule.BaseModule
	nc     *nats.Conn
	db     *sql.DB
	redis  *redisClient.Client
	logger log.Logger

	settings     service.Settings
	promRegistry *prometheus.Registry
	arenaMetrics *metrics.ArenaMetrics
	httpMetrics  *metrics.HTTPMetrics
	natsHealth   *natsclient.HealthChecker
	stopHealth   context.CancelFunc

	reports  interfaces.BattleReportRepository
	hub      *wshub.Hub
	registry *service.BattleRegistry

	httpServer     *echo.Echo
	respWriter     response.Writer
	battleHandler  *handler.BattleHandler
	robotHandler   *handler.RobotHandler
	watchHandler   *handler.WatchHandler
	historyHandler *handler.HistoryHandler
	rpcHandler     *handler.ArenaRPCHandler
	cleanupTask    *tasks.CleanupTask
}

// GetType returns module type
func (m *ArenaModule) GetType() string {
	return "arena"
}

// Version returns module version
func (m *ArenaModule) Version() string {
	return "1.0.0"
}

// OnAppConfigurationLoaded 当App初始化时调用
func (m *ArenaModule) OnAppConfigurationLoaded(app module.App) {
	m.BaseModule.OnAppConfigurationLoaded(app)
}

// OnInit module initialization
func (m *ArenaModule) OnInit(app module.App, settings *conf.ModuleSettings) {
	// TTL = 30s, 心跳间隔 = 15s (TTL 必须大于心跳间隔)
	m.BaseModule.OnInit(m, app, settings,
		server.RegisterInterval(15*time.Second),
		server.RegisterTTL(30*time.Second),
	)
	m.logger = log.GetLogger().With("module", "arena", "server_id", m.GetServerID())
	metrics.SetIdentity(metrics.Identity{Service: m.GetType(), Instance: m.GetServerID()})

	// 1. 读取竞技场参数
	m.settings = service.LoadSettings()
	if err := m.settings.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid arena settings: %v", err))
	}
	m.logger.Info("[Arena Module] settings loaded", "settings", config.SanitizeConfigForLog(m.settings.LogFields()))

	// 2. Prometheus 注册表
	m.initMetrics()

	// 3. 可选依赖：归档数据库、Redis 快照缓存、NATS 事件
	if err := m.initDatabase(settings); err != nil {
		panic(fmt.Sprintf("Failed to initialize database: %v", err))
	}
	m.initRedis()
	m.initNats()

	// 4. 注册表与观察者
	m.initRegistry()

	// 5. HTTP
	m.initResponseWriter()
	m.initHTTPServer()
	m.initHandlers()
	m.setupRoutes()

	// 6. RPC
	m.setupRPCMethods()

	// 7. 定时清理
	m.startCronTasks()

	go m.startHTTPServer(settings)
}

// initMetrics 独立注册表，避免与全局默认注册表冲突
func (m *ArenaModule) initMetrics() {
	m.promRegistry = prometheus.NewRegistry()
	m.promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.SetRegisterer(m.promRegistry)

	m.arenaMetrics = metrics.NewArenaMetrics("")
	m.httpMetrics = metrics.NewHTTPMetrics("arena")
}

// initDatabase 归档是可选的，未配置时只跳过
func (m *ArenaModule) initDatabase(settings *conf.ModuleSettings) error {
	dbURL := os.Getenv("ARENA_DATABASE_URL")
	if dbURL == "" && settings != nil {
		dbURL = config.SettingString(settings.Settings, "database_url")
	}
	if dbURL == "" {
		m.logger.Info("[Arena Module] ARENA_DATABASE_URL not set, battle archive disabled")
		return nil
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := impl.EnsureBattleReportSchema(ctx, db); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to prepare battle report schema: %w", err)
	}

	m.db = db
	m.reports = impl.NewBattleReportRepository(db)
	m.logger.Info("[Arena Module] Battle archive initialized")
	return nil
}

// initRedis 快照缓存是尽力而为的，连接失败只告警
func (m *ArenaModule) initRedis() {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		m.logger.Info("[Arena Module] REDIS_HOST not set, snapshot cache disabled")
		return
	}

	cfg := redisClient.Config{
		Host:     host,
		Port:     config.GetEnvInt("REDIS_PORT", 6379),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       config.GetEnvInt("REDIS_DB", 0),
	}
	client, err := redisClient.NewClient(cfg, m.arenaMetrics)
	if err != nil {
		m.logger.Warn("[Arena Module] Redis unavailable, snapshot cache disabled", "addr", cfg.Addr(), "error", err)
		return
	}

	m.redis = client
	m.logger.Info("[Arena Module] Redis connected", "addr", cfg.Addr(), "db", cfg.DB)
}

func (m *ArenaModule) initNats() {
	if m.nc == nil {
		m.logger.Info("[Arena Module] NATS connection not provided, event bus disabled")
		return
	}

	m.natsHealth = natsclient.NewHealthChecker(m.nc, 10*time.Second, m.logger)
	ctx, cancel := context.WithCancel(context.Background())
	m.stopHealth = cancel
	go m.natsHealth.Start(ctx)
}

func (m *ArenaModule) initRegistry() {
	m.hub = wshub.NewHub(m.logger)

	observers := service.MultiObserver{service.NewHubObserver(m.hub, m.logger)}
	if m.nc != nil {
		observers = append(observers, service.NewEventPublisherObserver(notify.NewPublisher(m.nc, m.arenaMetrics), m.logger))
	}
	if m.redis != nil {
		observers = append(observers, service.NewSnapshotCacheObserver(m.redis, m.settings.SnapshotTTL, m.logger))
	}

	m.registry = service.NewBattleRegistry(m.settings, service.Dependencies{
		Logger:   m.logger,
		Metrics:  m.arenaMetrics,
		Observer: observers,
		Reports:  m.reports,
	})
	m.logger.Info("[Arena Module] Battle registry initialized", "observers", len(observers))
}

// initResponseWriter initializes response writer
func (m *ArenaModule) initResponseWriter() {
	environment := config.GetEnvOrDefault("ENVIRONMENT", "development")
	m.respWriter = response.NewResponseHandler(m.logger, environment)
}

// initHTTPServer initializes HTTP server
func (m *ArenaModule) initHTTPServer() {
	m.httpServer = echo.New()
	m.httpServer.HideBanner = true
	m.httpServer.HidePort = true

	m.httpServer.Validator = validator.New(validator.StringRule{Tag: "direction", Check: handler.DirectionRule})
	m.httpServer.HTTPErrorHandler = custommiddleware.HTTPErrorHandler(m.respWriter)

	environment := config.GetEnvOrDefault("ENVIRONMENT", "development")

	// ========== 中间件配置（顺序很重要！） ==========

	// 1. TraceID 中间件 - 最先执行，生成或提取 TraceID
	m.httpServer.Use(custommiddleware.TraceMiddleware())

	// 2. Metrics 中间件
	m.httpServer.Use(metrics.Middleware(m.httpMetrics))

	// 3. i18n 中间件 - 语言检测和设置
	m.httpServer.Use(i18n.Middleware())

	// 4. Logging 中间件 - 记录请求日志（依赖 TraceID）
	loggingConfig := custommiddleware.DefaultLoggingConfig()
	if environment == "development" {
		loggingConfig.DetailedLog = true
	}
	m.httpServer.Use(custommiddleware.LoggingMiddlewareWithConfig(m.logger, loggingConfig))

	// 5. Recovery 中间件 - 捕获 panic
	m.httpServer.Use(custommiddleware.RecoveryMiddleware(m.respWriter, m.logger))

	// 6. Error 中间件 - 统一错误处理
	m.httpServer.Use(custommiddleware.ErrorMiddleware(m.respWriter, m.logger))

	// 7. CORS / 安全响应头
	m.httpServer.Use(security.CORSMiddleware())
	m.httpServer.Use(security.HeadersMiddleware())
}

func (m *ArenaModule) initHandlers() {
	m.battleHandler = handler.NewBattleHandler(m.registry, m.respWriter)
	m.robotHandler = handler.NewRobotHandler(m.registry, m.respWriter)
	m.watchHandler = handler.NewWatchHandler(m.registry, m.hub, m.respWriter, m.logger)
	m.historyHandler = handler.NewHistoryHandler(m.reports, m.respWriter)
	m.rpcHandler = handler.NewArenaRPCHandler(m.registry)
}

// startCronTasks starts cron scheduled tasks
func (m *ArenaModule) startCronTasks() {
	m.cleanupTask = tasks.NewCleanupTask(m.registry, m.settings.CleanupSchedule, m.logger)
	if err := m.cleanupTask.Start(); err != nil {
		panic(fmt.Sprintf("Failed to start cleanup task: %v", err))
	}
}

// setupRoutes sets up HTTP routes
func (m *ArenaModule) setupRoutes() {
	v1 := m.httpServer.Group("/api/v1")

	arena := v1.Group("/arena")
	arena.Use(custommiddleware.RateLimitMiddleware(custommiddleware.RateLimitConfig{
		RequestsPerSecond: config.GetEnvFloat("ARENA_RATE_LIMIT_RPS", custommiddleware.DefaultRateLimitConfig().RequestsPerSecond),
		Burst:             config.GetEnvInt("ARENA_RATE_LIMIT_BURST", custommiddleware.DefaultRateLimitConfig().Burst),
	}))
	arena.Use(custommiddleware.UUIDParamMiddleware(m.respWriter))
	{
		battles := arena.Group("/battles")
		{
			battles.POST("", m.battleHandler.CreateBattle)
			battles.GET("", m.battleHandler.ListBattles)
			battles.GET("/:battle_id", m.battleHandler.GetBattle)
			battles.POST("/:battle_id/start", m.battleHandler.StartBattle)
			battles.DELETE("/:battle_id", m.battleHandler.DeleteBattle)
			battles.GET("/:battle_id/watch", m.watchHandler.Watch)

			// 机器人动作
			battles.GET("/:battle_id/robots/:robot_id", m.robotHandler.GetRobotStatus)
			battles.POST("/:battle_id/robots/:robot_id/move", m.robotHandler.Move)
			battles.POST("/:battle_id/robots/:robot_id/radar", m.robotHandler.Radar)
			battles.POST("/:battle_id/robots/:robot_id/laser", m.robotHandler.Laser)
		}

		arena.POST("/robots", m.robotHandler.RegisterRobot)
		arena.GET("/history", m.historyHandler.ListHistory)
	}

	// Swagger UI
	m.httpServer.GET("/swagger/*", echoSwagger.WrapHandler)

	// Health check
	m.httpServer.GET("/health", m.health)

	// Prometheus metrics endpoint
	m.httpServer.GET("/metrics", metrics.EchoHandler(m.promRegistry))
}

// health 依赖不可用时返回 degraded，但仍是 200：竞技场本身不依赖它们
func (m *ArenaModule) health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	deps := map[string]string{}
	status := "ok"
	check := func(name string, healthy bool) {
		if healthy {
			deps[name] = "up"
			return
		}
		deps[name] = "down"
		status = "degraded"
	}
	if m.natsHealth != nil {
		nst := m.natsHealth.Status()
		check("nats", nst.Healthy)
		deps["nats_state"] = nst.State
	}
	if m.redis != nil {
		check("redis", m.redis.Healthy(ctx))
	}
	if m.db != nil {
		check("postgres", m.db.PingContext(ctx) == nil)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":           status,
		"module":           "arena",
		"battles":          len(m.registry.ListBattles()),
		"active_movements": m.registry.ActiveMovements(),
		"dependencies":     deps,
	})
}

// startHTTPServer starts HTTP server
func (m *ArenaModule) startHTTPServer(settings *conf.ModuleSettings) {
	port := os.Getenv("ARENA_HTTP_PORT")
	if port == "" && settings != nil {
		port = config.SettingString(settings.Settings, "http_port")
	}
	if port == "" {
		port = "8080"
	}

	m.logger.Info("[Arena Module] Starting HTTP server", "port", port)
	if err := m.httpServer.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		m.logger.Error("[Arena Module] HTTP server error", err)
	}
}

// setupRPCMethods 注册运维 RPC
func (m *ArenaModule) setupRPCMethods() {
	m.GetServer().RegisterGO("ListBattles", m.rpcHandler.ListBattles)
	m.GetServer().RegisterGO("ForceDeleteBattle", m.rpcHandler.ForceDeleteBattle)
	m.GetServer().RegisterGO("CrashRobot", m.rpcHandler.CrashRobot)
	m.GetServer().RegisterGO("DeclareWinner", m.rpcHandler.DeclareWinner)
}

// Run module run
func (m *ArenaModule) Run(closeSig chan bool) {
	m.logger.Info("[Arena Module] Started successfully")
	<-closeSig
}

// OnDestroy module destroy
func (m *ArenaModule) OnDestroy() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if m.httpServer != nil {
		if err := m.httpServer.Shutdown(ctx); err != nil {
			m.logger.Error("[Arena Module] Failed to shutdown HTTP server", err)
		}
	}
	if m.cleanupTask != nil {
		m.cleanupTask.Stop()
	}
	if m.registry != nil {
		if err := m.registry.Shutdown(ctx); err != nil {
			m.logger.Warn("[Arena Module] Battle archive writes still pending at shutdown", "error", err)
		}
	}
	if m.hub != nil {
		m.hub.Close()
	}
	if m.stopHealth != nil {
		m.stopHealth()
	}
	if m.redis != nil {
		_ = m.redis.Close()
	}
	if m.db != nil {
		if err := m.db.Close(); err != nil {
			m.logger.Error("[Arena Module] Failed to close database", err)
		}
	}

	m.BaseModule.OnDestroy()
	m.logger.Info("[Arena Module] Destroyed")
}

// Module creates Arena module instance
// nc 为空时不发布 NATS 事件
func Module(nc *nats.Conn) module.Module {
	return &ArenaModule{nc: nc}
}
