package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"comercial-backend/internal/config"
	infraCache "comercial-backend/internal/infrastructure/cache"
	"comercial-backend/internal/infrastructure/database"
	"comercial-backend/internal/infrastructure/queue"
	"comercial-backend/pkg/cache"
	"comercial-backend/pkg/jwt"

	auditoriaHandler "comercial-backend/internal/domains/auditoria/handler"
	auditoriaRepo "comercial-backend/internal/domains/auditoria/repository"
	auditoriaService "comercial-backend/internal/domains/auditoria/service"
	descuentoHandler "comercial-backend/internal/domains/descuento/handler"
	descuentoRepo "comercial-backend/internal/domains/descuento/repository"
	descuentoService "comercial-backend/internal/domains/descuento/service"
	precioHandler "comercial-backend/internal/domains/precio/handler"
	precioRepo "comercial-backend/internal/domains/precio/repository"
	precioService "comercial-backend/internal/domains/precio/service"
)

// Container es la raíz del grafo de dependencias de la aplicación.
// Todo se inicializa una sola vez y se comparte.
type Container struct {
	Config      *config.Config
	DB          *database.PostgresDB
	Redis       *infraCache.RedisClient
	Cache       cache.Cache
	JWTManager  *jwt.Manager
	QueueClient *queue.Client

	PrecioRepo    precioRepo.PrecioRepository
	DescuentoRepo descuentoRepo.DescuentoRepository
	AuditoriaRepo auditoriaRepo.AuditoriaRepository

	PrecioService    precioService.ServiceInterface
	DescuentoService descuentoService.ServiceInterface
	AuditoriaService auditoriaService.ServiceInterface

	PrecioHandler    *precioHandler.PrecioHandler
	DescuentoHandler *descuentoHandler.DescuentoHandler
	AuditoriaHandler *auditoriaHandler.AuditoriaHandler
}

// NewContainer arma el grafo completo.
//
// El orden importa:
// 1. Config (no depende de nadie)
// 2. Infraestructura (Postgres, Redis, cola) - depende de Config
// 3. Repositorios - dependen de la infraestructura
// 4. Servicios - dependen de repositorios
// 5. Handlers - dependen de servicios
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	log.Println("📋 Loading configuration...")
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	log.Println("🗄️  Connecting to PostgreSQL...")
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db
	log.Println("✅ Database connected")

	log.Println("🔴 Connecting to Redis...")
	redisClient := infraCache.NewRedisClient(
		cfg.Redis.Host,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	if err := redisClient.Connect(context.Background()); err != nil {
		// Redis caído no tumba la API: el cache degrada a ir siempre a Postgres
		log.Printf("⚠️  Redis connection failed (non-critical): %v", err)
	} else {
		log.Println("✅ Redis connected")
	}
	c.Redis = redisClient
	c.Cache = cache.NewRedisCache(redisClient.Client)

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret)

	c.QueueClient = queue.NewClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)

	log.Println("📦 Initializing repositories...")
	c.initRepositories()
	log.Println("✅ Repositories initialized")

	log.Println("⚙️  Initializing services...")
	c.initServices()
	log.Println("✅ Services initialized")

	log.Println("🎯 Initializing handlers...")
	c.initHandlers()
	log.Println("✅ Handlers initialized")

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.PrecioRepo = precioRepo.NewPostgresRepository(pool)
	c.DescuentoRepo = descuentoRepo.NewPostgresRepository(pool)
	c.AuditoriaRepo = auditoriaRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	cacheTTL := time.Duration(c.Config.Job.CacheTTLSeconds) * time.Second

	c.PrecioService = precioService.NewPrecioService(c.PrecioRepo, c.QueueClient)
	c.DescuentoService = descuentoService.NewDescuentoService(c.DescuentoRepo, c.Cache, cacheTTL, c.QueueClient)
	c.AuditoriaService = auditoriaService.NewAuditoriaService(c.AuditoriaRepo)
}

func (c *Container) initHandlers() {
	c.PrecioHandler = precioHandler.NewPrecioHandler(c.PrecioService)
	c.DescuentoHandler = descuentoHandler.NewDescuentoHandler(c.DescuentoService)
	c.AuditoriaHandler = auditoriaHandler.NewAuditoriaHandler(c.AuditoriaService)
}

// Cleanup libera recursos en el shutdown
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			log.Printf("⚠️  Failed to close queue client: %v", err)
		} else {
			log.Println("✅ Queue client closed")
		}
	}

	if c.DB != nil && c.DB.Pool != nil {
		c.DB.Pool.Close()
		log.Println("✅ Database connections closed")
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Printf("⚠️  Failed to close Redis: %v", err)
		} else {
			log.Println("✅ Redis connections closed")
		}
	}

	log.Println("✅ Container cleanup completed")
}
