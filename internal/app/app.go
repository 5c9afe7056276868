package app

import (
	"context"
	"fmt"
	"procomp-service/config"
	"procomp-service/internal/cache"
	"procomp-service/internal/database"
	"procomp-service/internal/document"
	"procomp-service/internal/mailer"
	"procomp-service/internal/queue"
	"procomp-service/internal/repository"
	"procomp-service/internal/service"
	"procomp-service/internal/token"
	"procomp-service/internal/worker"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Container 組裝好的依賴，供 HTTP 伺服器與維運 CLI 共用
type Container struct {
	Config *config.Config
	Pool   *pgxpool.Pool
	Redis  *redis.Client

	Sessions cache.SessionStore
	Reaper   *worker.ExpiryReaper

	Quotes  *service.QuoteServiceImpl
	Auth    *service.AuthServiceImpl
	Tickets *service.TicketServiceImpl
	Catalog service.CatalogService
	Admin   *service.AdminServiceImpl
}

// New 連線 Postgres 與 Redis 並建立所有服務；migrate=true 時先套用 schema
func New(ctx context.Context, cfg *config.Config, migrate bool) (*Container, error) {
	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	if migrate {
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	c := &Container{Config: cfg, Pool: pool, Redis: rdb}
	c.build()
	return c, nil
}

func (c *Container) build() {
	cfg := c.Config

	quoteRepo := repository.NewQuoteRepository(c.Pool)
	ticketRepo := repository.NewTicketRepository(c.Pool)
	userRepo := repository.NewUserRepository(c.Pool)
	operatorRepo := repository.NewOperatorRepository(c.Pool)
	billingRepo := repository.NewBillingRepository(c.Pool)
	orderRepo := repository.NewOrderRepository(c.Pool)
	catalogRepo := repository.NewCatalogRepository(c.Pool)
	transactor := repository.NewTransactor(c.Pool)

	c.Sessions = cache.NewRedisSessionStore(c.Redis, cfg.Session.TTL)
	identifiers := cache.NewRedisIdentifierRegistry(c.Redis)

	expiryQueue := queue.NewRedisExpiryQueue(c.Redis, nil)
	c.Reaper = worker.NewExpiryReaper(expiryQueue, quoteRepo, cfg.Quote.ExpiryWindow, cfg.Quote.SweepInterval)

	m := mailer.NewSMTPMailer(cfg.SMTP)

	c.Quotes = service.NewQuoteService(service.QuoteServiceDeps{
		Quotes:      quoteRepo,
		Tickets:     ticketRepo,
		Users:       userRepo,
		Billing:     billingRepo,
		Transactor:  transactor,
		Identifiers: identifiers,
		Signer:      token.NewAcceptSigner(cfg.Quote.TokenSecret),
		Renderer:    document.NewPDFRenderer(),
		Mailer:      m,
		Scheduler:   c.Reaper,
	}, cfg.Quote.ExpiryWindow, cfg.Server.BaseURL)

	c.Auth = service.NewAuthService(userRepo, operatorRepo, m)
	c.Tickets = service.NewTicketService(ticketRepo)
	c.Catalog = service.NewCatalogService(catalogRepo)
	c.Admin = service.NewAdminService(orderRepo, userRepo, transactor, m)
}

// Close 停止 reaper 並關閉連線
func (c *Container) Close() {
	if c.Reaper != nil {
		c.Reaper.Stop()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
}
