package app

import (
	"log/slog"
	"net/netip"

	"github.com/go-chi/chi/v5"
	"github.com/odessarp/dashboard/internal/auth"
	"github.com/odessarp/dashboard/internal/cache"
	"github.com/odessarp/dashboard/internal/domain"
	"github.com/odessarp/dashboard/internal/guard"
	"github.com/odessarp/dashboard/internal/handler"
	adminhandler "github.com/odessarp/dashboard/internal/handler/admin"
	"github.com/odessarp/dashboard/internal/infra"
	"github.com/odessarp/dashboard/internal/repository"
	"github.com/odessarp/dashboard/internal/service"
)

// Database is satisfied by *pgxpool.Pool.
type Database interface {
	repository.DBTX
	repository.Beginner
	infra.Pinger
}

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	DB     Database
	JWTMgr *auth.JWTManager
	Cache  *cache.Cache
	Logger *slog.Logger

	// External providers. OAuth and FiveM may be nil when not configured.
	Discord service.DiscordGuild
	OAuth   service.OAuthProvider
	FiveM   service.StatusSource

	FiveMAPIKey       string
	DiscordAPIKey     string
	CORSOrigin        string
	TrustedProxies    []netip.Prefix
	AdminEmails       []string
	AllowedDiscordIDs []string
	IngestRateLimit   float64
	IngestBurst       int
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	db := deps.DB
	logger := deps.Logger
	c := deps.Cache
	txRunner := repository.NewTxRunner(db)

	// Repositories
	logRepo := repository.NewLogRepository()
	outboxRepo := repository.NewOutboxRepository()
	ruleRepo := repository.NewRuleRepository()
	contentRepo := repository.NewContentRepository()
	roleRepo := repository.NewRoleRepository()
	appRepo := repository.NewApplicationRepository()

	// Services
	syncSvc := service.NewRoleSyncService(txRunner, roleRepo, deps.Discord, c, logger)
	resolver := auth.NewResolver(db, roleRepo, syncSvc, c, auth.ResolverConfig{
		AdminEmails:       deps.AdminEmails,
		AllowedDiscordIDs: deps.AllowedDiscordIDs,
	}, logger)
	ingestSvc := service.NewIngestService(txRunner, logRepo, outboxRepo, logger)
	logSvc := service.NewLogService(db, logRepo, c, logger)
	ruleSvc := service.NewRuleService(db, txRunner, ruleRepo, c, logger)
	contentSvc := service.NewContentService(db, txRunner, contentRepo, c, logger)
	roleSvc := service.NewRoleService(db, txRunner, roleRepo, syncSvc, deps.Discord, c, logger)
	appSvc := service.NewApplicationService(db, txRunner, appRepo, logger)
	authSvc := service.NewAuthService(db, roleRepo, deps.OAuth, syncSvc, resolver, deps.JWTMgr, logger)
	guildSvc := service.NewGuildService(deps.Discord, logger)
	statusSvc := service.NewServerStatusService(deps.FiveM, c)

	// Handlers
	limiter := guard.NewRateLimiter(deps.IngestRateLimit, deps.IngestBurst)
	ingestHandler := handler.NewIngestHandler(ingestSvc, deps.FiveMAPIKey, limiter, deps.CORSOrigin, logger)
	discordHandler := handler.NewDiscordHandler(guildSvc, syncSvc, logger)
	authHandler := handler.NewAuthHandler(authSvc, logger)
	logHandler := handler.NewLogHandler(logSvc)
	ruleHandler := handler.NewRuleHandler(ruleSvc)
	contentHandler := handler.NewContentHandler(contentSvc)
	appHandler := handler.NewApplicationHandler(appSvc)

	// Admin handlers
	roleAdmin := adminhandler.NewRoleAdminHandler(roleSvc)
	appAdmin := adminhandler.NewApplicationAdminHandler(appSvc)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RealIP(deps.TrustedProxies))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORSWithOrigins(deps.CORSOrigin, handler.IngestPath))

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(db))

	// Game server ingestion: all methods, legacy bodies, own CORS
	r.Handle(handler.IngestPath, ingestHandler)

	// Bot proxy (shared API key)
	r.Route("/discord", func(r chi.Router) {
		r.Use(auth.RequireAPIKey(deps.DiscordAPIKey))
		r.Get("/guild-details", discordHandler.GuildDetails)
		r.Post("/member-roles", discordHandler.MemberRoles)
		r.Post("/sync-user-roles", discordHandler.SyncUserRoles)
	})

	// Discord login (no auth)
	r.Route("/auth/discord", func(r chi.Router) {
		r.Get("/login", authHandler.Login)
		r.Get("/callback", authHandler.Callback)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(handler.JSONContentType)

		// Public reads
		r.Get("/rules", ruleHandler.List)
		r.Get("/rules/{id}", ruleHandler.Get)
		r.Get("/rules/{id}/changes", ruleHandler.Changes)
		r.Get("/content", contentHandler.List)
		r.Get("/content/{id}", contentHandler.Get)
		r.Get("/jobs", appHandler.ListJobs)
		r.Get("/server/status", handler.ServerStatusHandler(statusSvc))

		// Signed-in users
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate(deps.JWTMgr))

			r.Get("/me", authHandler.Me)
			r.Post("/applications", appHandler.Submit)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequirePermission(resolver, domain.LevelViewer))
				r.Get("/logs", logHandler.List)
				r.Get("/logs/facets", logHandler.Facets)
				r.Get("/logs/{id}", logHandler.Get)
			})

			r.Group(func(r chi.Router) {
				r.Use(auth.RequirePermission(resolver, domain.LevelContent))
				r.Post("/rules", ruleHandler.Create)
				r.Post("/rules/reorder", ruleHandler.Reorder)
				r.Put("/rules/{id}", ruleHandler.Update)
				r.Delete("/rules/{id}", ruleHandler.Delete)
				r.Post("/content", contentHandler.Create)
				r.Put("/content/{id}", contentHandler.Update)
				r.Delete("/content/{id}", contentHandler.Delete)
			})

			r.Group(func(r chi.Router) {
				r.Use(auth.RequirePermission(resolver, domain.LevelStaff))
				r.Get("/applications", appAdmin.List)
				r.Get("/applications/{id}", appAdmin.Get)
				r.Patch("/applications/{id}/status", appAdmin.SetStatus)
			})

			r.Group(func(r chi.Router) {
				r.Use(auth.RequirePermission(resolver, domain.LevelAdmin))
				r.Get("/discord/roles", roleAdmin.GuildRoles)
				r.Route("/roles", func(r chi.Router) {
					r.Get("/discord", roleAdmin.ListDiscordRoles)
					r.Put("/discord/{roleId}", roleAdmin.SetDiscordRole)
					r.Delete("/discord/{roleId}", roleAdmin.DeleteDiscordRole)
					r.Get("/changes", roleAdmin.ListChanges)
					r.Get("/email", roleAdmin.ListEmailRoles)
					r.Put("/email", roleAdmin.SetEmailRole)
					r.Delete("/email/{email}", roleAdmin.DeleteEmailRole)
					r.Get("/users/{discordId}", roleAdmin.UserRoles)
					r.Post("/users/{discordId}/sync", roleAdmin.SyncUser)
				})
			})
		})
	})

	return r
}
