package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

type WebServer struct {
	database  *Database
	enricher  *Enricher
	scheduler *Scheduler
	store     *sessions.CookieStore
	router    *gin.Engine
}

type ServerConfig struct {
	DBPath          string
	FinnhubAPIKey   string
	SessionKey      string
	TemplateGlob    string
	EnableScheduler bool
}

func NewWebServer(cfg ServerConfig) (*WebServer, error) {
	database, err := NewDatabase(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	finnhub := NewFinnhubClient(cfg.FinnhubAPIKey)
	if !finnhub.HasCredential() {
		log.Println("Warning: no Finnhub API key configured, watchlist enrichment disabled")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	if cfg.TemplateGlob != "" {
		router.LoadHTMLGlob(cfg.TemplateGlob)
	}

	server := &WebServer{
		database: database,
		enricher: NewEnricher(finnhub),
		store:    newSessionStore(cfg.SessionKey),
		router:   router,
	}

	// Initialize scheduler if enabled
	if cfg.EnableScheduler {
		scheduler, err := NewScheduler(database, finnhub)
		if err != nil {
			log.Printf("Warning: Failed to initialize scheduler: %v", err)
		} else {
			server.scheduler = scheduler
			scheduler.Start()
		}
	}

	server.setupRoutes()
	return server, nil
}

func (ws *WebServer) setupRoutes() {
	// Pages
	ws.router.GET("/", ws.home)
	ws.router.GET("/signup", ws.signupPage)
	ws.router.POST("/signup", ws.signup)
	ws.router.GET("/login", ws.loginPage)
	ws.router.POST("/login", ws.login)
	ws.router.GET("/logout", ws.logout)
	ws.router.GET("/dashboard", ws.requirePageAuth(), ws.dashboard)

	// API routes
	api := ws.router.Group("/api")
	api.Use(ws.requireAuth())
	{
		api.GET("/watchlist", ws.getWatchlist)
		api.POST("/watchlist", ws.addWatchlistEntry)
		api.DELETE("/watchlist/:symbol", ws.removeWatchlistEntry)
		api.GET("/watchlist/:symbol/history", ws.getSnapshotHistory)
	}
}

func (ws *WebServer) Run(addr string) error {
	log.Printf("Web server starting on %s", addr)
	return ws.router.Run(addr)
}

func (ws *WebServer) Close() {
	if ws.scheduler != nil {
		ws.scheduler.Stop()
	}
	if ws.database != nil {
		ws.database.Close()
	}
}
