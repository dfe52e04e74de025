package main

import (
	"flag"
	"log"
	"os"
)

func main() {
	// Command line flags
	port := flag.String("port", "8080", "Web server port (default: 8080)")
	dbPath := flag.String("db", "watchlist.db", "Database file path (default: watchlist.db)")
	templates := flag.String("templates", "templates/*.html", "HTML template glob")
	noScheduler := flag.Bool("no-scheduler", false, "Disable the daily snapshot scheduler")
	flag.Parse()

	log.Println("=== Stock Watchlist Tracker ===")
	log.Printf("Database: %s", *dbPath)
	log.Printf("Server will start on http://localhost:%s", *port)

	cfg := ServerConfig{
		DBPath:          *dbPath,
		FinnhubAPIKey:   os.Getenv("FINNHUB_API_KEY"),
		SessionKey:      os.Getenv("SESSION_KEY"),
		TemplateGlob:    *templates,
		EnableScheduler: !*noScheduler,
	}

	server, err := NewWebServer(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize web server: %v", err)
	}
	defer server.Close()

	if err := server.Run(":" + *port); err != nil {
		log.Fatalf("Failed to start web server: %v", err)
	}
}
