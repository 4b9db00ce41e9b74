package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lernquiz/internal/api"
	"lernquiz/internal/config"
	"lernquiz/internal/llm"
	"lernquiz/internal/storage"
)

func main() {
	log.SetFlags(log.Ltime | log.Lmsgprefix)
	log.SetPrefix("")

	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Println("🎓 LERNQUIZ - Start")
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	// Kommandozeilen-Flags
	configPath := flag.String("config", "config.json", "Pfad zur Konfigurationsdatei")
	port := flag.String("port", "", "Server-Port (überschreibt die Konfiguration)")
	flag.Parse()

	// Konfiguration laden
	log.Println("📋 Lade Konfiguration...")
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("⚠️  Konnte Konfiguration nicht laden, verwende Standardwerte: %v", err)
	} else {
		log.Printf("   ✓ Konfiguration geladen")
	}
	if *port != "" {
		cfg.ServerPort = *port
	}

	// Storage initialisieren
	log.Println("💾 Initialisiere Datenbank...")
	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("❌ Fehler beim Initialisieren der Datenbank: %v", err)
	}
	defer store.Close()
	log.Printf("   ✓ Datenbank: %s", cfg.DatabasePath)

	// KI-Provider initialisieren (optional)
	var provider llm.Provider
	if cfg.UseAI && cfg.GeminiAPIKey != "" {
		log.Println("🤖 Initialisiere KI-Provider...")
		gemini := llm.NewGeminiProvider("", cfg.GeminiAPIKey, cfg.GeminiModel)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if gemini.IsAvailable(ctx) {
			log.Printf("   ✓ Gemini erreichbar (Modell: %s)", gemini.GetCurrentModel())
			provider = gemini
		} else {
			log.Println("   ⚠️  Gemini NICHT erreichbar, Analyse läuft lokal")
		}
		cancel()
	} else {
		log.Println("🔍 Keine KI konfiguriert, Analyse läuft lokal")
	}

	// API-Handler erstellen
	handler := api.NewHandler(store, provider, cfg)

	// Router erstellen
	router := api.NewRouter(handler)

	// Server starten
	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	// Graceful Shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("")
		log.Println("⏹️  Server wird heruntergefahren...")
		server.Close()
	}()

	log.Println("")
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Printf("✅ Server läuft auf: http://localhost:%s", cfg.ServerPort)
	log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Println("💡 Drücke Strg+C zum Beenden")
	log.Println("")

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server-Fehler: %v", err)
	}
}
