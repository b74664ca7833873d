package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flatout-solutions/rental-assistant/internal/assistant"
	"github.com/flatout-solutions/rental-assistant/internal/config"
	"github.com/flatout-solutions/rental-assistant/internal/policy"
	"github.com/flatout-solutions/rental-assistant/internal/provider"
	"github.com/flatout-solutions/rental-assistant/internal/provider/booqable"
	"github.com/flatout-solutions/rental-assistant/internal/provider/webhook"
	"github.com/flatout-solutions/rental-assistant/internal/registry"
	"github.com/flatout-solutions/rental-assistant/internal/repository"
	"github.com/flatout-solutions/rental-assistant/internal/service"
	transport "github.com/flatout-solutions/rental-assistant/internal/transport/http"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting rental assistant...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)
	log.Printf("Backend: %s", cfg.Backend)

	// Initialize store
	db, err := repository.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	// Initialize the rental backend and register its operations
	ops, err := newOperations(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize backend: %v", err)
	}
	reg := registry.New()
	provider.RegisterOperations(reg, ops)

	// Initialize policy engine
	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize assistant client
	client := assistant.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.AssistantID, cfg.OpenAIBaseURL)
	if _, err := client.EnsureAssistant(ctx, reg, cfg.Model); err != nil {
		log.Fatalf("Failed to configure assistant: %v", err)
	}

	// Initialize service
	svc := service.New(db, client, reg, policyEngine, cfg)

	// Create HTTP server
	server := transport.NewServer(svc)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down rental assistant...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Rental assistant stopped")
}

// newOperations builds the rental backend selected by configuration.
func newOperations(cfg *config.Config) (provider.Operations, error) {
	rc := provider.NewRetryingClient(cfg.BackendTimeout)

	switch cfg.Backend {
	case config.BackendBooqable:
		if cfg.BooqableBaseURL == "" || cfg.BooqableAPIKey == "" {
			return nil, fmt.Errorf("booqable backend requires BOOQABLE_BASE_URL and BOOQABLE_API_KEY")
		}
		return booqable.New(cfg.BooqableBaseURL, cfg.BooqableAPIKey, cfg.DefaultCountryCode, rc), nil

	case config.BackendWebhook:
		endpoints := webhook.Endpoints{
			ProductsList:        cfg.WebhookProductsURL,
			ProductAvailability: cfg.WebhookAvailabilityURL,
			CreateOrder:         cfg.WebhookCreateOrderURL,
		}
		if endpoints.ProductsList == "" || endpoints.ProductAvailability == "" || endpoints.CreateOrder == "" {
			return nil, fmt.Errorf("webhook backend requires WEBHOOK_PRODUCTS_URL, WEBHOOK_AVAILABILITY_URL and WEBHOOK_CREATE_ORDER_URL")
		}
		return webhook.New(endpoints, cfg.DefaultCountryCode, rc), nil

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
