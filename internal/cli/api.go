package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/omnipulse/omnipulse/internal/api"
	"github.com/omnipulse/omnipulse/internal/scheduler"
)

var (
	apiPort     string
	apiHost     string
	corsOrigin  string
	withDigests bool
)

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the Omnipulse REST API server",
	Long: `Start the Omnipulse REST API server:
- Sessions (POST endpoint for completed session summaries)
- Stats (aggregate dashboard and today's snapshot)
- Insights (lead funnel metrics)

The API runs on HTTP (no authentication required for now).`,
	RunE: runAPI,
}

func init() {
	apiCmd.Flags().StringVarP(&apiPort, "port", "p", "", "Port to run the API server on (overrides config file)")
	apiCmd.Flags().StringVarP(&apiHost, "host", "H", "", "Host to bind the API server to (overrides config file)")
	apiCmd.Flags().StringVarP(&corsOrigin, "cors-origin", "c", "", "CORS origin to allow (overrides config file, use '*' for all origins)")
	apiCmd.Flags().BoolVar(&withDigests, "with-digests", true, "Run the daily digest scheduler alongside the API")
}

func runAPI(cmd *cobra.Command, args []string) error {
	host := apiHost
	if host == "" {
		host = cfg.Server.Host
	}
	port := apiPort
	if port == "" {
		port = cfg.Server.Port
	}
	selectedCORSOrigin := corsOrigin
	if selectedCORSOrigin == "" {
		if cfg.Server.CORSOrigin != "" {
			selectedCORSOrigin = cfg.Server.CORSOrigin
		} else {
			selectedCORSOrigin = "*"
		}
	}

	fmt.Printf("🚀 Starting Omnipulse API Server\n")
	fmt.Printf("================================\n")
	fmt.Printf("Host: %s\n", host)
	fmt.Printf("Port: %s\n", port)
	fmt.Printf("CORS Origin: %s\n", selectedCORSOrigin)
	fmt.Printf("URL: http://%s:%s/api/v1\n", host, port)
	fmt.Println()

	ctx := context.Background()
	if err := database.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	fmt.Println("✅ Database connection successful!")

	server := api.NewServer(database, selectedCORSOrigin, cfg.Server.IngestRPS)

	var sched *scheduler.Scheduler
	if withDigests {
		sched = scheduler.New(database)
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start digest scheduler: %w", err)
		}
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Println("\n🛑 Shutting down API server...")
		if sched != nil {
			sched.Stop()
		}
		database.Disconnect(ctx)
		os.Exit(0)
	}()

	fmt.Println("🌐 API Server is running!")
	fmt.Println()
	fmt.Println("📚 Available Endpoints:")
	fmt.Println("  Sessions:")
	fmt.Println("    POST   /api/v1/sessions          - Record a completed session")
	fmt.Println()
	fmt.Println("  Stats:")
	fmt.Println("    GET    /api/v1/stats             - Aggregate dashboard payload")
	fmt.Println("    GET    /api/v1/stats/today       - Latest snapshot of today's bucket")
	fmt.Println()
	fmt.Println("  Insights:")
	fmt.Println("    GET    /api/v1/insights          - Lead funnel metrics")
	fmt.Println()
	fmt.Println("  Health:")
	fmt.Println("    GET    /api/v1/health            - Health check")
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop the server")

	address := fmt.Sprintf("%s:%s", host, port)
	return server.Run(address)
}
