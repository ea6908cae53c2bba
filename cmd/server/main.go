package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"betting-exchange/pkg/api"
	"betting-exchange/pkg/exchange"
	"betting-exchange/pkg/handlers"
	"betting-exchange/pkg/obs"
	"betting-exchange/pkg/persist"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	port := flag.Int("port", 0, "port for the HTTP server")
	flag.IntVar(port, "p", 0, "shorthand for --port")
	redisAddr := flag.String("redis", "", "redis address for persistence (empty uses an in-memory store)")
	flag.Parse()
	if *port == 0 {
		panic("missing required --port (or -p)")
	}

	obsClient := obs.New()
	ctx, cancel := context.WithCancel(context.Background())

	var store persist.Snapshotter
	if trimmed := strings.TrimSpace(*redisAddr); trimmed != "" {
		store = persist.NewRedisStore(trimmed)
		obsClient.LogNotice(ctx, "server boot: persistence=redis addr=%s", trimmed)
	} else {
		store = persist.NewMemoryStore()
		obsClient.LogNotice(ctx, "server boot: persistence=memory (no --redis configured)")
	}

	x := exchange.New(obsClient, store)

	addr := fmt.Sprintf(":%d", *port)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError

			if strings.Contains(err.Error(), "panic") {
				return c.Status(code).SendString("Internal Server Error")
			}

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

			return c.Status(code).SendString(err.Error())
		},
		EnableTrustedProxyCheck: true,
	})
	app.Use(cors.New())

	handler := handlers.New(obsClient, x)

	var router fiber.Router = app

	api.New(router, handler, obsClient)

	fmt.Println("Server is live. Starting to listen.")

	sigterm := make(chan os.Signal, 1)
	var wg sync.WaitGroup
	signal.Notify(sigterm, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigterm
		obsClient.LogNotice(ctx, "Received SIGTERM, shutting down gracefully")
		cancel()

		wg.Add(1)

		time.Sleep(3 * time.Second)
		go func() {
			defer wg.Done()
			if err := x.Stop(context.Background()); err != nil {
				obsClient.LogAlert(ctx, "Error snapshotting on shutdown: %v", err)
			}
			if err := app.ShutdownWithTimeout(time.Second * 10); err != nil {
				obsClient.LogAlert(ctx, "Error shutting down gracefully: %v", err)
			}
		}()
	}()

	go func() {
		if err := app.Listen(addr); err != nil {
			obsClient.LogAlert(ctx, "Error starting server: %v", err)
		}
	}()

	<-ctx.Done()
	// Wait for the server to shut down cleanly
	wg.Wait()

	obsClient.LogNotice(ctx, "Server shut down")
}
