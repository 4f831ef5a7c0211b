package main

import (
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/loomui/loom/internal/engine"
	"github.com/loomui/loom/internal/infrastructure/config"
	"github.com/loomui/loom/internal/server"
	"github.com/loomui/loom/internal/shared/types"
	"github.com/loomui/loom/internal/widget"
)

func main() {
	port := flag.String("port", "", "Server port (overrides PORT)")
	flag.Parse()

	cfg := config.LoadOrDefault()
	if *port != "" {
		cfg.Server.Port = *port
	}

	// Headless widget set: every class materializes as a bare node so the
	// daemon can validate and mirror producer trees without a renderer.
	registry := widget.NewRegistry()
	for _, name := range []string{"box", "text", "image", "input"} {
		registry.Register(name, func(ctx widget.BuildContext, _ io.Reader) (widget.Widget, error) {
			return widget.NewBase(ctx.WidgetID, ctx.ChannelID), nil
		})
	}

	hooks := engine.Hooks{
		EmptyWidget: func(id types.WidgetID) widget.Widget {
			return widget.NewBase(id, 0)
		},
		MountRoot: func(root widget.Widget) {
			log.Printf("root mounted: widget %d", root.ID())
		},
		AddStyles: func(batch []types.StyleRegistration) {
			// No rendering layer in headless mode.
		},
	}

	srv, err := server.NewServer(cfg, registry, hooks)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		log.Println("Shutting down gracefully...")
		if err := srv.Close(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	case err := <-errChan:
		log.Fatalf("Server error: %v", err)
	}
}
