package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"search-adapters/chat"
	"search-adapters/config"
	"search-adapters/office"
	"search-adapters/page"
)

func main() {
	setupLogging()

	command := "help"
	if len(os.Args) > 1 {
		command = strings.ToLower(strings.TrimSpace(os.Args[1]))
	}

	switch command {
	case "officeindex":
		runOfficeIndex(os.Args[2:])
	case "chatindex":
		runServer("chatindex", serveAddr("chatindex", os.Args[2:], config.ChatIndexAddr()), chat.NewRouter(), nil)
	case "pageindex":
		runServer("pageindex", serveAddr("pageindex", os.Args[2:], config.PageIndexAddr()), page.NewRouter(), nil)
	case "reindex":
		runReindex(os.Args[2:])
	case "version", "--version", "-v":
		showVersion()
	case "help", "--help", "-h":
		showUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", command)
		showUsage()
		os.Exit(1)
	}
}

// setupLogging configures the process-wide zerolog logger. Console formatting
// is only used on a terminal so piped output stays machine-readable.
func setupLogging() {
	level := zerolog.InfoLevel
	if raw := strings.TrimSpace(os.Getenv("LOG_LEVEL")); raw != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(raw)); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	}

	gin.SetMode(gin.ReleaseMode)
}

func runOfficeIndex(args []string) {
	ix := office.NewIndex()
	ix.StartBackgroundSync()
	runServer("officeindex", serveAddr("officeindex", args, config.OfficeIndexAddr()), office.NewRouter(ix), ix.StopBackgroundSync)
}

// runServer serves the router until SIGINT or SIGTERM, then drains in-flight
// requests before exiting.
func runServer(service, addr string, router *gin.Engine, onShutdown func()) {
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	log.Info().Str("service", service).Str("addr", addr).Msg("adapter listening")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
		return
	}

	if onShutdown != nil {
		onShutdown()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
