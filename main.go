package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/tripcart/lib/myevents"
	"github.com/MarcGrol/tripcart/lib/mylog"
	"github.com/MarcGrol/tripcart/lib/mypublisher"
	"github.com/MarcGrol/tripcart/lib/mypubsub"
	"github.com/MarcGrol/tripcart/lib/myqueue"
	"github.com/MarcGrol/tripcart/lib/mystore"
	"github.com/MarcGrol/tripcart/lib/mytime"
	"github.com/MarcGrol/tripcart/lib/myuuid"
	"github.com/MarcGrol/tripcart/services/cart"
	"github.com/MarcGrol/tripcart/services/warmup"
)

func main() {
	c := context.Background()
	logger := mylog.New("tripcart")

	err := run(c, logger)
	if err != nil {
		logger.Log(c, "", mylog.SeverityError, "Error running server: %s", err)
		os.Exit(1)
	}
}

func run(c context.Context, logger mylog.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	router := mux.NewRouter()

	slot, slotCleanup, err := cfg.openSlot(c)
	if err != nil {
		return err
	}
	defer slotCleanup()

	outbox, outboxCleanup, err := mystore.New[myevents.EventEnvelope](c)
	if err != nil {
		return fmt.Errorf("error creating outbox store: %w", err)
	}
	defer outboxCleanup()

	pubsub, pubsubCleanup, err := mypubsub.New(c)
	if err != nil {
		return fmt.Errorf("error creating pubsub: %w", err)
	}
	defer pubsubCleanup()

	queue, queueCleanup, err := myqueue.New(c)
	if err != nil {
		return fmt.Errorf("error creating task queue: %w", err)
	}
	defer queueCleanup()

	publisher := mypublisher.New(c, outbox, pubsub, queue, mytime.RealNower{})
	publisher.RegisterEndpoints(c, router)

	sessions := cart.NewSessions(cart.SlotAdapters(slot, logger), logger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(c), 10*time.Second)
		defer cancel()
		sessions.Shutdown(shutdownCtx)
	}()

	cartService := cart.NewService(sessions, myuuid.RealUUIDer{}, publisher, pubsub, logger)
	cartService.RegisterEndpoints(c, router)
	err = cartService.Subscribe(c)
	if err != nil {
		return fmt.Errorf("error subscribing cart service: %w", err)
	}

	warmup.NewService(slot, logger).RegisterEndpoints(c, router)

	return serve(c, cfg.Port, router, logger)
}

func serve(c context.Context, port string, router *mux.Router, logger mylog.Logger) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stop, cancel := signal.NotifyContext(c, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		logger.Log(c, "", mylog.SeverityInfo, "Starting webserver on port %s (try http://localhost:%s)", port, port)
		done <- server.ListenAndServe()
	}()

	select {
	case err := <-done:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error starting webserver on port %s: %w", port, err)
		}
		return nil
	case <-stop.Done():
	}

	logger.Log(c, "", mylog.SeverityInfo, "Shutting down webserver")
	shutdownCtx, shutdownCancel := context.WithTimeout(c, 10*time.Second)
	defer shutdownCancel()

	return server.Shutdown(shutdownCtx)
}
