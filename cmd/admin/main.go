package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/cookiejar"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"

	"github.com/eventhub/admin-console/aggregator"
	"github.com/eventhub/admin-console/auth"
	"github.com/eventhub/admin-console/internal/config"
	"github.com/eventhub/admin-console/server"
	"github.com/eventhub/admin-console/session"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())
	logger := newLogger(c)

	cookieMode := c.GetAuthMode() == config.AuthModeCookie

	// In cookie mode the auth service owns the credentials end to end; no
	// token material ever reaches the store, so it stays in memory. Only
	// bearer mode persists sessions across restarts.
	var store session.Store
	if cookieMode {
		store = session.NewInMemoryStore()
	} else {
		db, err := session.OpenDB(c.GetSessionDBPath())
		if err != nil {
			return fmt.Errorf("open session db: %w", err)
		}
		defer db.Close()

		storeOptions := []session.SQLiteStoreOption{}
		if passphrase := c.GetSessionPassphrase(); passphrase != "" {
			sealer, err := session.NewSealer(passphrase)
			if err != nil {
				return fmt.Errorf("create session sealer: %w", err)
			}
			storeOptions = append(storeOptions, session.WithSealer(sealer))
		}
		store = session.NewSQLiteStore(db, storeOptions...)
	}

	// In cookie mode the auth service keeps credentials in httpOnly cookies;
	// the auth client and the protected client must share one jar.
	var jar http.CookieJar
	if cookieMode {
		var err error
		jar, err = cookiejar.New(nil)
		if err != nil {
			return fmt.Errorf("create cookie jar: %w", err)
		}
	}

	upstream := aggregator.Config{BaseURL: c.GetAPIBaseURL(), Timeout: c.GetHTTPTimeout()}
	authClient := aggregator.NewAuthClient(upstream, &http.Client{Timeout: c.GetHTTPTimeout(), Jar: jar}, logger)

	events := auth.NewBroadcaster()

	coordinatorOptions := []auth.CoordinatorOption{}
	if cookieMode {
		coordinatorOptions = append(coordinatorOptions, auth.WithCookieMode())
	}
	if c.ClearSessionOnNetworkError() {
		coordinatorOptions = append(coordinatorOptions, auth.WithClearOnNetworkError())
	}
	coordinator := auth.NewCoordinator(store, authClient, events, logger, coordinatorOptions...)

	transportOptions := []auth.TransportOption{}
	if cookieMode {
		transportOptions = append(transportOptions, auth.WithCookieJar(jar))
	}
	transport := auth.NewTransport(store, coordinator, c.GetAuthMode(), logger, transportOptions...)
	apiClient := aggregator.NewClient(upstream, &http.Client{
		Transport: transport,
		Timeout:   c.GetHTTPTimeout(),
		Jar:       jar,
	}, logger)

	managerOptions := []auth.ManagerOption{auth.WithRefreshLeadTime(c.GetRefreshLeadTime())}
	if cookieMode {
		managerOptions = append(managerOptions, auth.WithManagerCookieMode())
	}
	manager, err := auth.NewManager(auth.Deps{
		Store:       store,
		API:         authClient,
		Coordinator: coordinator,
		Events:      events,
	}, logger, managerOptions...)
	if err != nil {
		return fmt.Errorf("create auth manager: %w", err)
	}
	defer manager.Close()

	manager.Initialize(context.Background())

	webServer, err := server.New(c, manager, apiClient, authClient, logger)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: webServer}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func newLogger(c config.Config) zerolog.Logger {
	if c.GetEnv() == "DEV" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
