// Command estflow-server provides a REST API for EST assembly.
//
// Usage:
//
//	estflow-server [options]
//
// Options:
//
//	--port       Port to listen on (default: 8080)
//	--host       Host to bind to (default: localhost)
//	--timeout    Per-request assembly timeout (default: 60s)
//
// Every option can also be set as ESTFLOW_SERVER_<NAME>.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aria-lang/estflow-go/api"
	"github.com/aria-lang/estflow-go/internal/config"
)

func main() {
	flags := pflag.NewFlagSet("estflow-server", pflag.ExitOnError)
	flags.Int("port", 8080, "Port to listen on")
	flags.String("host", "localhost", "Host to bind to")
	flags.Duration("timeout", 60*time.Second, "Per-request timeout")
	flags.String("log-level", "info", "Log level")
	flags.Parse(os.Args[1:])

	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix + "_SERVER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		log.Fatalf("binding flags: %v", err)
	}

	level, err := log.ParseLevel(v.GetString("log-level"))
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.SetLevel(level)

	timeout := v.GetDuration("timeout")
	addr := fmt.Sprintf("%s:%d", v.GetString("host"), v.GetInt("port"))
	server := &http.Server{
		Addr:         addr,
		Handler:      api.NewRouter(timeout),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: timeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)

	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("server is shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			log.Fatalf("could not gracefully shut down: %v", err)
		}
		close(done)
	}()

	log.Infof("estflow API server starting on http://%s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("could not listen on %s: %v", addr, err)
	}

	<-done
	log.Info("server stopped")
}
