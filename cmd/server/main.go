package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"knockwhist/registry"
	"knockwhist/transport"
)

func main() {
	var (
		host     string
		port     int
		debug    bool
		testMode bool
	)
	flag.StringVar(&host, "host", "0.0.0.0", "Host to listen on")
	flag.IntVar(&port, "port", 8080, "Port to listen on")
	flag.BoolVar(&debug, "debug", false, "Enable verbose per-message logging")
	flag.BoolVar(&testMode, "test-mode", false, "Skip AI/pacing delays for deterministic integration tests")
	flag.Parse()

	addr := fmt.Sprintf("%s:%d", host, port)
	if env := strings.TrimSpace(os.Getenv("KW_ADDR")); env != "" {
		addr = env
	}

	reg := registry.New(testMode)
	defer reg.Stop()

	gw := transport.New(reg, debug)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: withCORS(mux)}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("[Server] listening on %s (debug=%v test-mode=%v)", addr, debug, testMode)
		serveErr <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "listen failed: %v\n", err)
			os.Exit(1)
		}
	case <-sigCh:
		log.Printf("[Server] shutdown signal received")
		srv.Close()
	}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
