package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/handlers"

	"github.com/minibooks/bookshelf_sdk_go/internal/devseed"
	"github.com/minibooks/bookshelf_sdk_go/pkg/books"
	"github.com/minibooks/bookshelf_sdk_go/pkg/books/mock"
	"github.com/minibooks/bookshelf_sdk_go/pkg/bookshelf"
)

func main() {
	addr := flag.String("addr", ":9000", "listen address")
	seed := flag.String("seed", "", "path to JSON or YAML book seed")
	latency := flag.Duration("latency", 0, "artificial latency to inject per request")
	fail := flag.String("fail", "", "failure injection (rate=<float>,code=<httpStatus>)")
	origins := flag.String("cors-origins", "http://localhost:3000", "comma separated origins allowed by CORS")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger := bookshelf.NewLogger(*logLevel)

	catalogue := mock.New()
	if *seed != "" {
		records, err := devseed.LoadBookSeed(*seed)
		if err != nil {
			logger.Fatalf("load seed: %v", err)
		}
		if err := catalogue.Seed(records); err != nil {
			logger.Fatalf("apply seed: %v", err)
		}
	}

	failCfg, err := parseFailConfig(*fail)
	if err != nil {
		logger.Fatalf("parse fail flag: %v", err)
	}

	router := newRouter(catalogue, logger, *latency, failCfg)
	handler := handlers.CORS(
		handlers.AllowedOrigins(strings.Split(*origins, ",")),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}),
		handlers.AllowedHeaders([]string{"Content-Type", "X-Request-ID"}),
	)(handlers.LoggingHandler(os.Stdout, handlers.RecoveryHandler()(router)))

	server := &http.Server{
		Addr:         *addr,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second + *latency,
		IdleTimeout:  60 * time.Second,
	}

	logger.Infof("bookshelf-sandbox listening on %s with %d books", *addr, catalogue.Len())
	fmt.Println()
	host := *addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	fmt.Printf("export %s=http://%s\n", books.EnvAPIURL, host)
	fmt.Println()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server failed: %v", err)
	}
}
