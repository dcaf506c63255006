// Command marketplace-mock runs the in-memory marketplace API so the console
// can be exercised without the real backend. Fixture accounts:
//
//	admin@propertydeal.test / Sup3rSecret!Admin   (MFA policy, not enrolled)
//	mod@propertydeal.test   / M0derator!Pass12    (MFA policy, not enrolled)
//	fresh@propertydeal.test / Temp0rary!Pass99    (must change password)
package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"propadmin/internal/testbackend"
)

func main() {
	addr := flag.String("addr", ":9000", "listen address")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	backend := testbackend.New(testbackend.WithLogger(logger))

	srv := &http.Server{
		Addr:              *addr,
		Handler:           backend.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("marketplace mock listening", "addr", *addr)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}
