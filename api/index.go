package handler

import (
	"net/http"

	"github.com/giftportfolio/portfolio/pkg/app"
	"github.com/giftportfolio/portfolio/pkg/config"
	"github.com/giftportfolio/portfolio/pkg/logging"
)

var mux http.Handler

func init() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	// Note: on Vercel a local sqlite file is ephemeral; use BACKEND=postgrest
	// or a Turso DATABASE_URL.
	application, err := app.New(cfg)
	if err != nil {
		panic(err)
	}
	mux = application.Handler
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
