package commands

import (
	stdlog "log"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/reservations/internal/logger"
)

type Globals struct {
	Version string
}

func configureHTTPServer(addr string, handler http.Handler, log zerolog.Logger) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
		ErrorLog:          stdlog.New(logger.NewErrorWriter(log), "", 0),
	}
}
