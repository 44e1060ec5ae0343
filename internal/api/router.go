package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hoppxi/sysset/pkg/systemsetting"
)

// NewRouter creates the daemon's HTTP router over s.
func NewRouter(s *systemsetting.Setting, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.CleanPath)
	r.Use(requestLogger(log))

	h := &Handlers{setting: s, log: log}

	r.Route("/api", func(r chi.Router) {
		r.Get("/capabilities", h.getCapabilities)
		r.Put("/app-store", h.setAppStore)

		// Brightness
		r.Get("/brightness", h.getBrightness)
		r.Put("/brightness", h.setBrightness)
		r.Post("/brightness/save", h.saveBrightness)
		r.Post("/brightness/restore", h.restoreBrightness)
		r.Get("/app-brightness", h.getAppBrightness)
		r.Put("/app-brightness", h.setAppBrightness)
		r.Get("/screen-mode", h.getScreenMode)
		r.Put("/screen-mode", h.setScreenMode)
		r.Post("/permission/write-setting", h.grantWriteSetting)

		// Volume
		r.Get("/volume", h.getVolume)
		r.Put("/volume", h.setVolume)

		// Radios and location
		r.Get("/{setting}", h.getToggle)
		r.Post("/{setting}/switch", h.switchToggle)

		// SSE
		r.Get("/subscribe", h.sseEvents)
	})

	return r
}

// requestLogger logs one debug line per request.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Debug("http request", "method", r.Method, "path", r.URL.Path, "status", ww.Status())
		})
	}
}
