package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/fieldrep-cli/internal/model"
	"github.com/sells-group/fieldrep-cli/internal/planner"
	"github.com/sells-group/fieldrep-cli/internal/store"
	"github.com/sells-group/fieldrep-cli/pkg/routing"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		provider, err := initProvider()
		if err != nil {
			return err
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newServeMux(st, provider),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// newServeMux builds the API router.
func newServeMux(st store.Store, provider routing.Provider) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/customers", func(w http.ResponseWriter, req *http.Request) {
		customers, err := st.ListCustomers(req.Context(), store.CustomerFilter{
			State: req.URL.Query().Get("state"),
		})
		if err != nil {
			zap.L().Error("list customers failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}
		if customers == nil {
			customers = []model.Customer{}
		}
		writeJSON(w, http.StatusOK, customers)
	})

	r.Post("/routes/plan", func(w http.ResponseWriter, req *http.Request) {
		var planReq model.RouteRequest
		if err := json.NewDecoder(req.Body).Decode(&planReq); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if planReq.Selected == nil {
			planReq.Selected = model.NewSelection()
		}

		customers, err := st.ListCustomers(req.Context(), store.CustomerFilter{})
		if err != nil {
			zap.L().Error("list customers failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}

		it, err := planner.New(provider).ComputeRoute(req.Context(), planReq, customers)
		if err != nil {
			status := http.StatusBadGateway
			if errors.Is(err, planner.ErrInvalidSelection) {
				status = http.StatusUnprocessableEntity
			}
			writeJSON(w, status, map[string]string{"error": err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, struct {
			Itinerary *model.Itinerary `json:"itinerary"`
			Stops     []model.Stop     `json:"stops"`
		}{it, planner.BuildStopList(it, planReq.HomeAddress)})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
