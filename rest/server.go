package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/mohitkumar/bookflow/engine"
	"github.com/mohitkumar/bookflow/logger"
	"github.com/mohitkumar/bookflow/model"
	"github.com/mohitkumar/bookflow/service"
	"go.uber.org/zap"
)

type Server struct {
	http.Server
	Port          int
	pluginId      string
	engine        *engine.Engine
	borrowService *service.BorrowService
	bookService   *service.BookService
	configService *service.ConfigService
}

func NewServer(httpPort int, pluginId string, eng *engine.Engine, borrowService *service.BorrowService,
	bookService *service.BookService, configService *service.ConfigService) (*Server, error) {

	s := &Server{
		Server: http.Server{
			Addr: fmt.Sprintf(":%d", httpPort),
		},
		Port:          httpPort,
		pluginId:      pluginId,
		engine:        eng,
		borrowService: borrowService,
		bookService:   bookService,
		configService: configService,
	}

	router := mux.NewRouter()
	plugin := router.PathPrefix("/plugins/{id}").Subrouter()
	plugin.Use(s.pluginMiddleware)
	plugin.HandleFunc("/workflow", s.HandleWorkflow).Methods(http.MethodPost)
	plugin.HandleFunc("/borrow", s.HandleBorrow).Methods(http.MethodPost)
	plugin.HandleFunc("/books", s.HandleBooks).Methods(http.MethodPost)
	plugin.HandleFunc("/books/{postId}/allowed", s.HandleSetAllowed).Methods(http.MethodPost)
	plugin.HandleFunc("/config", s.HandleConfig).Methods(http.MethodGet)
	plugin.HandleFunc("/borrows/{recordId}", s.HandleGetBorrow).Methods(http.MethodGet)
	plugin.HandleFunc("/borrows/{recordId}/view", s.HandleGetView).Methods(http.MethodGet)
	router.Use(loggingMiddleware)
	s.Handler = router
	return s, nil
}

func (s *Server) Start() error {
	logger.Info("starting http server on", zap.Int("port", s.Port))
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop() error {
	logger.Info("stopping http server")
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		logger.Error("error shutting down http server", zap.Error(err))
	}
	return nil
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info("http request", zap.String("method", r.Method), zap.String("uri", r.RequestURI), zap.Duration("took", time.Since(start)))
	})
}

func (s *Server) pluginMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if mux.Vars(r)["id"] != s.pluginId {
			respondWithError(w, http.StatusNotFound, "unknown plugin")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondOK(w http.ResponseWriter, messages model.Messages) {
	respondWithJSON(w, http.StatusOK, model.Result{Messages: messages})
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, model.Result{Error: message})
}

// statusOf maps a domain error to the http status answered with it.
func statusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrLocked), errors.Is(err, model.ErrStale):
		return http.StatusConflict
	case errors.Is(err, model.ErrNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, model.ErrBorrowingLimited), errors.Is(err, model.ErrNoStock),
		errors.Is(err, model.ErrRenewLimited), errors.Is(err, model.ErrChooseInStockCopy),
		errors.Is(err, model.ErrNotDeletable), errors.Is(err, model.ErrInvalidTransition),
		errors.Is(err, model.ErrBorrowingDisabled), errors.Is(err, model.ErrReasonRequired):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respondWithDomainError(w http.ResponseWriter, err error) {
	respondWithError(w, statusOf(err), err.Error())
}
