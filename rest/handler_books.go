package rest

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/mohitkumar/bookflow/logger"
	"github.com/mohitkumar/bookflow/model"
	"github.com/mohitkumar/bookflow/util"
	"go.uber.org/zap"
)

func (s *Server) HandleBooks(w http.ResponseWriter, r *http.Request) {
	var req model.BooksRequest
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid books request")
		return
	}
	msgs, err := s.bookService.Handle(req)
	if err != nil {
		logger.Error("error in books request", zap.String("user", req.ActUser), zap.Error(err))
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	out := make(model.Messages, len(msgs))
	for k, m := range msgs {
		out[k] = util.EncodeMessage(m)
	}
	respondOK(w, out)
}

type allowedRequest struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

func (s *Server) HandleSetAllowed(w http.ResponseWriter, r *http.Request) {
	var req allowedRequest
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid allowed request")
		return
	}
	book, err := s.bookService.SetAllowed(mux.Vars(r)["postId"], req.Allowed, req.Reason)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondOK(w, model.Messages{"data": util.EncodeMessage(book)})
}
