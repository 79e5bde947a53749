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

func (s *Server) HandleWorkflow(w http.ResponseWriter, r *http.Request) {
	var req model.WorkflowRequest
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid workflow request")
		return
	}
	master, err := s.engine.Process(req)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	if master == nil {
		respondOK(w, model.Messages{})
		return
	}
	respondOK(w, model.Messages{"data": util.EncodeMessage(master)})
}

func (s *Server) HandleBorrow(w http.ResponseWriter, r *http.Request) {
	var key model.BorrowRequestKey
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&key); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid borrow request")
		return
	}
	master, err := s.borrowService.Request(key)
	if err != nil {
		logger.Error("error in requesting borrow", zap.String("book", key.BookPostId), zap.String("borrower", key.BorrowerUser), zap.Error(err))
		respondWithDomainError(w, err)
		return
	}
	respondOK(w, model.Messages{"data": util.EncodeMessage(master)})
}

func (s *Server) HandleGetBorrow(w http.ResponseWriter, r *http.Request) {
	b, err := s.borrowService.Get(mux.Vars(r)["recordId"])
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondOK(w, model.Messages{"data": util.EncodeMessage(b)})
}

func (s *Server) HandleGetView(w http.ResponseWriter, r *http.Request) {
	recordId := mux.Vars(r)["recordId"]
	view, err := s.borrowService.View(recordId)
	if err != nil {
		logger.Error("error in building view", zap.String("record", recordId), zap.Error(err))
		respondWithDomainError(w, err)
		return
	}
	respondOK(w, model.Messages{"data": util.EncodeMessage(view)})
}

func (s *Server) HandleConfig(w http.ResponseWriter, r *http.Request) {
	respondOK(w, model.Messages{"data": util.EncodeMessage(s.configService.Get())})
}
