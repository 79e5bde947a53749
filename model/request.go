package model

import "encoding/json"

type WorkflowRequest struct {
	MasterKey     string `json:"master_key"`
	ActUser       string `json:"act_user"`
	NextStepIndex int    `json:"next_step_index"`
	Delete        bool   `json:"delete,omitempty"`
	Backward      bool   `json:"backward,omitempty"`
	ChosenCopyId  string `json:"chosen_copy_id,omitempty"`
	Etag          string `json:"etag"`
}

type BorrowRequestKey struct {
	BookPostId   string `json:"book_post_id"`
	BorrowerUser string `json:"borrower_user"`
}

const (
	BooksActionUpload = "UPLOAD"
	// BooksActionFetchInvKeeper returns the requested books with the
	// inventory of the copies kept by the acting user.
	BooksActionFetchInvKeeper = "FETCH_INV_KEEPER"
)

type BooksRequest struct {
	Action  string `json:"action"`
	ActUser string `json:"act_user"`
	Body    string `json:"body"`
}

type Messages map[string]json.RawMessage

// Result is the envelope of every REST answer.
type Result struct {
	Error    string   `json:"error"`
	Messages Messages `json:"messages"`
}

type BooksMessage struct {
	PostId  string `json:"post_id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

const (
	BooksMessageOk    = "ok"
	BooksMessageError = "error"
)

// BookConfig carries the limits a client needs to render a loan. -1 means
// the value is not configured.
type BookConfig struct {
	ExpireDays    int `json:"expire_days"`
	MaxRenewTimes int `json:"max_renew_times"`
}
