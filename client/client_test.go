package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mohitkumar/bookflow/cache"
	"github.com/mohitkumar/bookflow/config"
	"github.com/mohitkumar/bookflow/engine"
	"github.com/mohitkumar/bookflow/model"
	"github.com/mohitkumar/bookflow/persistence/memory"
	"github.com/mohitkumar/bookflow/rest"
	"github.com/mohitkumar/bookflow/service"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	conf := config.Default()
	conf.BookConfig = model.BookConfig{ExpireDays: 14, MaxRenewTimes: 1}
	storage := memory.NewMemoryStorage()
	locks := cache.NewRecordLocks(time.Second)
	eng := engine.NewEngine(storage, locks, conf.BookConfig, nil)
	s, err := rest.NewServer(0, conf.PluginId, eng,
		service.NewBorrowService(storage, conf, service.NewWorkerDistributor()),
		service.NewBookService(storage, locks),
		service.NewConfigService(conf.BookConfig))
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func testBook() model.Book {
	b := model.Book{Upload: model.Upload{PostId: "p1"}}
	b.Id = "b1"
	b.Name = "Dune"
	b.Stock = 2
	b.Libworkers = []string{"worker"}
	b.KeeperUsers = []string{"keeper"}
	return b
}

func TestClientLoan(t *testing.T) {
	ts := newServer(t)
	c := New(ts.URL, config.Default().PluginId, ts.Client())
	ctx := context.Background()

	msgs, err := c.UploadBooks(ctx, "admin", []model.Book{testBook()})
	require.NoError(t, err)
	require.Equal(t, model.BooksMessageOk, msgs["b1"].Status)

	kept, err := c.FetchKeeperBooks(ctx, "keeper", "p1")
	require.NoError(t, err)
	require.Equal(t, "Dune", kept["p1"].Name)
	require.Equal(t, 2, kept["p1"].Stock)
	_, err = c.FetchKeeperBooks(ctx, "keeper", "nope")
	require.ErrorIs(t, err, model.ErrNotFound)

	// the only library worker can not serve their own loan
	_, err = c.RequestBorrow(ctx, model.BorrowRequestKey{BookPostId: "p1", BorrowerUser: "worker"})
	require.ErrorIs(t, err, model.ErrNotAllowed)

	master, err := c.RequestBorrow(ctx, model.BorrowRequestKey{BookPostId: "p1", BorrowerUser: "alice"})
	require.NoError(t, err)

	view, err := c.GetView(ctx, master.RelationsKeys.Libworker)
	require.NoError(t, err)
	require.Len(t, view.Actions, 1)

	updated, err := c.SubmitWorkflow(ctx, view.Actions[0].Request(master.Id, "worker", view.Borrow.Etag))
	require.NoError(t, err)
	require.Equal(t, 1, updated.DataOrImage.StepIndex)

	// resubmitting with the old etag is rejected by the server
	_, err = c.SubmitWorkflow(ctx, view.Actions[0].Request(master.Id, "worker", view.Borrow.Etag))
	var werr *WorkflowError
	require.True(t, errors.As(err, &werr))
	require.Equal(t, http.StatusConflict, werr.StatusCode)
	require.ErrorIs(t, err, model.ErrStale)
	require.False(t, c.Pending())

	rec, err := c.GetBorrow(ctx, master.RelationsKeys.Borrower)
	require.NoError(t, err)
	require.Equal(t, model.StatusConfirmed, rec.DataOrImage.CurrentStep().Status)

	deleted, err := c.SubmitWorkflow(ctx, model.WorkflowRequest{MasterKey: master.Id, ActUser: "alice", Delete: true, Etag: updated.DataOrImage.Etag})
	require.NoError(t, err)
	require.Nil(t, deleted)

	_, err = c.GetBorrow(ctx, master.Id)
	require.ErrorIs(t, err, model.ErrNotFound)

	cfg, err := c.FetchConfig(ctx)
	require.NoError(t, err)
	require.Equal(t, model.BookConfig{ExpireDays: 14, MaxRenewTimes: 1}, cfg)
}

func TestWorkflowErrorKeys(t *testing.T) {
	for message, want := range map[string]error{
		"record-locked": model.ErrLocked,
		"invalid-transition: no transmit_out copy of p1": model.ErrInvalidTransition,
		"not-allowed: book p1 has no library worker":     model.ErrNotAllowed,
		"not-deletable: 1 copies of p1 are not back":     model.ErrNotDeletable,
	} {
		err := &WorkflowError{StatusCode: http.StatusBadRequest, Message: message}
		require.ErrorIs(t, err, want, message)
	}
	err := &WorkflowError{StatusCode: http.StatusInternalServerError, Message: "boom"}
	require.Nil(t, errors.Unwrap(err))
}

func TestFetchConfigDegrades(t *testing.T) {
	for name, tc := range map[string]struct {
		body string
		want model.BookConfig
	}{
		"missing renew limit": {
			body: `{"error":"","messages":{"data":{"expire_days":7}}}`,
			want: model.BookConfig{ExpireDays: 7, MaxRenewTimes: -1},
		},
		"no data": {
			body: `{"error":"","messages":{}}`,
			want: model.BookConfig{ExpireDays: -1, MaxRenewTimes: -1},
		},
		"wrong types": {
			body: `{"error":"","messages":{"data":{"expire_days":"soon","max_renew_times":3}}}`,
			want: model.BookConfig{ExpireDays: -1, MaxRenewTimes: 3},
		},
	} {
		t.Run(name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer ts.Close()
			cfg, err := New(ts.URL, "x", nil).FetchConfig(context.Background())
			require.NoError(t, err)
			require.Equal(t, tc.want, cfg)
		})
	}

	cfg, err := New("http://127.0.0.1:1", "x", nil).FetchConfig(context.Background())
	require.Error(t, err)
	require.Equal(t, model.BookConfig{ExpireDays: -1, MaxRenewTimes: -1}, cfg)
}

func TestSinglePendingSubmission(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		w.Write([]byte(`{"error":"","messages":{}}`))
	}))
	defer ts.Close()

	c := New(ts.URL, "x", nil)
	done := make(chan error)
	go func() {
		_, err := c.SubmitWorkflow(context.Background(), model.WorkflowRequest{MasterKey: "m", Delete: true})
		done <- err
	}()
	<-entered
	require.True(t, c.Pending())
	_, err := c.RequestBorrow(context.Background(), model.BorrowRequestKey{BookPostId: "p1", BorrowerUser: "alice"})
	require.ErrorIs(t, err, ErrRequestPending)

	close(release)
	require.NoError(t, <-done)
	require.False(t, c.Pending())
}

func TestDisallowWithoutReason(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"error":"","messages":{}}`))
	}))
	defer ts.Close()

	c := New(ts.URL, "x", nil)
	require.ErrorIs(t, c.SetBookAllowed(context.Background(), "p1", false, "  "), model.ErrReasonRequired)
	require.Zero(t, calls.Load())
	require.NoError(t, c.SetBookAllowed(context.Background(), "p1", false, "lost"))
	require.Equal(t, int32(1), calls.Load())
}
