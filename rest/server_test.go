package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mohitkumar/bookflow/cache"
	"github.com/mohitkumar/bookflow/config"
	"github.com/mohitkumar/bookflow/engine"
	"github.com/mohitkumar/bookflow/flow"
	"github.com/mohitkumar/bookflow/model"
	"github.com/mohitkumar/bookflow/persistence/memory"
	"github.com/mohitkumar/bookflow/service"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	conf := config.Default()
	conf.PluginId = "books"
	conf.BookConfig = model.BookConfig{ExpireDays: 14, MaxRenewTimes: 2}
	storage := memory.NewMemoryStorage()
	locks := cache.NewRecordLocks(conf.LockTimeout)
	eng := engine.NewEngine(storage, locks, conf.BookConfig, nil)
	s, err := NewServer(0, conf.PluginId, eng,
		service.NewBorrowService(storage, conf, service.NewWorkerDistributor()),
		service.NewBookService(storage, locks),
		service.NewConfigService(conf.BookConfig))
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url string, body any) (int, model.Result) {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()
	var res model.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	return resp.StatusCode, res
}

func get(t *testing.T, url string, out any) int {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

// getData reads a Result and decodes its data message into out.
func getData(t *testing.T, url string, out any) int {
	var res model.Result
	code := get(t, url, &res)
	require.Empty(t, res.Error)
	require.NoError(t, json.Unmarshal(res.Messages["data"], out))
	return code
}

func uploadBook(t *testing.T, base string) {
	book := model.Book{Upload: model.Upload{PostId: "p1"}}
	book.Id = "b1"
	book.Name = "Dune"
	book.Stock = 1
	book.Libworkers = []string{"worker"}
	book.KeeperUsers = []string{"keeper"}
	body, err := json.Marshal([]model.Book{book})
	require.NoError(t, err)
	code, res := post(t, base+"/books", model.BooksRequest{Action: model.BooksActionUpload, ActUser: "admin", Body: string(body)})
	require.Equal(t, http.StatusOK, code)
	var msg model.BooksMessage
	require.NoError(t, json.Unmarshal(res.Messages["b1"], &msg))
	require.Equal(t, model.BooksMessageOk, msg.Status)
}

func TestServer(t *testing.T) {
	for scenario, fn := range map[string]func(t *testing.T, base string){
		"config":                 testConfigEndpoint,
		"borrow and workflow":    testBorrowAndWorkflow,
		"malformed body":         testMalformedBody,
		"stale etag":             testStaleEtagEndpoint,
		"disallow needs reason":  testDisallowReason,
		"missing record":         testMissingRecord,
		"fetch keeper inventory": testFetchKeeperBooks,
	} {
		t.Run(scenario, func(t *testing.T) {
			ts := newTestServer(t)
			fn(t, ts.URL+"/plugins/books")
		})
	}
}

func TestUnknownPlugin(t *testing.T) {
	ts := newTestServer(t)
	var res model.Result
	code := get(t, ts.URL+"/plugins/other/config", &res)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "unknown plugin", res.Error)
}

func testConfigEndpoint(t *testing.T, base string) {
	var res model.Result
	require.Equal(t, http.StatusOK, get(t, base+"/config", &res))
	require.Empty(t, res.Error)
	require.JSONEq(t, `{"expire_days":14,"max_renew_times":2}`, string(res.Messages["data"]))
}

func testBorrowAndWorkflow(t *testing.T, base string) {
	uploadBook(t, base)
	code, res := post(t, base+"/borrow", model.BorrowRequestKey{BookPostId: "p1", BorrowerUser: "alice"})
	require.Equal(t, http.StatusOK, code)
	var master model.Borrow
	require.NoError(t, json.Unmarshal(res.Messages["data"], &master))

	var view flow.View
	require.Equal(t, http.StatusOK, getData(t, base+"/borrows/"+master.RelationsKeys.Libworker+"/view", &view))
	require.Len(t, view.Actions, 1)

	req := view.Actions[0].Request(master.Id, "worker", view.Borrow.Etag)
	code, res = post(t, base+"/workflow", req)
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, res.Error)

	var rec model.Borrow
	require.Equal(t, http.StatusOK, getData(t, base+"/borrows/"+master.RelationsKeys.Borrower, &rec))
	require.Equal(t, model.StatusConfirmed, rec.DataOrImage.CurrentStep().Status)

	code, res = post(t, base+"/borrow", model.BorrowRequestKey{BookPostId: "p1", BorrowerUser: "bob"})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, model.ErrBorrowingDisabled.Error(), res.Error)
}

func testMalformedBody(t *testing.T, base string) {
	for _, path := range []string{"/workflow", "/borrow", "/books", "/books/p1/allowed"} {
		resp, err := http.Post(base+path, "application/json", bytes.NewReader([]byte("{")))
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
	}
}

func testStaleEtagEndpoint(t *testing.T, base string) {
	uploadBook(t, base)
	_, res := post(t, base+"/borrow", model.BorrowRequestKey{BookPostId: "p1", BorrowerUser: "alice"})
	var master model.Borrow
	require.NoError(t, json.Unmarshal(res.Messages["data"], &master))

	code, res := post(t, base+"/workflow", model.WorkflowRequest{MasterKey: master.Id, ActUser: "worker", NextStepIndex: 1, Etag: "old"})
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, model.ErrStale.Error(), res.Error)
}

func testDisallowReason(t *testing.T, base string) {
	uploadBook(t, base)
	code, res := post(t, base+"/books/p1/allowed", allowedRequest{Allowed: false})
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, model.ErrReasonRequired.Error(), res.Error)

	code, _ = post(t, base+"/books/p1/allowed", allowedRequest{Allowed: false, Reason: "repair"})
	require.Equal(t, http.StatusOK, code)
}

func testMissingRecord(t *testing.T, base string) {
	var res model.Result
	require.Equal(t, http.StatusNotFound, get(t, base+"/borrows/nope", &res))
	require.Equal(t, model.ErrNotFound.Error(), res.Error)
}

func testFetchKeeperBooks(t *testing.T, base string) {
	uploadBook(t, base)
	code, res := post(t, base+"/books", model.BooksRequest{Action: model.BooksActionFetchInvKeeper, ActUser: "keeper", Body: `[{"post_id":"p1"}]`})
	require.Equal(t, http.StatusOK, code)
	var msg model.BooksMessage
	require.NoError(t, json.Unmarshal(res.Messages["b1"], &msg))
	require.Equal(t, model.BooksMessageOk, msg.Status)
	var book model.Book
	require.NoError(t, json.Unmarshal([]byte(msg.Message), &book))
	require.Equal(t, "Dune", book.Name)
	require.Equal(t, 1, book.Stock)

	code, res = post(t, base+"/books", model.BooksRequest{Action: "DROP", ActUser: "keeper", Body: "[]"})
	require.Equal(t, http.StatusBadRequest, code)
	require.NotEmpty(t, res.Error)
}
