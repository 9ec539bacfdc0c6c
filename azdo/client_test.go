package azdo

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type fakeDoer struct {
	lastReq *http.Request
	body    []byte
	resp    *http.Response
	err     error
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.lastReq = req
	if req.Body != nil {
		f.body, _ = io.ReadAll(req.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func newTestClient(doer *fakeDoer) *HTTPClient {
	c := NewHTTPClient("https://dev.azure.com", "acme", "Platform", "secret-pat", 5*time.Second)
	c.httpClient = doer
	return c
}

func TestCreateWorkItem(t *testing.T) {
	t.Parallel()

	doer := &fakeDoer{resp: jsonResponse(200, `{
		"id": 4321,
		"fields": {"System.Title": "Daily sync"},
		"url": "https://dev.azure.com/acme/_apis/wit/workItems/4321"
	}`)}
	c := newTestClient(doer)

	created, err := c.CreateWorkItem(context.Background(), WorkItem{
		Type:          "User Story",
		Title:         "Daily sync",
		AreaPath:      "Platform\\Infra",
		Description:   "sync notes",
		Tags:          []string{"meeting", "daily"},
		CompletedWork: 0.5,
	})
	if err != nil {
		t.Fatalf("CreateWorkItem: %v", err)
	}
	if created.ID != 4321 {
		t.Fatalf("expected id 4321, got %d", created.ID)
	}
	if created.Title != "Daily sync" {
		t.Fatalf("unexpected title %q", created.Title)
	}

	req := doer.lastReq
	if req.Method != http.MethodPost {
		t.Fatalf("expected POST, got %s", req.Method)
	}
	if !strings.Contains(req.URL.EscapedPath(), "/_apis/wit/workitems/$User%20Story") {
		t.Fatalf("unexpected path %q", req.URL.String())
	}
	if got := req.Header.Get("Content-Type"); got != jsonPatchContentType {
		t.Fatalf("expected json patch content type, got %q", got)
	}

	var patch []map[string]any
	if err := json.Unmarshal(doer.body, &patch); err != nil {
		t.Fatalf("decode patch: %v", err)
	}
	fields := make(map[string]any)
	for _, op := range patch {
		if op["op"] != "add" {
			t.Fatalf("unexpected op %v", op["op"])
		}
		fields[op["path"].(string)] = op["value"]
	}
	if fields["/fields/System.Title"] != "Daily sync" {
		t.Fatalf("title missing from patch: %v", fields)
	}
	if fields["/fields/System.Description"] != "<div>sync notes</div>" {
		t.Fatalf("description not wrapped: %v", fields["/fields/System.Description"])
	}
	if fields["/fields/System.Tags"] != "meeting; daily" {
		t.Fatalf("unexpected tags %v", fields["/fields/System.Tags"])
	}
	if _, hasState := fields["/fields/System.State"]; hasState {
		t.Fatal("create must not set a state")
	}
}

func TestCreateWorkItemAuthHeader(t *testing.T) {
	t.Parallel()

	doer := &fakeDoer{resp: jsonResponse(200, `{"id": 1}`)}
	c := newTestClient(doer)

	if _, err := c.CreateWorkItem(context.Background(), WorkItem{Type: "Task", Title: "x"}); err != nil {
		t.Fatalf("CreateWorkItem: %v", err)
	}
	want := "Basic " + base64.StdEncoding.EncodeToString([]byte(":secret-pat"))
	if got := doer.lastReq.Header.Get("Authorization"); got != want {
		t.Fatalf("unexpected auth header %q", got)
	}
}

func TestUpdateStateTargetsWorkItem(t *testing.T) {
	t.Parallel()

	doer := &fakeDoer{resp: jsonResponse(200, `{}`)}
	c := newTestClient(doer)

	if err := c.UpdateState(context.Background(), 77, "Closed"); err != nil {
		t.Fatalf("UpdateState: %v", err)
	}
	if doer.lastReq.Method != http.MethodPatch {
		t.Fatalf("expected PATCH, got %s", doer.lastReq.Method)
	}
	if !strings.Contains(doer.lastReq.URL.Path, "/workitems/77") {
		t.Fatalf("unexpected path %q", doer.lastReq.URL.Path)
	}
	if !strings.Contains(string(doer.body), `"/fields/System.State"`) {
		t.Fatalf("state patch missing: %s", doer.body)
	}
}

func TestLinkParentPayload(t *testing.T) {
	t.Parallel()

	doer := &fakeDoer{resp: jsonResponse(200, `{}`)}
	c := newTestClient(doer)

	parent := Created{ID: 10, URL: "https://dev.azure.com/acme/_apis/wit/workItems/10"}
	if err := c.LinkParent(context.Background(), 11, parent); err != nil {
		t.Fatalf("LinkParent: %v", err)
	}

	var patch []struct {
		Op    string `json:"op"`
		Path  string `json:"path"`
		Value struct {
			Rel string `json:"rel"`
			URL string `json:"url"`
		} `json:"value"`
	}
	if err := json.Unmarshal(doer.body, &patch); err != nil {
		t.Fatalf("decode patch: %v", err)
	}
	if len(patch) != 1 || patch[0].Path != "/relations/-" {
		t.Fatalf("unexpected patch %s", doer.body)
	}
	if patch[0].Value.Rel != parentRelation {
		t.Fatalf("unexpected relation %q", patch[0].Value.Rel)
	}
	if patch[0].Value.URL != parent.URL {
		t.Fatalf("unexpected parent url %q", patch[0].Value.URL)
	}
}

func TestDeleteWorkItem(t *testing.T) {
	t.Parallel()

	doer := &fakeDoer{resp: jsonResponse(200, `{}`)}
	c := newTestClient(doer)

	if err := c.DeleteWorkItem(context.Background(), 55); err != nil {
		t.Fatalf("DeleteWorkItem: %v", err)
	}
	if doer.lastReq.Method != http.MethodDelete {
		t.Fatalf("expected DELETE, got %s", doer.lastReq.Method)
	}
}

func TestCommitsQueryAndParse(t *testing.T) {
	t.Parallel()

	doer := &fakeDoer{resp: jsonResponse(200, `{
		"count": 2,
		"value": [
			{"commitId": "abc123", "comment": "fix parser\n\ndetails", "author": {"email": "dev@acme.io", "date": "2026-03-04T15:04:05Z"}},
			{"commitId": "def456", "comment": "add cache", "author": {"email": "dev@acme.io", "date": "2026-03-05T09:00:00Z"}}
		]
	}`)}
	c := newTestClient(doer)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	commits, err := c.Commits(context.Background(), "", "billing-api", "dev@acme.io", from, to)
	if err != nil {
		t.Fatalf("Commits: %v", err)
	}
	if len(commits) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(commits))
	}
	if commits[0].ID != "abc123" {
		t.Fatalf("unexpected commit id %q", commits[0].ID)
	}

	if !strings.Contains(doer.lastReq.URL.Path, "/Platform/_apis/git/repositories/billing-api/commits") {
		t.Fatalf("unexpected path %q", doer.lastReq.URL.Path)
	}
	q := doer.lastReq.URL.Query()
	if got := q.Get("searchCriteria.author"); got != "dev@acme.io" {
		t.Fatalf("unexpected author %q", got)
	}
	if got := q.Get("searchCriteria.fromDate"); got != "03/01/2026 12:00:00 AM" {
		t.Fatalf("unexpected fromDate %q", got)
	}
	if got := q.Get("searchCriteria.toDate"); got != "03/07/2026 11:59:59 PM" {
		t.Fatalf("unexpected toDate %q", got)
	}
}

func TestDoJSONSurfacesStatusAndBody(t *testing.T) {
	t.Parallel()

	doer := &fakeDoer{resp: jsonResponse(401, `{"message": "TF400813: access denied"}`)}
	c := newTestClient(doer)

	err := c.TestConnection(context.Background())
	if err == nil {
		t.Fatal("expected error for 401")
	}
	if !strings.Contains(err.Error(), "status 401") {
		t.Fatalf("error should carry status: %v", err)
	}
	if !strings.Contains(err.Error(), "TF400813") {
		t.Fatalf("error should carry body detail: %v", err)
	}
}
