// Package azdo talks to the Azure DevOps REST API: work item creation
// and mutation via JSON Patch documents, and commit history queries
// against the Git API.
package azdo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	apiVersion = "7.1"

	// Relation type that attaches a child work item to its parent.
	parentRelation = "System.LinkTypes.Hierarchy-Reverse"

	jsonPatchContentType = "application/json-patch+json"
	jsonContentType      = "application/json"
)

// Client is the Azure DevOps surface the pipeline depends on. Callers
// hold this interface so tests can substitute a fake.
type Client interface {
	// TestConnection verifies the base URL, organization and
	// credentials by listing projects.
	TestConnection(ctx context.Context) error

	// CreateWorkItem creates a work item of the given type. The item
	// is created without a state field; use UpdateState afterwards to
	// move it out of the type's default initial state.
	CreateWorkItem(ctx context.Context, item WorkItem) (Created, error)

	// UpdateState patches System.State on an existing work item.
	UpdateState(ctx context.Context, id int, state string) error

	// LinkParent attaches childID to parent as a hierarchy child.
	LinkParent(ctx context.Context, childID int, parent Created) error

	// DeleteWorkItem soft-deletes a work item (moves it to the
	// recycle bin).
	DeleteWorkItem(ctx context.Context, id int) error

	// Commits returns the commits in a repository authored by the
	// given email within [from, to], both inclusive. An empty project
	// falls back to the client's default project.
	Commits(ctx context.Context, project, repository, author string, from, to time.Time) ([]Commit, error)
}

// WorkItem carries the fields written when creating a work item.
// Optional fields are skipped when zero.
type WorkItem struct {
	Type          string // "Task" or "User Story"
	Title         string
	Description   string // plain text, wrapped in a div for the HTML field
	AreaPath      string
	IterationPath string
	AssignedTo    string
	Tags          []string
	CompletedWork float64
	Start         time.Time
	Finish        time.Time
}

// Created identifies a work item returned by the create endpoint.
type Created struct {
	ID    int    `json:"id"`
	URL   string `json:"url"`
	Title string
}

// Commit is a single commit from the Azure DevOps Git API.
type Commit struct {
	ID          string
	Comment     string
	AuthorEmail string
	AuthorDate  time.Time
}

// httpDoer lets tests stub the transport.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPClient implements Client against a real Azure DevOps instance.
type HTTPClient struct {
	baseURL      string
	organization string
	project      string
	pat          string
	httpClient   httpDoer
}

// NewHTTPClient builds a client for one organization/project pair.
// baseURL is the service root, e.g. https://dev.azure.com.
func NewHTTPClient(baseURL, organization, project, pat string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		organization: organization,
		project:      project,
		pat:          pat,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// patchOp is one operation in a JSON Patch document.
type patchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

func addField(field string, value any) patchOp {
	return patchOp{Op: "add", Path: "/fields/" + field, Value: value}
}

func (c *HTTPClient) TestConnection(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/%s/_apis/projects?api-version=%s", c.baseURL, c.organization, apiVersion)
	var out struct {
		Count int `json:"count"`
	}
	if err := c.doJSON(ctx, http.MethodGet, endpoint, jsonContentType, nil, &out); err != nil {
		return fmt.Errorf("connection test: %w", err)
	}
	return nil
}

func (c *HTTPClient) CreateWorkItem(ctx context.Context, item WorkItem) (Created, error) {
	patch := []patchOp{addField("System.Title", item.Title)}
	if item.AreaPath != "" {
		patch = append(patch, addField("System.AreaPath", item.AreaPath))
	}
	if item.IterationPath != "" {
		patch = append(patch, addField("System.IterationPath", item.IterationPath))
	}
	if item.Description != "" {
		patch = append(patch, addField("System.Description", "<div>"+item.Description+"</div>"))
	}
	if len(item.Tags) > 0 {
		patch = append(patch, addField("System.Tags", strings.Join(item.Tags, "; ")))
	}
	if item.AssignedTo != "" {
		patch = append(patch, addField("System.AssignedTo", item.AssignedTo))
	}
	if item.CompletedWork > 0 {
		patch = append(patch, addField("Microsoft.VSTS.Scheduling.CompletedWork", item.CompletedWork))
	}
	if !item.Start.IsZero() {
		patch = append(patch, addField("Microsoft.VSTS.Scheduling.StartDate", item.Start.UTC().Format(time.RFC3339)))
	}
	if !item.Finish.IsZero() {
		patch = append(patch, addField("Microsoft.VSTS.Scheduling.FinishDate", item.Finish.UTC().Format(time.RFC3339)))
	}

	endpoint := fmt.Sprintf("%s/%s/%s/_apis/wit/workitems/$%s?api-version=%s",
		c.baseURL, c.organization, url.PathEscape(c.project), url.PathEscape(item.Type), apiVersion)

	var out struct {
		ID     int `json:"id"`
		Fields struct {
			Title string `json:"System.Title"`
		} `json:"fields"`
		Links struct {
			HTML struct {
				HRef string `json:"href"`
			} `json:"html"`
		} `json:"_links"`
		URL string `json:"url"`
	}
	if err := c.doJSON(ctx, http.MethodPost, endpoint, jsonPatchContentType, patch, &out); err != nil {
		return Created{}, fmt.Errorf("create %s %q: %w", item.Type, item.Title, err)
	}
	return Created{ID: out.ID, URL: out.URL, Title: out.Fields.Title}, nil
}

func (c *HTTPClient) UpdateState(ctx context.Context, id int, state string) error {
	patch := []patchOp{addField("System.State", state)}
	endpoint := c.workItemURL(id)
	if err := c.doJSON(ctx, http.MethodPatch, endpoint, jsonPatchContentType, patch, nil); err != nil {
		return fmt.Errorf("update state of work item %d: %w", id, err)
	}
	return nil
}

func (c *HTTPClient) LinkParent(ctx context.Context, childID int, parent Created) error {
	patch := []patchOp{{
		Op:   "add",
		Path: "/relations/-",
		Value: map[string]any{
			"rel": parentRelation,
			"url": parent.URL,
		},
	}}
	endpoint := c.workItemURL(childID)
	if err := c.doJSON(ctx, http.MethodPatch, endpoint, jsonPatchContentType, patch, nil); err != nil {
		return fmt.Errorf("link work item %d to parent %d: %w", childID, parent.ID, err)
	}
	return nil
}

func (c *HTTPClient) DeleteWorkItem(ctx context.Context, id int) error {
	endpoint := c.workItemURL(id)
	if err := c.doJSON(ctx, http.MethodDelete, endpoint, jsonContentType, nil, nil); err != nil {
		return fmt.Errorf("delete work item %d: %w", id, err)
	}
	return nil
}

func (c *HTTPClient) Commits(ctx context.Context, project, repository, author string, from, to time.Time) ([]Commit, error) {
	if project == "" {
		project = c.project
	}
	query := url.Values{}
	query.Set("searchCriteria.author", author)
	query.Set("searchCriteria.fromDate", from.Format("01/02/2006")+" 12:00:00 AM")
	query.Set("searchCriteria.toDate", to.Format("01/02/2006")+" 11:59:59 PM")
	query.Set("api-version", apiVersion)

	endpoint := fmt.Sprintf("%s/%s/%s/_apis/git/repositories/%s/commits?%s",
		c.baseURL, c.organization, url.PathEscape(project), url.PathEscape(repository), query.Encode())

	var out struct {
		Value []struct {
			CommitID string `json:"commitId"`
			Comment  string `json:"comment"`
			Author   struct {
				Email string    `json:"email"`
				Date  time.Time `json:"date"`
			} `json:"author"`
		} `json:"value"`
	}
	if err := c.doJSON(ctx, http.MethodGet, endpoint, jsonContentType, nil, &out); err != nil {
		return nil, fmt.Errorf("list commits of %s: %w", repository, err)
	}

	commits := make([]Commit, 0, len(out.Value))
	for _, v := range out.Value {
		commits = append(commits, Commit{
			ID:          v.CommitID,
			Comment:     v.Comment,
			AuthorEmail: v.Author.Email,
			AuthorDate:  v.Author.Date,
		})
	}
	return commits, nil
}

func (c *HTTPClient) workItemURL(id int) string {
	return fmt.Sprintf("%s/%s/%s/_apis/wit/workitems/%d?api-version=%s",
		c.baseURL, c.organization, url.PathEscape(c.project), id, apiVersion)
}

// doJSON performs one request and decodes the JSON response into out
// when out is non-nil. Non-2xx responses become errors carrying the
// status and a trimmed body.
func (c *HTTPClient) doJSON(ctx context.Context, method, endpoint, contentType string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(":"+c.pat)))
	req.Header.Set("Accept", jsonContentType)
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := strings.TrimSpace(string(data))
		if len(detail) > 512 {
			detail = detail[:512] + "..."
		}
		return fmt.Errorf("%s %s: status %d: %s", method, endpoint, resp.StatusCode, detail)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
