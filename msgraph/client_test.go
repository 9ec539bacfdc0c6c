package msgraph

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type fakeDoer struct {
	responses []*http.Response
	requests  []*http.Request
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.requests = append(f.requests, req)
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func TestCalendarViewFollowsPagination(t *testing.T) {
	t.Parallel()

	doer := &fakeDoer{responses: []*http.Response{
		jsonResponse(200, `{"access_token": "tok", "expires_in": 3600}`),
		jsonResponse(200, `{
			"value": [{
				"subject": "Planning",
				"isAllDay": false,
				"start": {"dateTime": "2026-03-02T14:00:00.0000000", "timeZone": "UTC"},
				"end": {"dateTime": "2026-03-02T15:00:00.0000000", "timeZone": "UTC"}
			}],
			"@odata.nextLink": "https://graph.microsoft.com/v1.0/users/u/calendarView?$skip=100"
		}`),
		jsonResponse(200, `{
			"value": [{
				"subject": "Team day",
				"isAllDay": true,
				"start": {"dateTime": "2026-03-03T00:00:00.0000000", "timeZone": "UTC"},
				"end": {"dateTime": "2026-03-04T00:00:00.0000000", "timeZone": "UTC"}
			}]
		}`),
	}}

	c := NewHTTPClient("tenant", "client", "secret", 5*time.Second)
	c.httpClient = doer

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 7, 23, 59, 59, 0, time.UTC)
	events, err := c.CalendarView(context.Background(), "user@acme.io", from, to)
	if err != nil {
		t.Fatalf("CalendarView: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Subject != "Planning" || events[0].IsAllDay {
		t.Fatalf("unexpected first event %+v", events[0])
	}
	want := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	if !events[0].Start.Equal(want) {
		t.Fatalf("expected start %v, got %v", want, events[0].Start)
	}
	if !events[1].IsAllDay {
		t.Fatalf("second event should be all-day: %+v", events[1])
	}

	if len(doer.requests) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(doer.requests))
	}
	tokenReq := doer.requests[0]
	if !strings.Contains(tokenReq.URL.String(), "login.microsoftonline.com/tenant") {
		t.Fatalf("unexpected token endpoint %q", tokenReq.URL.String())
	}
	viewReq := doer.requests[1]
	if got := viewReq.Header.Get("Authorization"); got != "Bearer tok" {
		t.Fatalf("unexpected auth header %q", got)
	}
	if !strings.Contains(viewReq.URL.RawQuery, "startDateTime=2026-03-01T00") {
		t.Fatalf("unexpected query %q", viewReq.URL.RawQuery)
	}
}

func TestCalendarViewRejectsUnknownTimeZone(t *testing.T) {
	t.Parallel()

	doer := &fakeDoer{responses: []*http.Response{
		jsonResponse(200, `{"access_token": "tok", "expires_in": 3600}`),
		jsonResponse(200, `{
			"value": [{
				"subject": "Planning",
				"start": {"dateTime": "2026-03-02T14:00:00.0000000", "timeZone": "Mars/Olympus"},
				"end": {"dateTime": "2026-03-02T15:00:00.0000000", "timeZone": "Mars/Olympus"}
			}]
		}`),
	}}

	c := NewHTTPClient("tenant", "client", "secret", 5*time.Second)
	c.httpClient = doer

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := c.CalendarView(context.Background(), "u@acme.io", from, from.AddDate(0, 0, 1))
	if err == nil {
		t.Fatal("unresolvable time zone must fail, not fall back to UTC")
	}
	if !strings.Contains(err.Error(), "Mars/Olympus") {
		t.Fatalf("error should name the zone: %v", err)
	}
}

func TestAccessTokenReused(t *testing.T) {
	t.Parallel()

	doer := &fakeDoer{responses: []*http.Response{
		jsonResponse(200, `{"access_token": "tok", "expires_in": 3600}`),
		jsonResponse(200, `{"value": []}`),
		jsonResponse(200, `{"value": []}`),
	}}

	c := NewHTTPClient("tenant", "client", "secret", 5*time.Second)
	c.httpClient = doer

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)
	if _, err := c.CalendarView(context.Background(), "u@acme.io", from, to); err != nil {
		t.Fatalf("first view: %v", err)
	}
	if _, err := c.CalendarView(context.Background(), "u@acme.io", from, to); err != nil {
		t.Fatalf("second view: %v", err)
	}
	if len(doer.requests) != 3 {
		t.Fatalf("token should be cached, got %d requests", len(doer.requests))
	}
}

func TestTokenFailureSurfacesDetail(t *testing.T) {
	t.Parallel()

	doer := &fakeDoer{responses: []*http.Response{
		jsonResponse(400, `{"error": "invalid_client"}`),
	}}

	c := NewHTTPClient("tenant", "client", "bad", 5*time.Second)
	c.httpClient = doer

	err := c.TestConnection(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "invalid_client") {
		t.Fatalf("error should carry body: %v", err)
	}
}
