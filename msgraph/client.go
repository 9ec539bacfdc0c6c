// Package msgraph fetches calendar events from the Microsoft Graph API
// using the client credentials flow.
package msgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	tokenEndpoint = "https://login.microsoftonline.com/%s/oauth2/v2.0/token"
	graphBaseURL  = "https://graph.microsoft.com/v1.0"
	graphScope    = "https://graph.microsoft.com/.default"

	// calendarView pages at most this many events per request.
	pageSize = 100
)

// Event is a calendar event returned by the calendarView endpoint.
// Start and End are in UTC.
type Event struct {
	Subject  string
	Start    time.Time
	End      time.Time
	IsAllDay bool
}

// Client is the Graph surface the calendar source depends on.
type Client interface {
	// CalendarView returns the events of userEmail between from and
	// to, both inclusive, following pagination.
	CalendarView(ctx context.Context, userEmail string, from, to time.Time) ([]Event, error)

	// TestConnection acquires a token to verify the credentials.
	TestConnection(ctx context.Context) error
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPClient implements Client against the live Graph API. Tokens are
// cached until shortly before expiry.
type HTTPClient struct {
	tenantID     string
	clientID     string
	clientSecret string
	httpClient   httpDoer

	token       string
	tokenExpiry time.Time
}

func NewHTTPClient(tenantID, clientID, clientSecret string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		tenantID:     tenantID,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) TestConnection(ctx context.Context) error {
	if _, err := c.accessToken(ctx); err != nil {
		return fmt.Errorf("connection test: %w", err)
	}
	return nil
}

func (c *HTTPClient) CalendarView(ctx context.Context, userEmail string, from, to time.Time) ([]Event, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("startDateTime", from.UTC().Format(time.RFC3339))
	query.Set("endDateTime", to.UTC().Format(time.RFC3339))
	query.Set("$top", fmt.Sprintf("%d", pageSize))
	query.Set("$orderby", "start/dateTime")

	next := fmt.Sprintf("%s/users/%s/calendarView?%s", graphBaseURL, url.PathEscape(userEmail), query.Encode())

	var events []Event
	for next != "" {
		var page struct {
			Value []struct {
				Subject  string `json:"subject"`
				IsAllDay bool   `json:"isAllDay"`
				Start    struct {
					DateTime string `json:"dateTime"`
					TimeZone string `json:"timeZone"`
				} `json:"start"`
				End struct {
					DateTime string `json:"dateTime"`
					TimeZone string `json:"timeZone"`
				} `json:"end"`
			} `json:"value"`
			NextLink string `json:"@odata.nextLink"`
		}
		if err := c.getJSON(ctx, next, token, &page); err != nil {
			return nil, fmt.Errorf("calendar view for %s: %w", userEmail, err)
		}
		for _, v := range page.Value {
			start, err := parseGraphTime(v.Start.DateTime, v.Start.TimeZone)
			if err != nil {
				return nil, fmt.Errorf("event %q: %w", v.Subject, err)
			}
			end, err := parseGraphTime(v.End.DateTime, v.End.TimeZone)
			if err != nil {
				return nil, fmt.Errorf("event %q: %w", v.Subject, err)
			}
			events = append(events, Event{
				Subject:  v.Subject,
				Start:    start,
				End:      end,
				IsAllDay: v.IsAllDay,
			})
		}
		next = page.NextLink
	}
	return events, nil
}

// parseGraphTime decodes Graph's fractional-second local timestamps
// into UTC instants. An unresolvable time zone is an error: guessing
// UTC could shift the event across a day boundary.
func parseGraphTime(value, zone string) (time.Time, error) {
	loc := time.UTC
	if zone != "" && zone != "UTC" {
		l, err := time.LoadLocation(zone)
		if err != nil {
			return time.Time{}, fmt.Errorf("unknown time zone %q: %w", zone, err)
		}
		loc = l
	}
	for _, layout := range []string{"2006-01-02T15:04:05.0000000", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse time %q", value)
}

func (c *HTTPClient) accessToken(ctx context.Context) (string, error) {
	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("scope", graphScope)

	endpoint := fmt.Sprintf(tokenEndpoint, url.PathEscape(c.tenantID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request token: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token request: status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("token response carried no access token")
	}

	c.token = out.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(out.ExpiresIn)*time.Second - time.Minute)
	return c.token, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, endpoint, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		detail := strings.TrimSpace(string(data))
		if len(detail) > 512 {
			detail = detail[:512] + "..."
		}
		return fmt.Errorf("GET %s: status %d: %s", endpoint, resp.StatusCode, detail)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
