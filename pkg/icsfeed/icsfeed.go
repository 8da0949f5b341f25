// Package icsfeed is the external calendar provider client. The provider
// speaks iCalendar over HTTP: a feed URL is authorized once and then polled
// for its current VEVENT set within a bounded horizon.
package icsfeed

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
)

// ProviderEvent is the provider-neutral shape of one external event.
type ProviderEvent struct {
	UID         string
	Title       string
	Description string
	Location    string
	StartDate   string // YYYY-MM-DD
	StartTime   string // HH:MM, empty for all-day events
	AllDay      bool
	Duration    int // minutes
}

// Client fetches and parses an ICS feed.
type Client struct {
	httpClient *http.Client
}

// NewClient constructs a feed client with the given fetch timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{httpClient: &http.Client{Timeout: timeout}}
}

// Authorize validates the feed URL with a probe request and derives an
// opaque credential for the connection record.
func (c *Client) Authorize(ctx context.Context, feedURL string) (string, error) {
	parsed, err := url.Parse(feedURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", fmt.Errorf("invalid feed url")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return "", fmt.Errorf("authorize feed: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("authorize feed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("authorize feed: unexpected status %d", resp.StatusCode)
	}

	sum := sha256.Sum256([]byte(feedURL))
	return hex.EncodeToString(sum[:]), nil
}

// ListEvents fetches the feed and returns its events whose start date falls
// within [from, to], both inclusive, as YYYY-MM-DD bounds.
func (c *Client) ListEvents(ctx context.Context, feedURL, from, to string) ([]ProviderEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	events, err := Parse(body)
	if err != nil {
		return nil, err
	}

	filtered := events[:0]
	for _, event := range events {
		if event.StartDate >= from && event.StartDate <= to {
			filtered = append(filtered, event)
		}
	}
	return filtered, nil
}

// Parse decodes an ICS payload into provider events. Events without a UID
// or DTSTART are skipped; re-sync matching depends on both.
func Parse(body []byte) ([]ProviderEvent, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse ICS: %w", err)
	}

	events := make([]ProviderEvent, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		event, ok := parseVEvent(ve)
		if !ok {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func parseVEvent(ve *ical.VEvent) (ProviderEvent, bool) {
	var out ProviderEvent

	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return out, false
	}
	out.UID = uid.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Title = p.Value
	}
	if out.Title == "" {
		out.Title = "(untitled)"
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return out, false
	}
	out.StartDate = start.Format("2006-01-02")

	out.AllDay = isAllDay(ve)
	if !out.AllDay {
		out.StartTime = start.Format("15:04")
	}

	out.Duration = 60
	if end, err := ve.GetEndAt(); err == nil && end.After(start) {
		out.Duration = int(end.Sub(start).Minutes())
	}

	return out, true
}

// isAllDay detects DTSTART values carrying VALUE=DATE or a bare YYYYMMDD
// form, the two ways feeds mark all-day events.
func isAllDay(ve *ical.VEvent) bool {
	prop := ve.GetProperty(ical.ComponentPropertyDtStart)
	if prop == nil {
		return false
	}
	if params := prop.ICalParameters; params != nil {
		if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			return true
		}
	}
	return !strings.Contains(prop.Value, "T")
}
