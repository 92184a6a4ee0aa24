// Package registry talks to the insolvency register's two SOAP web services:
// the bulk transaction feed and the per-case supplementary lookup.
package registry

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/isirwatch/backend/pkg/config"
)

const (
	soapActionFeed       = "getIsirWsPublicData"
	soapActionSupplement = "getIsirWsCuzkData"

	statusOK = "OK"

	// feed timestamps are ISO-8601 with trailing fraction/zone noise; the
	// register documents the first 19 characters as authoritative
	timestampLayout = "2006-01-02T15:04:05"
	timestampLen    = 19

	orgPrefixLen = 20

	requestBodyReadLimit int64 = 8 << 20
)

// RawTransaction is one event record from the bulk feed, before any note
// payload decoding.
type RawTransaction struct {
	ID          int64
	Created     time.Time
	Published   time.Time
	DocumentURL string
	CaseRef     string
	EventType   string
	Description string
	Section     string
	SectionItem *int
	Note        string
}

// Supplement carries the per-case lookup result: senate number and the
// public detail-page link, plus the organization name used for the sanity
// check.
type Supplement struct {
	Count        int
	Senate       *int
	Link         string
	Organization string
}

// MatchesOrganization compares the leading characters of the returned
// organization name against the expected court name. Only the first 20
// characters are compared; no two courts currently share that prefix.
func (s *Supplement) MatchesOrganization(expected string) bool {
	if s == nil {
		return false
	}
	return runePrefix(s.Organization, orgPrefixLen) == runePrefix(expected, orgPrefixLen)
}

func runePrefix(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

// Client issues requests against the register web services.
type Client struct {
	httpClient    *http.Client
	feedURL       string
	supplementURL string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds a registry client from configuration.
func NewClient(cfg config.RegistryConfig, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.FeedURL) == "" {
		return nil, fmt.Errorf("registry feed url is required")
	}
	if strings.TrimSpace(cfg.SupplementURL) == "" {
		return nil, fmt.Errorf("registry supplement url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	client := &Client{
		httpClient:    &http.Client{Timeout: timeout},
		feedURL:       strings.TrimSpace(cfg.FeedURL),
		supplementURL: strings.TrimSpace(cfg.SupplementURL),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// FetchTransactions requests all feed records starting at fromID. An empty
// slice with a nil error means "no more data now" (non-success status or no
// data elements); a non-nil error means the transport or envelope failed.
func (c *Client) FetchTransactions(ctx context.Context, fromID int64) ([]RawTransaction, error) {
	envelope := fmt.Sprintf(feedRequestTemplate, fromID)
	body, err := c.post(ctx, c.feedURL, soapActionFeed, envelope)
	if err != nil {
		return nil, err
	}

	var parsed feedResponseEnvelope
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding feed response: %w", err)
	}

	resp := parsed.Body.Response
	if resp.Status.Stav != statusOK || len(resp.Data) == 0 {
		return nil, nil
	}

	records := make([]RawTransaction, 0, len(resp.Data))
	for _, rec := range resp.Data {
		created, err := parseTimestamp(rec.Created)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", rec.ID, err)
		}
		published, err := parseTimestamp(rec.Published)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", rec.ID, err)
		}
		records = append(records, RawTransaction{
			ID:          rec.ID,
			Created:     created,
			Published:   published,
			DocumentURL: strings.TrimSpace(rec.DocumentURL),
			CaseRef:     strings.TrimSpace(rec.CaseRef),
			EventType:   strings.TrimSpace(rec.EventType),
			Description: strings.TrimSpace(rec.Description),
			Section:     strings.TrimSpace(rec.Section),
			SectionItem: rec.SectionItem,
			Note:        rec.Note,
		})
	}
	return records, nil
}

// FetchCaseSupplement looks up the senate/link supplement for one case.
// A nil Supplement with nil error means the register has nothing yet.
func (c *Client) FetchCaseSupplement(ctx context.Context, number, year int) (*Supplement, error) {
	envelope := fmt.Sprintf(supplementRequestTemplate, number, year)
	body, err := c.post(ctx, c.supplementURL, soapActionSupplement, envelope)
	if err != nil {
		return nil, err
	}

	var parsed supplementResponseEnvelope
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding supplement response: %w", err)
	}

	resp := parsed.Body.Response
	if resp.Status.Stav != statusOK || len(resp.Data) == 0 {
		return nil, nil
	}

	rec := resp.Data[0]
	return &Supplement{
		Count:        rec.Count,
		Senate:       rec.Senate,
		Link:         strings.TrimSpace(rec.Link),
		Organization: strings.TrimSpace(rec.Organization),
	}, nil
}

func (c *Client) post(ctx context.Context, url, action, envelope string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(envelope))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", action)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("posting %s: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", action, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, requestBodyReadLimit))
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", action, err)
	}
	return body, nil
}

func parseTimestamp(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) > timestampLen {
		trimmed = trimmed[:timestampLen]
	}
	ts, err := time.Parse(timestampLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", raw, err)
	}
	return ts, nil
}
