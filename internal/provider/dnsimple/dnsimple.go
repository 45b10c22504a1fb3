package dnsimple

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/evanofslack/fleet-dns-sync/internal/metrics"
	"github.com/evanofslack/fleet-dns-sync/internal/provider"
)

const perPage = 100

type Httper interface {
	Do(req *http.Request) (*http.Response, error)
}

// APIError is a non-2xx answer from the DNSimple API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("dnsimple api request, status=%d", e.StatusCode)
	}
	return fmt.Sprintf("dnsimple api request, status=%d, message=%s", e.StatusCode, e.Message)
}

type DNSimpleProvider struct {
	baseURL string
	token   string
	http    Httper
	metrics *metrics.Metrics
}

func New(baseURL, token string, httper Httper, metrics *metrics.Metrics) (*DNSimpleProvider, error) {
	if token == "" {
		return nil, fmt.Errorf("dnsimple API token required")
	}
	return &DNSimpleProvider{
		baseURL: baseURL,
		token:   token,
		http:    httper,
		metrics: metrics,
	}, nil
}

func (p *DNSimpleProvider) ListRecords(ctx context.Context, zone provider.Zone, page int) (provider.RecordPage, error) {
	slog.Debug("Listing DNS records", "zone", zone.Name, "page", page)
	start := time.Now()

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))

	var res listRecordsResponse
	if err := p.do(ctx, http.MethodGet, p.recordsPath(zone)+"?"+query.Encode(), nil, &res); err != nil {
		p.metrics.IncDNSRequest("read", zone.Name, false)
		return provider.RecordPage{}, fmt.Errorf("failed to list DNS records: %w", err)
	}

	out := provider.RecordPage{
		Records:    make([]provider.Record, 0, len(res.Data)),
		Page:       res.Pagination.CurrentPage,
		TotalPages: res.Pagination.TotalPages,
	}
	for _, r := range res.Data {
		out.Records = append(out.Records, provider.Record{
			ID:   strconv.FormatInt(r.ID, 10),
			Name: r.Name,
			Type: r.Type,
			Data: r.Content,
			TTL:  time.Duration(r.TTL) * time.Second,
		})
	}

	p.metrics.IncDNSRequest("read", zone.Name, true)
	slog.Debug("Retrieved DNS records", "zone", zone.Name, "page", page, "count", len(out.Records), "duration", time.Since(start))
	return out, nil
}

func (p *DNSimpleProvider) CreateRecord(ctx context.Context, zone provider.Zone, record provider.Record) error {
	start := time.Now()

	attrs := recordAttributes{
		Name:    record.Name,
		Type:    record.Type,
		Content: record.Data,
		TTL:     int(record.TTL.Seconds()),
	}
	if err := p.do(ctx, http.MethodPost, p.recordsPath(zone), attrs, nil); err != nil {
		p.metrics.IncDNSRequest("create", zone.Name, false)
		return fmt.Errorf("failed to create DNS record: %w", err)
	}

	p.metrics.IncDNSRequest("create", zone.Name, true)
	slog.Debug("Created DNS record", "zone", zone.Name, "name", record.Name, "type", record.Type, "duration", time.Since(start))
	return nil
}

func (p *DNSimpleProvider) DeleteRecord(ctx context.Context, zone provider.Zone, record provider.Record) error {
	start := time.Now()

	if _, err := strconv.ParseInt(record.ID, 10, 64); err != nil {
		p.metrics.IncDNSRequest("delete", zone.Name, false)
		return fmt.Errorf("invalid dnsimple record id %q", record.ID)
	}
	if err := p.do(ctx, http.MethodDelete, p.recordsPath(zone)+"/"+record.ID, nil, nil); err != nil {
		p.metrics.IncDNSRequest("delete", zone.Name, false)
		return fmt.Errorf("failed to delete DNS record: %w", err)
	}

	p.metrics.IncDNSRequest("delete", zone.Name, true)
	slog.Debug("Deleted DNS record", "zone", zone.Name, "name", record.Name, "id", record.ID, "duration", time.Since(start))
	return nil
}

func (p *DNSimpleProvider) recordsPath(zone provider.Zone) string {
	return fmt.Sprintf("/v2/%s/zones/%s/records", url.PathEscape(zone.Account), url.PathEscape(zone.Name))
}

func (p *DNSimpleProvider) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var e errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&e); err == nil {
			apiErr.Message = e.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse dnsimple response, err=%w", err)
	}
	return nil
}
