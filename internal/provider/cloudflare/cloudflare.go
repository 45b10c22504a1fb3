package cloudflare

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cloudflare/cloudflare-go"
	"github.com/evanofslack/fleet-dns-sync/internal/metrics"
	"github.com/evanofslack/fleet-dns-sync/internal/provider"
)

const perPage = 100

type CloudflareProvider struct {
	client  *cloudflare.API
	metrics *metrics.Metrics

	mu    sync.Mutex
	zones map[string]string // Cache zone name to ID mapping
}

func New(token, baseURL string, metrics *metrics.Metrics) (*CloudflareProvider, error) {
	if token == "" {
		return nil, fmt.Errorf("cloudflare API token required")
	}

	var opts []cloudflare.Option
	if baseURL != "" {
		opts = append(opts, cloudflare.BaseURL(baseURL))
	}
	client, err := cloudflare.NewWithAPIToken(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloudflare client: %w", err)
	}

	return &CloudflareProvider{
		client:  client,
		metrics: metrics,
		zones:   make(map[string]string),
	}, nil
}

func (p *CloudflareProvider) zoneID(zone string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if id, ok := p.zones[zone]; ok {
		return id, nil
	}
	id, err := p.client.ZoneIDByName(zone)
	if err != nil {
		return "", fmt.Errorf("failed to get zone ID for %s: %w", zone, err)
	}
	p.zones[zone] = id
	return id, nil
}

func (p *CloudflareProvider) ListRecords(ctx context.Context, zone provider.Zone, page int) (provider.RecordPage, error) {
	slog.Debug("Listing DNS records", "zone", zone.Name, "page", page)
	start := time.Now()

	zoneID, err := p.zoneID(zone.Name)
	if err != nil {
		p.metrics.IncDNSRequest("read", zone.Name, false)
		return provider.RecordPage{}, err
	}

	params := cloudflare.ListDNSRecordsParams{
		ResultInfo: cloudflare.ResultInfo{
			Page:    page,
			PerPage: perPage,
		},
	}
	records, resultInfo, err := p.client.ListDNSRecords(ctx, cloudflare.ZoneIdentifier(zoneID), params)
	if err != nil {
		p.metrics.IncDNSRequest("read", zone.Name, false)
		return provider.RecordPage{}, fmt.Errorf("failed to list DNS records: %w", err)
	}

	out := provider.RecordPage{
		Records:    make([]provider.Record, 0, len(records)),
		Page:       page,
		TotalPages: 1,
	}
	if resultInfo != nil {
		out.Page = resultInfo.Page
		out.TotalPages = resultInfo.TotalPages
	}
	for _, r := range records {
		out.Records = append(out.Records, provider.Record{
			ID:   r.ID,
			Name: relativeName(r.Name, zone.Name),
			Type: r.Type,
			Data: r.Content,
			TTL:  time.Duration(r.TTL) * time.Second,
		})
	}

	p.metrics.IncDNSRequest("read", zone.Name, true)
	slog.Debug("Retrieved DNS records", "zone", zone.Name, "page", page, "count", len(out.Records), "duration", time.Since(start))
	return out, nil
}

func (p *CloudflareProvider) CreateRecord(ctx context.Context, zone provider.Zone, record provider.Record) error {
	start := time.Now()

	if _, err := provider.ToLibdns(record); err != nil {
		p.metrics.IncDNSRequest("create", zone.Name, false)
		return err
	}
	zoneID, err := p.zoneID(zone.Name)
	if err != nil {
		p.metrics.IncDNSRequest("create", zone.Name, false)
		return err
	}

	params := cloudflare.CreateDNSRecordParams{
		Type:    record.Type,
		Name:    record.Name,
		Content: record.Data,
		TTL:     int(record.TTL.Seconds()),
	}

	_, err = p.client.CreateDNSRecord(ctx, cloudflare.ZoneIdentifier(zoneID), params)
	if err != nil {
		p.metrics.IncDNSRequest("create", zone.Name, false)
		return fmt.Errorf("failed to create DNS record: %w", err)
	}

	p.metrics.IncDNSRequest("create", zone.Name, true)
	slog.Debug("Created DNS record", "zone", zone.Name, "name", record.Name, "type", record.Type, "duration", time.Since(start))
	return nil
}

func (p *CloudflareProvider) DeleteRecord(ctx context.Context, zone provider.Zone, record provider.Record) error {
	start := time.Now()

	zoneID, err := p.zoneID(zone.Name)
	if err != nil {
		p.metrics.IncDNSRequest("delete", zone.Name, false)
		return err
	}

	err = p.client.DeleteDNSRecord(ctx, cloudflare.ZoneIdentifier(zoneID), record.ID)
	if err != nil {
		p.metrics.IncDNSRequest("delete", zone.Name, false)
		return fmt.Errorf("failed to delete DNS record: %w", err)
	}

	p.metrics.IncDNSRequest("delete", zone.Name, true)
	slog.Debug("Deleted DNS record", "zone", zone.Name, "name", record.Name, "id", record.ID, "duration", time.Since(start))
	return nil
}

// relativeName strips the zone from a fully qualified record name. The apex
// becomes "@".
func relativeName(name, zone string) string {
	name = strings.TrimSuffix(name, ".")
	zone = strings.TrimSuffix(zone, ".")
	if name == zone {
		return "@"
	}
	return strings.TrimSuffix(name, "."+zone)
}
