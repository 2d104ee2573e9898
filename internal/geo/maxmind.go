package geo

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"

	"github.com/August26/proxytrial/internal/model"
)

// MaxMind resolves hosts against a local City database.
type MaxMind struct {
	reader *geoip2.Reader
	lookup func(ctx context.Context, host string) ([]net.IPAddr, error)
}

// OpenMaxMind opens the database at path. Close it when the run ends.
func OpenMaxMind(path string) (*MaxMind, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip database: %w", err)
	}
	return &MaxMind{
		reader: reader,
		lookup: net.DefaultResolver.LookupIPAddr,
	}, nil
}

func (m *MaxMind) Close() error {
	return m.reader.Close()
}

func (m *MaxMind) Lookup(ctx context.Context, host string) (model.GeoInfo, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return model.GeoInfo{}, fmt.Errorf("%w: empty host", ErrInvalidInput)
	}

	ip := net.ParseIP(host)
	if ip == nil {
		addrs, err := m.lookup(ctx, host)
		if err != nil {
			return model.GeoInfo{}, fmt.Errorf("%w: resolve %s: %v", ErrTransport, host, err)
		}
		if len(addrs) == 0 {
			return model.GeoInfo{}, fmt.Errorf("%w: no address for %s", ErrTransport, host)
		}
		ip = addrs[0].IP
	}

	rec, err := m.reader.City(ip)
	if err != nil {
		return model.GeoInfo{}, fmt.Errorf("%w: %v", ErrParse, err)
	}

	return model.GeoInfo{
		Country: cleanField(rec.Country.Names["en"]),
		City:    cleanField(rec.City.Names["en"]),
	}, nil
}
