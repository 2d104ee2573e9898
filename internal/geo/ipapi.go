package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/August26/proxytrial/internal/model"
)

// IPAPI looks hosts up at Endpoint + "/" + host. The response must be
// a JSON object with "country" and "city" string fields; ip-api.com's
// "status":"fail" convention is honoured.
type IPAPI struct {
	Endpoint string
	Client   *http.Client
}

// NewIPAPI returns a resolver for endpoint (DefaultGeoEndpoint if empty).
func NewIPAPI(endpoint string, timeout time.Duration) *IPAPI {
	if endpoint == "" {
		endpoint = model.DefaultGeoEndpoint
	}
	return &IPAPI{
		Endpoint: strings.TrimRight(endpoint, "/"),
		Client:   &http.Client{Timeout: timeout},
	}
}

type ipapiResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Country string `json:"country"`
	City    string `json:"city"`
}

func (r *IPAPI) Lookup(ctx context.Context, host string) (model.GeoInfo, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return model.GeoInfo{}, fmt.Errorf("%w: empty host", ErrInvalidInput)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.Endpoint+"/"+url.PathEscape(host), nil)
	if err != nil {
		return model.GeoInfo{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return model.GeoInfo{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.GeoInfo{}, fmt.Errorf("%w: status %d", ErrTransport, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return model.GeoInfo{}, fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}

	var parsed ipapiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return model.GeoInfo{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if strings.EqualFold(parsed.Status, "fail") {
		return model.GeoInfo{}, fmt.Errorf("%w: service reported %q", ErrParse, parsed.Message)
	}

	return model.GeoInfo{
		Country: cleanField(parsed.Country),
		City:    cleanField(parsed.City),
	}, nil
}
