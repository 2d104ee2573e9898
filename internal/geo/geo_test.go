package geo

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/maxmind/mmdbwriter"
	"github.com/maxmind/mmdbwriter/mmdbtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/August26/proxytrial/internal/model"
)

func lookupServer(t *testing.T, status int, body string) (*httptest.Server, <-chan string) {
	t.Helper()
	paths := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case paths <- r.URL.Path:
		default:
		}
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, paths
}

func TestIPAPI_Lookup(t *testing.T) {
	srv, paths := lookupServer(t, http.StatusOK, `{"status":"success","country":"Germany","city":"Berlin"}`)

	info, err := NewIPAPI(srv.URL+"/json/", time.Second).Lookup(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, "Germany", info.Country)
	assert.Equal(t, "Berlin", info.City)
	assert.Equal(t, "Germany/Berlin", info.String())
	assert.Equal(t, "/json/1.2.3.4", <-paths)
}

func TestIPAPI_StripsQuoting(t *testing.T) {
	srv, _ := lookupServer(t, http.StatusOK, `{"country":"\"France\"","city":" Paris "}`)

	info, err := NewIPAPI(srv.URL, time.Second).Lookup(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, "France", info.Country)
	assert.Equal(t, "Paris", info.City)
}

func TestIPAPI_MissingFieldsAreEmpty(t *testing.T) {
	srv, _ := lookupServer(t, http.StatusOK, `{"country":"Japan"}`)

	info, err := NewIPAPI(srv.URL, time.Second).Lookup(context.Background(), "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, "Japan", info.Country)
	assert.Empty(t, info.City)
}

func TestIPAPI_Errors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		host   string
		want   error
	}{
		{"empty host", http.StatusOK, `{}`, "  ", ErrInvalidInput},
		{"http status", http.StatusTooManyRequests, `{}`, "1.2.3.4", ErrTransport},
		{"malformed", http.StatusOK, `{"country":`, "1.2.3.4", ErrParse},
		{"service fail", http.StatusOK, `{"status":"fail","message":"private range"}`, "10.0.0.1", ErrParse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := lookupServer(t, tc.status, tc.body)
			_, err := NewIPAPI(srv.URL, time.Second).Lookup(context.Background(), tc.host)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestIPAPI_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	_, err = NewIPAPI("http://"+addr, time.Second).Lookup(context.Background(), "1.2.3.4")
	assert.ErrorIs(t, err, ErrTransport)
}

func TestMaxMind_OpenMissing(t *testing.T) {
	_, err := OpenMaxMind(filepath.Join(t.TempDir(), "missing.mmdb"))
	assert.Error(t, err)
}

func TestMaxMind_InvalidInputAndResolveFailure(t *testing.T) {
	m := &MaxMind{
		lookup: func(context.Context, string) ([]net.IPAddr, error) {
			return nil, errors.New("no such host")
		},
	}

	_, err := m.Lookup(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = m.Lookup(context.Background(), "proxy.example")
	assert.ErrorIs(t, err, ErrTransport)
}

// writeCityDB writes a City database that maps 81.2.69.0/24 to London.
func writeCityDB(t *testing.T) string {
	t.Helper()
	tree, err := mmdbwriter.New(mmdbwriter.Options{
		DatabaseType: "GeoIP2-City",
		RecordSize:   24,
	})
	require.NoError(t, err)

	_, network, err := net.ParseCIDR("81.2.69.0/24")
	require.NoError(t, err)
	require.NoError(t, tree.Insert(network, mmdbtype.Map{
		"country": mmdbtype.Map{
			"iso_code": mmdbtype.String("GB"),
			"names":    mmdbtype.Map{"en": mmdbtype.String("United Kingdom"), "de": mmdbtype.String("Vereinigtes Königreich")},
		},
		"city": mmdbtype.Map{
			"names": mmdbtype.Map{"en": mmdbtype.String("  London ")},
		},
	}))

	path := filepath.Join(t.TempDir(), "city.mmdb")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = tree.WriteTo(f)
	require.NoError(t, err)
	return path
}

func TestMaxMind_Lookup(t *testing.T) {
	m, err := OpenMaxMind(writeCityDB(t))
	require.NoError(t, err)
	defer m.Close()

	var asked string
	m.lookup = func(_ context.Context, host string) ([]net.IPAddr, error) {
		asked = host
		return []net.IPAddr{{IP: net.ParseIP("81.2.69.142")}}, nil
	}

	info, err := m.Lookup(context.Background(), "81.2.69.160")
	require.NoError(t, err)
	assert.Equal(t, model.GeoInfo{Country: "United Kingdom", City: "London"}, info)
	assert.Empty(t, asked, "literal addresses skip resolution")

	info, err = m.Lookup(context.Background(), "proxy.example")
	require.NoError(t, err)
	assert.Equal(t, "proxy.example", asked)
	assert.Equal(t, "United Kingdom/London", info.String())

	info, err = m.Lookup(context.Background(), "192.0.2.1")
	require.NoError(t, err)
	assert.True(t, info.Empty(), "unknown addresses carry no location")
}
