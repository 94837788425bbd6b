package utils

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/oschwald/geoip2-golang"

	"forge/logging"
)

type GeoLocation struct {
	CountryCode string `json:"country_code"`
	Country     string `json:"country"`
	City        string `json:"city,omitempty"`
}

type GeoResolver struct {
	db         *geoip2.Reader
	httpClient *http.Client
	apiURL     string   // fmt pattern taking the IP; empty disables the API fallback
	cache      sync.Map // map[string]GeoLocation
}

const ipAPIURL = "http://ip-api.com/json/%s?fields=status,country,countryCode,city"

// NewGeoResolver never fails: a missing or unreadable database leaves the
// resolver in API-only mode, or in no-op mode when the API fallback is off.
func NewGeoResolver(dbPath string, apiFallback bool) *GeoResolver {
	var db *geoip2.Reader

	if dbPath != "" {
		var err error
		db, err = geoip2.Open(dbPath)
		if err != nil {
			logging.GetSubsystemLogger("geoip").Warn().Err(err).
				Str("path", dbPath).
				Msg("could not open GeoIP database")
			db = nil
		}
	}

	g := &GeoResolver{
		db: db,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
	if apiFallback {
		g.apiURL = ipAPIURL
	}
	return g
}

func (g *GeoResolver) Close() {
	if g != nil && g.db != nil {
		g.db.Close()
	}
}

// Lookup resolves an IP to its country. It is safe on a nil resolver and
// returns ok=false for private, loopback and unparsable addresses.
func (g *GeoResolver) Lookup(ipStr string) (GeoLocation, bool) {
	if g == nil {
		return GeoLocation{}, false
	}

	ip := net.ParseIP(strings.TrimSpace(ipStr))
	if ip == nil || ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() {
		return GeoLocation{}, false
	}
	key := ip.String()

	if val, ok := g.cache.Load(key); ok {
		loc := val.(GeoLocation)
		return loc, loc.CountryCode != ""
	}

	var loc GeoLocation
	found := false

	if g.db != nil {
		record, err := g.db.City(ip)
		if err == nil && record.Country.IsoCode != "" {
			loc = GeoLocation{
				CountryCode: record.Country.IsoCode,
				Country:     record.Country.Names["en"],
				City:        record.City.Names["en"],
			}
			found = true
		}
	}

	if !found && g.apiURL != "" {
		if apiLoc, err := g.fetchFromAPI(key); err == nil {
			loc = *apiLoc
			found = true
		}
	}

	// misses are cached too so a bad address is not retried per request
	g.cache.Store(key, loc)

	return loc, found
}

type ipApiResponse struct {
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	City        string `json:"city"`
	Status      string `json:"status"`
}

func (g *GeoResolver) fetchFromAPI(ip string) (*GeoLocation, error) {
	resp, err := g.httpClient.Get(fmt.Sprintf(g.apiURL, ip))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api error: %d", resp.StatusCode)
	}

	var apiResp ipApiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, err
	}

	if apiResp.Status == "fail" || apiResp.CountryCode == "" {
		return nil, fmt.Errorf("api returned fail status")
	}

	return &GeoLocation{
		CountryCode: apiResp.CountryCode,
		Country:     apiResp.Country,
		City:        apiResp.City,
	}, nil
}
