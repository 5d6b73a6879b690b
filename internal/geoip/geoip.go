// SPDX-License-Identifier: MIT
package geoip

import (
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/oschwald/maxminddb-golang"

	"github.com/apimgr/metaseek/internal/config"
)

// countryRecord is the subset of a MaxMind Country/City DB record
// this lookup needs.
type countryRecord struct {
	Country struct {
		ISOCode string            `maxminddb:"iso_code"`
		Names   map[string]string `maxminddb:"names"`
	} `maxminddb:"country"`
}

// Service resolves a requester's country from a MaxMind DB and
// decides whether that country is on the deny list, so the HTTP
// front end can escalate safesearch before dispatching a search.
type Service struct {
	mu         sync.RWMutex
	cfg        config.GeoIPConfig
	db         *maxminddb.Reader
	lastReload time.Time
}

// New opens the configured MMDB file. A disabled service or an empty
// mmdb_path makes every lookup a no-op rather than an error, since GeoIP
// is an optional enrichment; a configured file that cannot be opened is
// returned as an error.
func New(cfg config.GeoIPConfig) (*Service, error) {
	s := &Service{cfg: cfg}
	if !cfg.Enabled || cfg.MMDBPath == "" {
		return s, nil
	}
	if err := s.reload(); err != nil {
		return nil, fmt.Errorf("failed to open geoip database: %w", err)
	}
	return s, nil
}

func (s *Service) reload() error {
	db, err := maxminddb.Open(s.cfg.MMDBPath)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.db != nil {
		s.db.Close()
	}
	s.db = db
	s.lastReload = time.Now()
	s.mu.Unlock()
	return nil
}

// Reload re-opens the database file so a newer copy placed at the same
// path is picked up; the scheduled geoip-refresh job calls it.
func (s *Service) Reload() error {
	if !s.cfg.Enabled || s.cfg.MMDBPath == "" {
		return nil
	}
	return s.reload()
}

// CountryCode returns the ISO country code for ipStr, or "" if GeoIP
// is disabled, the database is unavailable, or the address can't be
// classified (private ranges, parse failure, no match).
func (s *Service) CountryCode(ipStr string) string {
	if !s.cfg.Enabled {
		return ""
	}
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return ""
	}

	s.mu.RLock()
	db := s.db
	s.mu.RUnlock()
	if db == nil {
		return ""
	}

	var record countryRecord
	if err := db.Lookup(ip, &record); err != nil {
		return ""
	}
	return strings.ToUpper(record.Country.ISOCode)
}

// IsDenied reports whether ipStr resolves to a country configured in
// deny_countries.
func (s *Service) IsDenied(ipStr string) bool {
	if len(s.cfg.DenyCountries) == 0 {
		return false
	}
	code := s.CountryCode(ipStr)
	if code == "" {
		return false
	}
	for _, denied := range s.cfg.DenyCountries {
		if strings.EqualFold(denied, code) {
			return true
		}
	}
	return false
}

// LastReload returns when the database was last (re)opened.
func (s *Service) LastReload() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastReload
}

// Close closes the underlying database reader, if open.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
