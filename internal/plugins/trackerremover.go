// SPDX-License-Identifier: MIT
package plugins

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/apimgr/metaseek/internal/engine"
	"github.com/apimgr/metaseek/internal/executor"
)

var trackingParams = map[string]bool{
	"utm_source": true, "utm_medium": true, "utm_campaign": true,
	"utm_term": true, "utm_content": true, "gclid": true, "gclsrc": true,
	"fbclid": true, "fb_action_ids": true, "fb_action_types": true,
	"fb_source": true, "fb_ref": true,
	"msclkid":       true,
	"twclid":        true,
	"mc_eid":        true, "mc_cid": true,
	"_hsenc": true, "_hsmi": true, "__hstc": true, "__hsfp": true, "hsCtaTracking": true,
	"s_kwcid":     true,
	"ref":         true,
	"ref_":        true,
	"source":      true,
	"click_id":    true,
	"campaign_id": true,
	"ad_id":       true,
}

var trackingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^utm_.*$`),
	regexp.MustCompile(`^_ga.*$`),
}

// TrackerRemoverPlugin strips known tracking query parameters from result
// URLs via the OnResult hook.
//
// Grounded on original_source/src/plugins/tracker_remover.rs.
type TrackerRemoverPlugin struct {
	*Base
}

// NewTrackerRemoverPlugin returns the tracker-URL-remover plugin.
func NewTrackerRemoverPlugin() *TrackerRemoverPlugin {
	return &TrackerRemoverPlugin{
		Base: NewBase("tracker_url_remover", "Tracker URL Remover", "Remove tracking parameters from result URLs", true),
	}
}

// OnResult rewrites r.URL with tracking parameters removed. It always
// allows the result through.
func (p *TrackerRemoverPlugin) OnResult(q *executor.SearchQuery, r *engine.Result) bool {
	r.URL = cleanTrackedURL(r.URL)
	return true
}

func cleanTrackedURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	query := parsed.Query()
	for key := range query {
		if isTrackingParam(key) {
			query.Del(key)
		}
	}
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func isTrackingParam(param string) bool {
	if trackingParams[param] {
		return true
	}
	for _, pattern := range trackingPatterns {
		if pattern.MatchString(param) {
			return true
		}
	}
	return false
}
