package classify

import (
	"net/url"
	"path"
	"strings"
)

const unknownHost = "Unknown"

var debridHosts = []struct {
	marker string
	label  string
}{
	{"real-debrid", "Real-Debrid"},
	{"realdebrid", "Real-Debrid"},
	{"alldebrid", "AllDebrid"},
	{"premiumize", "Premiumize"},
	{"torbox", "TorBox"},
	{"easynews", "Easynews"},
}

// HostLabel returns a display name for the host serving rawURL.
func HostLabel(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Hostname() == "" {
		return unknownHost
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	for _, d := range debridHosts {
		if strings.Contains(host, d.marker) {
			return d.label
		}
	}
	return host
}

// needsRelay reports whether a stream URL cannot be played directly by a browser.
func (c *Classifier) needsRelay(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if strings.EqualFold(path.Ext(u.Path), ".mkv") {
		return true
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range c.relayHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	for _, marker := range c.relayPathMarkers {
		if strings.Contains(u.Path, marker) {
			return true
		}
	}
	return false
}

func (c *Classifier) relayURL(rawURL string) string {
	sep := "?"
	if strings.Contains(c.relayBase, "?") {
		sep = "&"
	}
	return c.relayBase + sep + "url=" + url.QueryEscape(rawURL)
}
