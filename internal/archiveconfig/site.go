package archiveconfig

// HostOverride holds per-host crawl overrides layered onto the global
// configuration. A single archive session usually stays within one host,
// but the seed's scope guard can admit siblings and limited navigation
// onto neighboring hosts, each of which may need its own cookie, headers,
// or depth cap.
type HostOverride struct {
	// Cookie is an HTTP cookie to send when fetching from this host.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this host.
	Headers map[string]string `yaml:"headers,omitempty"`

	// MaxDepth overrides the global crawl depth for this host. Zero means
	// use the global CrawlingConfig.MaxDepth.
	MaxDepth int `yaml:"max_depth,omitempty"`

	// IgnorePatterns are URL patterns to skip for this host, matched
	// against the URL path using glob syntax.
	IgnorePatterns []string `yaml:"ignore_patterns,omitempty"`

	// FollowPatterns restricts crawling to only URLs on this host
	// matching one of these glob patterns, if non-empty.
	FollowPatterns []string `yaml:"follow_patterns,omitempty"`
}

// File is the on-disk shape of the optional per-host overrides file
// loaded alongside the main configuration.
type File struct {
	// Hosts maps a hostname (no scheme, e.g. "docs.example.org") to its
	// overrides.
	Hosts map[string]HostOverride `yaml:"hosts,omitempty"`

	// Defaults holds overrides applied to every host unless a host-specific
	// entry supplies its own value.
	Defaults HostOverride `yaml:"defaults,omitempty"`
}

// ForHost returns the effective overrides for host, merging any
// host-specific entry onto Defaults. Unset fields on the host entry fall
// back to Defaults; Headers merge with the host entry winning on key
// collision, while a non-empty IgnorePatterns or FollowPatterns on the
// host entry replaces the default list rather than adding to it.
func (f *File) ForHost(host string) HostOverride {
	result := f.Defaults

	site, ok := f.Hosts[host]
	if !ok {
		return result
	}

	if site.Cookie != "" {
		result.Cookie = site.Cookie
	}
	if site.MaxDepth != 0 {
		result.MaxDepth = site.MaxDepth
	}
	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(site.Headers))
		}
		for k, v := range site.Headers {
			result.Headers[k] = v
		}
	}
	if len(site.IgnorePatterns) > 0 {
		result.IgnorePatterns = site.IgnorePatterns
	}
	if len(site.FollowPatterns) > 0 {
		result.FollowPatterns = site.FollowPatterns
	}

	return result
}
