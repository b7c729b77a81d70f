package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"github.com/nao1215/archivist/internal/archiveconfig"
)

// relevantConfig is the subset of Config that affects crawl/extraction
// results and therefore cache compatibility. Ambient settings (logging
// verbosity, output paths, pacing jitter) are deliberately excluded so
// two runs that only differ in those don't get treated as incompatible.
type relevantConfig struct {
	Crawling    archiveconfig.CrawlingConfig    `json:"crawling"`
	Content     archiveconfig.ContentConfig     `json:"content"`
	PathScoping archiveconfig.PathScopingConfig `json:"path_scoping"`
}

// ConfigDigest returns a stable hash of the parts of cfg that affect
// what a crawl admits and extracts, used both as part of a new session's
// ID and to decide whether an existing session can be resumed under the
// current configuration.
func ConfigDigest(cfg *archiveconfig.Config) string {
	relevant := relevantConfig{
		Crawling:    cfg.Crawling,
		Content:     cfg.Content,
		PathScoping: cfg.PathScoping,
	}
	data, err := json.Marshal(relevant)
	if err != nil {
		// Marshal of a plain struct of scalars/slices cannot fail; if it
		// somehow did, still return a digest so callers don't need a
		// second error path for something this unlikely.
		data = []byte(err.Error())
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

var nonWordRunRegexp = regexp.MustCompile(`[^a-z0-9]+`)

// hostSlug turns a base URL's host into a filesystem-safe, underscore
// separated component of a session ID.
func hostSlug(baseURL string) string {
	parsed, err := url.Parse(baseURL)
	host := ""
	if err == nil {
		host = parsed.Hostname()
	}
	if host == "" {
		host = baseURL
	}
	host = strings.ToLower(strings.TrimPrefix(host, "www."))
	host = nonWordRunRegexp.ReplaceAllString(host, "_")
	host = strings.Trim(host, "_")
	if host == "" {
		host = "site"
	}
	return host
}
