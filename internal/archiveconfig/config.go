package archiveconfig

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/dustin/go-humanize"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "archivist"

	// DefaultMaxDepth bounds frontier expansion depth from the seed.
	DefaultMaxDepth = 5

	// DefaultMaxPages caps the number of pages admitted into a single
	// session, preventing unbounded crawls of large or generated sites.
	DefaultMaxPages = 200

	// DefaultUserAgent identifies the archival engine in HTTP requests.
	DefaultUserAgent = "Archivist/1.0 (+https://github.com/nao1215/archivist)"

	// DefaultAllowParentLevels is how many path segments above the seed
	// path the Scope Guard admits by default.
	DefaultAllowParentLevels = 1

	// DefaultMaxExternalDepth bounds how many hops past the scope
	// boundary a navigation-classified link may travel under the
	// "limited" navigation policy.
	DefaultMaxExternalDepth = 1

	// DefaultMinContentLength is the minimum word count of a page's
	// extracted text; a page below it is still kept but flagged
	// low-quality.
	DefaultMinContentLength = 50

	// DefaultLinkDensityThreshold and DefaultLinkDensityMinLinks are the
	// link-density classifier's boilerplate thresholds.
	DefaultLinkDensityThreshold = 0.2
	DefaultLinkDensityMinLinks  = 5

	// DefaultSessionBreakAfter is the page count after which the pacing
	// model inserts a longer session break, mirroring reading fatigue.
	DefaultSessionBreakAfter = 50

	// DefaultVariancePercent randomizes computed delays by this percent
	// so fetch timing never looks mechanically uniform.
	DefaultVariancePercent = 30

	// DefaultChunkMaxSize is the assembler's default chunk boundary.
	DefaultChunkMaxSize = "10MB"

	// DefaultMarkdownOverhead and DefaultPDFOverhead scale estimated raw
	// content size to estimated output artifact size.
	DefaultMarkdownOverhead = 1.2
	DefaultPDFOverhead      = 2.5

	// DefaultCompressionLevel is the gzip level applied to cached page
	// bodies when compression is enabled.
	DefaultCompressionLevel = 6

	// DefaultSessionTimeout marks an active session abandoned if it sees
	// no progress for this long; doctor reports it as stale.
	DefaultSessionTimeout = 24 * time.Hour
)

// DefaultBlockedPatterns are the Scope Guard's built-in blocked-technical
// patterns: administrative and machinery paths (login, admin, api
// endpoints, xmlrpc, feed generators) and static asset extensions
// outside the image set. These are rejected before a fetch is ever made,
// regardless of scope, unless overridden by an operator-supplied
// blocked_patterns list.
var DefaultBlockedPatterns = []string{
	"/admin/*", "/wp-admin/*", "/login/*", "/wp-login*", "/logout/*",
	"/signin/*", "/signup/*", "/auth/*", "/api/*", "/xmlrpc.php",
	"/wp-json/*", "/feed/*", "/rss/*", "/atom.xml", "/sitemap.xml",
	"*.css", "*.js", "*.json", "*.xml", "*.zip", "*.tar.gz", "*.exe",
	"*.dmg", "*.pkg",
}

// NavigationPolicy enumerates how the Scope Guard treats candidate URLs
// classified as navigation (menu/nav-area) links.
type NavigationPolicy string

const (
	// NavNone never admits a navigation link that falls outside scope.
	NavNone NavigationPolicy = "none"

	// NavLimited admits out-of-scope navigation links up to
	// MaxExternalDepth hops past the scope boundary.
	NavLimited NavigationPolicy = "limited"

	// NavAll admits any navigation-classified link regardless of scope
	// or depth budget.
	NavAll NavigationPolicy = "all"
)

// Range is an inclusive [Min, Max] bound in seconds, sampled by the
// human-behavior pacing model.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// CrawlingConfig controls frontier expansion and fetch bounds.
type CrawlingConfig struct {
	MaxDepth      int           `yaml:"max_depth"`
	MaxPages      int           `yaml:"max_pages"`
	RequestDelay  time.Duration `yaml:"request_delay"`
	RespectRobots bool          `yaml:"respect_robots"`
	UserAgent     string        `yaml:"user_agent"`
	MaxBodySize   int64         `yaml:"max_body_size"`
}

// PathScopingConfig controls the Scope Guard.
type PathScopingConfig struct {
	Enabled           bool             `yaml:"enabled"`
	AllowParentLevels int              `yaml:"allow_parent_levels"`
	AllowHomepage     bool             `yaml:"allow_homepage"`
	AllowSiblings     bool             `yaml:"allow_siblings"`
	AllowNavigation   NavigationPolicy `yaml:"allow_navigation"`
	MaxExternalDepth  int              `yaml:"max_external_depth"`
	BlockedPatterns   []string         `yaml:"blocked_patterns,omitempty"`
}

// ContentConfig controls the extractor and classifier.
type ContentConfig struct {
	IncludeMenus          bool    `yaml:"include_menus"`
	IncludeImages         bool    `yaml:"include_images"`
	RemoveImages          bool    `yaml:"remove_images"`
	MinContentLength      int     `yaml:"min_content_length"`
	IncludeMetadata       bool    `yaml:"include_metadata"`
	LinkDensityThreshold  float64 `yaml:"link_density_threshold"`
	LinkDensityMinLinks   int     `yaml:"link_density_min_links"`
}

// HumanBehaviorConfig controls the polite fetcher's pacing model.
type HumanBehaviorConfig struct {
	BaseReadingTime      Range         `yaml:"base_reading_time"`
	NavigationDecision    Range         `yaml:"navigation_decision"`
	VariancePercent       int           `yaml:"variance_percent"`
	SessionBreakAfter     int           `yaml:"session_break_after"`
	SessionBreakDuration  Range         `yaml:"session_break_duration"`
	WeekendFactor         float64       `yaml:"weekend_factor"`
	FatigueFactor         float64       `yaml:"fatigue_factor"`
	ComplexityMultiplier  float64       `yaml:"complexity_multiplier"`
	MinimumDelay          time.Duration `yaml:"minimum_delay"`
	MaximumDelay          time.Duration `yaml:"maximum_delay"`
	RespectBusinessHours  bool          `yaml:"respect_business_hours"`
}

// PDFConfig controls the PDF assembler variant.
type PDFConfig struct {
	OutputFilename string `yaml:"output_filename"`
	PageSize       string `yaml:"page_size"`
	Orientation    string `yaml:"orientation"`
	IncludeTOC     bool   `yaml:"include_toc"`
}

// MarkdownConfig controls the Markdown assembler variant.
type MarkdownConfig struct {
	OutputFilename string `yaml:"output_filename"`
	MultiFile      bool   `yaml:"multi_file"`
	IncludeTOC     bool   `yaml:"include_toc"`
}

// CleanupSettings bounds cache.AutoCleanup's retention policy.
type CleanupSettings struct {
	MaxAgeDays    int `yaml:"max_age_days"`
	KeepCompleted int `yaml:"keep_completed"`
}

// CacheConfig controls the session cache.
type CacheConfig struct {
	Enabled             bool            `yaml:"enabled"`
	Directory           string          `yaml:"directory"`
	Compression         bool            `yaml:"compression"`
	CompressionLevel    int             `yaml:"compression_level"`
	MaxSessions         int             `yaml:"max_sessions"`
	AutoCleanup         bool            `yaml:"auto_cleanup"`
	Cleanup             CleanupSettings `yaml:"cleanup_settings"`
	SaveFrequency       int             `yaml:"save_frequency"`
	SessionTimeoutHours int             `yaml:"session_timeout_hours"`
}

// SizeEstimation scales estimated raw content size to estimated artifact
// size per output format, for pre-flight chunk-count estimation.
type SizeEstimation struct {
	MarkdownOverhead float64 `yaml:"markdown_overhead"`
	PDFOverhead      float64 `yaml:"pdf_overhead"`
}

// ChunkingConfig controls the assembler's size/page chunker.
type ChunkingConfig struct {
	DefaultMaxSize string         `yaml:"default_max_size"`
	SizeEstimation SizeEstimation `yaml:"size_estimation"`
}

// Config is the canonical configuration value consumed by every
// component of the archival engine. It is constructed once, validated,
// and passed explicitly through constructors; nothing reads
// configuration from a package-level global.
//
// Design decision: grouped into sub-structs matching the on-disk YAML
// sections one-to-one, rather than one flat struct, because the section
// names (crawling, path_scoping, content, human_behavior, ...) are
// independently meaningful and are edited independently by operators.
type Config struct {
	Crawling      CrawlingConfig      `yaml:"crawling"`
	PathScoping   PathScopingConfig   `yaml:"path_scoping"`
	Content       ContentConfig       `yaml:"content"`
	HumanBehavior HumanBehaviorConfig `yaml:"human_behavior"`
	PDF           PDFConfig           `yaml:"pdf"`
	Markdown      MarkdownConfig      `yaml:"markdown"`
	Cache         CacheConfig         `yaml:"cache"`
	Chunking      ChunkingConfig      `yaml:"chunking"`

	// ConfigFilePath is the path the configuration was loaded from,
	// empty if defaults were used without a file.
	ConfigFilePath string `yaml:"-"`

	// SiteConfigs holds per-host overrides. LoadConfig does not populate
	// it; LoadHostOverrides reads an override file separately.
	SiteConfigs *File `yaml:"-"`
}

// NewConfig returns a Config populated with the documented defaults.
func NewConfig() *Config {
	return &Config{
		Crawling: CrawlingConfig{
			MaxDepth:      DefaultMaxDepth,
			MaxPages:      DefaultMaxPages,
			RequestDelay:  2 * time.Second,
			RespectRobots: true,
			UserAgent:     DefaultUserAgent,
			MaxBodySize:   5 * 1024 * 1024,
		},
		PathScoping: PathScopingConfig{
			Enabled:           true,
			AllowParentLevels: DefaultAllowParentLevels,
			AllowHomepage:     true,
			AllowSiblings:     true,
			AllowNavigation:   NavLimited,
			MaxExternalDepth:  DefaultMaxExternalDepth,
			BlockedPatterns:   append([]string(nil), DefaultBlockedPatterns...),
		},
		Content: ContentConfig{
			IncludeMenus:         false,
			IncludeImages:        true,
			RemoveImages:         false,
			MinContentLength:     DefaultMinContentLength,
			IncludeMetadata:      true,
			LinkDensityThreshold: DefaultLinkDensityThreshold,
			LinkDensityMinLinks:  DefaultLinkDensityMinLinks,
		},
		HumanBehavior: HumanBehaviorConfig{
			BaseReadingTime:      Range{Min: 2, Max: 8},
			NavigationDecision:   Range{Min: 1, Max: 3},
			VariancePercent:      DefaultVariancePercent,
			SessionBreakAfter:    DefaultSessionBreakAfter,
			SessionBreakDuration: Range{Min: 30, Max: 120},
			WeekendFactor:        1.0,
			FatigueFactor:        0.1,
			ComplexityMultiplier: 1.5,
			MinimumDelay:         500 * time.Millisecond,
			MaximumDelay:         30 * time.Second,
			RespectBusinessHours: false,
		},
		PDF: PDFConfig{
			OutputFilename: "archive.pdf",
			PageSize:       "A4",
			Orientation:    "portrait",
			IncludeTOC:     true,
		},
		Markdown: MarkdownConfig{
			OutputFilename: "archive.md",
			MultiFile:      false,
			IncludeTOC:     true,
		},
		Cache: CacheConfig{
			Enabled:             true,
			Directory:           XDGCacheDir(),
			Compression:         true,
			CompressionLevel:    DefaultCompressionLevel,
			MaxSessions:         100,
			AutoCleanup:         false,
			Cleanup:             CleanupSettings{MaxAgeDays: 30, KeepCompleted: 10},
			SaveFrequency:       1,
			SessionTimeoutHours: int(DefaultSessionTimeout.Hours()),
		},
		Chunking: ChunkingConfig{
			DefaultMaxSize: DefaultChunkMaxSize,
			SizeEstimation: SizeEstimation{
				MarkdownOverhead: DefaultMarkdownOverhead,
				PDFOverhead:      DefaultPDFOverhead,
			},
		},
	}
}

// XDGDataDir returns the XDG data directory for the archival engine.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for the archival engine.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for the archival engine.
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// ParseSize parses a human-readable size string such as "10MB" into a
// byte count.
func ParseSize(s string) (uint64, error) {
	return humanize.ParseBytes(s)
}

// FormatSize renders a byte count as a human-readable string, e.g.
// "10 MB", for progress and doctor output.
func FormatSize(bytes int64) string {
	return humanize.Bytes(uint64(bytes))
}

// Validate checks the configuration for internally consistent values
// and returns the first problem found.
func (c *Config) Validate() error {
	if c.Crawling.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if c.Crawling.MaxPages < 0 {
		return ErrInvalidMaxPages
	}
	if c.Crawling.RequestDelay < 0 {
		return ErrInvalidRequestDelay
	}
	if c.Crawling.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	switch c.PathScoping.AllowNavigation {
	case NavNone, NavLimited, NavAll:
	default:
		return ErrInvalidNavigationPolicy
	}
	if c.PathScoping.MaxExternalDepth < 0 {
		return ErrInvalidMaxExternalDepth
	}

	if c.Content.MinContentLength < 0 {
		return ErrInvalidMinContentLength
	}

	if c.Cache.CompressionLevel < 1 || c.Cache.CompressionLevel > 9 {
		return ErrInvalidCompressionLevel
	}

	if c.Chunking.DefaultMaxSize != "" {
		if _, err := ParseSize(c.Chunking.DefaultMaxSize); err != nil {
			return ErrInvalidChunkSize
		}
	}

	switch c.PDF.Orientation {
	case "", "portrait", "landscape":
	default:
		return ErrInvalidOrientation
	}

	return nil
}
