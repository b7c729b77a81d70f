// Package scope implements the Scope Guard: the admission-time decision
// of whether a candidate URL belongs to the owner-scoped subgraph being
// archived. It keeps a crawl anchored to the seed's section of a site
// instead of wandering across an entire domain.
package scope

import (
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/nao1215/archivist/internal/archiveconfig"
)

// Verdict is the result of checking one candidate URL against the guard.
type Verdict struct {
	// Allowed reports whether the URL may be admitted.
	Allowed bool

	// Reason is a short, human-readable explanation, useful in doctor
	// and verbose-log output.
	Reason string
}

func allow(reason string) Verdict  { return Verdict{Allowed: true, Reason: reason} }
func block(reason string) Verdict  { return Verdict{Allowed: false, Reason: reason} }

// Guard decides whether candidate URLs fall within the scope rooted at a
// seed URL. A Guard is built once per session from the seed and the
// path_scoping configuration section, then consulted for every candidate
// the frontier discovers.
//
// Guard is safe for concurrent use: the only mutable state is the
// per-path external-navigation-depth tracker, guarded by a mutex.
type Guard struct {
	cfg archiveconfig.PathScopingConfig

	baseHost     string
	startingPath string
	allowedPaths []string // sorted longest-first for prefix matching
	siblingRoot  string
	hasSiblings  bool

	mu            sync.Mutex
	externalDepth map[string]int
}

// New builds a Guard for a crawl rooted at seedURL, applying cfg's
// boundaries.
func New(seedURL string, cfg archiveconfig.PathScopingConfig) (*Guard, error) {
	parsed, err := url.Parse(seedURL)
	if err != nil {
		return nil, err
	}

	g := &Guard{
		cfg:           cfg,
		baseHost:      strings.ToLower(parsed.Host),
		startingPath:  normalizePath(parsed.Path),
		externalDepth: make(map[string]int),
	}
	g.allowedPaths = g.computeAllowedPaths()
	g.siblingRoot, g.hasSiblings = g.computeSiblingRoot()

	return g, nil
}

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if p != "/" {
		p = strings.TrimSuffix(p, "/")
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// computeAllowedPaths walks upward from the starting path by
// AllowParentLevels, matching the original scoping manager's
// parent-level expansion.
func (g *Guard) computeAllowedPaths() []string {
	if !g.cfg.Enabled {
		return []string{"/"}
	}

	allowed := map[string]struct{}{g.startingPath: {}}
	current := g.startingPath

	for level := 0; level <= g.cfg.AllowParentLevels; level++ {
		if current == "/" {
			break
		}
		current = strings.TrimSuffix(current, "/")
		parts := strings.Split(current, "/")
		parent := strings.Join(parts[:len(parts)-1], "/")
		if parent == "" {
			parent = "/"
		}
		allowed[parent] = struct{}{}
		current = parent
	}

	if g.cfg.AllowHomepage {
		allowed["/"] = struct{}{}
	}

	paths := make([]string, 0, len(allowed))
	for p := range allowed {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool { return len(paths[i]) > len(paths[j]) })

	return paths
}

func (g *Guard) computeSiblingRoot() (string, bool) {
	if !g.cfg.AllowSiblings || g.startingPath == "/" {
		return "", false
	}
	parts := strings.Split(strings.Trim(g.startingPath, "/"), "/")
	if len(parts) <= 1 {
		return "", false
	}
	parent := "/" + strings.Join(parts[:len(parts)-1], "/")
	return parent, true
}

// Check evaluates candidate against the guard's boundaries. depth is the
// candidate's discovery depth, used only when isNavigation is true and
// the policy is "limited".
func (g *Guard) Check(candidate string, isNavigation bool, depth int) Verdict {
	if !g.cfg.Enabled {
		return allow("scoping disabled")
	}

	for _, blocked := range g.cfg.BlockedPatterns {
		if matchPattern(blocked, candidate) {
			return block("matches blocked pattern: " + blocked)
		}
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return block("unparseable URL")
	}
	if !strings.EqualFold(parsed.Host, g.baseHost) {
		return block("different host")
	}

	path := normalizePath(parsed.Path)

	if path == "/" && g.cfg.AllowHomepage {
		return allow("homepage allowed")
	}

	for _, allowedPath := range g.allowedPaths {
		if allowedPath == "/" {
			continue // homepage handled above; root never matches as a prefix
		}
		if strings.HasPrefix(path, allowedPath) {
			return allow("within allowed scope: " + allowedPath)
		}
	}

	if isNavigation {
		return g.checkNavigation(path, depth)
	}

	if g.hasSiblings && strings.HasPrefix(path, g.siblingRoot) && path != g.siblingRoot {
		rel := strings.Trim(strings.TrimPrefix(path, g.siblingRoot), "/")
		if strings.Count(rel, "/") <= 1 {
			return allow("sibling path under: " + g.siblingRoot)
		}
	}

	return block("outside scope: " + path)
}

// checkNavigation applies the navigation policy. NavLimited mirrors the
// distilled behavior: an out-of-scope navigation link is admitted while
// its tracked external depth stays within MaxExternalDepth. NavAll is the
// unconditional top the original left unspecified: any navigation link is
// admitted regardless of scope or depth.
func (g *Guard) checkNavigation(path string, depth int) Verdict {
	switch g.cfg.AllowNavigation {
	case archiveconfig.NavNone:
		return block("navigation links disabled")
	case archiveconfig.NavAll:
		return allow("navigation links unconditionally allowed")
	case archiveconfig.NavLimited:
		g.mu.Lock()
		defer g.mu.Unlock()

		external, seen := g.externalDepth[path]
		if !seen {
			external = depth
		}
		if external <= g.cfg.MaxExternalDepth {
			g.externalDepth[path] = external
			return allow("navigation link within external depth limit")
		}
		return block("navigation link exceeds external depth limit")
	default:
		return block("unknown navigation policy")
	}
}

// IsLikelyNavigation reports whether a candidate URL and the textual
// context it was discovered in (e.g. the enclosing element's class or
// id attribute) look like a menu/nav-area link rather than document
// content.
func IsLikelyNavigation(candidate, linkContext string) bool {
	parsed, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	path := normalizePath(parsed.Path)

	switch path {
	case "/", "/home", "/main", "/index", "/about", "/contact", "/support", "/sitemap":
		return true
	}
	if strings.HasPrefix(path, "/sitemap") {
		return true
	}

	if linkContext != "" {
		lower := strings.ToLower(linkContext)
		for _, marker := range []string{"nav", "navigation", "menu", "header", "footer"} {
			if strings.Contains(lower, marker) {
				return true
			}
		}
	}

	return false
}

// matchPattern reports whether candidate matches a glob-style blocked
// pattern, evaluated against the URL's path.
func matchPattern(pattern, candidate string) bool {
	parsed, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	path := parsed.Path
	if path == "" {
		path = "/"
	}

	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	if strings.HasPrefix(pattern, "*.") {
		ext := strings.TrimPrefix(pattern, "*")
		if strings.HasSuffix(path, ext) {
			return true
		}
	}

	if matched, err := filepath.Match(pattern, path); err == nil && matched {
		return true
	}

	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		if matched, err := filepath.Match(pattern, filepath.Base(path)); err == nil && matched {
			return true
		}
	}

	return false
}

// Summary describes the guard's current boundaries, for doctor reports
// and verbose startup logging.
type Summary struct {
	Enabled          bool
	StartingPath     string
	AllowedPaths     []string
	AllowSiblings    bool
	NavigationPolicy archiveconfig.NavigationPolicy
	MaxExternalDepth int
}

// Describe returns a Summary of the guard's configuration.
func (g *Guard) Describe() Summary {
	paths := make([]string, len(g.allowedPaths))
	copy(paths, g.allowedPaths)
	sort.Strings(paths)

	return Summary{
		Enabled:          g.cfg.Enabled,
		StartingPath:     g.startingPath,
		AllowedPaths:     paths,
		AllowSiblings:    g.cfg.AllowSiblings,
		NavigationPolicy: g.cfg.AllowNavigation,
		MaxExternalDepth: g.cfg.MaxExternalDepth,
	}
}
