package config

import (
	"net/url"
	"path"
	"strings"
)

// ScopeRule allow-lists one domain suffix, optionally restricted to a path
// prefix. A host matches when it equals the suffix or ends with it on a dot
// boundary, so ".ics.uci.edu" matches "www.ics.uci.edu" and "ics.uci.edu"
// but never "ics.uci.edu.attacker.com".
type ScopeRule struct {
	// Suffix is the domain suffix, with or without a leading dot.
	Suffix string `yaml:"suffix"`

	// PathPrefix, when set, additionally requires the URL path to start
	// with this prefix.
	PathPrefix string `yaml:"pathPrefix,omitempty"`
}

// DefaultScopeRules returns the reference crawl scope: the four ICS-related
// UCI domains plus the today.uci.edu section dedicated to the school.
func DefaultScopeRules() []ScopeRule {
	return []ScopeRule{
		{Suffix: ".ics.uci.edu"},
		{Suffix: ".cs.uci.edu"},
		{Suffix: ".informatics.uci.edu"},
		{Suffix: ".stat.uci.edu"},
		{Suffix: "today.uci.edu", PathPrefix: "/department/information_computer_sciences"},
	}
}

// DefaultBannedExtensions returns the path extensions excluded from the
// crawl: stylesheets, scripts, images, audio, video, documents, and
// archives.
func DefaultBannedExtensions() []string {
	return []string{
		"css", "js",
		"bmp", "gif", "jpg", "jpeg", "ico", "png", "tif", "tiff",
		"mp2", "mp3", "mp4", "avi", "mov",
		"pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx",
		"zip", "rar", "gz", "exe", "tar",
	}
}

// ScopePolicy is the compiled form of the scope rules and banned-extension
// list, ready for per-URL checks. Compile once with NewScopePolicy and share
// between the extractor and the frontier replay; the policy is read-only
// after construction.
type ScopePolicy struct {
	rules  []compiledRule
	banned map[string]struct{}
}

// compiledRule is a ScopeRule with the suffix lowercased and the leading dot
// stripped for boundary matching.
type compiledRule struct {
	domain     string
	pathPrefix string
}

// NewScopePolicy compiles scope rules and banned extensions into a policy.
// Rules with an empty suffix are ignored; extensions are matched without the
// leading dot, case-insensitively.
func NewScopePolicy(rules []ScopeRule, bannedExtensions []string) *ScopePolicy {
	p := &ScopePolicy{
		banned: make(map[string]struct{}, len(bannedExtensions)),
	}

	for _, r := range rules {
		domain := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(r.Suffix), "."))
		if domain == "" {
			continue
		}
		p.rules = append(p.rules, compiledRule{
			domain:     domain,
			pathPrefix: r.PathPrefix,
		})
	}

	for _, ext := range bannedExtensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext == "" {
			continue
		}
		p.banned[ext] = struct{}{}
	}

	return p
}

// Contains reports whether the URL's host and path fall inside the policy:
// the host matches an allow-listed suffix (honoring any path-prefix
// restriction) and the path does not end in a banned extension.
func (p *ScopePolicy) Contains(u *url.URL) bool {
	return p.HostAllowed(u.Hostname(), u.Path) && !p.ExtensionBanned(u.Path)
}

// HostAllowed reports whether host falls under one of the allow-listed
// domain suffixes. Matching is on dot boundaries: a rule domain D matches
// host H when H == D or H ends with "."+D. Rules carrying a path prefix
// match only when urlPath starts with that prefix.
func (p *ScopePolicy) HostAllowed(host, urlPath string) bool {
	host = strings.ToLower(host)
	for _, r := range p.rules {
		if host != r.domain && !strings.HasSuffix(host, "."+r.domain) {
			continue
		}
		if r.pathPrefix != "" && !strings.HasPrefix(urlPath, r.pathPrefix) {
			continue
		}
		return true
	}
	return false
}

// ExtensionBanned reports whether the path ends in a banned extension.
// The comparison is case-insensitive and uses only the final path segment's
// extension, so "/papers/x.PDF" is banned while "/pdf/index.html" is not.
func (p *ScopePolicy) ExtensionBanned(urlPath string) bool {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(urlPath), "."))
	if ext == "" {
		return false
	}
	_, banned := p.banned[ext]
	return banned
}
