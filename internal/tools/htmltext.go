// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tools

import (
	"regexp"
	"strings"
)

var (
	reScript     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	reStyle      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	reNav        = regexp.MustCompile(`(?is)<nav[^>]*>.*?</nav>`)
	reHeader     = regexp.MustCompile(`(?is)<header[^>]*>.*?</header>`)
	reFooter     = regexp.MustCompile(`(?is)<footer[^>]*>.*?</footer>`)
	reAside      = regexp.MustCompile(`(?is)<aside[^>]*>.*?</aside>`)
	reTags       = regexp.MustCompile(`<[^>]+>`)
	reWhitespace = regexp.MustCompile(`[ \t]+`)
	reBlankLines = regexp.MustCompile(`\n{3,}`)
	reTitle      = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	reAnchor     = regexp.MustCompile(`(?is)<a[^>]+href=['"]([^'"]+)['"]`)
)

// stripHTML removes scripts, styles, and page chrome, then all tags, and
// normalizes whitespace.
func stripHTML(html string) string {
	s := reScript.ReplaceAllString(html, "")
	s = reStyle.ReplaceAllString(s, "")
	s = reNav.ReplaceAllString(s, "")
	s = reHeader.ReplaceAllString(s, "")
	s = reFooter.ReplaceAllString(s, "")
	s = reAside.ReplaceAllString(s, "")
	s = reTags.ReplaceAllString(s, " ")
	s = decodeEntities(s)

	s = reWhitespace.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	var out []string
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	s = strings.Join(out, "\n")
	s = reBlankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// cleanHTML removes tags and entities from an inline fragment.
func cleanHTML(s string) string {
	s = reTags.ReplaceAllString(s, "")
	return strings.TrimSpace(decodeEntities(s))
}

// decodeEntities decodes the entities that commonly appear in result pages.
func decodeEntities(s string) string {
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", "\"")
	s = strings.ReplaceAll(s, "&#39;", "'")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	return s
}

// pageTitle extracts the <title> text, or "" when absent.
func pageTitle(html string) string {
	m := reTitle.FindStringSubmatch(html)
	if m == nil {
		return ""
	}
	return cleanHTML(m[1])
}

// pageLinks extracts absolute links from anchors, deduplicated, capped at max.
func pageLinks(html string, max int) []string {
	seen := make(map[string]bool)
	var links []string
	for _, m := range reAnchor.FindAllStringSubmatch(html, -1) {
		href := strings.TrimSpace(m[1])
		if !strings.HasPrefix(href, "http") || seen[href] {
			continue
		}
		seen[href] = true
		links = append(links, href)
		if len(links) >= max {
			break
		}
	}
	return links
}

// wordCount counts whitespace-separated words.
func wordCount(s string) int {
	return len(strings.Fields(s))
}
