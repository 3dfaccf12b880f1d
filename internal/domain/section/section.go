// Package section recovers embedded source payloads from TwinCAT XML
// containers without validating the surrounding XML.
package section

import (
	"regexp"
	"strings"
	"sync"
)

// Tags of the two payload sections every tracked unit may carry.
const (
	TagDeclaration    = "Declaration"
	TagImplementation = "ST"
)

const (
	cdataOpen  = "<![CDATA["
	cdataClose = "]]>"
)

var (
	mu        sync.RWMutex
	elements  = map[string]*regexp.Regexp{}
	nameAttrs = map[string]*regexp.Regexp{}
)

// Extract returns the CDATA payloads of every <tag> element in document
// order, joined with a line break. A missing or malformed section yields "".
// An element ends at the first </tag>, so a malformed block never swallows
// the blocks after it.
func Extract(doc, tag string) string {
	re := compiled(elements, tag, func(t string) string {
		return `(?s)<` + t + `>(.*?)</` + t + `>`
	})
	var parts []string
	for _, m := range re.FindAllStringSubmatch(doc, -1) {
		if payload, ok := cdata(m[1]); ok {
			parts = append(parts, payload)
		}
	}
	return strings.Join(parts, "\n")
}

// cdata unwraps an element body that is exactly one CDATA section, ignoring
// surrounding whitespace.
func cdata(body string) (string, bool) {
	body = strings.TrimSpace(body)
	if !strings.HasPrefix(body, cdataOpen) || !strings.HasSuffix(body, cdataClose) ||
		len(body) < len(cdataOpen)+len(cdataClose) {
		return "", false
	}
	payload := body[len(cdataOpen) : len(body)-len(cdataClose)]
	if strings.Contains(payload, cdataClose) || strings.Contains(payload, cdataOpen) {
		return "", false
	}
	return payload, true
}

// RootName returns the Name attribute of the first <element ...> tag, or ""
// when there is none.
func RootName(doc, element string) string {
	re := compiled(nameAttrs, element, func(e string) string {
		return `<` + e + `\s+[^>]*?\bName="([^"]*)"`
	})
	if m := re.FindStringSubmatch(doc); m != nil {
		return m[1]
	}
	return ""
}

func compiled(cache map[string]*regexp.Regexp, key string, pattern func(string) string) *regexp.Regexp {
	mu.RLock()
	re, ok := cache[key]
	mu.RUnlock()
	if ok {
		return re
	}

	re = regexp.MustCompile(pattern(regexp.QuoteMeta(key)))
	mu.Lock()
	cache[key] = re
	mu.Unlock()
	return re
}
