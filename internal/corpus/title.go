package corpus

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Metadata key orderings for citation rendering. Earlier keys win.
var (
	metaURLKeys = []string{
		"source_url", "url", "document_url", "page_url", "permalink", "href", "link",
		"web_url", "bill_url", "pdf_url", "html_url", "source",
	}
	metaDateKeys          = []string{"journal_date", "date", "published", "pub_date", "created", "updated_at"}
	metaTitleFallbackKeys = []string{"title", "doc_title", "filename", "name", "heading", "document_title", "id", "doc_id", "slug"}
)

var (
	extRe = regexp.MustCompile(`\.[A-Za-z0-9]+$`)
	// dateTimeRe restores HH:MM only when anchored to a full date, so the
	// MM-DD inside a bare YYYY-MM-DD is never rewritten.
	dateTimeRe = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})[ _-](\d{2})[-:](\d{2})`)
	hostRe     = regexp.MustCompile(`^https?://([^/]+)/`)
)

// FirstMeta returns the first non-empty metadata value for the given keys,
// rendered as a string.
func FirstMeta(meta map[string]any, keys []string) string {
	for _, k := range keys {
		v, ok := meta[k]
		if !ok || v == nil {
			continue
		}
		s := fmt.Sprint(v)
		if s != "" {
			return s
		}
	}
	return ""
}

// CitationURL returns the best URL found in the metadata, or "".
func CitationURL(meta map[string]any) string {
	return FirstMeta(meta, metaURLKeys)
}

// CitationDate returns the best date found in the metadata, normalized to
// YYYY-MM-DD when it parses, otherwise returned verbatim.
func CitationDate(meta map[string]any) string {
	d := FirstMeta(meta, metaDateKeys)
	if d == "" {
		return ""
	}
	if len(d) >= 10 {
		if t, err := time.Parse("2006-01-02", d[:10]); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return d
}

// URLHost extracts the lowercased host from the metadata's citation URL.
func URLHost(meta map[string]any) string {
	if m := hostRe.FindStringSubmatch(CitationURL(meta)); m != nil {
		return strings.ToLower(m[1])
	}
	return ""
}

// SlugToTitle turns a file name or slug into a readable title: strips the
// directory and extension, replaces underscores with spaces, and restores
// HH:MM in timestamps while leaving YYYY-MM-DD dates intact.
func SlugToTitle(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Untitled"
	}
	base := filepath.Base(s)
	base = extRe.ReplaceAllString(base, "")
	pretty := strings.TrimSpace(strings.ReplaceAll(base, "_", " "))
	pretty = dateTimeRe.ReplaceAllString(pretty, "$1 $2:$3")
	if pretty == "" || pretty == "." {
		return "Untitled"
	}
	return pretty
}

// ComposeTitle builds a citation title from chunk metadata. Preference
// order: file name, chamber plus bill number, truncated act summary, then
// generic fallback keys. i numbers the citation when nothing else exists.
func ComposeTitle(meta map[string]any, i int) string {
	if fn := stringValue(meta["file_name"]); fn != "" {
		return SlugToTitle(fn)
	}

	chamber := stringValue(meta["chamber"])
	bill := stringValue(meta["bill_number"])
	if chamber != "" || bill != "" {
		parts := make([]string, 0, 2)
		if chamber != "" {
			parts = append(parts, chamber)
		}
		if bill != "" {
			parts = append(parts, bill)
		}
		return strings.Join(parts, " - ")
	}

	if summary := strings.TrimSpace(stringValue(meta["act_summary"])); summary != "" {
		runes := []rune(summary)
		if len(runes) <= 80 {
			return summary
		}
		return string(runes[:77]) + "..."
	}

	if fb := FirstMeta(meta, metaTitleFallbackKeys); fb != "" {
		return fb
	}
	return fmt.Sprintf("Doc %d", i)
}
