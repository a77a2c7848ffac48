package nav

import (
	"path"
	"strings"
)

// Item represents a top-level navigation item.
type Item struct {
	Path     string // e.g. "/pricing"
	LabelKey string // i18n key, e.g. "nav.pricing"
	CTA      bool   // rendered as the call-to-action button
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href     string
	LabelKey string
	Active   bool
	CTA      bool
}

// Crumb represents a breadcrumb entry. If LabelKey is empty, use Label.
type Crumb struct {
	Href     string
	LabelKey string
	Label    string
	Active   bool
}

// Main lists every site section in display order. Each one is a routable page.
var Main = []Item{
	{Path: "/", LabelKey: "nav.home"},
	{Path: "/features", LabelKey: "nav.features"},
	{Path: "/pipeline", LabelKey: "nav.pipeline"},
	{Path: "/analytics", LabelKey: "nav.analytics"},
	{Path: "/chat", LabelKey: "nav.chat"},
	{Path: "/usecases", LabelKey: "nav.usecases"},
	{Path: "/pricing", LabelKey: "nav.pricing"},
	{Path: "/competitive", LabelKey: "nav.competitive"},
	{Path: "/demo", LabelKey: "nav.demo", CTA: true},
}

// Section returns the section a path belongs to. Unknown sections report false.
func Section(currentPath string) (Item, bool) {
	if currentPath == "" {
		currentPath = "/"
	}
	for _, it := range Main {
		if isActive(it.Path, currentPath) {
			return it, true
		}
	}
	return Item{}, false
}

// Build renders navigation items with active state given the current path.
// Exactly one item is active for a known section and none otherwise.
func Build(currentPath string) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		items = append(items, RenderedItem{
			Href:     it.Path,
			LabelKey: it.LabelKey,
			Active:   isActive(it.Path, currentPath),
			CTA:      it.CTA,
		})
	}
	return items
}

func isActive(itemPath, currentPath string) bool {
	if itemPath == "/" {
		return currentPath == "/"
	}
	// match exact or prefix boundary: "/chat" or "/chat/..."
	return currentPath == itemPath || strings.HasPrefix(currentPath, itemPath+"/")
}

// Breadcrumbs builds breadcrumb entries from the current path, starting at Home.
func Breadcrumbs(currentPath string) []Crumb {
	if currentPath == "" {
		currentPath = "/"
	}
	crumbs := []Crumb{{Href: "/", LabelKey: "nav.home", Active: currentPath == "/"}}
	if currentPath == "/" {
		return crumbs
	}

	clean := path.Clean(currentPath)
	parts := strings.Split(strings.TrimPrefix(clean, "/"), "/")
	if len(parts) > 0 && parts[0] != "" {
		top := "/" + parts[0]
		labelKey := ""
		for _, it := range Main {
			if it.Path == top {
				labelKey = it.LabelKey
				break
			}
		}
		crumbs = append(crumbs, Crumb{Href: top, LabelKey: labelKey, Label: titleFromSegment(parts[0]), Active: len(parts) == 1})
	}

	href := "/" + parts[0]
	for i := 1; i < len(parts); i++ {
		href = href + "/" + parts[i]
		crumbs = append(crumbs, Crumb{
			Href:   href,
			Label:  titleFromSegment(parts[i]),
			Active: i == len(parts)-1,
		})
	}
	return crumbs
}

func titleFromSegment(seg string) string {
	if seg == "" {
		return seg
	}
	s := strings.ReplaceAll(seg, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	r := []rune(s)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	return string(r)
}
