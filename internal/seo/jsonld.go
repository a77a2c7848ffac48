package seo

import "encoding/json"

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Organization returns a minimal Organization schema.
func Organization(name, url, logoURL string) map[string]any {
	m := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Organization",
		"name":     name,
	}
	if url != "" {
		m["url"] = url
	}
	if logoURL != "" {
		m["logo"] = logoURL
	}
	return m
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		el = append(el, map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
			"item":     it.Item,
		})
	}
	return map[string]any{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": el,
	}
}

// Offer is a priced plan. An empty Price means quote-based.
type Offer struct {
	Name     string
	Price    string
	Currency string
}

// SoftwareApplication describes the product with its published plans.
func SoftwareApplication(name, description, url string, offers []Offer) map[string]any {
	m := map[string]any{
		"@context":            "https://schema.org",
		"@type":               "SoftwareApplication",
		"name":                name,
		"description":         description,
		"applicationCategory": "BusinessApplication",
	}
	if url != "" {
		m["url"] = url
	}
	list := make([]map[string]any, 0, len(offers))
	for _, o := range offers {
		if o.Price == "" {
			continue
		}
		list = append(list, map[string]any{
			"@type":         "Offer",
			"name":          o.Name,
			"price":         o.Price,
			"priceCurrency": o.Currency,
		})
	}
	if len(list) > 0 {
		m["offers"] = list
	}
	return m
}
