package recipe

import (
	"net/url"
	"strconv"
	"strings"
)

// Draft is the composer form before validation. Numeric fields that are
// absent or unparseable become zero; negative values are clamped to zero.
type Draft struct {
	Title           string
	Serving         int
	PrepareTimeHour int
	PrepareTimeMin  int
	CookTimeHour    int
	CookTimeMin     int
	TotalTimeHour   int
	TotalTimeMin    int
	Introduction    string
	Ingredients     []string
	Instructions    []string
}

// ParseDraft reads the composer form fields. Field names match the original
// composer template.
func ParseDraft(form url.Values) Draft {
	return Draft{
		Title:           strings.TrimSpace(form.Get("recipeTitle")),
		Serving:         parseCount(form.Get("servingNumber")),
		PrepareTimeHour: parseCount(form.Get("prepareTimeHour")),
		PrepareTimeMin:  parseCount(form.Get("prepareTimeMin")),
		CookTimeHour:    parseCount(form.Get("cookTimeHour")),
		CookTimeMin:     parseCount(form.Get("cookTimeMin")),
		TotalTimeHour:   parseCount(form.Get("totalTimeHour")),
		TotalTimeMin:    parseCount(form.Get("totalTimeMin")),
		Introduction:    strings.TrimSpace(form.Get("introduction")),
		Ingredients:     cleanItems(form["ingredients"]),
		Instructions:    cleanItems(form["instructions"]),
	}
}

func parseCount(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// cleanItems drops empty entries so the stored sequences only contain
// non-empty text items.
func cleanItems(raw []string) []string {
	items := make([]string, 0, len(raw))
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
