// lint/categories.go
package lint

import "strings"

// Category is a named group of variables.
type Category struct {
	Name      string   `json:"name"`
	Variables []string `json:"variables"`
}

type categoryRule struct {
	name  string
	match func(v string) bool
}

func containsAny(keywords ...string) func(string) bool {
	return func(v string) bool {
		for _, k := range keywords {
			if strings.Contains(v, k) {
				return true
			}
		}
		return false
	}
}

var categoryRules = []categoryRule{
	{"Firebase", containsAny("FIREBASE")},
	{"Android", containsAny("ANDROID", "PKG_NAME")},
	{"iOS", containsAny("IOS", "BUNDLE_ID", "APPLE", "CERT", "PROFILE")},
	{"UI", containsAny("SPLASH", "LOGO", "BOTTOMMENU")},
	{"Permissions", func(v string) bool { return strings.HasPrefix(v, "IS_") && v != "IS_TESTFLIGHT" }},
	{"Email", containsAny("EMAIL")},
	{"Other", func(v string) bool {
		return !containsAny("FIREBASE", "ANDROID", "IOS", "SPLASH", "LOGO", "BOTTOMMENU", "IS_", "EMAIL")(v)
	}},
}

// Categorize groups vars by name pattern. A variable may appear in more than
// one category; empty categories are left out. Category order is fixed and
// variables keep the order of vars.
func Categorize(vars []string) []Category {
	var out []Category
	for _, r := range categoryRules {
		var matched []string
		for _, v := range vars {
			if r.match(v) {
				matched = append(matched, v)
			}
		}
		if len(matched) > 0 {
			out = append(out, Category{Name: r.name, Variables: matched})
		}
	}
	return out
}
