// lint/settings.go
package lint

import "github.com/dalemusser/pipekit/config"

// EnvPrefix scopes lint settings in the environment (PIPEKIT_LINT_STRICT=true).
const EnvPrefix = "PIPEKIT_LINT"

// AppKeys are the lint command's settings.
var AppKeys = []config.AppKey{
	{Name: "strict", Default: false, Desc: "exit 1 when issues or structure warnings are found"},
	{Name: "json", Default: false, Desc: "print results as JSON"},
	{Name: "watch", Default: false, Desc: "re-lint whenever a file changes"},
	{Name: "skip_shape", Default: false, Desc: "skip the structure check"},
}

// Settings is the typed form of AppKeys.
type Settings struct {
	Strict    bool
	JSON      bool
	Watch     bool
	SkipShape bool
}

// SettingsFrom reads Settings from loaded config values.
func SettingsFrom(vals config.AppConfigValues) Settings {
	return Settings{
		Strict:    vals.Bool("strict"),
		JSON:      vals.Bool("json"),
		Watch:     vals.Bool("watch"),
		SkipShape: vals.Bool("skip_shape"),
	}
}
