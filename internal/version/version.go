package version

import (
	"strings"

	"github.com/fatih/color"
)

// Version information for the reflex CLI.
// These variables can be overridden at build time via -ldflags.
var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Banner renders Version with major, minor and patch in their own colours.
// Pre-release and build suffixes stay plain.
func Banner(colored bool) string {
	v := strings.TrimSpace(Version)
	if v == "" {
		return "dev"
	}
	core, suffix := v, ""
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		core, suffix = v[:i], v[i:]
	}
	parts := strings.SplitN(core, ".", 3)
	attrs := [][]color.Attribute{
		{color.FgYellow, color.Bold},
		{color.FgGreen, color.Bold},
		{color.FgBlue, color.Bold},
	}
	for i := range parts {
		c := color.New(attrs[i]...)
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		parts[i] = c.Sprint(parts[i])
	}
	return strings.Join(parts, ".") + suffix
}
