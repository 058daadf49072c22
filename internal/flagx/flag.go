// Package flagx lets several components share os.Args: each one picks out
// only the flags it owns and parses them with its own FlagSet.
package flagx

import (
	"flag"
	"os"
	"strings"
)

// ConfigEnvVar names the environment variable consulted when no -c/-config
// flag is given.
const ConfigEnvVar = "CONFIG"

// FilterArgs returns the subset of args made of allowed flags and their values.
//
// Both "-f value" and "-f=value" are understood. Flags listed in boolFlags
// never consume the following argument, so "-v positional" keeps positional
// out of the result.
func FilterArgs(args []string, allowed []string, boolFlags ...string) []string {
	names := make(map[string]bool, len(allowed))
	for _, f := range allowed {
		names[f] = false
	}
	for _, f := range boolFlags {
		if _, ok := names[f]; ok {
			names[f] = true
		}
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		if name, _, found := strings.Cut(arg, "="); found {
			if _, ok := names[name]; ok {
				out = append(out, arg)
			}
			continue
		}

		isBool, ok := names[arg]
		if !ok {
			continue
		}
		out = append(out, arg)
		if isBool {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}

	return out
}

// ConfigPath returns the JSON config file path from -c / -config, falling back
// to $CONFIG. The empty string means no file should be loaded.
func ConfigPath() string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "Path to config file")
	fs.StringVar(&path, "c", "", "Path to config file (short)")
	_ = fs.Parse(FilterArgs(os.Args[1:], []string{"-c", "-config"}))

	if path == "" {
		path = os.Getenv(ConfigEnvVar)
	}
	return path
}
