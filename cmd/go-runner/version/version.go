// Package version reports the build version of go-runner
package version

import (
	"embed"
	"io"
	"runtime/debug"
	"strings"
)

//go:embed version.*
var versions embed.FS

// Version is read from version.txt (written by the release build),
// falling back to the module version and vcs revision
var Version = "unable to get version"

func init() {
	if v, ok := fromFile("version.txt"); ok {
		Version = v
		return
	}
	if v, ok := fromBuildInfo(); ok {
		Version = v
	}
}

func fromFile(name string) (string, bool) {
	f, err := versions.Open(name)
	if err != nil {
		return "", false
	}
	defer f.Close()
	s, err := io.ReadAll(f)
	if err != nil {
		return "", false
	}
	v := strings.TrimSpace(string(s))
	return v, v != ""
}

func fromBuildInfo() (string, bool) {
	inf, ok := debug.ReadBuildInfo()
	if !ok {
		return "", false
	}
	v := inf.Main.Version
	for _, s := range inf.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 12 {
			v += "+" + s.Value[:12]
		}
	}
	return v, v != ""
}
