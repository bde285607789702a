// Package version reports the build version.
package version

import "runtime/debug"

// Version is set at link time with
// -ldflags "-X github.com/vanderheijden86/underhood/pkg/version.Version=v1.2.3".
// Otherwise it falls back to the module version recorded in the binary.
var Version = ""

func init() {
	if Version != "" {
		return
	}
	Version = "dev"
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
}
