// Package version contains the build information of nodeadmin.
package version

// These are set by the linker, for example:
//
//	go build -ldflags "-X github.com/ameshkov/nodeadmin/internal/version.version=v1.0.0"
var (
	branch   string
	revision string
	version  = "dev"
)

// Version returns the version of the build.
func Version() (v string) {
	return version
}

// Branch returns the VCS branch of the build, if known.
func Branch() (b string) {
	return branch
}

// Revision returns the VCS revision of the build, if known.
func Revision() (rev string) {
	return revision
}
