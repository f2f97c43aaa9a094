package version

import (
	"fmt"
	"runtime"
	"strings"
)

// These are being replaced with the actual values using ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
	builtBy = "unknown"
)

// VersionFullDescr returns the full version description of the given
// binary, printed at --version.
func VersionFullDescr(binName string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s %s\n", binName, version))
	sb.WriteString(fmt.Sprintf("Commit: %s\n", commit))
	sb.WriteString(fmt.Sprintf("Build time: %s\n", date))
	sb.WriteString(fmt.Sprintf("Built by: %s\n", builtBy))
	sb.WriteString(fmt.Sprintf("Go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH))

	return sb.String()
}
