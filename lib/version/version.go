package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "0.1.0" // SemVer, bumped by hand at each release
	GitCommit string    // set by the build through -ldflags "-X"
	GitState  string
	BuildDate string
)

func ToDetailVersion() string {
	return fmt.Sprintf("version=%s git=%s state=%s build=%s go=%s", Version, GitCommit, GitState, BuildDate, runtime.Version())
}

// Info is the machine readable form used by `govern version`.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	GitCommit string `json:"git_commit" yaml:"git_commit"`
	GitState  string `json:"git_state" yaml:"git_state"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	GoVersion string `json:"go_version" yaml:"go_version"`
}

func GetInfo() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		GitState:  GitState,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
}
