package api

import (
	"net/http"
	"runtime"

	"github.com/planora-events/server/internal/api/envelope"
)

type versionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
}

// VersionHandler reports build metadata. Empty values fall back to
// "dev"/"unknown" so unstamped local builds still answer.
func VersionHandler(version, gitCommit, buildDate string) http.Handler {
	info := versionInfo{
		Version:   fallback(version, "dev"),
		GitCommit: fallback(gitCommit, "unknown"),
		BuildDate: fallback(buildDate, "unknown"),
		GoVersion: runtime.Version(),
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			envelope.Error(w, r, http.StatusMethodNotAllowed, "Method Not Allowed", nil, false)
			return
		}
		envelope.Data(w, http.StatusOK, info)
	})
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
