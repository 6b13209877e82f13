package preflight

import (
	"os"
	"strings"

	"pitchctl/internal/config"
)

// CheckAuthToken reports where the API token comes from. A missing token is
// not a failure; many backends run unauthenticated on localhost.
func CheckAuthToken(cfg *config.Config) Result {
	const name = "API token"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if strings.TrimSpace(cfg.Backend.APIToken) == "" {
		return Result{Name: name, Passed: true, Detail: "Not configured"}
	}
	if env := strings.TrimSpace(os.Getenv("PITCHCTL_API_TOKEN")); env != "" && env == cfg.Backend.APIToken {
		return Result{Name: name, Passed: true, Detail: "Set (from PITCHCTL_API_TOKEN)"}
	}
	return Result{Name: name, Passed: true, Detail: "Set (from config file)"}
}
