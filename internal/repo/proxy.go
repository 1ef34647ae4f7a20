package repo

import "os"

// proxyEnvVars are consulted in order; the first non-empty value wins.
var proxyEnvVars = []string{"HTTPS_PROXY", "https_proxy", "ALL_PROXY", "all_proxy"}

// ProxyFromEnv returns the proxy URL for clones and downloads, or "" when none is set.
func ProxyFromEnv(getenv func(string) string) string {
	if getenv == nil {
		getenv = os.Getenv
	}
	for _, key := range proxyEnvVars {
		if v := getenv(key); v != "" {
			return v
		}
	}
	return ""
}
