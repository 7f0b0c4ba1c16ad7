package ratelimit

import (
	"net/http"
	"strings"
)

// MatchEndpoint returns the configuration covering method and path, or nil
// when none does and the default limit applies.
//
// An exact path wins over a prefix. Among prefixes (configured paths ending
// in "/"), the longest one wins, so "/resumes/from-profile" can be given its
// own limit apart from "/resumes/". Health checks and CORS preflights are
// unlimited.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if method == http.MethodOptions || (path == "/health" && (method == http.MethodGet || method == http.MethodHead)) {
		return &EndpointConfig{Method: method, Limit: 0}
	}

	var best *EndpointConfig
	for i := range configs {
		config := &configs[i]
		if config.Method != method {
			continue
		}
		if config.Path == path {
			return config
		}
		if strings.HasSuffix(config.Path, "/") && strings.HasPrefix(path, config.Path) {
			if best == nil || len(config.Path) > len(best.Path) {
				best = config
			}
		}
	}
	return best
}
