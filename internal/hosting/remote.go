package hosting

import (
	"net/url"
	"strings"
)

// SplitRemoteURL breaks a raw git remote URL into host and project path.
// Both the scp-like SSH form (user@host:group/project.git) and URL forms
// (https://, ssh://, git://, http://) are accepted. A trailing ".git" is
// stripped; an empty host or project path makes the URL unparseable.
func SplitRemoteURL(raw string) (host, projectPath string, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", false
	}

	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", "", false
		}
		host = u.Hostname()
		projectPath = u.Path
	} else if at := strings.Index(raw, "@"); at >= 0 {
		// scp-like: user@host:group/project.git
		rest := raw[at+1:]
		colon := strings.Index(rest, ":")
		if colon < 0 {
			return "", "", false
		}
		host = rest[:colon]
		projectPath = rest[colon+1:]
	} else {
		return "", "", false
	}

	projectPath = strings.Trim(projectPath, "/")
	projectPath = strings.TrimSuffix(projectPath, ".git")
	projectPath = strings.TrimSuffix(projectPath, "/")

	if host == "" || projectPath == "" {
		return "", "", false
	}
	return host, projectPath, true
}

// hostMatches implements the shared self-hosted matching rule: the remote's
// hostname contains the provider's brand token, or equals the configured base
// URL's host with a conventional "api." prefix stripped. Enterprise
// deployments often omit brand tokens, hence the second clause.
func hostMatches(remoteHost, brandToken, configuredBaseURL string) bool {
	remoteHost = strings.ToLower(remoteHost)
	if remoteHost == "" {
		return false
	}
	if strings.Contains(remoteHost, brandToken) {
		return true
	}
	if configuredBaseURL == "" {
		return false
	}
	u, err := url.Parse(configuredBaseURL)
	if err != nil {
		return false
	}
	configured := strings.TrimPrefix(strings.ToLower(u.Hostname()), "api.")
	return configured != "" && remoteHost == configured
}
