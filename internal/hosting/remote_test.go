package hosting

import "testing"

func TestSplitRemoteURL(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantHost string
		wantPath string
		wantOK   bool
	}{
		{"ssh scp-like", "git@gitlab.com:group/project.git", "gitlab.com", "group/project", true},
		{"ssh scp-like nested groups", "git@gitlab.example.io:group/sub/project.git", "gitlab.example.io", "group/sub/project", true},
		{"https", "https://github.com/owner/repo.git", "github.com", "owner/repo", true},
		{"https without .git", "https://github.com/owner/repo", "github.com", "owner/repo", true},
		{"ssh url form", "ssh://git@github.com/owner/repo.git", "github.com", "owner/repo", true},
		{"git protocol", "git://github.com/owner/repo.git", "github.com", "owner/repo", true},
		{"https with port", "https://gitlab.internal:8443/group/project.git", "gitlab.internal", "group/project", true},
		{"trailing slash", "https://github.com/owner/repo/", "github.com", "owner/repo", true},
		{"empty path", "https://github.com/", "", "", false},
		{"empty path after .git strip", "git@github.com:.git", "", "", false},
		{"bare word", "not-a-remote", "", "", false},
		{"empty string", "", "", "", false},
		{"scp-like without colon", "git@github.com", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, path, ok := SplitRemoteURL(tt.raw)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if host != tt.wantHost {
				t.Errorf("host = %q, want %q", host, tt.wantHost)
			}
			if path != tt.wantPath {
				t.Errorf("path = %q, want %q", path, tt.wantPath)
			}
		})
	}
}

func TestHostMatches(t *testing.T) {
	tests := []struct {
		name    string
		host    string
		brand   string
		baseURL string
		want    bool
	}{
		{"brand token in hostname", "gitlab.com", "gitlab", "", true},
		{"brand token in enterprise hostname", "gitlab.corp.example.com", "gitlab", "", true},
		{"no brand no base", "git.corp.example.com", "gitlab", "", false},
		{"matches configured base host", "git.corp.example.com", "gitlab", "https://git.corp.example.com", true},
		{"matches base host with api prefix stripped", "git.corp.example.com", "github", "https://api.git.corp.example.com", true},
		{"base host mismatch", "git.corp.example.com", "github", "https://api.other.example.com", false},
		{"case insensitive", "GitHub.com", "github", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hostMatches(tt.host, tt.brand, tt.baseURL); got != tt.want {
				t.Errorf("hostMatches(%q, %q, %q) = %v, want %v", tt.host, tt.brand, tt.baseURL, got, tt.want)
			}
		})
	}
}
