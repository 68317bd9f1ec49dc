// Package gitrepo shells out to git for the local side of resolution:
// repository discovery, remote URLs and line attribution text.
package gitrepo

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Repo is a handle on a local git repository.
type Repo struct {
	root string
}

// Open locates the repository containing startPath.
func Open(startPath string) (*Repo, error) {
	out, err := exec.Command("git", "-C", startPath, "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %s", startPath)
	}
	return &Repo{root: strings.TrimSpace(string(out))}, nil
}

// Root returns the repository's top-level directory.
func (r *Repo) Root() string {
	return r.root
}

// RemoteURL implements resolve.RemoteSource. It prefers origin and falls
// back to the first configured remote.
func (r *Repo) RemoteURL() (string, bool) {
	if url, err := r.git(context.Background(), "remote", "get-url", "origin"); err == nil && url != "" {
		return url, true
	}

	names, err := r.git(context.Background(), "remote")
	if err != nil || names == "" {
		return "", false
	}
	first := strings.SplitN(names, "\n", 2)[0]
	url, err := r.git(context.Background(), "remote", "get-url", first)
	if err != nil || url == "" {
		return "", false
	}
	return url, true
}

// Remotes lists configured remotes as name→URL.
func (r *Repo) Remotes(ctx context.Context) (map[string]string, error) {
	names, err := r.git(ctx, "remote")
	if err != nil {
		return nil, err
	}

	remotes := make(map[string]string)
	for _, name := range strings.Split(names, "\n") {
		if name == "" {
			continue
		}
		url, err := r.git(ctx, "remote", "get-url", name)
		if err != nil {
			continue
		}
		remotes[name] = url
	}
	return remotes, nil
}

// HeadCommit returns the current HEAD commit id.
func (r *Repo) HeadCommit(ctx context.Context) (string, error) {
	return r.git(ctx, "rev-parse", "HEAD")
}

// BlameText runs a porcelain blame for one file and returns the raw text
// for the attribution parser. line ranges are 1-based and inclusive; zero
// values blame the whole file.
func (r *Repo) BlameText(ctx context.Context, path string, startLine, endLine int) (string, error) {
	args := []string{"blame", "--porcelain"}
	if startLine > 0 {
		if endLine < startLine {
			endLine = startLine
		}
		args = append(args, "-L", fmt.Sprintf("%d,%d", startLine, endLine))
	}
	args = append(args, "--", path)

	out, err := r.gitRaw(ctx, args...)
	if err != nil {
		return "", fmt.Errorf("blame failed for %s: %w", path, err)
	}
	return out, nil
}

func (r *Repo) git(ctx context.Context, args ...string) (string, error) {
	out, err := r.gitRaw(ctx, args...)
	return strings.TrimSpace(out), err
}

func (r *Repo) gitRaw(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.root
	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return "", fmt.Errorf("git %s: %s", args[0], strings.TrimSpace(string(ee.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}
