// Package blame parses git line-attribution output into per-line commit
// attributions. Both the porcelain record format and the compact one-line
// format are supported.
package blame

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ZeroCommitID is the sentinel commit id git reports for uncommitted lines.
const ZeroCommitID = "0000000000000000000000000000000000000000"

// LineAttribution maps a single line of a file's current revision to the
// commit that last modified it.
type LineAttribution struct {
	CommitID    string    `json:"commitId"`
	Author      string    `json:"author"`
	AuthorEmail string    `json:"authorEmail,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Summary     string    `json:"summary,omitempty"`
	LineNumber  int       `json:"lineNumber"`
}

// UnknownAuthor is substituted when the attribution carries no author name.
const UnknownAuthor = "Unknown"

var (
	// <sha> <origLine> <finalLine> [<numLines>], sha optionally boundary-marked
	porcelainHeaderRe = regexp.MustCompile(`^(\^?)([0-9a-f]{7,40}) (\d+) (\d+)( \d+)?$`)

	// metadata tag lines: "author Jane Doe", "boundary", ...
	porcelainTagRe = regexp.MustCompile(`^([a-z][a-z-]*)(?: (.*))?$`)

	// <sha> [<path>] (<author> <YYYY-MM-DD HH:MM:SS +ZZZZ> <line>) content
	compactRe = regexp.MustCompile(`^(\^?)([0-9a-f]{6,40})\s+(?:(\S+)\s+)?\((.*?)\s*(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} [+-]\d{4})\s+(\d+)\)\s?(.*)$`)
)

const compactTimeLayout = "2006-01-02 15:04:05 -0700"

// commitMeta accumulates porcelain metadata for one commit id. Porcelain
// output emits the metadata block only the first time a commit appears;
// later records for the same id reuse it.
type commitMeta struct {
	author    string
	mail      string
	timestamp time.Time
	summary   string
}

// Parse converts raw blame text into a map keyed by destination line number
// (the line's position in the current buffer, not its position in history).
// Lines attributed to the all-zero commit are excluded. Parse never fails;
// anything unparseable is skipped and the remainder is returned.
func Parse(text string) map[int]LineAttribution {
	result := make(map[int]LineAttribution)
	metas := make(map[string]*commitMeta)

	var pendingID string
	var pendingLine int

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		// Content line terminates the pending porcelain record.
		if strings.HasPrefix(line, "\t") {
			if pendingID != "" {
				finishRecord(result, metas, pendingID, pendingLine)
				pendingID = ""
			}
			continue
		}

		if m := porcelainHeaderRe.FindStringSubmatch(line); m != nil {
			// A header with no content line behind it is abandoned.
			pendingID = m[2]
			pendingLine, _ = strconv.Atoi(m[4])
			if _, ok := metas[pendingID]; !ok {
				metas[pendingID] = &commitMeta{}
			}
			continue
		}

		if pendingID != "" {
			if m := porcelainTagRe.FindStringSubmatch(line); m != nil {
				applyTag(metas[pendingID], m[1], m[2])
				continue
			}
		}

		if m := compactRe.FindStringSubmatch(line); m != nil {
			addCompactRecord(result, m)
			continue
		}

		// Unparseable line: skip silently.
	}

	return result
}

func finishRecord(result map[int]LineAttribution, metas map[string]*commitMeta, id string, lineNumber int) {
	if isZeroCommit(id) || lineNumber <= 0 {
		return
	}

	meta := metas[id]
	author := meta.author
	if author == "" {
		author = UnknownAuthor
	}

	result[lineNumber] = LineAttribution{
		CommitID:    id,
		Author:      author,
		AuthorEmail: meta.mail,
		Timestamp:   meta.timestamp,
		Summary:     meta.summary,
		LineNumber:  lineNumber,
	}
}

func applyTag(meta *commitMeta, tag, value string) {
	switch tag {
	case "author":
		meta.author = value
	case "author-mail":
		meta.mail = strings.Trim(value, "<>")
	case "author-time":
		if secs, err := strconv.ParseInt(value, 10, 64); err == nil {
			meta.timestamp = time.Unix(secs, 0)
		}
	case "summary":
		meta.summary = value
	}
	// author-tz, committer*, previous, filename, boundary: not needed.
}

func addCompactRecord(result map[int]LineAttribution, m []string) {
	id := m[2]
	if isZeroCommit(id) {
		return
	}

	lineNumber, err := strconv.Atoi(m[6])
	if err != nil || lineNumber <= 0 {
		return
	}

	author := strings.TrimSpace(m[4])
	if author == "" {
		author = UnknownAuthor
	}

	var ts time.Time
	if parsed, err := time.Parse(compactTimeLayout, m[5]); err == nil {
		ts = parsed
	}

	result[lineNumber] = LineAttribution{
		CommitID:   id,
		Author:     author,
		Timestamp:  ts,
		LineNumber: lineNumber,
	}
}

func isZeroCommit(id string) bool {
	for _, c := range id {
		if c != '0' {
			return false
		}
	}
	return true
}
