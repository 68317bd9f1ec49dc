package blame

import (
	"testing"
	"time"
)

const sampleSHA = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

func TestParsePorcelain(t *testing.T) {
	text := sampleSHA + " 1 1 3\n" +
		"author Jane Doe\n" +
		"author-mail <jane@example.com>\n" +
		"author-time 1700000000\n" +
		"author-tz +0100\n" +
		"summary Add resolver\n" +
		"filename engine.go\n" +
		"\tfirst line\n" +
		sampleSHA + " 2 2\n" +
		"\tsecond line\n" +
		sampleSHA + " 3 3\n" +
		"\tthird line\n"

	got := Parse(text)

	if len(got) != 3 {
		t.Fatalf("expected 3 attributions, got %d", len(got))
	}
	for _, line := range []int{1, 2, 3} {
		attr, ok := got[line]
		if !ok {
			t.Fatalf("missing attribution for line %d", line)
		}
		if attr.CommitID != sampleSHA {
			t.Errorf("line %d commit = %s, want %s", line, attr.CommitID, sampleSHA)
		}
		if attr.Author != "Jane Doe" {
			t.Errorf("line %d author = %q", line, attr.Author)
		}
		if attr.AuthorEmail != "jane@example.com" {
			t.Errorf("line %d email = %q", line, attr.AuthorEmail)
		}
		if attr.Summary != "Add resolver" {
			t.Errorf("line %d summary = %q", line, attr.Summary)
		}
		if !attr.Timestamp.Equal(time.Unix(1700000000, 0)) {
			t.Errorf("line %d timestamp = %v", line, attr.Timestamp)
		}
		if attr.LineNumber != line {
			t.Errorf("line %d LineNumber = %d", line, attr.LineNumber)
		}
	}
}

func TestParseExcludesUncommittedLines(t *testing.T) {
	text := sampleSHA + " 1 1\n" +
		"author Jane Doe\n" +
		"author-mail <jane@example.com>\n" +
		"author-time 1700000000\n" +
		"summary Add resolver\n" +
		"\tfirst line\n" +
		ZeroCommitID + " 2 2 2\n" +
		"author Not Committed Yet\n" +
		"author-mail <not.committed.yet>\n" +
		"author-time 1700000500\n" +
		"summary Version of engine.go from engine.go\n" +
		"\tlocal edit\n" +
		ZeroCommitID + " 3 3\n" +
		"\tanother local edit\n" +
		sampleSHA + " 4 4\n" +
		"\tlast line\n"

	got := Parse(text)

	if len(got) != 2 {
		t.Fatalf("expected 2 attributions, got %d", len(got))
	}
	if _, ok := got[2]; ok {
		t.Error("uncommitted line 2 should be excluded")
	}
	if _, ok := got[3]; ok {
		t.Error("uncommitted line 3 should be excluded")
	}
}

func TestParseThreeLinesOneCommitPlusZeroBlock(t *testing.T) {
	// Three lines sharing one commit id with an interleaved all-zero block
	// yields exactly the three non-zero lines.
	text := sampleSHA + " 1 1 2\n" +
		"author Jane Doe\n" +
		"author-time 1700000000\n" +
		"summary Shared commit\n" +
		"\tone\n" +
		sampleSHA + " 2 2\n" +
		"\ttwo\n" +
		ZeroCommitID + " 3 3\n" +
		"author Not Committed Yet\n" +
		"\tpending\n" +
		sampleSHA + " 4 4\n" +
		"\tthree\n"

	got := Parse(text)
	if len(got) != 3 {
		t.Fatalf("expected 3 attributions, got %d", len(got))
	}
	for _, line := range []int{1, 2, 4} {
		if got[line].CommitID != sampleSHA {
			t.Errorf("line %d missing shared commit attribution", line)
		}
	}
}

func TestParseCompactLayout(t *testing.T) {
	text := "" +
		"4b825dc6 (Jane Doe 2024-03-05 10:11:12 +0100  7) return nil\n" +
		"^11f2cd0 (Bob 2019-01-01 00:00:00 +0000  8) }\n" +
		"00000000 (Not Committed Yet 2024-03-05 10:12:00 +0100  9) wip\n"

	got := Parse(text)

	if len(got) != 2 {
		t.Fatalf("expected 2 attributions, got %d", len(got))
	}

	attr := got[7]
	if attr.CommitID != "4b825dc6" {
		t.Errorf("commit = %q", attr.CommitID)
	}
	if attr.Author != "Jane Doe" {
		t.Errorf("author = %q", attr.Author)
	}
	want, _ := time.Parse("2006-01-02 15:04:05 -0700", "2024-03-05 10:11:12 +0100")
	if !attr.Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", attr.Timestamp, want)
	}

	// Boundary marker is stripped, not otherwise special.
	boundary := got[8]
	if boundary.CommitID != "11f2cd0" {
		t.Errorf("boundary commit = %q, want 11f2cd0", boundary.CommitID)
	}
}

func TestParseCompactWithFilenameColumn(t *testing.T) {
	text := "4b825dc6 engine.go (Jane Doe 2024-03-05 10:11:12 +0100  3) x := 1\n"

	got := Parse(text)
	if len(got) != 1 {
		t.Fatalf("expected 1 attribution, got %d", len(got))
	}
	if got[3].Author != "Jane Doe" {
		t.Errorf("author = %q", got[3].Author)
	}
}

func TestParseDefaults(t *testing.T) {
	t.Run("missing author becomes Unknown", func(t *testing.T) {
		text := sampleSHA + " 1 1\n" +
			"author-time 1700000000\n" +
			"\tcontent\n"

		got := Parse(text)
		if got[1].Author != UnknownAuthor {
			t.Errorf("author = %q, want %q", got[1].Author, UnknownAuthor)
		}
	})

	t.Run("missing email and summary stay empty", func(t *testing.T) {
		text := sampleSHA + " 1 1\n" +
			"author Jane Doe\n" +
			"\tcontent\n"

		got := Parse(text)
		if got[1].AuthorEmail != "" || got[1].Summary != "" {
			t.Errorf("email = %q summary = %q, want empty", got[1].AuthorEmail, got[1].Summary)
		}
	})
}

func TestParseLenient(t *testing.T) {
	t.Run("garbage input yields empty map", func(t *testing.T) {
		got := Parse("this is not blame output\nneither is this\n")
		if len(got) != 0 {
			t.Errorf("expected empty map, got %d entries", len(got))
		}
	})

	t.Run("truncated record is skipped, rest survives", func(t *testing.T) {
		// A header with no content line is abandoned when the next header
		// arrives; the well-formed record still parses.
		text := sampleSHA + " 1 1\n" +
			"author Jane Doe\n" +
			"deadbeefdeadbeefdeadbeefdeadbeefdeadbeef 2 2\n" +
			"author Bob\n" +
			"\tcontent\n"

		got := Parse(text)
		if len(got) != 1 {
			t.Fatalf("expected 1 attribution, got %d", len(got))
		}
		if got[2].Author != "Bob" {
			t.Errorf("author = %q, want Bob", got[2].Author)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := Parse(""); len(got) != 0 {
			t.Errorf("expected empty map, got %d entries", len(got))
		}
	})
}

func TestParseKeyIsDestinationLine(t *testing.T) {
	// Original line 40 moved to line 5 in the current buffer: the key is 5.
	text := sampleSHA + " 40 5\n" +
		"author Jane Doe\n" +
		"author-time 1700000000\n" +
		"summary Move code\n" +
		"\tmoved line\n"

	got := Parse(text)
	if _, ok := got[40]; ok {
		t.Error("map must not be keyed by the original line number")
	}
	attr, ok := got[5]
	if !ok {
		t.Fatal("missing attribution at destination line 5")
	}
	if attr.LineNumber != 5 {
		t.Errorf("LineNumber = %d, want 5", attr.LineNumber)
	}
}
