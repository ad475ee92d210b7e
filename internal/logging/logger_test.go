package logging

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestWithSessionTagsLines(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{Logger: log.New(&buf, "", 0)}
	session := l.WithSession()
	session.Info("hello %s", "world")

	out := buf.String()
	if !strings.Contains(out, "hello world") {
		t.Fatalf("log line missing message: %q", out)
	}
	if session.tag == "" {
		t.Fatalf("expected WithSession to assign a non-empty correlation tag")
	}
	if !strings.Contains(out, session.tag) {
		t.Fatalf("log line missing correlation tag %q: %q", session.tag, out)
	}
}

func TestTopLevelLoggerHasNoTag(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{Logger: log.New(&buf, "", 0)}
	l.Info("plain message")
	if strings.Count(buf.String(), "[") > 1 {
		t.Fatalf("top-level logger should not emit a correlation tag: %q", buf.String())
	}
}
