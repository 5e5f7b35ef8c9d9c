package history

import (
	"strings"
	"testing"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Segment", "Best", "Reached"}
	rows := [][]string{
		{"Intro", "01:00.000", "12"},
		{"日本", "-", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if want := "Segment" + strings.Repeat(" ", 7) + "Best  Reached"; lines[0] != want {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if want := "Intro    01:00.000" + strings.Repeat(" ", 7) + "12"; lines[1] != want {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if want := "日本" + strings.Repeat(" ", 13) + "-" + strings.Repeat(" ", 8) + "3"; lines[2] != want {
		t.Fatalf("unexpected wide row line: %q", lines[2])
	}
}

func TestFormatTableEmpty(t *testing.T) {
	if lines := formatTable(nil, nil, nil); lines != nil {
		t.Fatalf("expected no lines, got %q", lines)
	}
}
