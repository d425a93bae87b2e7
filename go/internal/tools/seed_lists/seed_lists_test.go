package main

import (
	"os"
	"testing"
	"time"
)

func TestParseLists(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	data := []byte(`
lists:
  - id: "1700000000000"
    name: " Standup "
    names: [Alice, Bob]
  - name: Lunch
    names: [Eve, Frank]
`)

	lists, err := parseLists(data, now)
	if err != nil {
		t.Fatalf("parseLists() error = %v", err)
	}
	if len(lists) != 2 {
		t.Fatalf("got %d lists", len(lists))
	}
	if lists[0].Name != "Standup" {
		t.Errorf("Name = %q, want trimmed", lists[0].Name)
	}
	if lists[1].ID != "1700000000001" {
		t.Errorf("generated ID = %s, want one that skips the taken id", lists[1].ID)
	}
}

func TestParseListsRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty file", "lists: []\n"},
		{"missing name", "lists:\n  - names: [A]\n"},
		{"no names", "lists:\n  - name: X\n"},
		{"duplicate id", "lists:\n  - {id: \"1\", name: A, names: [a]}\n  - {id: \"1\", name: B, names: [b]}\n"},
		{"bad yaml", "lists: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseLists([]byte(tt.data), time.Now()); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestBundledListsParse(t *testing.T) {
	data, err := os.ReadFile("../../assets/name_lists.yaml")
	if err != nil {
		t.Fatalf("read assets: %v", err)
	}
	if _, err := parseLists(data, time.Now()); err != nil {
		t.Errorf("bundled lists invalid: %v", err)
	}
}

func TestCreatedAt(t *testing.T) {
	if got := createdAt("1700000000000"); !got.Equal(time.UnixMilli(1700000000000)) {
		t.Errorf("createdAt() = %v", got)
	}
}
