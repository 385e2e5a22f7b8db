package ui

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestLogFeedEmpty(t *testing.T) {
	f := NewLogFeed()
	if f.Len() != 0 || len(f.Entries()) != 0 {
		t.Errorf("new feed should be empty, got %d entries", f.Len())
	}
}

func TestLogFeedAppendKeepsOrder(t *testing.T) {
	f := NewLogFeed()
	f.Append("one")
	f.Append("two")
	f.Append("one")
	if !reflect.DeepEqual(f.Entries(), []string{"one", "two", "one"}) {
		t.Errorf("Entries = %v", f.Entries())
	}
}

func TestLogFeedEntriesIsCopy(t *testing.T) {
	f := NewLogFeed()
	f.Append("one")
	e := f.Entries()
	e[0] = "mutated"
	if f.Entries()[0] != "one" {
		t.Error("Entries should return a copy")
	}
}

func TestLogFeedFollowsNewest(t *testing.T) {
	f := NewLogFeed()
	f.SetSize(40, 3)
	for i := 0; i < 10; i++ {
		f.Append(fmt.Sprintf("entry %d", i))
	}
	view := f.View()
	if !strings.Contains(view, "entry 9") {
		t.Error("view should show the newest entry")
	}
	if strings.Contains(view, "entry 0") {
		t.Error("view should have scrolled past the oldest entry")
	}
}

func TestLogFeedSetSizeClamps(t *testing.T) {
	f := NewLogFeed()
	f.SetSize(0, -1)
	f.Append("still renders")
	if f.View() == "" {
		t.Error("view should not be empty")
	}
}
