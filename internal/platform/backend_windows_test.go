//go:build windows

package platform

import (
	"context"
	"testing"
)

// The runtime allows a bounded number of callbacks, so repeated listing must
// reuse one.
func TestTopLevelWindowsRepeated(t *testing.T) {
	for i := 0; i < 2500; i++ {
		if _, err := topLevelWindows(); err != nil {
			t.Fatalf("topLevelWindows call %d: %v", i, err)
		}
	}
}

func TestListWindowsFilter(t *testing.T) {
	b := &WindowsBackend{}
	windows, err := b.ListWindows(context.Background(), WindowFilter{VisibleOnly: true, TitleOnly: true})
	if err != nil {
		t.Fatalf("ListWindows: %v", err)
	}
	for _, w := range windows {
		if !w.Visible || w.Title == "" {
			t.Errorf("window %d (%q, visible=%v) passed the filter", w.ID, w.Title, w.Visible)
		}
	}
}
