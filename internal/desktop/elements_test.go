package desktop

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/1broseidon/system-mcp/internal/platform"
)

func sampleElement() *fakeElement {
	return &fakeElement{
		name:        "Save",
		controlType: "ButtonControl",
		className:   "Button",
		bounds:      [4]int{10, 20, 90, 44},
		runtimeID:   []int{42, 7, 3},
		hwnd:        0x1a2b,
	}
}

func TestElementAtNoElement(t *testing.T) {
	svc := New(newFakeBackend(), Config{})
	got, err := svc.ElementAt(context.Background(), 5, 5)
	if err != nil || got != nil {
		t.Fatalf("ElementAt() = %v, %v, want nil, nil", got, err)
	}
}

func TestElementAtProviderFaultIsNoElement(t *testing.T) {
	fake := newFakeBackend()
	fake.elementErr = platform.CallFailed("ElementFromPoint", 0x80040201, errors.New("provider fault"))
	svc := New(fake, Config{})

	got, err := svc.ElementAt(context.Background(), 5, 5)
	if err != nil || got != nil {
		t.Fatalf("ElementAt() = %v, %v, want nil, nil", got, err)
	}
	text, err := svc.TextAt(context.Background(), 5, 5)
	if err != nil || text != nil {
		t.Fatalf("TextAt() = %v, %v, want nil, nil", text, err)
	}
}

func TestElementAtCancelledContext(t *testing.T) {
	fake := newFakeBackend()
	fake.elementErr = context.Canceled
	svc := New(fake, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.ElementAt(ctx, 0, 0); !errors.Is(err, context.Canceled) {
		t.Fatalf("ElementAt() error = %v, want context.Canceled", err)
	}
}

func TestElementAtAllFields(t *testing.T) {
	fake := newFakeBackend()
	el := sampleElement()
	fake.element = el
	svc := New(fake, Config{})

	got, err := svc.ElementAt(context.Background(), 50, 30)
	if err != nil {
		t.Fatalf("ElementAt: %v", err)
	}
	if got.Name == nil || *got.Name != "Save" {
		t.Errorf("Name = %v, want Save", got.Name)
	}
	if got.ControlType == nil || *got.ControlType != "ButtonControl" {
		t.Errorf("ControlType = %v, want ButtonControl", got.ControlType)
	}
	if got.ClassName == nil || *got.ClassName != "Button" {
		t.Errorf("ClassName = %v, want Button", got.ClassName)
	}
	if got.Bounding == nil || *got.Bounding != [4]int{10, 20, 90, 44} {
		t.Errorf("Bounding = %v, want [10 20 90 44]", got.Bounding)
	}
	if !reflect.DeepEqual(got.RuntimeID, []int{42, 7, 3}) {
		t.Errorf("RuntimeID = %v, want [42 7 3]", got.RuntimeID)
	}
	if got.Handle == nil || *got.Handle != 0x1a2b {
		t.Errorf("Handle = %v, want 0x1a2b", got.Handle)
	}
	if el.released != 1 {
		t.Errorf("element released %d times, want 1", el.released)
	}
}

func TestElementAtFieldFailuresAreIndependent(t *testing.T) {
	fake := newFakeBackend()
	el := sampleElement()
	el.errs = map[string]error{
		"class_name": errFieldUnavailable,
		"bounding":   errFieldUnavailable,
		"runtime_id": errFieldUnavailable,
	}
	fake.element = el
	svc := New(fake, Config{})

	got, err := svc.ElementAt(context.Background(), 50, 30)
	if err != nil {
		t.Fatalf("ElementAt: %v", err)
	}
	if got.ClassName != nil || got.Bounding != nil || got.RuntimeID != nil {
		t.Errorf("failed fields should be nil: %+v", got)
	}
	if got.Name == nil || got.ControlType == nil || got.Handle == nil {
		t.Errorf("readable fields should be set: %+v", got)
	}
}

func TestTextAtFallbackChain(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*fakeElement)
		want   *string
	}{
		{
			name:   "value wins",
			modify: func(e *fakeElement) { e.value = "typed text"; e.legacyName = "legacy" },
			want:   strPtr("typed text"),
		},
		{
			name:   "legacy name when value empty",
			modify: func(e *fakeElement) { e.legacyName = "legacy" },
			want:   strPtr("legacy"),
		},
		{
			name: "legacy name when value fails",
			modify: func(e *fakeElement) {
				e.value = "ignored"
				e.legacyName = "legacy"
				e.errs = map[string]error{"value": errFieldUnavailable}
			},
			want: strPtr("legacy"),
		},
		{
			name:   "plain name last",
			modify: func(e *fakeElement) {},
			want:   strPtr("Save"),
		},
		{
			name: "nothing readable",
			modify: func(e *fakeElement) {
				e.name = ""
				e.errs = map[string]error{"legacy_name": errFieldUnavailable}
			},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeBackend()
			el := sampleElement()
			tt.modify(el)
			fake.element = el
			svc := New(fake, Config{})

			got, err := svc.TextAt(context.Background(), 1, 1)
			if err != nil {
				t.Fatalf("TextAt: %v", err)
			}
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("TextAt() = %q, want nil", *got)
			case tt.want != nil && (got == nil || *got != *tt.want):
				t.Errorf("TextAt() = %v, want %q", got, *tt.want)
			}
		})
	}
}

func strPtr(s string) *string { return &s }
