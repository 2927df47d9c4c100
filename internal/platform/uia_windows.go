//go:build windows

package platform

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"syscall"
	"unsafe"

	ole "github.com/go-ole/go-ole"
)

var (
	clsidCUIAutomation = ole.NewGUID("{FF48DBA4-60EF-4201-AA87-54103EEF594E}")
	iidIUIAutomation   = ole.NewGUID("{30CBE57D-D9D0-452A-AB13-7AC5AC4825EE}")

	iidValuePattern             = ole.NewGUID("{A94CD8B1-0844-4CD6-9D2D-640537AB39E9}")
	iidLegacyIAccessiblePattern = ole.NewGUID("{828055AD-355B-4435-86D5-3B51C14A9B1B}")
)

const (
	sFalse = 0x1

	patternValue             = 10002
	patternLegacyIAccessible = 10018

	// IUIAutomation
	vtElementFromPoint = 7

	// IUIAutomationElement
	vtGetRuntimeId              = 4
	vtGetCurrentPatternAs       = 14
	vtCurrentControlType        = 21
	vtCurrentName               = 23
	vtCurrentClassName          = 30
	vtCurrentNativeWindowHandle = 36
	vtCurrentBoundingRectangle  = 43

	// IUIAutomationValuePattern
	vtValueCurrentValue = 4
	// IUIAutomationLegacyIAccessiblePattern
	vtLegacyCurrentName = 7
)

var errUIAStopped = errors.New("UI Automation worker stopped")

// uiaWorker owns a COM multithreaded apartment on a locked OS thread. All
// UI Automation calls are funnelled through it.
type uiaWorker struct {
	calls      chan func()
	done       chan struct{}
	stopOnce   sync.Once
	automation *ole.IUnknown
}

func startUIAWorker() (*uiaWorker, error) {
	w := &uiaWorker{
		calls: make(chan func()),
		done:  make(chan struct{}),
	}
	ready := make(chan error, 1)
	go w.loop(ready)
	if err := <-ready; err != nil {
		return nil, err
	}
	return w, nil
}

func (w *uiaWorker) loop(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_MULTITHREADED); err != nil {
		var oleErr *ole.OleError
		if !errors.As(err, &oleErr) || oleErr.Code() != sFalse {
			ready <- fmt.Errorf("CoInitializeEx: %w", err)
			return
		}
	}
	defer ole.CoUninitialize()

	automation, err := ole.CreateInstance(clsidCUIAutomation, iidIUIAutomation)
	if err != nil {
		ready <- fmt.Errorf("create CUIAutomation: %w", err)
		return
	}
	defer automation.Release()
	w.automation = automation
	ready <- nil

	for {
		select {
		case fn := <-w.calls:
			fn()
		case <-w.done:
			return
		}
	}
}

func (w *uiaWorker) stop() {
	w.stopOnce.Do(func() { close(w.done) })
}

// do runs fn on the COM thread and waits for it to finish.
func (w *uiaWorker) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	select {
	case w.calls <- func() { defer close(finished); fn() }:
	case <-ctx.Done():
		return ctx.Err()
	case <-w.done:
		return errUIAStopped
	}
	<-finished
	return nil
}

func (w *uiaWorker) elementFromPoint(ctx context.Context, x, y int) (Element, error) {
	var (
		raw *ole.IUnknown
		err error
	)
	callErr := w.do(ctx, func() {
		var hr uintptr
		if unsafe.Sizeof(uintptr(0)) == 8 {
			packed := uintptr(uint32(int32(x))) | uintptr(uint32(int32(y)))<<32
			hr = comCall(w.automation, vtElementFromPoint, packed, uintptr(unsafe.Pointer(&raw)))
		} else {
			hr = comCall(w.automation, vtElementFromPoint, uintptr(int32(x)), uintptr(int32(y)), uintptr(unsafe.Pointer(&raw)))
		}
		err = hresultError("ElementFromPoint", hr)
	})
	if callErr != nil {
		return nil, callErr
	}
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	return &uiaElement{worker: w, raw: raw}, nil
}

// comCall invokes vtable slot idx of obj with obj as the receiver.
func comCall(obj *ole.IUnknown, idx int, args ...uintptr) uintptr {
	vtbl := (*[64]uintptr)(unsafe.Pointer(obj.RawVTable))
	hr, _, _ := syscall.SyscallN(vtbl[idx], append([]uintptr{uintptr(unsafe.Pointer(obj))}, args...)...)
	return hr
}

func hresultError(op string, hr uintptr) error {
	if int32(hr) < 0 {
		return CallFailed(op, uint32(hr), ole.NewError(hr))
	}
	return nil
}

// uiaElement wraps an IUIAutomationElement pointer.
type uiaElement struct {
	worker *uiaWorker
	raw    *ole.IUnknown
	once   sync.Once
}

var _ Element = (*uiaElement)(nil)

func (e *uiaElement) run(fn func() error) error {
	var err error
	if callErr := e.worker.do(context.Background(), func() { err = fn() }); callErr != nil {
		return callErr
	}
	return err
}

func (e *uiaElement) bstrProperty(op string, obj *ole.IUnknown, idx int) (string, error) {
	var out string
	err := e.run(func() error {
		var bstr *uint16
		if err := hresultError(op, comCall(obj, idx, uintptr(unsafe.Pointer(&bstr)))); err != nil {
			return err
		}
		if bstr == nil {
			return nil
		}
		out = ole.BstrToString(bstr)
		return ole.SysFreeString((*int16)(unsafe.Pointer(bstr)))
	})
	return out, err
}

func (e *uiaElement) Name() (string, error) {
	return e.bstrProperty("get_CurrentName", e.raw, vtCurrentName)
}

func (e *uiaElement) ClassName() (string, error) {
	return e.bstrProperty("get_CurrentClassName", e.raw, vtCurrentClassName)
}

func (e *uiaElement) ControlType() (string, error) {
	var id int32
	err := e.run(func() error {
		return hresultError("get_CurrentControlType", comCall(e.raw, vtCurrentControlType, uintptr(unsafe.Pointer(&id))))
	})
	if err != nil {
		return "", err
	}
	return ControlTypeName(int(id)), nil
}

func (e *uiaElement) Bounds() ([4]int, error) {
	var r winRect
	err := e.run(func() error {
		return hresultError("get_CurrentBoundingRectangle", comCall(e.raw, vtCurrentBoundingRectangle, uintptr(unsafe.Pointer(&r))))
	})
	if err != nil {
		return [4]int{}, err
	}
	return [4]int{int(r.Left), int(r.Top), int(r.Right), int(r.Bottom)}, nil
}

func (e *uiaElement) RuntimeID() ([]int, error) {
	var ids []int
	err := e.run(func() error {
		var sa *ole.SafeArray
		if err := hresultError("GetRuntimeId", comCall(e.raw, vtGetRuntimeId, uintptr(unsafe.Pointer(&sa)))); err != nil {
			return err
		}
		if sa == nil {
			return errors.New("element has no runtime id")
		}
		conv := ole.SafeArrayConversion{Array: sa}
		defer conv.Release()
		for _, v := range conv.ToValueArray() {
			n, ok := v.(int32)
			if !ok {
				return fmt.Errorf("unexpected runtime id element %T", v)
			}
			ids = append(ids, int(n))
		}
		return nil
	})
	return ids, err
}

func (e *uiaElement) WindowHandle() (WindowID, error) {
	var hwnd uintptr
	err := e.run(func() error {
		return hresultError("get_CurrentNativeWindowHandle", comCall(e.raw, vtCurrentNativeWindowHandle, uintptr(unsafe.Pointer(&hwnd))))
	})
	return WindowID(hwnd), err
}

// pattern fetches a control pattern interface, or nil when the element
// does not support it.
func (e *uiaElement) pattern(id int, iid *ole.GUID) (*ole.IUnknown, error) {
	var out *ole.IUnknown
	hr := comCall(e.raw, vtGetCurrentPatternAs, uintptr(id), uintptr(unsafe.Pointer(iid)), uintptr(unsafe.Pointer(&out)))
	if err := hresultError("GetCurrentPatternAs", hr); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *uiaElement) patternString(id int, iid *ole.GUID, op string, idx int) (string, error) {
	var out string
	err := e.run(func() error {
		pat, err := e.pattern(id, iid)
		if err != nil {
			return err
		}
		if pat == nil {
			return fmt.Errorf("pattern %d not supported", id)
		}
		defer pat.Release()
		var bstr *uint16
		if err := hresultError(op, comCall(pat, idx, uintptr(unsafe.Pointer(&bstr)))); err != nil {
			return err
		}
		if bstr == nil {
			return nil
		}
		out = ole.BstrToString(bstr)
		return ole.SysFreeString((*int16)(unsafe.Pointer(bstr)))
	})
	return out, err
}

func (e *uiaElement) Value() (string, error) {
	return e.patternString(patternValue, iidValuePattern, "get_CurrentValue", vtValueCurrentValue)
}

func (e *uiaElement) LegacyName() (string, error) {
	return e.patternString(patternLegacyIAccessible, iidLegacyIAccessiblePattern, "get_CurrentName", vtLegacyCurrentName)
}

func (e *uiaElement) Release() {
	e.once.Do(func() {
		_ = e.worker.do(context.Background(), func() { e.raw.Release() })
	})
}
