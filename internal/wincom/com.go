//go:build windows

// Package wincom provides the minimal COM calling convention needed to
// drive a host application's existing ID3D11Device1/ID3D12Device/
// ID3D11Fence/ID3D12Fence objects from Go: no Go binding for Direct3D
// exists in the example corpus, so interface pointers are called
// through their vtable directly via syscall.SyscallN, the same
// technique other_examples' DirectX HAL code uses for D3D12 command
// lists and pipeline state objects.
package wincom

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Object is a COM interface pointer: the first field of every COM
// object is a pointer to its vtable, an array of function pointers.
type Object uintptr

// IsNil reports whether o is a null interface pointer.
func (o Object) IsNil() bool { return o == 0 }

func (o Object) vtable() uintptr {
	return *(*uintptr)(unsafe.Pointer(uintptr(o)))
}

func (o Object) method(index int) uintptr {
	return *(*uintptr)(unsafe.Pointer(o.vtable() + uintptr(index)*unsafe.Sizeof(uintptr(0))))
}

// Call invokes the method at vtable index idx with args (the object
// pointer itself is always implicit arg 0 per COM's thiscall-as-stdcall
// convention on amd64). Returns the raw HRESULT/return value.
func (o Object) Call(idx int, args ...uintptr) (uintptr, error) {
	all := make([]uintptr, 0, len(args)+1)
	all = append(all, uintptr(o))
	all = append(all, args...)

	r1, _, callErr := syscall.SyscallN(o.method(idx), all...)
	if int32(r1) < 0 {
		return r1, hresultError(r1, callErr)
	}
	return r1, nil
}

// Release calls IUnknown::Release (vtable index 2, common to every COM
// interface).
func (o Object) Release() uintptr {
	r, _ := o.Call(2)
	return r
}

func hresultError(hr uintptr, callErr error) error {
	if callErr != syscall.Errno(0) {
		return callErr
	}
	return &HResultError{Code: uint32(hr)}
}

// HResultError wraps a failing HRESULT from a COM call.
type HResultError struct {
	Code uint32
}

func (e *HResultError) Error() string {
	return "wincom: HRESULT 0x" + hex32(e.Code)
}

// IsElevated reports whether the current process token is elevated,
// logged once at layer load time (spec.md "DLL/shared-library lifecycle
// logging": the original logs process elevation state on attach).
func IsElevated() bool {
	token := windows.GetCurrentProcessToken()
	var elevation uint32
	var size uint32
	err := windows.GetTokenInformation(
		token, windows.TokenElevation,
		(*byte)(unsafe.Pointer(&elevation)), uint32(unsafe.Sizeof(elevation)), &size)
	if err != nil {
		return false
	}
	return elevation != 0
}

func hex32(v uint32) string {
	const digits = "0123456789abcdef"
	buf := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		buf[i] = digits[v&0xf]
		v >>= 4
	}
	return string(buf)
}
