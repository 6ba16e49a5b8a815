package openxrlayer

// OpenXR handles are opaque, loader-owned pointers/integers; no Go
// OpenXR binding exists in the example corpus so they are hand-defined
// here, following the same opaque-uintptr convention as internal/vk and
// internal/wincom.
type (
	XrInstance uintptr
	XrSession  uintptr
	XrSystemID uint64
	XrSwapchain uintptr
	XrSpace     uintptr
	XrTime      int64
)

// Result mirrors XrResult: zero (XR_SUCCESS) and positive values
// succeed, negative values are errors.
type Result int32

const Success Result = 0

func (r Result) Ok() bool { return r >= 0 }

// GraphicsBinding identifies which graphics API a session was created
// with, read off the XrSessionCreateInfo next chain at xrCreateSession
// (spec.md §4.5 "Multiple graphics APIs"). Exactly one of the handle
// fields is meaningful, selected by API.
type GraphicsBinding struct {
	API GraphicsAPI

	D3D11Device  uintptr
	D3D12Device  uintptr
	VulkanDevice uintptr
}

// GraphicsAPI names the graphics binding extension a session negotiated.
type GraphicsAPI uint8

const (
	GraphicsAPIUnknown GraphicsAPI = iota
	GraphicsAPID3D11
	GraphicsAPID3D12
	GraphicsAPIVulkan
)

func (a GraphicsAPI) backendName() string {
	switch a {
	case GraphicsAPID3D11:
		return "d3d11"
	case GraphicsAPID3D12:
		return "d3d12"
	case GraphicsAPIVulkan:
		return "vulkan"
	default:
		return ""
	}
}
