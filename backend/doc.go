// Package backend declares the per-graphics-API contract for rendering
// the kneeboard overlay and a registry of concrete implementations.
//
// Each of backend/d3d11, backend/d3d12 and backend/vulkan registers a
// Factory under its backend name on import:
//
//	import _ "github.com/OpenKneeboard/core/backend/d3d12"
//
// openxrlayer selects a backend once, at xrCreateSession, by inspecting
// the session's graphics binding and calling Get with the matching name:
//
//	c, err := backend.Get(backend.BackendD3D12, deviceHandle)
//
// The chosen GraphicsCompositor is held concretely for the session's
// lifetime; there is no further backend dispatch on the xrEndFrame hot
// path (spec.md §9 "Multiple graphics APIs").
package backend
