// Package openxrlayer implements the OpenXR API layer that feeds a
// game's rendered frames into xrEndFrame composition: an
// XrInstance-keyed registry of per-instance state, the
// XR_KHR_vulkan_enable2 negotiation state machine, swapchain lifecycle,
// and the xrEndFrame algorithm itself (spec.md §4.5), near-verbatim in
// control flow from OpenXRKneeboard::xrEndFrame.
package openxrlayer
