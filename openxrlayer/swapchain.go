package openxrlayer

// SwapchainFormat pairs the format a swapchain image is created with
// and the (possibly different) format a render-target view into it
// uses, grounded on OpenXRD3D11Kneeboard::GetSwapchainFormat: swapchains
// are created with an sRGB format and rendered into through a UNORM view.
type SwapchainFormat struct {
	TextureFormat int64
	ViewFormat    int64
}

// preferredD3DFormats lists the (texture, view) format pairs D3D11/D3D12
// swapchains are created with, in preference order. The shared texture
// the producer side writes into is always B8G8R8A8_UNORM (spec.md §3),
// so the first match keeps the compositor's copy a format-preserving
// blit with no conversion.
var preferredD3DFormats = []SwapchainFormat{
	{TextureFormat: dxgiFormatB8G8R8A8UNormSRGB, ViewFormat: dxgiFormatB8G8R8A8UNorm},
	{TextureFormat: dxgiFormatR8G8B8A8UNormSRGB, ViewFormat: dxgiFormatR8G8B8A8UNorm},
}

// DXGI_FORMAT values the preference list references. Only named where
// needed; this is not a full DXGI_FORMAT enum.
const (
	dxgiFormatR8G8B8A8UNorm     = 28
	dxgiFormatR8G8B8A8UNormSRGB = 29
	dxgiFormatB8G8R8A8UNorm     = 87
	dxgiFormatB8G8R8A8UNormSRGB = 91
)

// ChooseSwapchainFormat picks the best of supported (as enumerated via
// xrEnumerateSwapchainFormats) against a preference list, falling back
// to the runtime's first supported format if none of the preferred ones
// are present.
func ChooseSwapchainFormat(supported []int64, preferred []SwapchainFormat) SwapchainFormat {
	for _, pref := range preferred {
		for _, fmt := range supported {
			if fmt == pref.TextureFormat {
				return pref
			}
		}
	}
	if len(supported) == 0 {
		return SwapchainFormat{}
	}
	return SwapchainFormat{TextureFormat: supported[0], ViewFormat: supported[0]}
}

// vkFormatB8G8R8A8Srgb/Unorm are the Vulkan equivalents of the DXGI
// pair above, used when the session's GraphicsAPI is Vulkan.
const (
	vkFormatB8G8R8A8Unorm = 44
	vkFormatB8G8R8A8Srgb  = 50
)

var preferredVulkanFormats = []SwapchainFormat{
	{TextureFormat: vkFormatB8G8R8A8Srgb, ViewFormat: vkFormatB8G8R8A8Unorm},
}

// PreferredFormats returns the format preference list for api.
func PreferredFormats(api GraphicsAPI) []SwapchainFormat {
	if api == GraphicsAPIVulkan {
		return preferredVulkanFormats
	}
	return preferredD3DFormats
}

// SwapchainHandle is one live XrSwapchain and the size it was created
// at; a session recreates its swapchain whenever the compositor's atlas
// size changes.
type SwapchainHandle struct {
	Swapchain XrSwapchain
	Format    SwapchainFormat
	Width     uint32
	Height    uint32
}

// NeedsRecreate reports whether a previously created swapchain no longer
// matches the required atlas size.
func (h *SwapchainHandle) NeedsRecreate(width, height uint32) bool {
	return h == nil || h.Width != width || h.Height != height
}
