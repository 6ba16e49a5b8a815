package backend

import "github.com/gogpu/gputypes"

// SharedTextureFormat is the pixel format the producer is required to
// use for its shared frame texture, shared by every backend so
// ImportFrame never needs a per-API format conversion: D3D11/D3D12
// expose it through DXGI_FORMAT_B8G8R8A8_UNORM, Vulkan through
// VK_FORMAT_B8G8R8A8_UNORM, both of which map to the same gputypes
// vocabulary.
const SharedTextureFormat = gputypes.TextureFormatBGRA8Unorm
