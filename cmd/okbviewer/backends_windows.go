//go:build windows

package main

// Blank imports register the D3D11/D3D12 backends with the backend
// registry via each package's init(); only meaningful on Windows, where
// Direct3D exists.
import (
	_ "github.com/OpenKneeboard/core/backend/d3d11"
	_ "github.com/OpenKneeboard/core/backend/d3d12"
	_ "github.com/OpenKneeboard/core/backend/vulkan"
)
