//go:build !windows

package main

// On non-Windows platforms only the Vulkan backend is available: D3D11
// and D3D12 do not exist outside Windows.
import (
	_ "github.com/OpenKneeboard/core/backend/vulkan"
)
