package openxrlayer

import "fmt"

// VulkanEnable2State tracks how far an instance's Vulkan
// XR_KHR_vulkan_enable2 negotiation has progressed (spec.md §4.5
// "Vulkan enable2 state machine"), grounded on the original's
// VulkanXRStates enum and its state_transition helper. The state is
// only recorded: session creation does not consult it, so a Vulkan
// session is attached whether or not the enable2 entry points ran.
type VulkanEnable2State uint8

const (
	// NoVKEnable2 means neither xrCreateVulkanInstanceKHR nor
	// xrCreateVulkanDeviceKHR has been observed: the runtime and/or
	// application are using the older, deprecated Vulkan extensions.
	NoVKEnable2 VulkanEnable2State = iota
	// VKEnable2Instance means xrCreateVulkanInstanceKHR created the
	// VkInstance, but the device was not created via enable2.
	VKEnable2Instance
	// VKEnable2InstanceAndDevice means both the instance and device
	// were created through XR_KHR_vulkan_enable2: the fully-supported
	// path.
	VKEnable2InstanceAndDevice
)

func (s VulkanEnable2State) String() string {
	switch s {
	case NoVKEnable2:
		return "NoVKEnable2"
	case VKEnable2Instance:
		return "VKEnable2Instance"
	case VKEnable2InstanceAndDevice:
		return "VKEnable2InstanceAndDevice"
	default:
		return "Unknown"
	}
}

// errInvalidVulkanTransition reports an enable2 callback observed out of
// the order the OpenXR spec guarantees (instance creation must precede
// device creation).
type errInvalidVulkanTransition struct {
	from, attemptedFrom VulkanEnable2State
}

func (e *errInvalidVulkanTransition) Error() string {
	return fmt.Sprintf("openxrlayer: vulkan enable2 transition expected state %s, found %s", e.attemptedFrom, e.from)
}

// vulkanState returns instance's current Vulkan enable2 state.
func (ctx *InstanceContext) vulkanState() VulkanEnable2State {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.vulkan
}

// OnVulkanInstanceCreated records that xrCreateVulkanInstanceKHR ran.
// Called from NoVKEnable2 only; any other starting state means the
// application called it more than once, which the runtime itself should
// already reject, so this only asserts the expected precondition.
func (ctx *InstanceContext) OnVulkanInstanceCreated() error {
	return ctx.vulkanTransition(NoVKEnable2, VKEnable2Instance)
}

// OnVulkanDeviceCreated records that xrCreateVulkanDeviceKHR ran.
func (ctx *InstanceContext) OnVulkanDeviceCreated() error {
	return ctx.vulkanTransition(VKEnable2Instance, VKEnable2InstanceAndDevice)
}

func (ctx *InstanceContext) vulkanTransition(from, to VulkanEnable2State) error {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if ctx.vulkan != from {
		return &errInvalidVulkanTransition{from: ctx.vulkan, attemptedFrom: from}
	}
	ctx.vulkan = to
	return nil
}
