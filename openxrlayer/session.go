package openxrlayer

import (
	"fmt"
	"sync"

	"github.com/OpenKneeboard/core/backend"
	"github.com/OpenKneeboard/core/pose"
	"github.com/OpenKneeboard/core/shm"
)

// SessionContext is one XrSession's attachment: its graphics compositor,
// frame-ring reader, and current swapchain. It exists from xrCreateSession
// to xrDestroySession (spec.md §4.5).
type SessionContext struct {
	Instance XrInstance
	Session  XrSession
	Binding  GraphicsBinding

	mu          sync.Mutex
	compositor  backend.GraphicsCompositor
	reader      *shm.Reader
	swapchain   *SwapchainHandle
	runtimeName string

	haveHMDPose     bool
	lastDisplayTime XrTime
	lastHMDPose     pose.Pose
}

// HMDPose returns the head pose for displayTime, calling locate only if
// displayTime differs from the last call: xrEndFrame can be retried by a
// runtime with the same displayTime, and GetHMDPose in the original
// memoizes the xrLocateSpace result across such retries rather than
// re-issuing it.
func (sc *SessionContext) HMDPose(displayTime XrTime, locate func() (pose.Pose, error)) (pose.Pose, error) {
	sc.mu.Lock()
	if sc.haveHMDPose && sc.lastDisplayTime == displayTime {
		p := sc.lastHMDPose
		sc.mu.Unlock()
		return p, nil
	}
	sc.mu.Unlock()

	p, err := locate()
	if err != nil {
		return pose.Pose{}, err
	}

	sc.mu.Lock()
	sc.haveHMDPose = true
	sc.lastDisplayTime = displayTime
	sc.lastHMDPose = p
	sc.mu.Unlock()
	return p, nil
}

func consumerKindFor(api GraphicsAPI) shm.ConsumerKind {
	switch api {
	case GraphicsAPID3D11:
		return shm.ConsumerOpenXRD3D11
	case GraphicsAPID3D12:
		return shm.ConsumerOpenXRD3D12
	case GraphicsAPIVulkan:
		return shm.ConsumerOpenXRVulkan
	default:
		return shm.ConsumerViewer
	}
}

func deviceHandleFor(binding GraphicsBinding) uintptr {
	switch binding.API {
	case GraphicsAPID3D11:
		return binding.D3D11Device
	case GraphicsAPID3D12:
		return binding.D3D12Device
	case GraphicsAPIVulkan:
		return binding.VulkanDevice
	default:
		return 0
	}
}

// CreateSession handles xrCreateSession: it resolves binding's graphics
// API to a registered backend.GraphicsCompositor, opens a frame-ring
// Reader for the matching ConsumerKind, and registers the new
// SessionContext under instance (spec.md §4.5 "session hooks").
func CreateSession(instance XrInstance, session XrSession, binding GraphicsBinding, runtimeName string) (*SessionContext, error) {
	if binding.API == GraphicsAPIUnknown {
		return nil, fmt.Errorf("openxrlayer: xrCreateSession: no recognised graphics binding in next chain")
	}

	comp, err := backend.Get(binding.API.backendName(), deviceHandleFor(binding))
	if err != nil {
		return nil, fmt.Errorf("openxrlayer: xrCreateSession: %w", err)
	}

	reader, err := shm.OpenReader(consumerKindFor(binding.API))
	if err != nil {
		comp.Close()
		return nil, fmt.Errorf("openxrlayer: xrCreateSession: open frame ring: %w", err)
	}

	sc := &SessionContext{
		Instance:    instance,
		Session:     session,
		Binding:     binding,
		compositor:  comp,
		reader:      reader,
		runtimeName: runtimeName,
	}

	ctx := GetOrCreateInstance(instance)
	ctx.addSession(session, sc)
	return sc, nil
}

// DestroySession handles xrDestroySession: it removes the
// SessionContext from its instance (which closes it) and is a no-op if
// the session was never tracked (e.g. CreateSession failed).
func DestroySession(instance XrInstance, session XrSession) {
	ctx, ok := LookupInstance(instance)
	if !ok {
		return
	}
	ctx.removeSession(session)
}

// Close releases this session's compositor and frame-ring reader.
func (sc *SessionContext) Close() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.reader != nil {
		sc.reader.Close()
		sc.reader = nil
	}
	if sc.compositor != nil {
		err := sc.compositor.Close()
		sc.compositor = nil
		return err
	}
	return nil
}
