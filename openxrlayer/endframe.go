package openxrlayer

import (
	"errors"
	"fmt"

	"github.com/OpenKneeboard/core/compositor"
	"github.com/OpenKneeboard/core/geom"
	"github.com/OpenKneeboard/core/pose"
	"github.com/OpenKneeboard/core/shm"
)

// Next is the subset of the runtime's real OpenXR function pointers
// EndFrame needs to drive a swapchain, resolved once per instance from
// xrGetInstanceProcAddr by the caller (cmd/okbxrlayer). Modeling it as
// an interface, rather than calling through C function pointers
// directly, is what lets EndFrame's control flow be unit tested without
// a real OpenXR runtime.
type Next interface {
	CreateSwapchain(session XrSession, width, height uint32, format SwapchainFormat) (XrSwapchain, error)
	DestroySwapchain(XrSwapchain) error
	AcquireSwapchainImage(XrSwapchain) (imageIndex uint32, err error)
	WaitSwapchainImage(XrSwapchain) error
	ReleaseSwapchainImage(XrSwapchain) error
}

// EndFrameInput bundles the per-call, caller-supplied state EndFrame
// needs beyond what SessionContext already holds.
type EndFrameInput struct {
	DisplayTime XrTime
	HeadPose    pose.Pose
	GazePoint   *geom.Point[float32]

	// GameLayerCount is frameEndInfo->layerCount in the original: how
	// many composition layers the game itself is submitting this frame,
	// used to cap how many kneeboard quads fit under MaxLayerCount.
	GameLayerCount int
}

// MaxLayerCount is the runtime-imposed ceiling on total composition
// layers per xrEndFrame call (spec.md §4.5), shared with every layer
// the game itself submits.
const MaxLayerCount = 16

// EndFrameResult is what the caller splices into its own XrFrameEndInfo
// before forwarding to the next xrEndFrame in the chain: zero or more
// additional XrCompositionLayerQuad entries, already topmost-ordered.
type EndFrameResult struct {
	Quads      []compositor.Quad
	AtlasImage uintptr
}

var errNoFrame = errors.New("openxrlayer: no kneeboard layers to compose this frame")

// EndFrame implements the xrEndFrame algorithm (spec.md §4.5), a
// near-verbatim port of OpenXRKneeboard::xrEndFrame: pull the latest
// frame from the shared ring, resolve it to a draw list via
// compositor.Build, (re)create the shared swapchain if its required
// size changed, render the sprites into it, and return the VR quads for
// the caller to append to the game's own composition layers. Returns
// errNoFrame (not a hard error) whenever there is nothing to compose,
// so the caller's existing xrEndFrame call goes through unmodified.
func (sc *SessionContext) EndFrame(next Next, in EndFrameInput) (EndFrameResult, error) {
	sc.mu.Lock()
	reader := sc.reader
	comp := sc.compositor
	runtimeName := sc.runtimeName
	sc.mu.Unlock()

	if reader == nil || comp == nil {
		return EndFrameResult{}, errNoFrame
	}

	snap, err := reader.MaybeGet()
	if err != nil {
		if errors.Is(err, shm.ErrNoFrame) || errors.Is(err, shm.ErrSeqlockRetryExceeded) {
			return EndFrameResult{}, errNoFrame
		}
		return EndFrameResult{}, fmt.Errorf("openxrlayer: MaybeGet: %w", err)
	}
	if len(snap.Layers) == 0 {
		return EndFrameResult{}, errNoFrame
	}

	result := compositor.Build(compositor.BuildInput{
		Snapshot:          snap,
		IsVR:              true,
		HeadPose:          in.HeadPose,
		RuntimeName:       runtimeName,
		MaxViewRenderSize: maxViewRenderSize,
		GazePoint:         in.GazePoint,
	})
	if len(result.Quads) == 0 {
		return EndFrameResult{}, errNoFrame
	}

	layerCount := len(result.Quads)
	if budget := MaxLayerCount - in.GameLayerCount; layerCount > budget {
		if budget <= 0 {
			return EndFrameResult{}, errNoFrame
		}
		layerCount = budget
		result.Quads = result.Quads[:layerCount]
		result.Sprites = filterSpritesForQuads(result.Sprites, result.Quads)
	}

	reorderTopmost(result.Quads, snap.GlobalInputLayerID)

	mapped, err := reader.Map(snap)
	if err != nil {
		return EndFrameResult{}, fmt.Errorf("openxrlayer: Map: %w", err)
	}

	sc.mu.Lock()
	swapchain := sc.swapchain
	sc.mu.Unlock()
	if swapchain.NeedsRecreate(result.AtlasSize.Width, result.AtlasSize.Height) {
		swapchain, err = sc.recreateSwapchain(next, result.AtlasSize)
		if err != nil {
			return EndFrameResult{}, err
		}
	}

	imageIndex, err := next.AcquireSwapchainImage(swapchain.Swapchain)
	if err != nil {
		return EndFrameResult{}, fmt.Errorf("openxrlayer: AcquireSwapchainImage: %w", err)
	}
	if err := next.WaitSwapchainImage(swapchain.Swapchain); err != nil {
		return EndFrameResult{}, fmt.Errorf("openxrlayer: WaitSwapchainImage: %w", err)
	}

	source, err := comp.ImportFrame(nil, uintptr(mapped.Texture), uintptr(mapped.Fence), mapped.FenceValue)
	if err != nil {
		return EndFrameResult{}, fmt.Errorf("openxrlayer: ImportFrame: %w", err)
	}
	if err := comp.Render(nil, imageIndex, result.AtlasSize, result, source); err != nil {
		return EndFrameResult{}, fmt.Errorf("openxrlayer: Render: %w", err)
	}

	if err := next.ReleaseSwapchainImage(swapchain.Swapchain); err != nil {
		return EndFrameResult{}, fmt.Errorf("openxrlayer: ReleaseSwapchainImage: %w", err)
	}

	return EndFrameResult{Quads: result.Quads}, nil
}

// maxViewRenderSize is the destination size the Varjo upscale quirk
// targets (spec.md §4.5 "upscaling"); matches the original's
// Config::MaxViewRenderSize constant.
var maxViewRenderSize = geom.Sz[uint32](2048, 2048)

func (sc *SessionContext) recreateSwapchain(next Next, size geom.Size[uint32]) (*SwapchainHandle, error) {
	sc.mu.Lock()
	old := sc.swapchain
	session := sc.Session
	api := sc.Binding.API
	sc.mu.Unlock()

	if old != nil {
		if err := next.DestroySwapchain(old.Swapchain); err != nil {
			return nil, fmt.Errorf("openxrlayer: DestroySwapchain: %w", err)
		}
	}

	format := PreferredFormats(api)[0]
	swapchain, err := next.CreateSwapchain(session, size.Width, size.Height, format)
	if err != nil {
		return nil, fmt.Errorf("openxrlayer: CreateSwapchain: %w", err)
	}
	handle := &SwapchainHandle{Swapchain: swapchain, Format: format, Width: size.Width, Height: size.Height}

	sc.mu.Lock()
	sc.swapchain = handle
	sc.mu.Unlock()
	return handle, nil
}

// reorderTopmost swaps whichever quad currently sits last with the one
// matching globalInputLayerID, so the input-focused layer is always the
// final (topmost) entry the runtime composites, matching the original's
// single std::swap rather than a full stable reorder.
func reorderTopmost(quads []compositor.Quad, globalInputLayerID uint64) {
	last := len(quads) - 1
	for i, q := range quads {
		if q.LayerID == globalInputLayerID && i != last {
			quads[i], quads[last] = quads[last], quads[i]
			return
		}
	}
}

func filterSpritesForQuads(sprites []compositor.Sprite, quads []compositor.Quad) []compositor.Sprite {
	keep := make(map[uint64]bool, len(quads))
	for _, q := range quads {
		keep[q.LayerID] = true
	}
	out := sprites[:0]
	for _, s := range sprites {
		if keep[s.LayerID] {
			out = append(out, s)
		}
	}
	return out
}
