package openxrlayer

import (
	"testing"

	"github.com/OpenKneeboard/core/backend"
	"github.com/OpenKneeboard/core/compositor"
	"github.com/OpenKneeboard/core/config"
	"github.com/OpenKneeboard/core/geom"
	"github.com/OpenKneeboard/core/pose"
	"github.com/OpenKneeboard/core/shm"
)

type fakeGraphicsCompositor struct {
	rendered int
}

func (f *fakeGraphicsCompositor) Name() string { return "fake" }
func (f *fakeGraphicsCompositor) Close() error { return nil }
func (f *fakeGraphicsCompositor) ImportFrame(cmd backend.CommandContext, textureHandle, fenceHandle uintptr, fenceValue uint64) (backend.SourceView, error) {
	return textureHandle, nil
}
func (f *fakeGraphicsCompositor) Render(cmd backend.CommandContext, dest backend.TargetView, destSize geom.Size[uint32], result compositor.Result, source backend.SourceView) error {
	f.rendered++
	return nil
}
func (f *fakeGraphicsCompositor) SpriteBatch() backend.SpriteBatch { return nil }

type fakeNext struct {
	created   int
	destroyed int
	acquired  int
	waited    int
	released  int
}

func (n *fakeNext) CreateSwapchain(session XrSession, width, height uint32, format SwapchainFormat) (XrSwapchain, error) {
	n.created++
	return XrSwapchain(n.created), nil
}
func (n *fakeNext) DestroySwapchain(XrSwapchain) error          { n.destroyed++; return nil }
func (n *fakeNext) AcquireSwapchainImage(XrSwapchain) (uint32, error) { n.acquired++; return 0, nil }
func (n *fakeNext) WaitSwapchainImage(XrSwapchain) error         { n.waited++; return nil }
func (n *fakeNext) ReleaseSwapchainImage(XrSwapchain) error      { n.released++; return nil }

func mustProducerAndReader(t *testing.T) (*shm.Producer, *shm.Reader) {
	t.Helper()
	p, err := shm.CreateProducer(shm.RingSlotCount)
	if err != nil {
		t.Fatalf("CreateProducer: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	rd, err := shm.OpenReader(shm.ConsumerOpenXRD3D12)
	if err != nil {
		p.Close()
		t.Fatalf("OpenReader: %v", err)
	}
	t.Cleanup(func() { rd.Close() })
	return p, rd
}

func commitOneLayer(t *testing.T, p *shm.Producer) {
	t.Helper()
	g := p.BeginFrame()
	g.SetLayers([]shm.Layer{
		{
			LayerID:           1,
			LocationOnTexture: geom.RectFromLTWH[uint32](0, 0, 512, 512),
			VR:                config.ViewVRSettings{Opacity: 1, KneeboardSizeX: 0.25, KneeboardSizeY: 0.25},
			EnabledVR:         true,
		},
	}, 1, [4]float32{1, 1, 1, 1}, config.Quirks{})
	if err := g.SetTexture(0x1000, 0x2000, 1); err != nil {
		t.Fatalf("SetTexture: %v", err)
	}
	g.Commit()
}

func TestEndFrameRendersAndAcquiresSwapchain(t *testing.T) {
	p, rd := mustProducerAndReader(t)
	commitOneLayer(t, p)

	fakeComp := &fakeGraphicsCompositor{}
	sc := &SessionContext{reader: rd, compositor: fakeComp}
	next := &fakeNext{}

	result, err := sc.EndFrame(next, EndFrameInput{HeadPose: pose.Pose{}, GameLayerCount: 0})
	if err != nil {
		t.Fatalf("EndFrame: %v", err)
	}
	if len(result.Quads) != 1 {
		t.Fatalf("expected 1 quad, got %d", len(result.Quads))
	}
	if fakeComp.rendered != 1 {
		t.Fatalf("expected Render called once, got %d", fakeComp.rendered)
	}
	if next.created != 1 || next.acquired != 1 || next.waited != 1 || next.released != 1 {
		t.Fatalf("expected one swapchain lifecycle round trip, got %+v", next)
	}
}

func TestEndFrameReturnsErrNoFrameWhenNothingPublished(t *testing.T) {
	_, rd := mustProducerAndReader(t)
	sc := &SessionContext{reader: rd, compositor: &fakeGraphicsCompositor{}}

	_, err := sc.EndFrame(&fakeNext{}, EndFrameInput{})
	if err != errNoFrame {
		t.Fatalf("expected errNoFrame, got %v", err)
	}
}

func TestReorderTopmostSwapsInputLayerToEnd(t *testing.T) {
	quads := []compositor.Quad{{LayerID: 1}, {LayerID: 2}, {LayerID: 3}}
	reorderTopmost(quads, 1)
	if quads[len(quads)-1].LayerID != 1 {
		t.Fatalf("expected layer 1 last, got %+v", quads)
	}
}

func TestReorderTopmostNoOpWhenAlreadyLast(t *testing.T) {
	quads := []compositor.Quad{{LayerID: 1}, {LayerID: 2}}
	reorderTopmost(quads, 2)
	if quads[0].LayerID != 1 || quads[1].LayerID != 2 {
		t.Fatalf("expected no reorder, got %+v", quads)
	}
}
