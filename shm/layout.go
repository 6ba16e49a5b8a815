package shm

// WireVersion is the on-wire layout version. It is incremented whenever
// the fixed layout of the header or a slot changes; consumers with a
// mismatched version refuse to attach (spec.md §6).
const WireVersion = 2

// MaxViewCount is the hard cap on layers carried in a single frame slot
// (spec.md §3).
const MaxViewCount = 8

// RingSlotCount is the number of frame slots the ring is created with.
// Two slots let a writer begin the next frame while the slowest reader
// is still mapping the previous one, without the reader ever observing
// a slot mid-commit for more than SeqlockRetryLimit attempts.
const RingSlotCount = 2

// mappingNameFormat and writerMutexNameFormat are the platform-scoped named-object
// prefixes used to locate the ring (spec.md §6).
const (
	mappingNameFormat     = `Local\OpenKneeboard/SHM.v%d`
	writerMutexNameFormat = `Local\OpenKneeboard/SHM.v%d.mutex`
)

// ConsumerKind identifies the kind of process attaching to the ring as a
// reader, for per-kind liveness diagnostics (spec.md §3).
type ConsumerKind uint8

const (
	ConsumerViewer ConsumerKind = iota
	ConsumerOpenVR
	ConsumerOpenXRD3D11
	ConsumerOpenXRD3D12
	ConsumerOpenXRVulkan
	ConsumerOculusD3D11
	ConsumerNonVRD3D11

	consumerKindCount
)

// String returns the diagnostic name of the consumer kind.
func (k ConsumerKind) String() string {
	switch k {
	case ConsumerViewer:
		return "Viewer"
	case ConsumerOpenVR:
		return "OpenVR"
	case ConsumerOpenXRD3D11:
		return "OpenXR_D3D11"
	case ConsumerOpenXRD3D12:
		return "OpenXR_D3D12"
	case ConsumerOpenXRVulkan:
		return "OpenXR_Vulkan"
	case ConsumerOculusD3D11:
		return "Oculus_D3D11"
	case ConsumerNonVRD3D11:
		return "NonVR_D3D11"
	default:
		return "Unknown"
	}
}

// LastSeenKind identifies one of the ring header's "last seen"
// timestamp entries (spec.md §3). The three OpenXR graphics-API
// consumer kinds (D3D11/D3D12/Vulkan) share a single LastSeenOpenXR
// entry: liveness diagnostics only need to know an OpenXR consumer is
// alive, not which graphics API it bound.
type LastSeenKind uint8

const (
	LastSeenViewer LastSeenKind = iota
	LastSeenOpenXR
	LastSeenOpenVR
	LastSeenOculus
	LastSeenNonVRD3D11

	lastSeenKindCount
)

// String returns the diagnostic name of the feedback entry.
func (k LastSeenKind) String() string {
	switch k {
	case LastSeenViewer:
		return "ViewerLastSeen"
	case LastSeenOpenXR:
		return "OpenXRLastSeen"
	case LastSeenOpenVR:
		return "OpenVRLastSeen"
	case LastSeenOculus:
		return "OculusLastSeen"
	case LastSeenNonVRD3D11:
		return "NonVRD3D11LastSeen"
	default:
		return "Unknown"
	}
}

// lastSeenKindFor maps a ConsumerKind to the LastSeenKind entry it
// updates on every successful Reader.Map (spec.md §4.2.3).
func lastSeenKindFor(k ConsumerKind) (LastSeenKind, bool) {
	switch k {
	case ConsumerViewer:
		return LastSeenViewer, true
	case ConsumerOpenXRD3D11, ConsumerOpenXRD3D12, ConsumerOpenXRVulkan:
		return LastSeenOpenXR, true
	case ConsumerOpenVR:
		return LastSeenOpenVR, true
	case ConsumerOculusD3D11:
		return LastSeenOculus, true
	case ConsumerNonVRD3D11:
		return LastSeenNonVRD3D11, true
	default:
		return 0, false
	}
}

// ActiveConsumerTimeout is how recently a LastSeen timestamp must have
// been updated for that consumer kind to be considered active
// (spec.md §4.2.3).
const ActiveConsumerTimeout = 1_000 // milliseconds

// NtHandle is a cross-process shareable OS handle: a GPU texture or a
// timeline fence, duplicated into each consumer on first sight per
// session (spec.md §3). Its concrete representation is platform-specific;
// see duplicateHandle in mapping_windows.go for Windows NT-handle
// duplication.
type NtHandle uintptr

// InvalidNtHandle is the zero value, meaning "no handle".
const InvalidNtHandle NtHandle = 0

// IsValid reports whether h refers to an open handle.
func (h NtHandle) IsValid() bool { return h != InvalidNtHandle }
