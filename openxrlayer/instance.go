package openxrlayer

import (
	"sync"

	"github.com/OpenKneeboard/core/eventbus"
	"github.com/OpenKneeboard/core/logging"
)

// InstanceContext owns everything this layer tracks for one XrInstance:
// its Vulkan enable2 negotiation state and the sessions created against
// it. The original tracked this as a single process-wide gKneeboard
// global; this registry generalizes it to per-instance state so that
// more than one XrInstance can be live in the same process at once, per
// Design Notes §9.
type InstanceContext struct {
	instance XrInstance

	mu       sync.Mutex
	vulkan   VulkanEnable2State
	sessions map[XrSession]*SessionContext

	// Events fires SessionCreated/SessionDestroyed so a diagnostic
	// viewer or test harness can observe session lifecycle without
	// polling the registry (spec.md §9 "no direct coupling between the
	// layer and any external observer").
	Events *eventbus.Bus[SessionEvent]
}

// SessionEvent is published to an InstanceContext's Events bus.
type SessionEvent struct {
	Instance XrInstance
	Session  XrSession
	Created  bool
}

var (
	registryMu sync.Mutex
	registry   = make(map[XrInstance]*InstanceContext)
)

// GetOrCreateInstance returns the InstanceContext for instance, creating
// one on first sight (spec.md §9: "stored in a thread-safe global map
// keyed by XrInstance").
func GetOrCreateInstance(instance XrInstance) *InstanceContext {
	registryMu.Lock()
	defer registryMu.Unlock()

	if ctx, ok := registry[instance]; ok {
		return ctx
	}
	ctx := &InstanceContext{
		instance: instance,
		sessions: make(map[XrSession]*SessionContext),
		Events:   eventbus.New[SessionEvent](),
	}
	registry[instance] = ctx
	logging.Logger().Info("openxrlayer: instance attached", "instance", instance)
	return ctx
}

// LookupInstance returns the InstanceContext for instance, if any.
func LookupInstance(instance XrInstance) (*InstanceContext, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	ctx, ok := registry[instance]
	return ctx, ok
}

// DestroyInstance removes instance's InstanceContext and closes every
// session still registered under it (spec.md §4.5 "xrDestroyInstance
// tears down every session the instance owns").
func DestroyInstance(instance XrInstance) {
	registryMu.Lock()
	ctx, ok := registry[instance]
	delete(registry, instance)
	registryMu.Unlock()
	if !ok {
		return
	}

	ctx.mu.Lock()
	sessions := ctx.sessions
	ctx.sessions = nil
	ctx.mu.Unlock()

	for session, sc := range sessions {
		sc.Close()
		ctx.Events.Publish(SessionEvent{Instance: instance, Session: session, Created: false})
	}
	logging.Logger().Info("openxrlayer: instance destroyed", "instance", instance)
}

func (ctx *InstanceContext) session(session XrSession) (*SessionContext, bool) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	sc, ok := ctx.sessions[session]
	return sc, ok
}

// LookupSession returns the SessionContext xrCreateSession registered
// for session under instance, for hook dispatchers (cmd/okbxrlayer) that
// only have the raw handles xrEndFrame/xrDestroySession were called
// with.
func LookupSession(instance XrInstance, session XrSession) (*SessionContext, bool) {
	ctx, ok := LookupInstance(instance)
	if !ok {
		return nil, false
	}
	return ctx.session(session)
}

func (ctx *InstanceContext) addSession(session XrSession, sc *SessionContext) {
	ctx.mu.Lock()
	ctx.sessions[session] = sc
	ctx.mu.Unlock()
	ctx.Events.Publish(SessionEvent{Instance: ctx.instance, Session: session, Created: true})
}

func (ctx *InstanceContext) removeSession(session XrSession) {
	ctx.mu.Lock()
	sc, ok := ctx.sessions[session]
	delete(ctx.sessions, session)
	ctx.mu.Unlock()
	if ok {
		sc.Close()
		ctx.Events.Publish(SessionEvent{Instance: ctx.instance, Session: session, Created: false})
	}
}
