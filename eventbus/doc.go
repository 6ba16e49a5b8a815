// Package eventbus implements the token-keyed subscription bus called
// for in Design Notes §9: the source's weak-pointer binders
// (bind_refs_front, bind_winrt_context) exist to keep event sources from
// strongly referencing their subscribers. A Bus owns every subscriber's
// callback directly; subscribers hold only a Token, so dropping a Token
// (calling Unsubscribe) is the only way to remove a callback and there
// is no cycle between publisher and subscriber to begin with.
package eventbus
