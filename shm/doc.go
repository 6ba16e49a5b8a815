// Package shm implements the cross-process single-producer/
// multi-consumer frame ring described in spec.md §4.2: a fixed-layout
// shared mapping of N frame slots plus a header, synchronized with a
// seqlock per slot and atomic per-consumer feedback entries.
//
// The producer (the UI process, or any content-source process) calls
// Producer.BeginFrame/WriterGuard.Commit to publish a layered overlay
// texture and fence value. Consumers (one per injected game process, plus
// the diagnostic viewer) call Reader.MaybeGet/Reader.Map to obtain a
// consistent FrameSnapshot and a per-API MappedFrame.
package shm
