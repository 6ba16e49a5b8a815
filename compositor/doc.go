// Package compositor turns a frame snapshot, a viewer pose, and the
// placement settings for each layer into a draw list, per spec.md §4.4.
// It is a pure function from (snapshot, pose, settings) to (atlas size,
// quads, sprites): it owns no GPU state and performs no I/O, so it is
// exercised entirely by table-driven tests with no backend present.
package compositor
