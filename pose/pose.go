// Package pose provides the 3-D position/orientation value types used
// to place VR kneeboard layers in the local reference space, and to
// report the viewer's head pose back to the compositor.
package pose

import "math"

// Vec3 is a position or direction in metres, in the runtime's local
// reference space.
type Vec3 struct {
	X, Y, Z float32
}

// Add returns the sum of two vectors.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Negate returns -v.
func (v Vec3) Negate() Vec3 {
	return Vec3{X: -v.X, Y: -v.Y, Z: -v.Z}
}

// MirroredYZ mirrors v across the YZ plane (negates X), matching the
// source's horizontal-mirror view kind.
func (v Vec3) MirroredYZ() Vec3 {
	return Vec3{X: -v.X, Y: v.Y, Z: v.Z}
}

// Quaternion is a unit rotation, (X, Y, Z, W) order to match the OpenXR
// wire representation (XrQuaternionf).
type Quaternion struct {
	X, Y, Z, W float32
}

// IdentityQuaternion is the no-rotation quaternion.
var IdentityQuaternion = Quaternion{W: 1}

// EulerDegrees builds a Quaternion from intrinsic pitch/yaw/roll angles
// in degrees, matching how the settings UI stores pose configuration.
func EulerDegrees(pitch, yaw, roll float32) Quaternion {
	const deg2rad = math.Pi / 180

	hx := float64(pitch) * deg2rad / 2
	hy := float64(yaw) * deg2rad / 2
	hz := float64(roll) * deg2rad / 2

	cx, sx := math.Cos(hx), math.Sin(hx)
	cy, sy := math.Cos(hy), math.Sin(hy)
	cz, sz := math.Cos(hz), math.Sin(hz)

	return Quaternion{
		X: float32(sx*cy*cz + cx*sy*sz),
		Y: float32(cx*sy*cz - sx*cy*sz),
		Z: float32(cx*cy*sz + sx*sy*cz),
		W: float32(cx*cy*cz - sx*sy*sz),
	}
}

// MirroredYZ mirrors the rotation represented by q across the YZ plane.
// Mirroring a rotation matrix's X axis is equivalent to negating the Y
// and Z components of the quaternion representing it.
func (q Quaternion) MirroredYZ() Quaternion {
	return Quaternion{X: q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// Pose is a rigid transform: a position plus an orientation.
type Pose struct {
	Position    Vec3
	Orientation Quaternion
}

// Identity is the origin pose with no rotation.
var Identity = Pose{Orientation: IdentityQuaternion}

// MirroredYZ returns the pose mirrored across the YZ plane: this is how
// the compositor derives a "horizontal mirror" VR view's effective pose
// from the view it mirrors.
func (p Pose) MirroredYZ() Pose {
	return Pose{
		Position:    p.Position.MirroredYZ(),
		Orientation: p.Orientation.MirroredYZ(),
	}
}
