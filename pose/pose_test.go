package pose

import "testing"

func TestVec3MirroredYZ(t *testing.T) {
	v := Vec3{X: 1, Y: 2, Z: 3}
	m := v.MirroredYZ()
	want := Vec3{X: -1, Y: 2, Z: 3}
	if m != want {
		t.Errorf("MirroredYZ() = %+v, want %+v", m, want)
	}
}

func TestQuaternionMirroredYZIdentity(t *testing.T) {
	m := IdentityQuaternion.MirroredYZ()
	if m != IdentityQuaternion {
		t.Errorf("mirroring identity should be identity, got %+v", m)
	}
}

func TestPoseMirroredYZ(t *testing.T) {
	p := Pose{Position: Vec3{X: 1, Y: 0, Z: 0}, Orientation: EulerDegrees(0, 90, 0)}
	m := p.MirroredYZ()
	if m.Position.X != -1 {
		t.Errorf("mirrored position.X = %v, want -1", m.Position.X)
	}
}
