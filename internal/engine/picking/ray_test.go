package picking

import (
	"testing"

	"github.com/Faultbox/midgard-sculpt/pkg/math"
)

func approxEqual(a, b, eps float32) bool {
	d := a - b
	return d < eps && d > -eps
}

func TestIntersectAABB(t *testing.T) {
	box := NewAABB(math.Vec3{X: 1, Y: 1, Z: 1}, math.Vec3{X: -1, Y: -1, Z: -1})

	tests := []struct {
		name  string
		ray   Ray
		hit   bool
		wantT float32
	}{
		{"front", Ray{Origin: math.Vec3{Z: 5}, Direction: math.Vec3{Z: -1}}, true, 4},
		{"inside", Ray{Origin: math.Vec3{}, Direction: math.Vec3{X: 1}}, true, 1},
		{"behind", Ray{Origin: math.Vec3{Z: 5}, Direction: math.Vec3{Z: 1}}, false, 0},
		{"miss parallel", Ray{Origin: math.Vec3{X: 2, Z: 5}, Direction: math.Vec3{Z: -1}}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := tt.ray.IntersectAABB(box)
			if hit != tt.hit {
				t.Fatalf("hit = %v, want %v", hit, tt.hit)
			}
			if hit && !approxEqual(got, tt.wantT, 1e-5) {
				t.Errorf("t = %v, want %v", got, tt.wantT)
			}
		})
	}
}

func TestIntersectTriangle(t *testing.T) {
	a := math.Vec3{X: -1, Y: -1}
	b := math.Vec3{X: 1, Y: -1}
	c := math.Vec3{Y: 1}

	r := Ray{Origin: math.Vec3{Z: 3}, Direction: math.Vec3{Z: -1}}
	dist, u, v, hit := r.IntersectTriangle(a, b, c)
	if !hit {
		t.Fatal("expected hit")
	}
	if !approxEqual(dist, 3, 1e-5) {
		t.Errorf("t = %v, want 3", dist)
	}
	p := a.Scale(1 - u - v).Add(b.Scale(u)).Add(c.Scale(v))
	if p.Distance(r.At(dist)) > 1e-5 {
		t.Errorf("barycentric point %v != ray point %v", p, r.At(dist))
	}

	// Back face
	r = Ray{Origin: math.Vec3{Z: -3}, Direction: math.Vec3{Z: 1}}
	if _, _, _, hit := r.IntersectTriangle(a, b, c); !hit {
		t.Error("expected back face hit")
	}

	// Outside the triangle
	r = Ray{Origin: math.Vec3{X: 1, Y: 1, Z: 3}, Direction: math.Vec3{Z: -1}}
	if _, _, _, hit := r.IntersectTriangle(a, b, c); hit {
		t.Error("expected miss")
	}

	// Parallel
	r = Ray{Origin: math.Vec3{Z: 3}, Direction: math.Vec3{X: 1}}
	if _, _, _, hit := r.IntersectTriangle(a, b, c); hit {
		t.Error("expected parallel miss")
	}
}

func TestScreenToRayCenter(t *testing.T) {
	proj := math.Perspective(1, 1, 0.1, 100)
	view := math.LookAt(math.Vec3{Z: 5}, math.Vec3{}, math.Vec3{Y: 1})
	inv := proj.Mul(view).Inverse()

	r := ScreenToRay(400, 300, 800, 600, inv)
	if !approxEqual(r.Direction.Z, -1, 1e-3) {
		t.Errorf("direction = %v, want -Z", r.Direction)
	}
	if !approxEqual(r.Origin.X, 0, 1e-3) || !approxEqual(r.Origin.Y, 0, 1e-3) {
		t.Errorf("origin = %v, want on the Z axis", r.Origin)
	}
}
