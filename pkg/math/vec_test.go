package math

import (
	"math"
	"testing"
)

func TestVec2ComponentWise(t *testing.T) {
	a := Vec2{2, 9}
	b := Vec2{4, 3}
	tests := []struct {
		name      string
		got, want Vec2
	}{
		{"Add", a.Add(b), Vec2{6, 12}},
		{"Sub", a.Sub(b), Vec2{-2, 6}},
		{"Mul", a.Mul(b), Vec2{8, 27}},
		{"Div", a.Div(b), Vec2{0.5, 3}},
		{"Min", a.Min(b), Vec2{2, 3}},
		{"Max", a.Max(b), Vec2{4, 9}},
		{"Ceil", Vec2{1.2, 3.0}.Ceil(), Vec2{2, 3}},
		{"Splat", Splat(7), Vec2{7, 7}},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("Vec2.%s() = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestVec2Measures(t *testing.T) {
	v := Vec2{3, 4}
	if got := v.Length(); got != 5 {
		t.Errorf("Vec2.Length() = %v, want 5", got)
	}
	if got := v.Area(); got != 12 {
		t.Errorf("Vec2.Area() = %v, want 12", got)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	n := Vec3{3, 4, 12}.Normalize()
	if l := n.Length(); math.Abs(l-1) > 1e-12 {
		t.Errorf("Vec3.Normalize().Length() = %v, want 1", l)
	}
	if z := (Vec3{}).Normalize(); z != (Vec3{}) {
		t.Errorf("zero vector normalized to %v", z)
	}
}

func TestVec3ClosestAxis(t *testing.T) {
	tests := []struct {
		v    Vec3
		want int
	}{
		{Vec3{1, 0, 0}, 0},
		{Vec3{0, -2, 1}, 1},
		{Vec3{0.1, 0.2, -0.9}, 2},
		{Vec3{1, 1, 1}, 2},
		{Vec3{1, 1, 0}, 1},
	}
	for _, tt := range tests {
		if got := tt.v.ClosestAxis(); got != tt.want {
			t.Errorf("%v.ClosestAxis() = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestVec3Lerp(t *testing.T) {
	got := Vec3{0, 0, 0}.Lerp(Vec3{10, -10, 4}, 0.25)
	want := Vec3{2.5, -2.5, 1}
	if got != want {
		t.Errorf("Vec3.Lerp() = %v, want %v", got, want)
	}
}

func TestVec3IsFinite(t *testing.T) {
	if !(Vec3{1, 2, 3}).IsFinite() {
		t.Error("expected finite vector")
	}
	if (Vec3{math.NaN(), 0, 0}).IsFinite() {
		t.Error("NaN vector reported finite")
	}
}
