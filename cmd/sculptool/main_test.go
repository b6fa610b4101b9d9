package main

import (
	"testing"

	"github.com/Faultbox/midgard-sculpt/pkg/math"
)

func TestParseVec3(t *testing.T) {
	tests := []struct {
		in      string
		want    math.Vec3
		wantErr bool
	}{
		{"0,0,0", math.Vec3{}, false},
		{"1, -2.5, 3e-1", math.Vec3{X: 1, Y: -2.5, Z: 0.3}, false},
		{"1,2", math.Vec3{}, true},
		{"1,2,3,4", math.Vec3{}, true},
		{"a,b,c", math.Vec3{}, true},
	}
	for _, tt := range tests {
		got, err := parseVec3(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseVec3(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseVec3(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
