package logic

import (
	"image"
	"math"
	"testing"
	"time"
)

const epsilon = 1e-9

func TestComputeHandAngles(t *testing.T) {
	tests := []struct {
		name       string
		sample     TimeSample
		wantHour   float64
		wantMinute float64
	}{
		{"three o'clock", TimeSample{Hour: 3, Minute: 0}, 0.25, 0},
		{"half past three", TimeSample{Hour: 3, Minute: 30}, 0.25 + 0.5/12, 0.5},
		{"midnight", TimeSample{Hour: 0, Minute: 0}, 0, 0},
		{"noon wraps", TimeSample{Hour: 12, Minute: 0}, 0, 0},
		{"fifteen forty-five", TimeSample{Hour: 15, Minute: 45}, 0.25 + 0.75/12, 0.75},
		{"last minute of day", TimeSample{Hour: 23, Minute: 59}, 11.0/12 + (59.0/60)/12, 59.0 / 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeHandAngles(tt.sample)
			if math.Abs(got.Hour-tt.wantHour) > epsilon {
				t.Errorf("Hour: got %v, want %v", got.Hour, tt.wantHour)
			}
			if math.Abs(got.Minute-tt.wantMinute) > epsilon {
				t.Errorf("Minute: got %v, want %v", got.Minute, tt.wantMinute)
			}
		})
	}
}

func TestComputeHandAnglesInRange(t *testing.T) {
	for h := 0; h < 24; h++ {
		for m := 0; m < 60; m++ {
			a := ComputeHandAngles(TimeSample{Hour: h, Minute: m})
			if a.Hour < 0 || a.Hour >= 1 {
				t.Fatalf("%02d:%02d hour fraction out of range: %v", h, m, a.Hour)
			}
			if a.Minute < 0 || a.Minute >= 1 {
				t.Fatalf("%02d:%02d minute fraction out of range: %v", h, m, a.Minute)
			}
		}
	}
}

func TestRotatePolygonQuarterTurns(t *testing.T) {
	center := image.Pt(72, 84)
	tip := []image.Point{{0, -69}}

	tests := []struct {
		fraction float64
		want     image.Point
	}{
		{0, image.Pt(72, 15)},     // 12 o'clock
		{0.25, image.Pt(141, 84)}, // 3 o'clock
		{0.5, image.Pt(72, 153)},  // 6 o'clock
		{0.75, image.Pt(3, 84)},   // 9 o'clock
	}

	for _, tt := range tests {
		got := RotatePolygon(tip, tt.fraction, center)
		if got[0] != tt.want {
			t.Errorf("fraction %v: got %v, want %v", tt.fraction, got[0], tt.want)
		}
	}
}

func TestRotatePolygonPreservesInput(t *testing.T) {
	pts := []image.Point{{-4, 12}, {4, 12}, {4, -43}, {-4, -43}}
	orig := append([]image.Point(nil), pts...)

	RotatePolygon(pts, 0.3, image.Pt(10, 10))

	for i := range pts {
		if pts[i] != orig[i] {
			t.Fatalf("input mutated at %d: got %v, want %v", i, pts[i], orig[i])
		}
	}
}

func TestSampleTime(t *testing.T) {
	ts := SampleTime(time.Date(2026, 3, 7, 21, 42, 13, 0, time.UTC))
	want := TimeSample{Hour: 21, Minute: 42, Day: 7}
	if ts != want {
		t.Errorf("got %+v, want %+v", ts, want)
	}
}
