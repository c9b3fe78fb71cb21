package hierarchy

import "testing"

func TestParseBounds(t *testing.T) {
	tests := []struct {
		input   string
		want    Bounds
		wantErr bool
	}{
		{"[0,0][100,200]", Bounds{0, 0, 100, 200}, false},
		{"[10,20][110,220]", Bounds{10, 20, 110, 220}, false},
		{"invalid", Bounds{}, true},
		{"[0,0]", Bounds{}, true},
		{"[0,0][1,2][3,4]", Bounds{}, true},
		{"[a,b][c,d]", Bounds{}, true},
		{"", Bounds{}, true},
	}

	for _, tt := range tests {
		got, err := ParseBounds(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseBounds(%q): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseBounds(%q): %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseBounds(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}

func TestBoundsGeometry(t *testing.T) {
	b := Bounds{X1: 10, Y1: 20, X2: 110, Y2: 220}
	if b.Width() != 100 || b.Height() != 200 {
		t.Errorf("got %dx%d, want 100x200", b.Width(), b.Height())
	}
	if b.Area() != 20000 {
		t.Errorf("got area %d, want 20000", b.Area())
	}
	if b.CenterX() != 60.0 || b.CenterY() != 120.0 {
		t.Errorf("got center (%v,%v), want (60,120)", b.CenterX(), b.CenterY())
	}
}
