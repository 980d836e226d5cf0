package shadow

import (
	"math"
	"testing"

	"github.com/unaigarro/sombra/internal/core/domain"
)

func wallBetween(ax, ay, bx, by, height float64) *domain.Wall {
	return &domain.Wall{
		ID:              "w",
		GID:             1,
		CadastralNumber: "REF",
		Points: domain.WallCorners{
			DownLeft:  domain.Point3D{X: ax, Y: ay, Z: 0},
			UpLeft:    domain.Point3D{X: ax, Y: ay, Z: height},
			UpRight:   domain.Point3D{X: bx, Y: by, Z: height},
			DownRight: domain.Point3D{X: bx, Y: by, Z: 0},
		},
	}
}

func TestProjectFacingWall(t *testing.T) {
	obs := domain.Point3D{X: 0, Y: 0, Z: 0}
	// 10 m wide, 9 m tall wall 15 m due north.
	s := Project(obs, wallBetween(-5, 15, 5, 15, 9))
	if s == nil {
		t.Fatal("expected a shadow")
	}

	wantAz := math.Atan2(5, 15) * radToDeg // 18.4349°
	if math.Abs(s.Points.DownLeft.Azimuth+wantAz) > 1e-9 {
		t.Errorf("downLeft azimuth = %v, want %v", s.Points.DownLeft.Azimuth, -wantAz)
	}
	if math.Abs(s.Points.DownRight.Azimuth-wantAz) > 1e-9 {
		t.Errorf("downRight azimuth = %v, want %v", s.Points.DownRight.Azimuth, wantAz)
	}

	wantEl := math.Atan2(9, math.Hypot(5, 15)) * radToDeg // 29.6538°
	if math.Abs(s.Points.UpLeft.Elevation-wantEl) > 1e-9 {
		t.Errorf("upLeft elevation = %v, want %v", s.Points.UpLeft.Elevation, wantEl)
	}
	if s.Points.DownLeft.Elevation != 0 || s.Points.DownRight.Elevation != 0 {
		t.Errorf("bottom corners at observer height must sit on the horizon")
	}
	if s.CadastralNumber != "REF" || s.GID != 1 {
		t.Errorf("projection lost source identity: %+v", s)
	}
}

func TestProjectClampsBelowHorizon(t *testing.T) {
	// Observer 20 m up: wall tops are below the horizontal plane.
	obs := domain.Point3D{X: 0, Y: 0, Z: 20}
	s := Project(obs, wallBetween(-5, 15, 5, 15, 9))
	if s == nil {
		t.Fatal("expected a shadow")
	}
	for _, p := range []domain.ShadowPoint{
		s.Points.DownLeft, s.Points.UpLeft, s.Points.UpRight, s.Points.DownRight,
	} {
		if p.Elevation != 0 {
			t.Errorf("corner below horizon must clamp to 0, got %v", p.Elevation)
		}
	}
}

func TestProjectAcrossSeam(t *testing.T) {
	// Wall due south straddling the ±180° seam.
	obs := domain.Point3D{X: 0, Y: 0, Z: 0}
	s := Project(obs, wallBetween(-5, -15, 5, -15, 9))
	if s == nil {
		t.Fatal("expected a shadow")
	}
	az := []float64{
		s.Points.DownLeft.Azimuth,
		s.Points.UpLeft.Azimuth,
		s.Points.UpRight.Azimuth,
		s.Points.DownRight.Azimuth,
	}
	for _, a := range az {
		if a < -180 || a >= 180 {
			t.Errorf("azimuth %v out of [-180, 180)", a)
		}
	}
	if got := Span(az...); got > 180 {
		t.Errorf("seam-straddling wall spans %v°, want the true subtense ≤ 180", got)
	}
	wantWidth := 2 * math.Atan2(5, 15) * radToDeg
	if got := Span(az...); math.Abs(got-wantWidth) > 1e-9 {
		t.Errorf("span = %v, want %v", got, wantWidth)
	}
}

func TestProjectCornerOverObserver(t *testing.T) {
	// Left corner exactly on the observer's vertical axis.
	obs := domain.Point3D{X: 0, Y: 0, Z: 0}
	s := Project(obs, wallBetween(0, 0, 10, 0, 5))
	if s == nil {
		t.Fatal("expected a shadow")
	}
	if s.Points.UpLeft.Elevation != 90 {
		t.Errorf("corner over observer must have elevation 90, got %v", s.Points.UpLeft.Elevation)
	}
	// Borrowed azimuth: the nearest non-degenerate corner is due east.
	if math.Abs(s.Points.UpLeft.Azimuth-90) > 1e-9 {
		t.Errorf("degenerate corner azimuth = %v, want 90 (borrowed)", s.Points.UpLeft.Azimuth)
	}
}

func TestProjectWallOnObserverAxis(t *testing.T) {
	obs := domain.Point3D{X: 0, Y: 0, Z: 0}
	if s := Project(obs, wallBetween(0, 0, 0, 0, 5)); s != nil {
		t.Errorf("wall collapsed onto the observer axis must be dropped, got %+v", s)
	}
}

func TestProjectDropsUnboundedSpan(t *testing.T) {
	// A malformed face whose corners sweep more than a half turn around the
	// observer cannot bound a sky region and must be dropped, not emitted.
	obs := domain.Point3D{X: 0, Y: 0, Z: 0}
	w := &domain.Wall{
		Points: domain.WallCorners{
			DownLeft:  domain.Point3D{X: 0, Y: 10, Z: 0},     // az 0°
			UpLeft:    domain.Point3D{X: 8.66, Y: -5, Z: 5},  // az ≈ 120°
			UpRight:   domain.Point3D{X: -8.66, Y: -5, Z: 5}, // az ≈ -120°
			DownRight: domain.Point3D{X: 0, Y: 12, Z: 0},     // az 0°
		},
	}
	if s := Project(obs, w); s != nil {
		t.Errorf("corner sweep >180° must be dropped, got %+v", s)
	}
}

func TestProjectObserverInWallPlane(t *testing.T) {
	// Observer collinear with and inside the wall segment: the subtense is
	// exactly 180° and is still emitted as a valid hemisphere-wide quad.
	obs := domain.Point3D{X: 0, Y: 0, Z: 0}
	s := Project(obs, wallBetween(-100, 0, 100, 0, 5))
	if s == nil {
		t.Fatal("expected a shadow")
	}
	az := []float64{
		s.Points.DownLeft.Azimuth,
		s.Points.UpLeft.Azimuth,
		s.Points.UpRight.Azimuth,
		s.Points.DownRight.Azimuth,
	}
	if got := Span(az...); math.Abs(got-180) > 1e-9 {
		t.Errorf("span = %v, want exactly 180", got)
	}
}
