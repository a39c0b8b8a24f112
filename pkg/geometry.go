package telescope

// Geometry is the affine map from FEI4 pixel indices to the telescope local frame.
// Columns and rows are 1-based.
type Geometry struct {
	X0     float64 `db:"X0"`
	PitchX float64 `db:"PitchX"`
	Y0     float64 `db:"Y0"`
	PitchY float64 `db:"PitchY"`
}

// Fei4Geometry is the default pitch and dimensions of the FEI4 plane.
var Fei4Geometry = Geometry{
	X0:     -9.875,
	PitchX: 0.250,
	Y0:     -8.375,
	PitchY: 0.05,
}

func (g Geometry) Position(hit Hit) (float64, float64) {
	x := g.X0 + float64(hit.Col-1)*g.PitchX
	y := g.Y0 + float64(hit.Row-1)*g.PitchY
	return x, y
}
