package engine

// Window is a run of ConnectLength squares along one orientation.
type Window [ConnectLength]Square

// Orientation steps, in (row, column) deltas.
var orientations = [4][2]int{
	{0, 1},   // horizontal
	{1, 0},   // vertical
	{-1, 1},  // diagonal down-right
	{-1, -1}, // diagonal down-left
}

var (
	allWindows  []Window
	cellWindows [Rows][Columns][]Window

	// LinePotential[row][column] is the number of four-in-a-row windows
	// through the cell on an empty board (3 in the corners, 13 in the centre).
	LinePotential [Rows][Columns]int
)

func init() {
	for row := 0; row < Rows; row++ {
		for col := 0; col < Columns; col++ {
			for _, o := range orientations {
				w, ok := windowFrom(Square{row, col}, o)
				if ok {
					allWindows = append(allWindows, w)
				}
			}
		}
	}
	for _, w := range allWindows {
		for _, sq := range w {
			cellWindows[sq.Row][sq.Column] = append(cellWindows[sq.Row][sq.Column], w)
		}
	}
	for row := 0; row < Rows; row++ {
		for col := 0; col < Columns; col++ {
			LinePotential[row][col] = len(cellWindows[row][col])
		}
	}
}

// windowFrom builds the window starting at start along o, if it fits.
func windowFrom(start Square, o [2]int) (Window, bool) {
	var w Window
	for i := 0; i < ConnectLength; i++ {
		sq := Square{start.Row + i*o[0], start.Column + i*o[1]}
		if !sq.InBounds() {
			return w, false
		}
		w[i] = sq
	}
	return w, true
}

// AllWindows returns every window on the board (69 on 6x7). The slice is
// shared and must not be modified.
func AllWindows() []Window { return allWindows }

// WindowsThrough returns the windows containing (row, column). The slice is
// shared and must not be modified.
func WindowsThrough(row, column int) []Window { return cellWindows[row][column] }

// Holds reports whether any square of w contains side.
func (b *Board) Holds(w Window, side Cell) bool {
	for _, sq := range w {
		if b.Cells[sq.Row][sq.Column] == side {
			return true
		}
	}
	return false
}

// owns reports whether every square of w contains side.
func (b *Board) owns(w Window, side Cell) bool {
	for _, sq := range w {
		if b.Cells[sq.Row][sq.Column] != side {
			return false
		}
	}
	return true
}
