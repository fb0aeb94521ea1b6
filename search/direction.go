package search

// Direction is a unit step vector. Exactly the eight values in Directions are valid.
type Direction struct {
	DRow int `json:"d_row"`
	DCol int `json:"d_col"`
}

// Directions lists the eight search directions in scan order.
var Directions = [8]Direction{
	{0, 1},   // right
	{0, -1},  // left
	{1, 0},   // down
	{-1, 0},  // up
	{1, 1},   // down-right
	{1, -1},  // down-left
	{-1, 1},  // up-right
	{-1, -1}, // up-left
}

var directionNames = map[Direction]string{
	{0, 1}:   "right",
	{0, -1}:  "left",
	{1, 0}:   "down",
	{-1, 0}:  "up",
	{1, 1}:   "down-right",
	{1, -1}:  "down-left",
	{-1, 1}:  "up-right",
	{-1, -1}: "up-left",
}

// Name returns a readable label such as "down-left".
func (d Direction) Name() string {
	if n, ok := directionNames[d]; ok {
		return n
	}
	return "none"
}

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	return Direction{DRow: -d.DRow, DCol: -d.DCol}
}
