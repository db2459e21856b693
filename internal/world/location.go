// Package world provides the room grid, locations, and occupancy queries.
// Coordinates are (row, col) with row 0 at the top wall.
package world

import "fmt"

// Location is a cell coordinate inside a room.
type Location struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Loc is shorthand for Location{Row: row, Col: col}.
func Loc(row, col int) Location {
	return Location{Row: row, Col: col}
}

func (l Location) String() string {
	return fmt.Sprintf("(%d,%d)", l.Row, l.Col)
}

// Add returns l offset by d.
func (l Location) Add(d Location) Location {
	return Location{Row: l.Row + d.Row, Col: l.Col + d.Col}
}

// MooreDirections are the eight unit offsets around a cell, in row-major
// order. Neighbor queries walk them in this order so results are stable.
var MooreDirections = [8]Location{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Chebyshev returns the king-move distance between two locations.
func Chebyshev(a, b Location) int {
	dr := a.Row - b.Row
	dc := a.Col - b.Col
	if dr < 0 {
		dr = -dr
	}
	if dc < 0 {
		dc = -dc
	}
	if dr > dc {
		return dr
	}
	return dc
}
