package world

import (
	"errors"
	"fmt"
)

// ErrInvalidDimensions is returned for a room with a non-positive side.
var ErrInvalidDimensions = errors.New("world: room dimensions must be positive")

// Occupant is anything that can stand in a room cell. The room keeps the
// cell→occupant mapping and writes the occupant's location back so both
// directions always agree.
type Occupant interface {
	comparable
	Location() Location
	SetLocation(Location)
	VisionRadius() int
}

// Room holds the occupancy grid. At most one occupant per cell; for every
// occupant o placed in the room, OccupantAt(o.Location()) == o.
// Room is not safe for concurrent use.
type Room[T Occupant] struct {
	rows, cols int
	entry      Location
	cells      map[Location]T
}

// NewRoom creates an empty room of the given size. The entry cell is on
// the top wall, in the middle column.
func NewRoom[T Occupant](rows, cols int) (*Room[T], error) {
	r := &Room[T]{}
	if err := r.Reset(rows, cols); err != nil {
		return nil, err
	}
	return r, nil
}

// Reset empties the room and sets its fixed dimensions.
func (r *Room[T]) Reset(rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, rows, cols)
	}
	r.rows = rows
	r.cols = cols
	r.entry = Location{Row: 0, Col: cols / 2}
	r.cells = make(map[Location]T, rows*cols)
	return nil
}

// Rows returns the number of rows.
func (r *Room[T]) Rows() int { return r.rows }

// Cols returns the number of columns.
func (r *Room[T]) Cols() int { return r.cols }

// Entry returns the single arrival cell.
func (r *Room[T]) Entry() Location { return r.entry }

// Len returns the number of occupied cells.
func (r *Room[T]) Len() int { return len(r.cells) }

// InBounds reports whether loc lies inside the grid.
func (r *Room[T]) InBounds(loc Location) bool {
	return loc.Row >= 0 && loc.Row < r.rows && loc.Col >= 0 && loc.Col < r.cols
}

// OccupantAt returns the occupant of loc, if any.
func (r *Room[T]) OccupantAt(loc Location) (T, bool) {
	o, ok := r.cells[loc]
	return o, ok
}

// IsOccupied reports whether loc has an occupant.
func (r *Room[T]) IsOccupied(loc Location) bool {
	_, ok := r.cells[loc]
	return ok
}

// IsEntryOccupied reports whether the entry cell has an occupant.
func (r *Room[T]) IsEntryOccupied() bool {
	return r.IsOccupied(r.entry)
}

// Arrival places o on the entry cell. It returns false, changing nothing,
// when the entry is already taken.
func (r *Room[T]) Arrival(o T) bool {
	if r.IsEntryOccupied() {
		return false
	}
	r.cells[r.entry] = o
	o.SetLocation(r.entry)
	return true
}

// Neighborhood returns the in-bounds cells within o's vision radius in
// every direction, excluding o's own cell. Cells off the grid are dropped,
// never wrapped. Occupied cells are included.
func (r *Room[T]) Neighborhood(o T) []Location {
	center := o.Location()
	radius := o.VisionRadius()
	var out []Location
	for dr := -radius; dr <= radius; dr++ {
		for dc := -radius; dc <= radius; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			loc := Location{Row: center.Row + dr, Col: center.Col + dc}
			if r.InBounds(loc) {
				out = append(out, loc)
			}
		}
	}
	return out
}

// Neighbors returns the occupied cells adjacent to o (unit distance),
// independent of vision radius.
func (r *Room[T]) Neighbors(o T) []Location {
	center := o.Location()
	var out []Location
	for _, d := range MooreDirections {
		loc := center.Add(d)
		if r.IsOccupied(loc) {
			out = append(out, loc)
		}
	}
	return out
}

// NeighborCount returns how many cells adjacent to loc are occupied. loc
// itself need not be occupied and is not counted.
func (r *Room[T]) NeighborCount(loc Location) int {
	n := 0
	for _, d := range MooreDirections {
		if r.IsOccupied(loc.Add(d)) {
			n++
		}
	}
	return n
}

// DepartCurrentLocation frees o's current cell. It must precede
// OccupyNewLocation for the same occupant within one move.
func (r *Room[T]) DepartCurrentLocation(o T) {
	loc := o.Location()
	if cur, ok := r.cells[loc]; ok && cur == o {
		delete(r.cells, loc)
	}
}

// OccupyNewLocation places o on (row, col) and records the location on o.
// The target must be in bounds and free; anything else breaks the
// occupancy invariant and panics.
func (r *Room[T]) OccupyNewLocation(o T, row, col int) {
	loc := Location{Row: row, Col: col}
	if !r.InBounds(loc) {
		panic(fmt.Sprintf("world: occupy %v outside %dx%d room", loc, r.rows, r.cols))
	}
	if cur, ok := r.cells[loc]; ok && cur != o {
		panic(fmt.Sprintf("world: occupy %v already taken", loc))
	}
	r.cells[loc] = o
	o.SetLocation(loc)
}

// Each calls fn for every occupied cell in row-major order.
func (r *Room[T]) Each(fn func(Location, T)) {
	for row := 0; row < r.rows; row++ {
		for col := 0; col < r.cols; col++ {
			loc := Location{Row: row, Col: col}
			if o, ok := r.cells[loc]; ok {
				fn(loc, o)
			}
		}
	}
}

// CheckConsistency verifies the two-way occupancy mapping and returns the
// first violation found.
func (r *Room[T]) CheckConsistency() error {
	for loc, o := range r.cells {
		if !r.InBounds(loc) {
			return fmt.Errorf("occupant at %v outside room", loc)
		}
		if got := o.Location(); got != loc {
			return fmt.Errorf("cell %v holds occupant located at %v", loc, got)
		}
	}
	return nil
}

func (r *Room[T]) String() string {
	return fmt.Sprintf("Room(%dx%d, occupied=%d, entry=%v)", r.rows, r.cols, len(r.cells), r.entry)
}
