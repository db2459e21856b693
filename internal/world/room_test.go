package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type token struct {
	name   string
	loc    Location
	vision int
}

func (t *token) Location() Location     { return t.loc }
func (t *token) SetLocation(l Location) { t.loc = l }
func (t *token) VisionRadius() int      { return t.vision }

func newToken(name string, vision int) *token {
	return &token{name: name, vision: vision}
}

func place(t *testing.T, r *Room[*token], o *token, row, col int) {
	t.Helper()
	r.OccupyNewLocation(o, row, col)
	require.NoError(t, r.CheckConsistency())
}

func TestNewRoomRejectsBadDimensions(t *testing.T) {
	for _, dims := range [][2]int{{0, 3}, {3, 0}, {-1, 4}} {
		_, err := NewRoom[*token](dims[0], dims[1])
		assert.ErrorIs(t, err, ErrInvalidDimensions)
	}
}

func TestArrivalUsesEntryOnce(t *testing.T) {
	r, err := NewRoom[*token](3, 3)
	require.NoError(t, err)
	assert.Equal(t, Loc(0, 1), r.Entry())
	assert.False(t, r.IsEntryOccupied())

	a := newToken("a", 1)
	require.True(t, r.Arrival(a))
	assert.Equal(t, r.Entry(), a.Location())
	assert.True(t, r.IsEntryOccupied())

	b := newToken("b", 1)
	b.loc = Loc(2, 2)
	assert.False(t, r.Arrival(b))
	assert.Equal(t, Loc(2, 2), b.Location(), "rejected arrival must not touch the occupant")
	assert.Equal(t, 1, r.Len())

	got, ok := r.OccupantAt(r.Entry())
	require.True(t, ok)
	assert.Same(t, a, got)
	require.NoError(t, r.CheckConsistency())
}

func TestNeighborhoodClipsToBounds(t *testing.T) {
	r, _ := NewRoom[*token](3, 3)

	tests := []struct {
		name   string
		at     Location
		vision int
		want   int
	}{
		{"center radius 1", Loc(1, 1), 1, 8},
		{"corner radius 1", Loc(0, 0), 1, 3},
		{"edge radius 1", Loc(0, 1), 1, 5},
		{"corner radius 2", Loc(0, 0), 2, 8},
		{"center radius 5", Loc(1, 1), 5, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newToken("o", tt.vision)
			o.loc = tt.at
			hood := r.Neighborhood(o)
			assert.Len(t, hood, tt.want)
			for _, loc := range hood {
				assert.True(t, r.InBounds(loc))
				assert.NotEqual(t, tt.at, loc)
				assert.LessOrEqual(t, Chebyshev(tt.at, loc), tt.vision)
			}
		})
	}
}

func TestNeighborsAreAdjacentOccupiedCells(t *testing.T) {
	r, _ := NewRoom[*token](4, 4)
	center := newToken("center", 3)
	place(t, r, center, 1, 1)
	place(t, r, newToken("n", 1), 0, 1)
	place(t, r, newToken("se", 1), 2, 2)
	place(t, r, newToken("far", 1), 3, 3)

	assert.Equal(t, []Location{Loc(0, 1), Loc(2, 2)}, r.Neighbors(center))
	assert.Equal(t, 2, r.NeighborCount(Loc(1, 1)))
	assert.Equal(t, 3, r.NeighborCount(Loc(2, 1)), "empty cell counts occupied neighbors")
	assert.Equal(t, 1, r.NeighborCount(Loc(3, 2)))
}

func TestMoveKeepsMappingConsistent(t *testing.T) {
	r, _ := NewRoom[*token](3, 3)
	a := newToken("a", 1)
	require.True(t, r.Arrival(a))

	r.DepartCurrentLocation(a)
	assert.False(t, r.IsEntryOccupied())
	r.OccupyNewLocation(a, 1, 0)
	assert.Equal(t, Loc(1, 0), a.Location())
	require.NoError(t, r.CheckConsistency())
	assert.Equal(t, 1, r.Len())
}

func TestOccupyTakenCellPanics(t *testing.T) {
	r, _ := NewRoom[*token](3, 3)
	place(t, r, newToken("a", 1), 1, 1)
	b := newToken("b", 1)
	assert.Panics(t, func() { r.OccupyNewLocation(b, 1, 1) })
	assert.Panics(t, func() { r.OccupyNewLocation(b, 3, 0) })
}

func TestResetClearsOccupancy(t *testing.T) {
	r, _ := NewRoom[*token](3, 3)
	r.Arrival(newToken("a", 1))
	require.NoError(t, r.Reset(5, 4))
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, Loc(0, 2), r.Entry())
	assert.Equal(t, 5, r.Rows())
	assert.Equal(t, 4, r.Cols())
}

func TestEachIsRowMajor(t *testing.T) {
	r, _ := NewRoom[*token](2, 2)
	place(t, r, newToken("d", 1), 1, 1)
	place(t, r, newToken("a", 1), 0, 0)
	place(t, r, newToken("c", 1), 1, 0)

	var names []string
	r.Each(func(_ Location, o *token) { names = append(names, o.name) })
	assert.Equal(t, []string{"a", "c", "d"}, names)
}
