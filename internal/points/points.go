// Package points maps finishing positions to championship points.
package points

// Table holds the points awarded for positions 1 through 10.
var Table = [...]int{25, 18, 15, 12, 10, 8, 6, 4, 2, 1}

// ForPosition returns the points for a 1-based finishing position. Positions
// outside the scoring range earn nothing.
func ForPosition(position int) int {
	if position < 1 || position > len(Table) {
		return 0
	}
	return Table[position-1]
}
