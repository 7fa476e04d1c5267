// Package standings implements the championship fold: per-round points
// awards accumulated into append-only standings snapshots.
package standings

// Points tables by finishing position, index 0 = first place. Only
// classified finishers score; everyone outside the table scores zero.
var (
	racePointsTable   = []int{25, 18, 15, 12, 10, 8, 6, 4, 2, 1}
	sprintPointsTable = []int{8, 7, 6, 5, 4, 3, 2, 1}
)

// RacePoints returns the points award for a classified race finish.
func RacePoints(position int) int {
	return tableAward(racePointsTable, position)
}

// SprintPoints returns the points award for a classified sprint finish.
func SprintPoints(position int) int {
	return tableAward(sprintPointsTable, position)
}

func tableAward(table []int, position int) int {
	if position < 1 || position > len(table) {
		return 0
	}
	return table[position-1]
}
