//go:build !race

package tracker

func passwordHashCost() int {
	return 12
}
