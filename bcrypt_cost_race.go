//go:build race

package tracker

import "golang.org/x/crypto/bcrypt"

func passwordHashCost() int {
	// race builds are slow enough without a high cost
	return bcrypt.MinCost
}
