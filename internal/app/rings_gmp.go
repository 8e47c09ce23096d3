//go:build gmp

package app

import "github.com/agbru/polycalc/internal/coeff"

func init() {
	registerRing(coeff.GMP{})
}
