//go:build debug

package ionic

import "fmt"

const debugChecks = true

func checkBand(g Gates) {
	for i, v := range g {
		if !(v >= BandLow && v <= BandHigh) {
			panic(fmt.Sprintf("ionic: gate %d = %g outside [%g, %g]", i, v, BandLow, BandHigh))
		}
	}
}
