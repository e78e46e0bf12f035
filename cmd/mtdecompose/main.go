// Command mtdecompose decomposes a single moment tensor, nodal plane or
// event feature and prints its principal axes, nodal planes, scalar moment
// and percent double couple.
//
// Usage:
//
//	mtdecompose --mrr 1.1e19 --mtt -0.3e19 --mpp -0.8e19 --mrt 0.2e19 --mrp -0.5e19 --mtp 0.1e19
//	mtdecompose --strike 322 --dip 81 --rake -173 --moment 4.4e19 --output yaml
//	mtdecompose --file event.json
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
