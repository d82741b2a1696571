// Command lda reshapes, describes and models longitudinal panels.
package main

import "github.com/sartorproj/golda/internal/cli"

func main() {
	cli.Execute()
}
