// Public domain.

package main

import "github.com/soniakeys/rmblos/internal/blosprog"

func main() {
	blosprog.Main()
}
