package main

import "github.com/mtimit/gamify-product-lab/cmd/lab/root"

func main() {
	root.Execute()
}
