package main

import "github.com/goplus/v4l2build/cmd/v4l2build/internal"

func main() {
	internal.Execute()
}
