package main

import (
	"fmt"
	"os"

	"github.com/MrEthical07/goCareer/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "careerctl:", err)
		os.Exit(1)
	}
}
