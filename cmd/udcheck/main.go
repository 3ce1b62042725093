package main

import (
	"github.com/University-of-Delaware-IT-RCI/ud-slurm-addons/internal/udcheck"
)

func main() {
	udcheck.ParseCmdArgs()
}
