package main

import (
	"github.com/nguyengg/ustar/internal/cmd"
)

func main() {
	p, c := cmd.NewParser()

	args, err := p.Parse()
	if err == nil {
		err = c.Execute(args)
	}

	exit(err)
}
