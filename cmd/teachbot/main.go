package main

import (
	"os"

	"github.com/jessevdk/go-flags"
)

type Options struct {
	Record RecordCommand `command:"record" description:"Teach the arm with a game controller and record its moves"`
	Replay ReplayCommand `command:"replay" description:"Replay a recorded memory file"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "Teachbot - teach-and-replay control for a 4-joint robot arm"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}
