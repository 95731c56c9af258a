package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/gwillem/teachbot/pkg/memory"
	"github.com/gwillem/teachbot/pkg/recorder"
	"github.com/gwillem/teachbot/pkg/robot"
)

type ReplayCommand struct {
	Config string `long:"config" short:"c" description:"Config file" default:"teachbot.json"`
	File   string `long:"file" short:"f" description:"Memory file to replay" default:"memory.json"`
	From   int    `long:"from" description:"First entry to replay (0-based)"`
	To     int    `long:"to" description:"Entry to stop before (0 = end)"`
	Bundle bool   `long:"bundle" short:"b" description:"Merge consecutive compatible relative moves before replaying"`
	DryRun bool   `long:"dry-run" short:"n" description:"Print the entries without moving the arm"`
}

func (c *ReplayCommand) Execute(_ []string) error {
	logger := log.New(os.Stderr)

	cfg, err := recorder.LoadConfigFrom(c.Config)
	if err != nil {
		logger.Warnf("No config at %s, using defaults", c.Config)
		cfg = recorder.DefaultConfig()
	}

	entries, err := memory.Load(c.File)
	if err != nil {
		return fmt.Errorf("load memory: %w", err)
	}

	if c.Bundle {
		before := len(entries)
		entries = memory.Bundle(entries)
		logger.Infof("Bundled memory (%d -> %d entries)", before, len(entries))
	}

	to := c.To
	if to <= 0 || to > len(entries) {
		to = len(entries)
	}
	if c.From < 0 || c.From > to {
		return fmt.Errorf("invalid range %d:%d for %d entries", c.From, c.To, len(entries))
	}
	entries = entries[c.From:to]

	for i, e := range entries {
		logger.Infof("%3d %-12s %-11s valid=%-5v %v", c.From+i, e.Category, e.Motion, e.Valid, e.Value)
	}
	if c.DryRun {
		return nil
	}

	feed := func(message, source string) {
		logger.Infof("%s: %s", source, message)
	}

	arm, err := robot.Dial(cfg.Robot, feed)
	if err != nil {
		return fmt.Errorf("connect robot: %w", err)
	}
	defer arm.Close()

	if failed := recorder.Play(arm, entries, feed); failed >= 0 {
		return fmt.Errorf("replay stopped at entry %d", c.From+failed)
	}
	logger.Info("Done replaying")
	return nil
}
