package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"ymsound/emu"
)

func main() {
	args := parseArgs(os.Args[1:])

	switch args.mode {
	case versionMode:
		printVersion()
		return
	case infoMode:
		infoMain(args.Info)
		return
	}

	cfg := loadConfig(args.Config)
	switch args.mode {
	case playMode:
		playMain(args.Play, cfg)
	case renderMode:
		renderMain(args.Render, cfg)
	case tablesMode:
		tablesMain(args.Tables, cfg)
	case configMode:
		configMain(args.Cfg, cfg)
	}
}

func loadConfig(path string) emu.Config {
	if path == "" {
		return emu.LoadConfigOrDefault()
	}
	cfg, err := emu.LoadConfig(path)
	checkf(err, "failed to load configuration")
	return cfg
}

func printVersion() {
	version := "(devel)"
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		version = bi.Main.Version
	}
	fmt.Println("ymsound", version)
}
