// brushtool is a CLI utility for editing brush maps and baking their
// lightmaps.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Faultbox/midgard-editor/internal/config"
	"github.com/Faultbox/midgard-editor/internal/logger"
)

func main() {
	config.ParseFlags()
	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Init(logger.Options{
		Level:   cfg.Logging.Level,
		Console: os.Stderr,
		File:    logger.DefaultFileConfig(cfg.Logging.LogFile),
	})

	a := newApp(cfg, logger.Named("brushtool"), os.Stdout)
	command := args[0]
	rest := args[1:]

	switch command {
	case "info":
		err = a.cmdInfo(rest)
	case "clip":
		err = a.cmdClip(rest)
	case "carve":
		err = a.cmdCarve(rest)
	case "hollow":
		err = a.cmdHollow(rest)
	case "pick":
		err = a.cmdPick(rest)
	case "bake":
		err = a.cmdBake(rest)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`brushtool - brush map and lightmap utility

Usage:
  brushtool [global options] <command> [options] <map.yaml>

Commands:
  info <map.yaml>                                  Show solids, faces and lights
  clip -plane nx,ny,nz,d [-keep front|back|both]   Cut solids by a plane
       [-solid ID] [-o out.yaml] <map.yaml>
  carve -carver ID [-o out.yaml] <map.yaml>        Subtract a solid from its neighbors
  hollow -solid ID -thickness T [-o out.yaml]      Turn a solid into walls
       <map.yaml>
  pick [-x X -y Y] [-vw W -vh H]                   Pick the face under a viewport pixel
       [-yaw deg -pitch deg] <map.yaml>
  bake -o out.lmap [-tiff preview.tiff] <map.yaml> Bake the lightmap atlas

Global options:
  -config path   Config file
  -debug         Debug logging
  -epsilon E     Plane classification epsilon
  -texel S       Lightmap texel size
  -blur B        Lightmap blur strength (0 disables)
  -workers N     Bake workers (0 = all CPUs)
  -width W       Maximum lightmap width
  -height H      Maximum lightmap height

Examples:
  brushtool info maps/room.yaml
  brushtool clip -plane 0,0,1,32 -keep back -o cut.yaml maps/room.yaml
  brushtool pick -x 400 -y 300 maps/room.yaml
  brushtool -texel 4 bake -o room.lmap -tiff room.tiff maps/room.yaml`)
}
