package main

import (
	"flag"
	"fmt"
	"os"

	"chosenoffset.com/raylight/internal/config"
	"chosenoffset.com/raylight/internal/core/shadows"
	"chosenoffset.com/raylight/internal/placeholders"
)

func main() {
	configPath := flag.String("config", "", "YAML file overriding the built-in defaults")
	out := flag.String("out", "normals.png", "output PNG path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	img := placeholders.NormalMap(shadows.StringGrid(cfg.Demo.Map))
	if err := placeholders.SavePNG(img, *out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %dx%d normal map to %s\n", img.Bounds().Dx(), img.Bounds().Dy(), *out)
	fmt.Println("Set demo.normal_map to this path to light the demo with it.")
}
