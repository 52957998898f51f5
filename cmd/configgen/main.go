package main

import (
	"flag"
	"log"

	"github.com/danmuck/wydcodec/internal/config"
)

func main() {
	output := flag.String("output", "config.toml", "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "config.toml", "config path for validation")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		cfg, err := config.LoadConfig(*input)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("Validated config at %s (key_file=%s capture_port=%d)", *input, cfg.KeyFile, cfg.CapturePort)
		return
	}

	if err := config.WriteTemplate(*output, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote config template to %s", *output)
}
