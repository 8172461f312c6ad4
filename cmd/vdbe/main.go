// vdbe CLI - assemble and run demonstration programs on the bytecode engine
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	"github.com/el-yawd/sqlite-vdbe-sub000/vdbe"
	"github.com/el-yawd/sqlite-vdbe-sub000/vdbe/image"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("vdbe")

func main() {
	demo := flag.String("demo", "add", "Demo program to run: add, fib, concat")
	explain := flag.Bool("explain", false, "Print the program listing before running")
	configPath := flag.String("config", "", "Path to a vdbe.toml configuration file")
	imageOut := flag.String("image-out", "", "Write the assembled program image to this file")
	imageIn := flag.String("image-in", "", "Run a previously written program image instead of a demo")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: vdbe [options]\n\n")
		fmt.Fprintf(os.Stderr, "Assembles a demo program and steps it, printing each result row.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  vdbe -demo fib                 # First 10 Fibonacci numbers\n")
		fmt.Fprintf(os.Stderr, "  vdbe -demo add -explain        # Show the listing, then run\n")
		fmt.Fprintf(os.Stderr, "  vdbe -demo concat -image-out p.bin  # Save the program image\n")
		fmt.Fprintf(os.Stderr, "  vdbe -image-in p.bin           # Re-run a saved image\n")
	}
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	commonlog.Configure(cfg.verbosity(), nil)
	if cfg.Output.Explain {
		*explain = true
	}

	conn, err := vdbe.Open(cfg.Session.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()
	log.Infof("session open on %q", conn.Path())

	var program *vdbe.Program
	if *imageIn != "" {
		data, err := os.ReadFile(*imageIn)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		program, err = image.Load(conn, data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading image: %v\n", err)
			os.Exit(1)
		}
		log.Infof("loaded image %s (%d bytes)", *imageIn, len(data))
	} else {
		program, err = buildDemo(conn, *demo)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error assembling %q: %v\n", *demo, err)
			os.Exit(1)
		}
	}
	defer program.Finalize()

	if *imageOut != "" {
		data, err := image.Marshal(image.Snapshot(program))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing image: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*imageOut, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing image: %v\n", err)
			os.Exit(1)
		}
		log.Infof("wrote image %s (%d bytes)", *imageOut, len(data))
	}

	if *explain {
		fmt.Print(program.Explain())
		fmt.Println()
	}

	if err := run(program); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run steps the program to completion, printing each result row.
func run(p *vdbe.Program) error {
	for {
		res, err := p.Step()
		if err != nil {
			return err
		}
		if res == vdbe.StepDone {
			return nil
		}
		for i := 0; i < p.ColumnCount(); i++ {
			if i > 0 {
				fmt.Print(" | ")
			}
			fmt.Print(p.ColumnValue(i))
		}
		fmt.Println()
	}
}
