package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/funvibe/loom/internal/classfile"
	"github.com/funvibe/loom/internal/config"

	"github.com/mattn/go-isatty"
)

const (
	ansiBold  = "\x1b[1m"
	ansiCyan  = "\x1b[36m"
	ansiReset = "\x1b[0m"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [-config <file>] <bundle>\n", os.Args[0])
	os.Exit(1)
}

func main() {
	configPath := ""
	var bundlePath string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-config", "--config":
			if i+1 >= len(args) {
				usage()
			}
			i++
			configPath = args[i]
		case "-help", "--help", "help":
			usage()
		default:
			if strings.HasPrefix(args[i], "-") {
				fmt.Fprintf(os.Stderr, "Unknown flag: %s\n", args[i])
				usage()
			}
			if bundlePath != "" {
				usage()
			}
			bundlePath = args[i]
		}
	}
	if bundlePath == "" {
		usage()
	}

	opts, err := config.LoadOptions(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %s\n", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(bundlePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading bundle: %s\n", err)
		os.Exit(1)
	}

	bundle, err := classfile.DeserializeBundle(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decoding bundle: %s\n", err)
		os.Exit(1)
	}

	color := useColor(opts)
	printHeader(bundle, color)
	for _, class := range bundle.Classes {
		fmt.Println()
		dump := classfile.DisassembleClass(class)
		if color {
			dump = colorizeHeaders(dump)
		}
		fmt.Print(dump)
	}
}

func useColor(opts config.Options) bool {
	switch opts.Color {
	case "always":
		return true
	case "never":
		return false
	}
	// NO_COLOR convention: https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func printHeader(bundle *classfile.Bundle, color bool) {
	if color {
		fmt.Printf("%sbundle%s %s\n", ansiBold, ansiReset, bundle.BuildID)
	} else {
		fmt.Printf("bundle %s\n", bundle.BuildID)
	}
	if bundle.SourceFile != "" {
		fmt.Printf("source %s\n", bundle.SourceFile)
	}
	fmt.Printf("classes %d\n", len(bundle.Classes))
}

// colorizeHeaders highlights the "== name ==" section markers the
// disassembler emits.
func colorizeHeaders(dump string) string {
	lines := strings.Split(dump, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "==") {
			lines[i] = ansiCyan + line + ansiReset
		}
	}
	return strings.Join(lines, "\n")
}
