package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"tally/ast"
	"tally/formula"
	"tally/kernel"
	"tally/repl"
	"tally/service"
	"tally/sheet"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	sub := os.Args[1]
	switch sub {
	case "-h", "--help", "help":
		usage()
		return
	case "parse":
		os.Exit(parseCommand(os.Args[2:]))
	case "run":
		os.Exit(runCommand(os.Args[2:]))
	case "repl":
		os.Exit(replCommand(os.Args[2:]))
	case "serve":
		os.Exit(serveCommand(os.Args[2:]))
	case "kernel":
		os.Exit(kernelCommand(os.Args[2:]))
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand: %s\n", sub)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage:\n")
	fmt.Fprintf(os.Stderr, "  tally <command> [arguments]\n")
	fmt.Fprintf(os.Stderr, "\nCommands:\n")
	fmt.Fprintf(os.Stderr, "  parse <formula>        parse a formula and print the AST\n")
	fmt.Fprintf(os.Stderr, "  run <file>             run a sheet script (one shell command per line)\n")
	fmt.Fprintf(os.Stderr, "  repl                   start the interactive sheet shell\n")
	fmt.Fprintf(os.Stderr, "  serve [addr]           start the websocket sheet server (default :8080)\n")
	fmt.Fprintf(os.Stderr, "  kernel [endpoint]      start the zmq calc service (default tcp://127.0.0.1:5555)\n")
	fmt.Fprintf(os.Stderr, "  help                   show this help message\n")
}

func parseCommand(args []string) int {
	format := "pretty"
	positional := make([]string, 0, 1)
	for _, arg := range args {
		switch arg {
		case "--format=json":
			format = "json"
		case "--format=pretty":
			format = "pretty"
		case "-h", "--help":
			fmt.Fprintf(os.Stderr, "usage: tally parse [--format=pretty|json] <formula>\n")
			return 0
		default:
			positional = append(positional, arg)
		}
	}
	if len(positional) != 1 {
		fmt.Fprintf(os.Stderr, "usage: tally parse [--format=pretty|json] <formula>\n")
		return 2
	}

	body := strings.TrimPrefix(positional[0], "=")
	f, err := formula.Parse(body)
	if err != nil {
		if pe, ok := err.(*formula.ParseError); ok {
			fmt.Fprintln(os.Stderr, pe.Detailed())
		} else {
			fmt.Fprintln(os.Stderr, err.Error())
		}
		return 1
	}

	switch format {
	case "pretty":
		fmt.Print(ast.Format(f.Tree()))
	case "json":
		out, err := ast.FormatJSON(f.Tree())
		if err != nil {
			fmt.Fprintf(os.Stderr, "format error: %v\n", err)
			return 1
		}
		fmt.Print(out)
	}
	fmt.Printf("canonical: =%s\n", f.Expression())
	if refs := f.ReferencedCells(); len(refs) > 0 {
		labels := make([]string, len(refs))
		for i, pos := range refs {
			labels[i] = pos.String()
		}
		fmt.Printf("references: %s\n", strings.Join(labels, " "))
	}
	return 0
}

func runCommand(args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: tally run <file>\n")
		return 2
	}
	file, err := os.Open(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "read error: %v\n", err)
		return 1
	}
	defer file.Close()

	if err := runScript(file.Name(), bufio.NewScanner(file), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	return 0
}

// runScript executes shell commands line by line against a fresh
// sheet, stopping at the first failure.
func runScript(name string, scanner *bufio.Scanner, out io.Writer) error {
	s := sheet.New()
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := repl.Execute(s, scanner.Text(), out); err != nil {
			return fmt.Errorf("%s:%d: %v", name, lineNo, err)
		}
	}
	return scanner.Err()
}

func replCommand(args []string) int {
	if len(args) != 0 {
		fmt.Fprintf(os.Stderr, "usage: tally repl\n")
		return 2
	}
	repl.Start(os.Stdin, os.Stdout)
	return 0
}

func serveCommand(args []string) int {
	addr := ":8080"
	if len(args) > 0 {
		addr = args[0]
	}
	srv := service.NewServer()
	if err := srv.ListenAndServe(addr); err != nil {
		fmt.Fprintf(os.Stderr, "serve error: %v\n", err)
		return 1
	}
	return 0
}

func kernelCommand(args []string) int {
	endpoint := "tcp://127.0.0.1:5555"
	if len(args) > 0 {
		endpoint = args[0]
	}
	k := kernel.New(endpoint)
	if err := k.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "kernel error: %v\n", err)
		return 1
	}
	return 0
}
