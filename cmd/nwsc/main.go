package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/crypto/blake2b"

	"nwsc/catalog"
	"nwsc/compiler"
	"nwsc/vm"
)

func main() {
	catalogPath := flag.String("catalog", "", "External routine catalog (YAML)")
	includeDirs := flag.String("include", "", "Include search directories, comma separated")
	run := flag.Bool("run", false, "Execute the compiled script")
	traceRun := flag.Bool("trace", false, "Print an execution trace (implies -run)")
	maxSteps := flag.Int("max-steps", 0, "Abort execution after this many instructions (0 = unlimited)")
	disassemble := flag.Bool("dis", false, "Print the disassembled program")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] script.nss\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	source, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to read script: %v", err)
	}

	cat := catalog.New()
	if *catalogPath != "" {
		cat, err = catalog.Load(*catalogPath)
		if err != nil {
			log.Fatalf("Failed to load catalog: %v", err)
		}
	}

	opts := &compiler.Options{Catalog: cat, MaxSteps: *maxSteps}
	if *includeDirs != "" {
		opts.IncludeDirs = strings.Split(*includeDirs, ",")
	}

	prog, err := compiler.Compile(string(source), opts)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if *disassemble {
		fmt.Print(prog.Disassemble())
	}
	sum := blake2b.Sum256(prog.Encode())
	fmt.Printf("compiled %s: %d instructions, fingerprint %x\n", flag.Arg(0), len(prog.Instrs), sum[:8])

	if !*run && !*traceRun {
		return
	}

	machine := vm.New(prog, cat, debugRegistry())
	machine.MaxSteps = *maxSteps
	if *traceRun {
		machine.Trace = &vm.Trace{}
	}
	if err := machine.Run(); err != nil {
		log.Fatalf("%v", err)
	}
	if machine.Trace != nil {
		fmt.Print(machine.Trace.String())
	}
	if result, ok := machine.Result(); ok {
		fmt.Printf("result: %s\n", result)
	}
}

// debugRegistry backs every cataloged routine with a handler that
// prints the call and returns a zero value, so scripts can be
// exercised without a host environment.
func debugRegistry() *vm.Registry {
	reg := vm.NewRegistry()
	reg.Register("PrintString", func(inv *vm.Invocation) (catalog.Value, error) {
		if len(inv.Args) > 0 {
			fmt.Println(inv.Args[0].Str)
		}
		return catalog.Value{}, nil
	})
	reg.Register("PrintInteger", func(inv *vm.Invocation) (catalog.Value, error) {
		if len(inv.Args) > 0 {
			fmt.Println(inv.Args[0].Int)
		}
		return catalog.Value{}, nil
	})
	reg.Register("PrintFloat", func(inv *vm.Invocation) (catalog.Value, error) {
		if len(inv.Args) > 0 {
			fmt.Println(inv.Args[0].Float)
		}
		return catalog.Value{}, nil
	})
	reg.Register("DelayCommand", func(inv *vm.Invocation) (catalog.Value, error) {
		// No scheduler here; the deferred body runs immediately
		// against its captured frame.
		if inv.Action != nil {
			return catalog.Value{}, inv.Machine.RunAction(inv.Action)
		}
		return catalog.Value{}, nil
	})
	return reg
}
