// Command aesim runs the Plan 27 multiply and divide demonstrations over
// the mechanical engine, or disassembles their microprograms without
// running them.
package main

import (
	"fmt"
	"strings"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"github.com/aesim/babbage/engine"
	"github.com/aesim/babbage/plan27"
)

var (
	seed    int64
	ndigits int
	trace   string
)

func main() {
	root := &cobra.Command{
		Use:   "aesim",
		Short: "Analytical Engine simulator: Plan 27 multiply/divide demos",
	}
	root.PersistentFlags().Int64Var(&seed, "seed", 1, "deterministic random seed")
	root.PersistentFlags().IntVar(&ndigits, "ndigits", plan27.NDigits, "digit stack width")
	root.PersistentFlags().StringVar(&trace, "trace", "", "comma-separated trace categories, or \"all\" (advance,wheels,gears,queues,barrels,meshes,jumps,values,endingvalues)")

	root.AddCommand(multiplyCmd(), divideCmd(), disassembleCmd(), demoErrorsCmd())

	if err := root.Execute(); err != nil {
		glog.Fatalln(err)
	}
}

func multiplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "multiply <a> <c>",
		Short: "Compute a*c on the Plan 27 accumulator",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			a, c := parseIntArg(args[0], "a"), parseIntArg(args[1], "c")
			product, cycles, err := plan27.Multiply(engine.NewRandomizer(seed), a, c, ndigits, parseTrace(trace))
			if err != nil {
				glog.Fatalln(err)
			}
			fmt.Printf("%d * %d = %d (%d barrel cycles)\n", a, c, product, cycles)
		},
	}
}

func divideCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "divide <dividend> <divisor>",
		Short: "Compute dividend/divisor by restoring division on the Plan 27 accumulator",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			dividend, divisor := parseIntArg(args[0], "dividend"), parseIntArg(args[1], "divisor")
			quot, rem, cycles, err := plan27.Divide(engine.NewRandomizer(seed), dividend, divisor, ndigits, parseTrace(trace))
			if err != nil {
				glog.Fatalln(err)
			}
			fmt.Printf("%d / %d = %d remainder %d (%d barrel cycles)\n", dividend, divisor, quot, rem, cycles)
		},
	}
}

func disassembleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disassemble multiply|divide <args...>",
		Short: "Print the stud listing a multiply or divide run would build, without running it",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			var (
				p   *engine.Program
				err error
			)
			switch args[0] {
			case "multiply":
				if len(args) != 3 {
					glog.Fatalln("disassemble multiply requires <a> <c>")
				}
				p, err = plan27.MultiplyProgram(parseIntArg(args[1], "a"), parseIntArg(args[2], "c"), ndigits)
			case "divide":
				if len(args) != 2 {
					glog.Fatalln("disassemble divide requires <divisor>")
				}
				p, err = plan27.DivideProgram(parseIntArg(args[1], "divisor"), ndigits)
			default:
				glog.Fatalln("disassemble: unknown program ", args[0], ", want multiply or divide")
			}
			if err != nil {
				glog.Fatalln(err)
			}
			fmt.Print(p.Disassemble())
		},
	}
	return cmd
}

// demoErrorsCmd deliberately builds one malformed microprogram to exercise
// the assembler's error taxonomy (see engine/errors.go), since a correctly
// wired Plan 27 run never reaches it.
func demoErrorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo-errors",
		Short: "Trigger and report a representative assembler error",
		Run: func(cmd *cobra.Command, args []string) {
			table := engine.NewStudTable()
			table.CreateStud("STOP", &engine.StudAction{Kind: engine.ActionDoStop}, false)
			stop, _ := table.ByName("STOP")

			p := engine.NewProgram("demo", table)
			if err := p.Vertical(stop); err != nil {
				glog.Fatalln("unexpected error building the single vertical: ", err)
			}
			// Jump to a label that is never defined; the reference stays
			// pending until EndProgram, which then reports ErrUndefinedLabel.
			if err := p.Vertical(stop, "unreachable"); err != nil {
				glog.Fatalln("unexpected error building the second vertical: ", err)
			}
			err := p.EndProgram()
			fmt.Println("triggered error:", err)
		},
	}
}

func parseIntArg(s, name string) int {
	var v int
	if _, err := fmt.Sscanf(s, "%d", &v); err != nil {
		glog.Fatalln("invalid ", name, " value ", s, ": ", err)
	}
	return v
}

var traceNames = map[string]engine.TraceFlags{
	"advance":      engine.TraceAdvance,
	"wheels":       engine.TraceWheels,
	"gears":        engine.TraceGears,
	"queues":       engine.TraceQueues,
	"barrels":      engine.TraceBarrels,
	"meshes":       engine.TraceMeshes,
	"jumps":        engine.TraceJumps,
	"values":       engine.TraceValues,
	"endingvalues": engine.TraceEndingValues,
}

func parseTrace(s string) engine.TraceFlags {
	if s == "" {
		return 0
	}
	var flags engine.TraceFlags
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(strings.ToLower(name))
		if name == "all" {
			return engine.TraceAll
		}
		f, ok := traceNames[name]
		if !ok {
			glog.Fatalln("unknown trace category: ", name)
		}
		flags |= f
	}
	return flags
}
