package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/allocation"
	"github.com/trezcool/ratiba/core/workload"
)

var (
	isTerminalFunc = term.IsTerminal // mockable

	errHelp = errors.New("help provided")
)

type (
	allocator interface {
		AllocateGrade(ctx context.Context, req allocation.Request) (allocation.Result, error)
	}

	estimator interface {
		EstimateTeachers(ctx context.Context, req workload.Request) (workload.Estimate, error)
	}

	commandLine struct {
		conf      *core.Config
		migrator  func(command string, args ...string) error
		allocSvc  allocator
		estimator estimator
		out       io.Writer
	}
)

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose command (up, down, redo, status...) over the migrations")
	fmt.Println("  allocate -year YEAR -grade GRADE [-min-score SCORE] - allocate a grade's intake into its classes")
	fmt.Println("  estimate -year YEAR [-weekly-load N -homeroom-reduction N -dept-head-reduction N] - estimate teachers needed")
	fmt.Println("  token -username USERNAME [-email EMAIL] - issue an admin API token")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	allocateCmd := flag.NewFlagSet("allocate", flag.ContinueOnError)
	allocateYear := allocateCmd.String("year", "", "The school year, eg. 2025-2026.")
	allocateGrade := allocateCmd.Int("grade", 0, "The grade level to allocate.")
	allocateMinScore := allocateCmd.Float64("min-score", 0, "The minimum entrance score.")

	estimateCmd := flag.NewFlagSet("estimate", flag.ContinueOnError)
	estimateYear := estimateCmd.String("year", "", "The school year, eg. 2025-2026.")
	estimateLoad := estimateCmd.Int("weekly-load", 0, "Periods per week per teacher (default from config).")
	estimateHomeroom := estimateCmd.Int("homeroom-reduction", 0, "Load reduction of homeroom teachers (default from config).")
	estimateDeptHead := estimateCmd.Int("dept-head-reduction", 0, "Load reduction of department heads (default from config).")

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenUname := tokenCmd.String("username", "", "The administrator's username.")
	tokenEmail := tokenCmd.String("email", "", "The administrator's email.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "allocate":
		if err := allocateCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *allocateYear == "" || *allocateGrade == 0 {
			allocateCmd.Usage()
			return errHelp
		}
		return cli.allocate(allocation.Request{Year: *allocateYear, Grade: *allocateGrade, MinScore: *allocateMinScore})

	case "estimate":
		if err := estimateCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *estimateYear == "" {
			estimateCmd.Usage()
			return errHelp
		}
		set := setFlags(estimateCmd)
		return cli.estimate(workload.Request{
			Year:              *estimateYear,
			WeeklyLoad:        flagOverride(set, "weekly-load", *estimateLoad),
			HomeroomReduction: flagOverride(set, "homeroom-reduction", *estimateHomeroom),
			DeptHeadReduction: flagOverride(set, "dept-head-reduction", *estimateDeptHead),
		})

	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *tokenUname == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(*tokenUname, *tokenEmail)

	default:
		cli.printUsage()
		return errHelp
	}
}

// setFlags returns the names of the flags given on the command line.
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// flagOverride returns nil when the flag `name` was not given, so the configured default applies.
func flagOverride(set map[string]bool, name string, v int) *int {
	if !set[name] {
		return nil
	}
	return &v
}

// humanOutput reports whether results should be printed as tables rather than JSON.
func (cli *commandLine) humanOutput() bool {
	f, ok := cli.out.(*os.File)
	return ok && isTerminalFunc(int(f.Fd()))
}

func (cli *commandLine) printJSON(v interface{}) error {
	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (cli *commandLine) newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
}
