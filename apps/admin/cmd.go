package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"

	"golang.org/x/term"

	"github.com/trezcool/riskwatch/core"
	"github.com/trezcool/riskwatch/core/risk"
	"github.com/trezcool/riskwatch/storage/jsonfile"
)

var (
	newFileRepositoryFunc = jsonfile.NewStudentRepository // mockable
	isTerminalFunc        = term.IsTerminal                // mockable

	errHelp    = errors.New("help provided")
	errAborted = errors.New("aborted")
)

type commandLine struct {
	conf    *core.Config
	logger  core.Logger
	repo    risk.Repository
	riskSvc *risk.Service
	in      io.Reader
	inFd    int
	out     io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  report [-file PATH] - print every student's risk without saving anything")
	fmt.Fprintln(cli.out, "  show -id STUDENT_ID - print a student's risk and records, filling a missing risk")
	fmt.Fprintln(cli.out, "  evaluate -id STUDENT_ID - re-evaluate a student's risk")
	fmt.Fprintln(cli.out, "  thresholds [-attendance RATE] [-assignment RATE] [-failed-contacts COUNT] [-yes] - update thresholds & recompute every student")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "report":
		reportCmd := flag.NewFlagSet("report", flag.ContinueOnError)
		reportCmd.SetOutput(cli.out)
		reportFile := reportCmd.String("file", "", "The student data file. Defaults to the configured store.")
		if err := reportCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		repo := cli.repo
		if *reportFile != "" {
			repo = newFileRepositoryFunc(*reportFile)
		}
		return cli.report(repo)

	case "show":
		showCmd := flag.NewFlagSet("show", flag.ContinueOnError)
		showCmd.SetOutput(cli.out)
		showID := showCmd.String("id", "", "The student ID.")
		if err := showCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *showID == "" {
			showCmd.Usage()
			return errHelp
		}
		return cli.show(*showID)

	case "evaluate":
		evaluateCmd := flag.NewFlagSet("evaluate", flag.ContinueOnError)
		evaluateCmd.SetOutput(cli.out)
		evaluateID := evaluateCmd.String("id", "", "The student ID.")
		if err := evaluateCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *evaluateID == "" {
			evaluateCmd.Usage()
			return errHelp
		}
		return cli.evaluate(*evaluateID)

	case "thresholds":
		thresholdsCmd := flag.NewFlagSet("thresholds", flag.ContinueOnError)
		thresholdsCmd.SetOutput(cli.out)
		attendance := thresholdsCmd.Float64("attendance", math.NaN(), "Minimum attendance rate, in [0, 1].")
		assignment := thresholdsCmd.Float64("assignment", math.NaN(), "Minimum assignment submission rate, in [0, 1].")
		failedContacts := thresholdsCmd.Int("failed-contacts", -1, "Number of failed contacts that counts as a risk.")
		yes := thresholdsCmd.Bool("yes", false, "Do not ask for confirmation.")
		if err := thresholdsCmd.Parse(args[2:]); err != nil {
			return errHelp
		}

		var upd risk.ThresholdsUpdate
		thresholdsCmd.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "attendance":
				upd.AttendanceRateThreshold = attendance
			case "assignment":
				upd.AssignmentRateThreshold = assignment
			case "failed-contacts":
				upd.FailedContactsThreshold = failedContacts
			}
		})
		return cli.updateThresholds(upd, *yes)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) printStudentLine(id string, score int, level string) {
	fmt.Fprintf(cli.out, "%s | %d | %s\n", id, score, level)
}
