package main

import (
	"bufio"
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/riskwatch/core"
	"github.com/trezcool/riskwatch/core/risk"
)

func (cli *commandLine) updateThresholds(upd risk.ThresholdsUpdate, yes bool) error {
	translator := core.NewTranslator()
	validate := validator.New()
	core.InitValidators(validate, translator)
	risk.InitValidators(validate, translator)

	if err := upd.Validate(validate); err != nil {
		if vErrs, ok := err.(validator.ValidationErrors); ok {
			for fld, msg := range core.TranslateValidationErrors(vErrs, translator) {
				fmt.Fprintf(cli.out, "%s: %s\n", fld, msg)
			}
		}
		return err
	}

	// only ask when someone is there to answer
	if !yes && isTerminalFunc(cli.inFd) && !cli.confirm("Recompute the risk of every student?") {
		return errAborted
	}

	conf, students, err := cli.riskSvc.UpdateThresholds(context.Background(), upd)
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "attendance < %v | assignments < %v | failed contacts >= %d (version %d)\n",
		conf.AttendanceRateThreshold, conf.AssignmentRateThreshold, conf.FailedContactsThreshold, conf.Version)
	fmt.Fprintln(cli.out, reportHeader)
	for _, s := range students {
		ev, _ := s.Risk()
		cli.printStudentLine(s.ID, ev.Score, ev.Level)
	}
	return nil
}

func (cli *commandLine) confirm(question string) bool {
	fmt.Fprintf(cli.out, "%s [y/N] ", question)
	answer, _ := bufio.NewReader(cli.in).ReadString('\n')
	answer = core.CleanString(answer, true /* lower */)
	return answer == "y" || answer == "yes"
}
