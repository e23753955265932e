package main

import (
	"context"
	"fmt"

	"github.com/trezcool/riskwatch/core/risk"
)

func (cli *commandLine) show(id string) error {
	s, err := cli.riskSvc.Get(context.Background(), id)
	if err != nil {
		cli.suggestStudentID(id, err)
		return err
	}
	ev, _ := s.Risk()
	cli.printStudentLine(s.ID, ev.Score, ev.Level)

	var attended, submitted, failed int
	for _, a := range s.Attendance {
		if a.Status == risk.StatusAttend {
			attended++
		}
	}
	for _, a := range s.Assignments {
		if a.Submitted {
			submitted++
		}
	}
	for _, c := range s.Contacts {
		if c.Status == risk.StatusFailed {
			failed++
		}
	}
	fmt.Fprintf(cli.out, "name: %s\n", s.Name)
	fmt.Fprintf(cli.out, "attended: %d/%d | submitted: %d/%d | failed contacts: %d/%d\n",
		attended, len(s.Attendance), submitted, len(s.Assignments), failed, len(s.Contacts))
	return nil
}
