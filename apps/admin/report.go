package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/riskwatch/core/risk"
)

const reportHeader = "Student ID | Score | Risk Level"

// report evaluates every student once, ignoring cached risks, and saves nothing.
func (cli *commandLine) report(repo risk.Repository) error {
	doc, err := repo.Load(context.Background())
	if err != nil {
		if errors.Cause(err) != risk.ErrCorruptData {
			return err
		}
		cli.logger.Warn("student data is corrupt; reporting an empty collection", err)
		doc = risk.NewDocument()
	}

	fmt.Fprintln(cli.out, reportHeader)
	for _, s := range doc.Students {
		ev := risk.Evaluate(s, doc.Config)
		cli.printStudentLine(s.ID, ev.Score, ev.Level)
	}
	return nil
}
