package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/riskwatch/core/risk"
)

// minSuggestionRatio is how similar an existing ID must be to be suggested.
const minSuggestionRatio = 0.7

func (cli *commandLine) evaluate(id string) error {
	s, err := cli.riskSvc.Evaluate(context.Background(), id)
	if err != nil {
		cli.suggestStudentID(id, err)
		return err
	}
	ev, _ := s.Risk()
	cli.printStudentLine(s.ID, ev.Score, ev.Level)
	return nil
}

// suggestStudentID prints the closest stored ID when err is risk.ErrNotFound.
func (cli *commandLine) suggestStudentID(id string, err error) {
	if errors.Cause(err) != risk.ErrNotFound {
		return
	}
	if suggestion := cli.closestStudentID(id); suggestion != "" {
		fmt.Fprintf(cli.out, "no student %q; did you mean %q?\n", id, suggestion)
	}
}

// closestStudentID returns the stored ID most similar to id, or "" when none is close enough.
func (cli *commandLine) closestStudentID(id string) string {
	doc, err := cli.repo.Load(context.Background())
	if err != nil {
		return ""
	}

	var best string
	var bestRatio float64
	target := strings.Split(id, "")
	for _, s := range doc.Students {
		ratio := difflib.NewMatcher(target, strings.Split(s.ID, "")).Ratio()
		if ratio >= minSuggestionRatio && ratio > bestRatio {
			best, bestRatio = s.ID, ratio
		}
	}
	return best
}
