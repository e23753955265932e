package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/riskwatch/core"
	"github.com/trezcool/riskwatch/core/risk"
	"github.com/trezcool/riskwatch/storage/jsonfile"
	"github.com/trezcool/riskwatch/tests"
)

func setup(t *testing.T, data string) (*commandLine, *bytes.Buffer, string) {
	path := testutil.WriteStudentsFile(t, data)
	repo := jsonfile.NewStudentRepository(path)
	logger := testutil.NewLogger()
	out := new(bytes.Buffer)

	isTerminalFunc = func(int) bool { return false }

	// start CLI
	return &commandLine{
		conf:    &core.Config{Env: "TEST", TestMode: true, Store: core.StoreConfig{Driver: core.StoreDriverFile, Path: path}},
		logger:  logger,
		repo:    repo,
		riskSvc: risk.NewService(repo, logger),
		in:      strings.NewReader(""),
		out:     out,
	}, out, path
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	wantOut    string
}

func runCliTests(t *testing.T, cli *commandLine, out *bytes.Buffer, tests []cliTest) {
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if errors.Cause(err) != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			} else if tt.wantErr != nil || tt.wantErrStr != "" {
				t.Errorf("cli.run() error = nil, wantErr %v %s", tt.wantErr, tt.wantErrStr)
			}
			if tt.wantOut != "" && out.String() != tt.wantOut {
				t.Errorf("cli.run() output = %q, wantOut %q", out.String(), tt.wantOut)
			}
		})
	}
}

func Test_commandLine_help(t *testing.T) {
	cli, out, _ := setup(t, testutil.Students)

	runCliTests(t, cli, out, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "unknown flag", args: []string{"report", "-lol"}, wantErr: errHelp},
		{name: "evaluate: no id", args: []string{"evaluate"}, wantErr: errHelp},
		{name: "show: no id", args: []string{"show"}, wantErr: errHelp},
		{name: "thresholds: not a number", args: []string{"thresholds", "-attendance", "high"}, wantErr: errHelp},
	})

	out.Reset()
	_ = cli.run([]string{"admin"})
	assert.True(t, strings.HasPrefix(out.String(), "Usage:"), out.String())
}

func Test_commandLine_report(t *testing.T) {
	cli, out, path := setup(t, testutil.Students)

	want := strings.Join([]string{
		reportHeader,
		"S001 | 2 | Medium",
		"S002 | 0 | Low",
		"S003 | 3 | High",
		"S004 | 0 | Low",
		"S005 | 2 | Medium",
		"",
	}, "\n")

	otherPath := testutil.WriteStudentsFile(t, `{"config":{"failedContactsThreshold":10},"students":[{"student_id":"Z","contacts":[{"date":"2024-01-01","status":"FAILED"},{"date":"2024-01-02","status":"FAILED"}],"risk_score":3,"risk_level":"High"}]}`)

	runCliTests(t, cli, out, []cliTest{
		{name: "configured store", args: []string{"report"}, wantOut: want},
		{name: "explicit file", args: []string{"report", "-file", otherPath}, wantOut: reportHeader + "\nZ | 0 | Low\n"},
		{name: "corrupt file", args: []string{"report", "-file", testutil.WriteStudentsFile(t, "[{")}, wantOut: reportHeader + "\n"},
	})

	// nothing is saved
	assert.Equal(t, testutil.Students, string(testutil.ReadStudentsFile(t, path)))
}

func Test_commandLine_report_mockedFile(t *testing.T) {
	cli, out, _ := setup(t, testutil.Students)

	var gotPath string
	newFileRepositoryFunc = func(path string) risk.Repository {
		gotPath = path
		return jsonfile.NewStudentRepository(testutil.WriteStudentsFile(t, `[]`))
	}
	defer func() { newFileRepositoryFunc = jsonfile.NewStudentRepository }()

	require.NoError(t, cli.run([]string{"admin", "report", "-file", "students.json"}))
	assert.Equal(t, "students.json", gotPath)
	assert.Equal(t, reportHeader+"\n", out.String())
}

func Test_commandLine_evaluate(t *testing.T) {
	cli, out, path := setup(t, testutil.Students)

	runCliTests(t, cli, out, []cliTest{
		{name: "unknown student", args: []string{"evaluate", "-id", "nope"}, wantErr: risk.ErrNotFound},
		{name: "typo", args: []string{"evaluate", "-id", "S0O3"}, wantErr: risk.ErrNotFound, wantOut: "no student \"S0O3\"; did you mean \"S003\"?\n"},
		{name: "evaluate", args: []string{"evaluate", "-id", "S003"}, wantOut: "S003 | 3 | High\n"},
	})

	doc := testutil.ReadDocument(t, path)
	s := testutil.FindStudent(t, doc.Students, "S003")
	ev, ok := s.Risk()
	require.True(t, ok)
	assert.Equal(t, risk.Evaluation{Score: 3, Level: risk.LabelHigh}, ev)
	assert.False(t, testutil.FindStudent(t, doc.Students, "S001").HasRisk())
}

func Test_commandLine_show(t *testing.T) {
	cli, out, path := setup(t, testutil.Students)

	runCliTests(t, cli, out, []cliTest{
		{name: "unknown student", args: []string{"show", "-id", "nope"}, wantErr: risk.ErrNotFound},
		{name: "typo", args: []string{"show", "-id", "S00l"}, wantErr: risk.ErrNotFound, wantOut: "no student \"S00l\"; did you mean \"S001\"?\n"},
		{
			name:    "fills a missing risk",
			args:    []string{"show", "-id", "S003"},
			wantOut: "S003 | 3 | High\nname: Cara\nattended: 0/2 | submitted: 1/3 | failed contacts: 2/2\n",
		},
	})

	doc := testutil.ReadDocument(t, path)
	assert.True(t, testutil.FindStudent(t, doc.Students, "S003").HasRisk())
	assert.False(t, testutil.FindStudent(t, doc.Students, "S001").HasRisk(), "other students are left untouched")

	// a cached risk is shown as is, nothing is saved
	before := testutil.ReadStudentsFile(t, path)
	runCliTests(t, cli, out, []cliTest{
		{name: "cached risk", args: []string{"show", "-id", "S003"}, wantOut: "S003 | 3 | High\nname: Cara\nattended: 0/2 | submitted: 1/3 | failed contacts: 2/2\n"},
	})
	assert.Equal(t, string(before), string(testutil.ReadStudentsFile(t, path)))
}

func Test_commandLine_thresholds(t *testing.T) {
	cli, out, path := setup(t, testutil.Students)

	out.Reset()
	err := cli.run([]string{"admin", "thresholds", "-attendance", "1.5"})
	_, isValidation := err.(validator.ValidationErrors)
	assert.True(t, isValidation, "got %v", err)
	assert.Equal(t, "attendanceRateThreshold: attendanceRateThreshold must be a rate between 0 and 1\n", out.String())
	assert.Equal(t, testutil.Students, string(testutil.ReadStudentsFile(t, path)), "nothing is saved")

	want := strings.Join([]string{
		"attendance < 0.75 | assignments < 0.5 | failed contacts >= 5 (version 1)",
		reportHeader,
		"S001 | 1 | Low",
		"S002 | 0 | Low",
		"S003 | 2 | Medium",
		"S004 | 0 | Low",
		"S005 | 1 | Low",
		"",
	}, "\n")
	runCliTests(t, cli, out, []cliTest{
		{name: "failed contacts", args: []string{"thresholds", "-failed-contacts", "5"}, wantOut: want},
	})

	doc := testutil.ReadDocument(t, path)
	assert.Equal(t, risk.ShapeWrapped, doc.Shape)
	assert.Equal(t, 5, doc.Config.FailedContactsThreshold)
	assert.Equal(t, 1, doc.Config.Version)

	want = strings.Join([]string{
		"attendance < 0.8 | assignments < 0.5 | failed contacts >= 5 (version 2)",
		reportHeader,
		"S001 | 1 | Low",
		"S002 | 0 | Low",
		"S003 | 2 | Medium",
		"S004 | 1 | Low",
		"S005 | 1 | Low",
		"",
	}, "\n")
	runCliTests(t, cli, out, []cliTest{
		{name: "attendance only", args: []string{"thresholds", "-attendance", "0.8"}, wantOut: want},
	})
}

func Test_commandLine_thresholds_confirm(t *testing.T) {
	cli, out, path := setup(t, testutil.Students)
	isTerminalFunc = func(int) bool { return true }
	defer func() { isTerminalFunc = func(int) bool { return false } }()

	cli.in = strings.NewReader("n\n")
	err := cli.run([]string{"admin", "thresholds", "-failed-contacts", "5"})
	assert.Equal(t, errAborted, err)
	assert.Equal(t, "Recompute the risk of every student? [y/N] ", out.String())
	assert.Equal(t, testutil.Students, string(testutil.ReadStudentsFile(t, path)), "nothing is saved")

	out.Reset()
	cli.in = strings.NewReader(" Yes\n")
	require.NoError(t, cli.run([]string{"admin", "thresholds", "-failed-contacts", "5"}))
	assert.Equal(t, 5, testutil.ReadDocument(t, path).Config.FailedContactsThreshold)

	out.Reset()
	cli.in = strings.NewReader("")
	require.NoError(t, cli.run([]string{"admin", "thresholds", "-failed-contacts", "4", "-yes"}))
	assert.False(t, strings.HasPrefix(out.String(), "Recompute"), out.String())
	assert.Equal(t, 4, testutil.ReadDocument(t, path).Config.FailedContactsThreshold)
}
