package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"

	. "github.com/trezcool/riskwatch/apps/api/echo"
	"github.com/trezcool/riskwatch/core"
	"github.com/trezcool/riskwatch/core/risk"
	"github.com/trezcool/riskwatch/storage/jsonfile"
	"github.com/trezcool/riskwatch/tests"
)

var (
	errNotFound        = httpErr{Error: "Not Found"}
	errStudentNotFound = httpErr{Error: "Student not found"}
)

// setup serves the students file holding data; it returns the server and the file path.
func setup(t *testing.T, data string) (*Server, string) {
	path := testutil.WriteStudentsFile(t, data)

	conf := &core.Config{
		Env:      "TEST",
		TestMode: true,
		Server:   core.ServerConfig{DisableReqLogs: true},
		Store:    core.StoreConfig{Driver: core.StoreDriverFile, Path: path},
	}
	logger := testutil.NewLogger()

	translator := core.NewTranslator()
	validate := validator.New()
	core.InitValidators(validate, translator)
	risk.InitValidators(validate, translator)

	return NewServer(ServerDeps{
		Conf:       conf,
		Logger:     logger,
		RiskSvc:    risk.NewService(jsonfile.NewStudentRepository(path), logger),
		Validate:   validate,
		Translator: translator,
	}), path
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

// decodeStudents decodes a student list response.
func decodeStudents(t *testing.T, rec *httptest.ResponseRecorder) []risk.Student {
	var students []risk.Student
	if err := json.Unmarshal(rec.Body.Bytes(), &students); err != nil {
		t.Fatalf("decodeStudents() failed: %v; body %s", err, rec.Body.String())
	}
	return students
}

func studentIDs(students []risk.Student) []string {
	out := make([]string, 0, len(students))
	for _, s := range students {
		out = append(out, s.ID)
	}
	return out
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
