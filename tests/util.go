package testutil

import (
	"io/ioutil"
	"log"
	"path/filepath"
	"testing"

	"github.com/trezcool/riskwatch/core"
	"github.com/trezcool/riskwatch/core/risk"
	logsvc "github.com/trezcool/riskwatch/services/logger"
)

// Students is a legacy (bare array) data set with no cached risks, except S005 which only has a score.
//
// Under the default configuration:
//   S001: 2 / Medium (attendance, failed contacts)
//   S002: 0 / Low
//   S003: 3 / High
//   S004: 0 / Low (every rate sits exactly on its threshold, 1 failed contact)
//   S005: 2 / Medium (attendance, failed contacts)
const Students = `[
  {
    "student_id": "S001",
    "student_name": "Alice",
    "attendance": [
      {"date": "2024-01-08", "status": "ATTEND"},
      {"date": "2024-01-09", "status": "ABSENT"},
      {"date": "2024-01-10", "status": "ABSENT"},
      {"date": "2024-01-11", "status": "ABSENT"}
    ],
    "contacts": [
      {"date": "2024-01-12", "status": "FAILED"},
      {"date": "2024-01-13", "status": "FAILED"},
      {"date": "2024-01-14", "status": "FAILED"}
    ]
  },
  {
    "student_id": "S002",
    "student_name": "Bob",
    "attendance": [
      {"date": "2024-01-08", "status": "ATTEND"},
      {"date": "2024-01-09", "status": "ATTEND"}
    ],
    "assignments": [
      {"date": "2024-01-10", "name": "Essay", "submitted": true},
      {"date": "2024-01-11", "name": "Quiz", "submitted": true}
    ],
    "contacts": []
  },
  {
    "student_id": "S003",
    "student_name": "Cara",
    "attendance": [
      {"date": "2024-01-08", "status": "ABSENT"},
      {"date": "2024-01-09", "status": "ABSENT"}
    ],
    "assignments": [
      {"date": "2024-01-10", "name": "Essay", "submitted": false},
      {"date": "2024-01-11", "name": "Quiz", "submitted": false},
      {"date": "2024-01-12", "name": "Lab", "submitted": true}
    ],
    "contacts": [
      {"date": "2024-01-13", "status": "FAILED"},
      {"date": "2024-01-14", "status": "FAILED"}
    ]
  },
  {
    "student_id": "S004",
    "student_name": "Dan",
    "attendance": [
      {"date": "2024-01-08", "status": "ATTEND"},
      {"date": "2024-01-09", "status": "ATTEND"},
      {"date": "2024-01-10", "status": "ATTEND"},
      {"date": "2024-01-11", "status": "ABSENT"}
    ],
    "assignments": [
      {"date": "2024-01-10", "name": "Essay", "submitted": true},
      {"date": "2024-01-11", "name": "Quiz", "submitted": false}
    ],
    "contacts": [
      {"date": "2024-01-12", "status": "FAILED"},
      {"date": "2024-01-13", "status": "SUCCESS"}
    ]
  },
  {
    "student_id": "S005",
    "student_name": "Eve",
    "attendance": [
      {"date": "2024-01-08", "status": "ATTEND"},
      {"date": "2024-01-09", "status": "ABSENT"}
    ],
    "assignments": [
      {"date": "2024-01-10", "name": "Essay", "submitted": true}
    ],
    "contacts": [
      {"date": "2024-01-12", "status": "FAILED"},
      {"date": "2024-01-13", "status": "FAILED"}
    ],
    "risk_score": 3
  }
]`

// NewLogger returns a core.Logger that prints nothing and never reports to Rollbar.
func NewLogger() core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), &core.Config{Env: "test", TestMode: true})
	logger.Enable(false)
	return logger
}

// WriteStudentsFile writes data to a fresh file under a temp dir and returns its path.
func WriteStudentsFile(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "students.json")
	if err := ioutil.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("WriteStudentsFile() failed: %v", err)
	}
	return path
}

// ReadStudentsFile returns the raw content of the file at path.
func ReadStudentsFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadStudentsFile() failed: %v", err)
	}
	return data
}

// ReadDocument decodes the document persisted at path.
func ReadDocument(t *testing.T, path string) risk.Document {
	t.Helper()
	doc, err := risk.DecodeDocument(ReadStudentsFile(t, path))
	if err != nil {
		t.Fatalf("ReadDocument() failed: %v", err)
	}
	return doc
}

// FindStudent returns the student with the given id or fails the test.
func FindStudent(t *testing.T, students []risk.Student, id string) risk.Student {
	t.Helper()
	for _, s := range students {
		if s.ID == id {
			return s
		}
	}
	t.Fatalf("FindStudent(): no student %q", id)
	return risk.Student{}
}
