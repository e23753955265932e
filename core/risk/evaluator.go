package risk

// Evaluate scores a student against conf. One point per failed check:
//   - attendance rate below AttendanceRateThreshold
//   - assignment submission rate below AssignmentRateThreshold
//   - at least FailedContactsThreshold failed contacts
//
// A rate check is skipped when its stream is empty: missing data is never penalized.
func Evaluate(s Student, conf Configuration) Evaluation {
	var score int

	if n := len(s.Attendance); n > 0 {
		var attended int
		for _, a := range s.Attendance {
			if a.Status == StatusAttend {
				attended++
			}
		}
		if float64(attended)/float64(n) < conf.AttendanceRateThreshold {
			score++
		}
	}

	if n := len(s.Assignments); n > 0 {
		var submitted int
		for _, a := range s.Assignments {
			if a.Submitted {
				submitted++
			}
		}
		if float64(submitted)/float64(n) < conf.AssignmentRateThreshold {
			score++
		}
	}

	var failed int
	for _, c := range s.Contacts {
		if c.Status == StatusFailed {
			failed++
		}
	}
	if failed >= conf.FailedContactsThreshold {
		score++
	}

	return Evaluation{Score: score, Level: conf.Label(score)}
}
