package risk

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// Statuses that are semantically distinguished by the evaluator.
// Any other attendance or contact status counts as "not that".
const (
	StatusAttend = "ATTEND"
	StatusAbsent = "ABSENT"
	StatusFailed = "FAILED"
)

// Labels
const (
	LabelLow    = "Low"
	LabelMedium = "Medium"
	LabelHigh   = "High"

	// FallbackLabel is used when the configuration does not map a score.
	FallbackLabel = LabelLow

	MaxScore = 3
)

type (
	Attendance struct {
		Date   string `json:"date"`
		Status string `json:"status"`
	}

	Assignment struct {
		Date      string `json:"date"`
		Name      string `json:"name"`
		Submitted bool   `json:"submitted"`
	}

	Contact struct {
		Date   string `json:"date"`
		Status string `json:"status"`
	}
)

// Student is a single student record as persisted.
// RiskScore and RiskLevel cache the last Evaluation; ConfigVersion is the Configuration.Version it was computed under.
type Student struct {
	ID            string
	Name          string
	Attendance    []Attendance
	Assignments   []Assignment
	Contacts      []Contact
	RiskScore     *int
	RiskLevel     *string
	ConfigVersion int

	extra map[string]json.RawMessage // unknown keys and ill-typed values, written back as read
}

const (
	keyStudentID     = "student_id"
	keyStudentName   = "student_name"
	keyAttendance    = "attendance"
	keyAssignments   = "assignments"
	keyContacts      = "contacts"
	keyRiskScore     = "risk_score"
	keyRiskLevel     = "risk_level"
	keyConfigVersion = "risk_config_version"
)

var studentKeys = []string{
	keyStudentID, keyStudentName, keyAttendance, keyAssignments, keyContacts, keyRiskScore, keyRiskLevel, keyConfigVersion,
}

// UnmarshalJSON only fails when the record is not a JSON object.
// A field of the wrong type is coerced the way a loosely typed reader would see it
// (non-arrays are empty streams, any truthy "submitted" counts) and its raw value is kept for writing back.
// Streams are never rewritten, so they are always kept as read.
func (s *Student) UnmarshalJSON(data []byte) error {
	raw := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return errors.New("student record is null")
	}

	st := Student{}
	keep := func(key string) {
		if st.extra == nil {
			st.extra = make(map[string]json.RawMessage)
		}
		st.extra[key] = raw[key]
	}

	for key, v := range raw {
		switch key {
		case keyStudentID:
			if json.Unmarshal(v, &st.ID) != nil || isJSONNull(v) {
				st.ID = jsonText(v)
				keep(key)
			}
		case keyStudentName:
			if json.Unmarshal(v, &st.Name) != nil || isJSONNull(v) {
				st.Name, _ = jsonString(v)
				keep(key)
			}
		case keyAttendance:
			st.Attendance = decodeAttendance(v)
			keep(key)
		case keyAssignments:
			st.Assignments = decodeAssignments(v)
			keep(key)
		case keyContacts:
			st.Contacts = decodeContacts(v)
			keep(key)
		case keyRiskScore:
			if n, ok := jsonInt(v); ok {
				st.RiskScore = &n
			} else {
				keep(key)
			}
		case keyRiskLevel:
			if lvl, ok := jsonString(v); ok {
				st.RiskLevel = &lvl
			} else {
				keep(key)
			}
		case keyConfigVersion:
			if n, ok := jsonInt(v); ok && n > 0 {
				st.ConfigVersion = n
			} else {
				keep(key)
			}
		default:
			keep(key)
		}
	}

	*s = st
	return nil
}

func (s Student) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(studentKeys)+len(s.extra))
	for k, v := range s.extra {
		out[k] = v
	}
	set := func(key string, v interface{}) {
		if _, kept := s.extra[key]; !kept {
			out[key] = v
		}
	}
	set(keyStudentID, s.ID)
	set(keyStudentName, s.Name)
	if s.Attendance != nil {
		set(keyAttendance, s.Attendance)
	}
	if s.Assignments != nil {
		set(keyAssignments, s.Assignments)
	}
	if s.Contacts != nil {
		set(keyContacts, s.Contacts)
	}

	// cached risk fields always reflect the last evaluation
	if s.RiskScore != nil {
		out[keyRiskScore] = *s.RiskScore
	}
	if s.RiskLevel != nil {
		out[keyRiskLevel] = *s.RiskLevel
	}
	if s.ConfigVersion != 0 {
		out[keyConfigVersion] = s.ConfigVersion
	} else if s.HasRisk() {
		delete(out, keyConfigVersion)
	}
	return json.Marshal(out)
}

// HasRisk reports whether both cached fields are present.
func (s Student) HasRisk() bool {
	return s.RiskScore != nil && s.RiskLevel != nil
}

// NeedsEvaluation reports whether the cached risk can not be trusted under conf:
// either field is missing or it was computed under another configuration version.
func (s Student) NeedsEvaluation(conf Configuration) bool {
	return !s.HasRisk() || s.ConfigVersion != conf.Version
}

// SetRisk caches ev as computed under conf.
func (s *Student) SetRisk(ev Evaluation, conf Configuration) {
	score, level := ev.Score, ev.Level
	s.RiskScore = &score
	s.RiskLevel = &level
	s.ConfigVersion = conf.Version
}

// Risk returns the cached Evaluation; ok is false when it is not (fully) cached.
func (s Student) Risk() (ev Evaluation, ok bool) {
	if !s.HasRisk() {
		return Evaluation{}, false
	}
	return Evaluation{Score: *s.RiskScore, Level: *s.RiskLevel}, true
}

// Level returns the cached label or "".
func (s Student) Level() string {
	if s.RiskLevel == nil {
		return ""
	}
	return *s.RiskLevel
}

type Evaluation struct {
	Score int    `json:"risk_score"`
	Level string `json:"risk_level"`
}

// Configuration holds the tunable thresholds and the score -> label mapping.
type Configuration struct {
	AttendanceRateThreshold float64           `json:"attendanceRateThreshold"`
	AssignmentRateThreshold float64           `json:"assignmentRateThreshold"`
	FailedContactsThreshold int               `json:"failedContactsThreshold"`
	RiskLabels              map[string]string `json:"riskLabels"`
	Version                 int               `json:"version,omitempty"`

	extra map[string]json.RawMessage
}

var configKeys = []string{
	"attendanceRateThreshold", "assignmentRateThreshold", "failedContactsThreshold", "riskLabels", "version",
}

func DefaultRiskLabels() map[string]string {
	return map[string]string{
		"0": LabelLow,
		"1": LabelLow,
		"2": LabelMedium,
		"3": LabelHigh,
	}
}

// DefaultConfiguration returns the configuration used when none is persisted.
func DefaultConfiguration() Configuration {
	return Configuration{
		AttendanceRateThreshold: 0.75,
		AssignmentRateThreshold: 0.5,
		FailedContactsThreshold: 2,
		RiskLabels:              DefaultRiskLabels(),
	}
}

// Label maps a score to its label, falling back to FallbackLabel.
func (c Configuration) Label(score int) string {
	if lbl, ok := c.RiskLabels[strconv.Itoa(score)]; ok {
		return lbl
	}
	return FallbackLabel
}

// UnmarshalJSON is lenient: any field that is missing or of the wrong type keeps its default value.
func (c *Configuration) UnmarshalJSON(data []byte) error {
	raw := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	conf := DefaultConfiguration()
	if f, ok := jsonNumber(raw["attendanceRateThreshold"]); ok {
		conf.AttendanceRateThreshold = f
	}
	if f, ok := jsonNumber(raw["assignmentRateThreshold"]); ok {
		conf.AssignmentRateThreshold = f
	}
	if n, ok := jsonCount(raw["failedContactsThreshold"]); ok {
		conf.FailedContactsThreshold = n
	}
	if n, ok := jsonInt(raw["version"]); ok && n > 0 {
		conf.Version = n
	}
	if lbls, ok := raw["riskLabels"]; ok {
		labels := make(map[string]json.RawMessage)
		if err := json.Unmarshal(lbls, &labels); err == nil && labels != nil {
			conf.RiskLabels = make(map[string]string, len(labels))
			for k, v := range labels {
				var s string
				if json.Unmarshal(v, &s) == nil {
					conf.RiskLabels[k] = s
				}
			}
		}
	}
	for _, k := range configKeys {
		delete(raw, k)
	}
	if len(raw) > 0 {
		conf.extra = raw
	}
	*c = conf
	return nil
}

func (c Configuration) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(configKeys)+len(c.extra))
	for k, v := range c.extra {
		out[k] = v
	}
	out["attendanceRateThreshold"] = c.AttendanceRateThreshold
	out["assignmentRateThreshold"] = c.AssignmentRateThreshold
	out["failedContactsThreshold"] = c.FailedContactsThreshold
	labels := c.RiskLabels
	if labels == nil {
		labels = map[string]string{}
	}
	out["riskLabels"] = labels
	if c.Version != 0 {
		out["version"] = c.Version
	}
	return json.Marshal(out)
}

// ThresholdsUpdate is a partial Configuration update; nil fields are left unchanged.
type ThresholdsUpdate struct {
	AttendanceRateThreshold *float64 `json:"attendanceRateThreshold" validate:"omitempty,ratio"`
	AssignmentRateThreshold *float64 `json:"assignmentRateThreshold" validate:"omitempty,ratio"`
	FailedContactsThreshold *int     `json:"failedContactsThreshold" validate:"omitempty,gte=0"`
}

// UnmarshalJSON silently drops fields that are not JSON numbers.
// A fractional failedContactsThreshold is rounded up, which keeps the comparison with whole counts unchanged.
func (upd *ThresholdsUpdate) UnmarshalJSON(data []byte) error {
	raw := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*upd = ThresholdsUpdate{}
	if f, ok := jsonNumber(raw["attendanceRateThreshold"]); ok {
		upd.AttendanceRateThreshold = &f
	}
	if f, ok := jsonNumber(raw["assignmentRateThreshold"]); ok {
		upd.AssignmentRateThreshold = &f
	}
	if n, ok := jsonCount(raw["failedContactsThreshold"]); ok {
		upd.FailedContactsThreshold = &n
	}
	return nil
}

// ParseThresholdsUpdate decodes a request body; an empty body is an empty update.
func ParseThresholdsUpdate(body []byte) (ThresholdsUpdate, error) {
	var upd ThresholdsUpdate
	if len(body) == 0 {
		return upd, nil
	}
	if err := json.Unmarshal(body, &upd); err != nil {
		return ThresholdsUpdate{}, errors.Wrap(err, "decoding thresholds")
	}
	return upd, nil
}

func (upd ThresholdsUpdate) IsEmpty() bool {
	return upd.AttendanceRateThreshold == nil && upd.AssignmentRateThreshold == nil && upd.FailedContactsThreshold == nil
}

// Apply returns a copy of conf with the set thresholds replaced.
func (upd ThresholdsUpdate) Apply(conf Configuration) Configuration {
	next := conf
	if upd.AttendanceRateThreshold != nil {
		next.AttendanceRateThreshold = *upd.AttendanceRateThreshold
	}
	if upd.AssignmentRateThreshold != nil {
		next.AssignmentRateThreshold = *upd.AssignmentRateThreshold
	}
	if upd.FailedContactsThreshold != nil {
		next.FailedContactsThreshold = *upd.FailedContactsThreshold
	}
	return next
}

func decodeAttendance(raw json.RawMessage) []Attendance {
	items, ok := jsonObjects(raw)
	if !ok {
		return nil
	}
	stream := make([]Attendance, 0, len(items))
	for _, item := range items {
		date, _ := jsonString(item["date"])
		status, _ := jsonString(item["status"])
		stream = append(stream, Attendance{Date: date, Status: status})
	}
	return stream
}

func decodeAssignments(raw json.RawMessage) []Assignment {
	items, ok := jsonObjects(raw)
	if !ok {
		return nil
	}
	stream := make([]Assignment, 0, len(items))
	for _, item := range items {
		date, _ := jsonString(item["date"])
		name, _ := jsonString(item["name"])
		stream = append(stream, Assignment{Date: date, Name: name, Submitted: jsonTruthy(item["submitted"])})
	}
	return stream
}

func decodeContacts(raw json.RawMessage) []Contact {
	items, ok := jsonObjects(raw)
	if !ok {
		return nil
	}
	stream := make([]Contact, 0, len(items))
	for _, item := range items {
		date, _ := jsonString(item["date"])
		status, _ := jsonString(item["status"])
		stream = append(stream, Contact{Date: date, Status: status})
	}
	return stream
}

func jsonNumber(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var f *float64
	if err := json.Unmarshal(raw, &f); err != nil || f == nil {
		return 0, false
	}
	return *f, true
}

func jsonInt(raw json.RawMessage) (int, bool) {
	f, ok := jsonNumber(raw)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// jsonCount reads a threshold compared against whole counts: n >= 2.5 holds exactly when n >= 3.
func jsonCount(raw json.RawMessage) (int, bool) {
	f, ok := jsonNumber(raw)
	if !ok || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(math.Ceil(f)), true
}

func jsonString(raw json.RawMessage) (string, bool) {
	var s *string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil || s == nil {
		return "", false
	}
	return *s, true
}

// jsonText reads a string, or the literal of a number.
func jsonText(raw json.RawMessage) string {
	if s, ok := jsonString(raw); ok {
		return s
	}
	if _, ok := jsonNumber(raw); ok {
		return string(bytes.TrimSpace(raw))
	}
	return ""
}

// jsonTruthy: false, 0, "" and null are false; any other value is true.
func jsonTruthy(raw json.RawMessage) bool {
	var v interface{}
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return false
	}
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	default: // objects and arrays
		return true
	}
}

// jsonObjects returns the elements of a JSON array decoded as objects; a non-object element is an empty one.
// ok is false when raw is not an array.
func jsonObjects(raw json.RawMessage) (objs []map[string]json.RawMessage, ok bool) {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil || items == nil {
		return nil, false
	}
	objs = make([]map[string]json.RawMessage, 0, len(items))
	for _, item := range items {
		obj := make(map[string]json.RawMessage)
		if json.Unmarshal(item, &obj) != nil {
			obj = nil
		}
		objs = append(objs, obj)
	}
	return objs, true
}

func isJSONNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
