package risk

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/riskwatch/core"
)

func TestParseThresholdsUpdate(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	n := func(v int) *int { return &v }

	tests := []struct {
		name    string
		body    string
		want    ThresholdsUpdate
		wantErr bool
	}{
		{name: "empty body", body: "", want: ThresholdsUpdate{}},
		{name: "empty object", body: "{}", want: ThresholdsUpdate{}},
		{
			name: "all fields",
			body: `{"attendanceRateThreshold":0.8,"assignmentRateThreshold":0.4,"failedContactsThreshold":5}`,
			want: ThresholdsUpdate{AttendanceRateThreshold: f(0.8), AssignmentRateThreshold: f(0.4), FailedContactsThreshold: n(5)},
		},
		{
			name: "non-numbers are ignored",
			body: `{"attendanceRateThreshold":"0.8","assignmentRateThreshold":null,"failedContactsThreshold":true}`,
			want: ThresholdsUpdate{},
		},
		{
			name: "fractional contacts threshold rounds up",
			body: `{"failedContactsThreshold":2.5,"riskLabels":{"0":"None"}}`,
			want: ThresholdsUpdate{FailedContactsThreshold: n(3)},
		},
		{name: "not json", body: `thresholds!`, wantErr: true},
		{name: "not an object", body: `[0.5]`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseThresholdsUpdate([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.IsEmpty(), got.IsEmpty())
		})
	}
}

func TestThresholdsUpdate_Apply(t *testing.T) {
	conf := DefaultConfiguration()
	conf.Version = 4

	failed := 7
	next := ThresholdsUpdate{FailedContactsThreshold: &failed}.Apply(conf)
	assert.Equal(t, 7, next.FailedContactsThreshold)
	assert.Equal(t, conf.AttendanceRateThreshold, next.AttendanceRateThreshold)
	assert.Equal(t, conf.AssignmentRateThreshold, next.AssignmentRateThreshold)
	assert.Equal(t, 4, next.Version)
	assert.Equal(t, 2, conf.FailedContactsThreshold, "source is left untouched")

	assert.Equal(t, conf, ThresholdsUpdate{}.Apply(conf))
}

func TestThresholdsUpdate_Validate(t *testing.T) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	InitValidators(validate, translator)

	tests := []struct {
		name    string
		body    string
		wantErr map[string]string
	}{
		{name: "empty", body: `{}`},
		{name: "bounds", body: `{"attendanceRateThreshold":0,"assignmentRateThreshold":1,"failedContactsThreshold":0}`},
		{
			name: "rate above one",
			body: `{"attendanceRateThreshold":1.5}`,
			wantErr: map[string]string{
				"attendanceRateThreshold": "attendanceRateThreshold must be a rate between 0 and 1",
			},
		},
		{
			name: "negatives",
			body: `{"assignmentRateThreshold":-0.1,"failedContactsThreshold":-1}`,
			wantErr: map[string]string{
				"assignmentRateThreshold": "assignmentRateThreshold must be a rate between 0 and 1",
				"failedContactsThreshold": "failedContactsThreshold must be 0 or greater",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upd, err := ParseThresholdsUpdate([]byte(tt.body))
			require.NoError(t, err)

			err = upd.Validate(validate)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			vErrs, ok := err.(validator.ValidationErrors)
			require.True(t, ok, "got %T", err)
			assert.Equal(t, tt.wantErr, core.TranslateValidationErrors(vErrs, translator))
		})
	}
}
