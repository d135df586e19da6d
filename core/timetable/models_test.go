package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ratiba/core"
)

var layout = core.TimetableConfig{DaysPerWeek: 6, PeriodsPerDay: 10}

func TestSaveRequest_Validate(t *testing.T) {
	valid := func() SaveRequest {
		return SaveRequest{
			ClassID:  " c1 ",
			Year:     "2025-2026",
			Semester: 1,
			Days: []DaySchedule{{Day: 1, Slots: []Slot{
				{Period: 1, Subject: " Math ", Assignee: Assignee{Name: " Mr Juma "}},
				{Period: 2, Subject: "Assembly", Assignee: SharedActivity("Assembly")},
				{Period: 3, Subject: "Study"},
			}}},
		}
	}

	tests := []struct {
		name       string
		edit       func(r *SaveRequest)
		wantFields []string
	}{
		{name: "valid", edit: func(r *SaveRequest) {}},
		{name: "missing class", edit: func(r *SaveRequest) { r.ClassID = "" }, wantFields: []string{"class_id"}},
		{name: "bad year", edit: func(r *SaveRequest) { r.Year = "2025/26" }, wantFields: []string{"year"}},
		{name: "bad semester", edit: func(r *SaveRequest) { r.Semester = 3 }, wantFields: []string{"semester"}},
		{name: "day out of range", edit: func(r *SaveRequest) { r.Days[0].Day = 7 }, wantFields: []string{"days[0].day"}},
		{
			name: "duplicate day",
			edit: func(r *SaveRequest) {
				r.Days = append(r.Days, DaySchedule{Day: 1, Slots: []Slot{{Period: 4, Subject: "History"}}})
			},
			wantFields: []string{"days[1].day"},
		},
		{
			name:       "period out of range",
			edit:       func(r *SaveRequest) { r.Days[0].Slots[2].Period = 11 },
			wantFields: []string{"days[0].slots[2].period"},
		},
		{
			name:       "duplicate period",
			edit:       func(r *SaveRequest) { r.Days[0].Slots[2].Period = 1 },
			wantFields: []string{"days[0].slots[2].period"},
		},
		{
			name:       "unnamed teacher",
			edit:       func(r *SaveRequest) { r.Days[0].Slots[0].Assignee = Teacher("  ") },
			wantFields: []string{"days[0].slots[0].assignee.name"},
		},
		{
			name:       "unknown kind",
			edit:       func(r *SaveRequest) { r.Days[0].Slots[0].Assignee.Kind = "robot" },
			wantFields: []string{"days[0].slots[0].assignee.kind"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.edit(&req)
			err := req.Validate(layout)
			if tt.wantFields == nil {
				require.NoError(t, err)
				assert.Equal(t, "c1", req.ClassID)
				assert.Equal(t, Teacher("Mr Juma"), req.Days[0].Slots[0].Assignee, "kind inferred from name")
				assert.Equal(t, "Math", req.Days[0].Slots[0].Subject)
				return
			}

			require.Error(t, err)
			vErr, ok := err.(*core.ValidationError)
			require.True(t, ok, "got %T", err)
			fields := make([]string, 0, len(vErr.Fields))
			for _, f := range vErr.Fields {
				fields = append(fields, f.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func Test_teacherKey(t *testing.T) {
	assert.Equal(t, "mr juma", teacherKey("  Mr   JUMA "))
	assert.Equal(t, teacherKey("Ms Wanjiru"), teacherKey("ms wanjiru"))
}
