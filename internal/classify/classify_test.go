package classify_test

import (
	"testing"

	"invoicebooks/internal/classify"
	"invoicebooks/internal/models"
)

func TestClassify_CityRouting(t *testing.T) {
	tests := []struct {
		location string
		jobTitle string
		want     models.Business
	}{
		{"Maumelle, AR", "Forklift Operator", models.BusinessEverett},
		{"Little Rock, AR", "Driver", models.BusinessEverett},
		{"Dallas, TX", "Recruiter", models.BusinessEverett},
		{"Searcy, AR", "Welder", models.BusinessEverett},
		{"Indianapolis, IN", "Driver", models.BusinessWhittingham},
		{"Carmel, IN", "Driver", models.BusinessWhittingham},
		{"Evansville, IN", "Driver", models.BusinessWhittingham},
		{"Birmingham, AL", "Driver", models.BusinessMcLain},
		{"Mobile, AL", "Driver", models.BusinessMcLain},
		{"Huntsville, AL", "Driver", models.BusinessMcLain},
		{"Memphis, TN", "Driver", models.BusinessOthers},
		{"", "", models.BusinessOthers},
	}

	for _, tt := range tests {
		got := classify.Classify(tt.location, tt.jobTitle)
		if got != tt.want {
			t.Errorf("Classify(%q, %q) got=%v want=%v", tt.location, tt.jobTitle, got, tt.want)
		}
	}
}

func TestClassify_InsuranceRepresentativeTrigger(t *testing.T) {
	// The pair is an alternative trigger: Dallas already routes to Everett
	// by city, so the pair must not be required.
	if got := classify.Classify("Dallas, TX", "Insurance Representative"); got != models.BusinessEverett {
		t.Errorf("Dallas + Insurance Representative got=%v want=%v", got, models.BusinessEverett)
	}
	if got := classify.Classify("Dallas, TX", "Recruiter"); got != models.BusinessEverett {
		t.Errorf("Dallas + Recruiter got=%v want=%v", got, models.BusinessEverett)
	}
	// The trigger does not fire for the job title alone.
	if got := classify.Classify("Memphis, TN", "Insurance Representative"); got != models.BusinessOthers {
		t.Errorf("Memphis + Insurance Representative got=%v want=%v", got, models.BusinessOthers)
	}
}

func TestClassify_CaseSensitiveCities(t *testing.T) {
	// Unexpected spellings land in Others for human review.
	if got := classify.Classify("little rock, AR", "Driver"); got != models.BusinessOthers {
		t.Errorf("lowercased city got=%v want=%v", got, models.BusinessOthers)
	}
	if got := classify.Classify("MOBILE, AL", "Driver"); got != models.BusinessOthers {
		t.Errorf("uppercased city got=%v want=%v", got, models.BusinessOthers)
	}
}

func TestClassify_WhitespaceTolerant(t *testing.T) {
	if got := classify.Classify("  Conway , AR ", "Driver"); got != models.BusinessEverett {
		t.Errorf("padded location got=%v want=%v", got, models.BusinessEverett)
	}
}
