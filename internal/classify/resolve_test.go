package classify_test

import (
	"testing"

	"invoicebooks/internal/classify"
	"invoicebooks/internal/models"
)

func TestResolve_DirectoryKeyMatch(t *testing.T) {
	dir := models.Directory{
		"mclain": {
			{ID: "c-1", Name: "Sarah Donaldson", Business: "mclain", Locations: "Birmingham, Mobile"},
		},
	}

	res := classify.Resolve(models.BusinessMcLain, "Mobile, AL", dir)
	if res.ClientName != "Sarah Donaldson" {
		t.Errorf("ClientName got=%q want=%q", res.ClientName, "Sarah Donaldson")
	}
	if res.ClientCode != "DON" {
		t.Errorf("ClientCode got=%q want=%q", res.ClientCode, "DON")
	}
	if res.ClientID != "c-1" {
		t.Errorf("ClientID got=%q want=%q", res.ClientID, "c-1")
	}
	if res.LastName != "Donaldson" {
		t.Errorf("LastName got=%q want=%q", res.LastName, "Donaldson")
	}
}

func TestResolve_LocationPicksAmongCandidates(t *testing.T) {
	dir := models.Directory{
		"everett": {
			{ID: "c-1", Name: "Danny Everett", Business: "everett", Locations: "Maumelle"},
			{ID: "c-2", Name: "Rita Calhoun", Business: "everett", Locations: "Tyler, Southaven"},
		},
	}

	res := classify.Resolve(models.BusinessEverett, "Tyler, TX", dir)
	if res.ClientID != "c-2" {
		t.Errorf("ClientID got=%q want=%q (location match should win)", res.ClientID, "c-2")
	}

	// No location match falls back to the first candidate.
	res = classify.Resolve(models.BusinessEverett, "Jonesboro, AR", dir)
	if res.ClientID != "c-1" {
		t.Errorf("ClientID got=%q want=%q (first candidate)", res.ClientID, "c-1")
	}
}

func TestResolve_CrossScanByBusinessField(t *testing.T) {
	// Directory keyed by an opaque id, but the client's own business field
	// names the bucket.
	dir := models.Directory{
		"b7f2-90aa": {
			{ID: "c-9", Name: "Paul Whittingham", Business: "Whittingham", Locations: "Indianapolis"},
		},
	}

	res := classify.Resolve(models.BusinessWhittingham, "Indianapolis, IN", dir)
	if res.ClientID != "c-9" {
		t.Errorf("ClientID got=%q want=%q (scan by business field)", res.ClientID, "c-9")
	}
}

func TestResolve_HuntsvilleFallback(t *testing.T) {
	res := classify.Resolve(models.BusinessMcLain, "Huntsville, AL", models.Directory{})
	if res.ClientName != "Angela Pruitt" || res.ClientCode != "PRU" {
		t.Errorf("got %+v, want the Huntsville contact", res)
	}

	// A populated McLain directory takes precedence over the dedicated contact.
	dir := models.Directory{
		"mclain": {{ID: "c-1", Name: "Clint McLain", Business: "mclain", Locations: "Huntsville"}},
	}
	res = classify.Resolve(models.BusinessMcLain, "Huntsville, AL", dir)
	if res.ClientID != "c-1" {
		t.Errorf("ClientID got=%q want=%q (directory wins over fallback)", res.ClientID, "c-1")
	}
}

func TestResolve_StaticFallbacks(t *testing.T) {
	empty := models.Directory{}
	tests := []struct {
		business models.Business
		name     string
		code     string
	}{
		{models.BusinessEverett, "Danny Everett", "EVE"},
		{models.BusinessWhittingham, "Paul Whittingham", "WHI"},
		{models.BusinessMcLain, "Clint McLain", "MCL"},
		{models.BusinessOthers, "Jeanette Hurley", "HUR"},
	}
	for _, tt := range tests {
		res := classify.Resolve(tt.business, "Nowhere, XX", empty)
		if res.ClientName != tt.name || res.ClientCode != tt.code {
			t.Errorf("Resolve(%v) got=%q/%q want=%q/%q",
				tt.business, res.ClientName, res.ClientCode, tt.name, tt.code)
		}
		if res.ClientID != "" {
			t.Errorf("Resolve(%v) ClientID got=%q want empty for fallback", tt.business, res.ClientID)
		}
	}
}

func TestResolve_ShortSurnameCode(t *testing.T) {
	dir := models.Directory{
		"everett": {{ID: "c-1", Name: "Amy Vo", Business: "everett"}},
	}
	res := classify.Resolve(models.BusinessEverett, "", dir)
	if res.ClientCode != "VO" {
		t.Errorf("ClientCode got=%q want=%q", res.ClientCode, "VO")
	}
}
