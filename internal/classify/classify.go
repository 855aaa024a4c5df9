// Package classify routes line items to a business bucket and resolves the
// billing client for each item against the client directory.
package classify

import (
	"slices"
	"strings"

	"invoicebooks/internal/models"
)

// City lists are matched case-sensitively on purpose: the export spells
// cities consistently, and anything unexpected should land in Others where a
// human reviews it.
var everettCities = []string{
	"Maumelle", "Little Rock", "Conway", "Tyler", "Southaven", "Oxford",
	"Fayetteville", "Dallas", "Searcy", "Jonesboro", "Rogers", "Jacksonville",
}

var whittinghamCities = []string{
	"Indianapolis", "Carmel", "Evansville",
}

var mclainCities = []string{
	"Birmingham", "Mobile", "Huntsville",
}

// Classify returns the business bucket for a location/job-title pair. It is
// total: every input maps to exactly one bucket.
func Classify(location, jobTitle string) models.Business {
	loc := strings.TrimSpace(location)
	city := strings.TrimSpace(strings.SplitN(loc, ",", 2)[0])
	job := strings.TrimSpace(jobTitle)

	// The Dallas/Insurance Representative pair is an alternative trigger, not
	// an extra gate on the city list.
	if slices.Contains(everettCities, city) ||
		(loc == "Dallas, TX" && job == "Insurance Representative") {
		return models.BusinessEverett
	}
	if slices.Contains(whittinghamCities, city) {
		return models.BusinessWhittingham
	}
	if slices.Contains(mclainCities, city) {
		return models.BusinessMcLain
	}
	return models.BusinessOthers
}
