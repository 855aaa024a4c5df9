package classify

import (
	"strings"

	"invoicebooks/internal/models"
)

// Resolution is the client identity attached to a line item. Resolve always
// produces one; a stale or empty directory degrades to fallback identities
// rather than failing the row.
type Resolution struct {
	ClientName string
	ClientCode string
	ClientID   string
	LastName   string
}

// resolverFunc is one strategy in the resolution chain. It reports whether it
// could produce a resolution; strategies are tried in order until one does.
type resolverFunc func(business models.Business, location string, dir models.Directory) (Resolution, bool)

var resolverChain = []resolverFunc{
	resolveDirectoryKey,
	resolveDirectoryScan,
	resolveHuntsvilleFallback,
	resolveStaticFallback,
}

// Resolve maps (business, location) to a client using the directory, falling
// back to the static table when the directory has nothing for the business.
func Resolve(business models.Business, location string, dir models.Directory) Resolution {
	for _, strategy := range resolverChain {
		if res, ok := strategy(business, location, dir); ok {
			return res
		}
	}
	// Unreachable: resolveStaticFallback always resolves.
	return fallbackResolution(unknownFallback)
}

// resolveDirectoryKey looks the business up under its exact legacy key.
func resolveDirectoryKey(business models.Business, location string, dir models.Directory) (Resolution, bool) {
	candidates := dir[business.Key()]
	if len(candidates) == 0 {
		return Resolution{}, false
	}
	return clientResolution(pickByLocation(candidates, location)), true
}

// resolveDirectoryScan handles directories keyed inconsistently (by id in
// one place, by name in another): it scans every client and collects those
// whose own business field names the target.
func resolveDirectoryScan(business models.Business, location string, dir models.Directory) (Resolution, bool) {
	key := business.Key()
	var candidates []models.Client
	for _, clients := range dir {
		for _, c := range clients {
			if strings.EqualFold(strings.TrimSpace(c.Business), key) {
				candidates = append(candidates, c)
			}
		}
	}
	if len(candidates) == 0 {
		return Resolution{}, false
	}
	return clientResolution(pickByLocation(candidates, location)), true
}

// pickByLocation returns the first candidate with a locations entry whose
// city matches the item's city, or the business's first (default) client when
// none match. Candidates are evaluated in directory order; there is no
// ranking beyond first match.
func pickByLocation(candidates []models.Client, location string) models.Client {
	city := strings.TrimSpace(strings.SplitN(strings.TrimSpace(location), ",", 2)[0])
	for _, c := range candidates {
		for _, tok := range c.LocationCities() {
			if strings.EqualFold(tok, city) {
				return c
			}
		}
	}
	return candidates[0]
}

// clientResolution derives the identity fields from a directory client. The
// client code is the first three letters of the surname, upper-cased; the
// surname is the last whitespace-delimited token of the name.
func clientResolution(c models.Client) Resolution {
	surname := surnameOf(c.Name)
	return Resolution{
		ClientName: c.Name,
		ClientCode: codeFromSurname(surname),
		ClientID:   c.ID,
		LastName:   surname,
	}
}

func surnameOf(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

func codeFromSurname(surname string) string {
	if len(surname) > 3 {
		surname = surname[:3]
	}
	return strings.ToUpper(surname)
}

// Static fallbacks keep the batch total when the directory has no clients at
// all for a business. The names mirror the primary billing contacts each
// bucket has always been routed to.
type fallbackClient struct {
	name string
	code string
	last string
}

var businessFallbacks = map[models.Business]fallbackClient{
	models.BusinessEverett:     {"Danny Everett", "EVE", "Everett"},
	models.BusinessWhittingham: {"Paul Whittingham", "WHI", "Whittingham"},
	models.BusinessMcLain:      {"Clint McLain", "MCL", "McLain"},
	models.BusinessOthers:      {"Jeanette Hurley", "HUR", "Hurley"},
}

// Huntsville billing is handled by a dedicated contact even though the city
// classifies under McLain.
var huntsvilleFallback = fallbackClient{"Angela Pruitt", "PRU", "Pruitt"}

var unknownFallback = fallbackClient{"Unknown Client", "UNK", "Client"}

func resolveHuntsvilleFallback(business models.Business, location string, _ models.Directory) (Resolution, bool) {
	if business == models.BusinessMcLain && strings.Contains(strings.ToLower(location), "huntsville") {
		return fallbackResolution(huntsvilleFallback), true
	}
	return Resolution{}, false
}

func resolveStaticFallback(business models.Business, _ string, _ models.Directory) (Resolution, bool) {
	if fb, ok := businessFallbacks[business]; ok {
		return fallbackResolution(fb), true
	}
	return fallbackResolution(unknownFallback), true
}

func fallbackResolution(fb fallbackClient) Resolution {
	return Resolution{
		ClientName: fb.name,
		ClientCode: fb.code,
		LastName:   fb.last,
	}
}
