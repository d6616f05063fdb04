package business

import "github.com/shopspring/decimal"

// Candidate is one raw listing as an adapter scraped it. It has no identity
// beyond (Name, Source) until the merge engine resolves it.
type Candidate struct {
	Name                  string   `json:"name"`
	IslandText            string   `json:"island_text,omitempty"`
	Industry              string   `json:"industry,omitempty"`
	Address               string   `json:"address,omitempty"`
	Phone                 string   `json:"phone,omitempty"`
	Website               string   `json:"website,omitempty"`
	EmployeeCountEstimate *int     `json:"employee_count_estimate,omitempty"`
	Description           string   `json:"description,omitempty"`
	Source                string   `json:"source"`
	SourceURL             string   `json:"source_url,omitempty"`
	GrowthSignals         []string `json:"growth_signals,omitempty"`
}

// LocationText is everything in the candidate that can place it on an island.
func (c Candidate) LocationText() string {
	return CleanText(c.IslandText + " " + c.Address)
}

// Fields is a candidate after normalization; the merge engine works on these.
type Fields struct {
	Name                  string
	NameKey               string
	Island                Island
	Industry              Industry
	Address               string
	Phone                 string
	Website               string
	EmployeeCountEstimate *int
	AnnualRevenueEstimate *decimal.Decimal
	Description           string
	Source                string
	SourceURL             string
	GrowthSignals         []string
}

// Normalize canonicalizes every field of a candidate. It never fails: fields
// that cannot be interpreted degrade to their empty or Unknown/Other value.
func Normalize(c Candidate) Fields {
	name := CleanText(c.Name)
	description := CleanText(c.Description)

	island, ok := ParseIsland(c.IslandText)
	if !ok || island == IslandUnknown {
		island = NormalizeIsland(c.LocationText())
	}

	industry, ok := ParseIndustry(c.Industry)
	if !ok || industry == IndustryOther {
		industry = NormalizeIndustry(name, CleanText(c.Industry+" "+description))
	}

	phone, _ := NormalizePhone(c.Phone)

	var employees *int
	if c.EmployeeCountEstimate != nil && *c.EmployeeCountEstimate > 0 {
		n := *c.EmployeeCountEstimate
		employees = &n
	}

	return Fields{
		Name:                  name,
		NameKey:               NameKey(name),
		Island:                island,
		Industry:              industry,
		Address:               CleanText(c.Address),
		Phone:                 phone,
		Website:               NormalizeWebsite(c.Website),
		EmployeeCountEstimate: employees,
		AnnualRevenueEstimate: EstimateAnnualRevenue(employees),
		Description:           description,
		Source:                CleanText(c.Source),
		SourceURL:             CleanText(c.SourceURL),
		GrowthSignals:         dedupeStrings(c.GrowthSignals),
	}
}

func dedupeStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = CleanText(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
