package business

import "strings"

// Industry is the fixed business category set
type Industry string

const (
	IndustryTourism              Industry = "Tourism"
	IndustryHospitality          Industry = "Hospitality"
	IndustryAgriculture          Industry = "Agriculture"
	IndustryRetail               Industry = "Retail"
	IndustryHealthcare           Industry = "Healthcare"
	IndustryRealEstate           Industry = "RealEstate"
	IndustryTechnology           Industry = "Technology"
	IndustryFoodService          Industry = "FoodService"
	IndustryTransportation       Industry = "Transportation"
	IndustryProfessionalServices Industry = "ProfessionalServices"
	IndustryOther                Industry = "Other"
)

// Industries lists every industry value in rule order, Other last.
var Industries = []Industry{
	IndustryTourism,
	IndustryHospitality,
	IndustryAgriculture,
	IndustryRetail,
	IndustryHealthcare,
	IndustryRealEstate,
	IndustryTechnology,
	IndustryFoodService,
	IndustryTransportation,
	IndustryProfessionalServices,
	IndustryOther,
}

// IsValid checks if the industry value is one of the fixed set
func (i Industry) IsValid() bool {
	for _, v := range Industries {
		if v == i {
			return true
		}
	}
	return false
}

// String returns the string representation
func (i Industry) String() string {
	return string(i)
}

// ParseIndustry maps an industry enum name, case-insensitively.
func ParseIndustry(s string) (Industry, bool) {
	key := strings.ReplaceAll(foldText(s), " ", "")
	for _, v := range Industries {
		if strings.ToLower(string(v)) == key {
			return v, true
		}
	}
	return IndustryOther, false
}

type industryRule struct {
	industry Industry
	keywords []string
}

var industryRules = []industryRule{
	{IndustryTourism, []string{"tour", "tours", "tourism", "tourist", "visitor", "sightseeing", "excursion", "excursions", "snorkel", "luau"}},
	{IndustryHospitality, []string{"hotel", "hotels", "resort", "resorts", "accommodation", "lodging", "bed and breakfast", "vacation rental", "vacation rentals", "inn"}},
	{IndustryAgriculture, []string{"farm", "farms", "ranch", "agricultural", "agriculture", "crop", "crops", "livestock", "aquaculture", "nursery", "orchard"}},
	{IndustryRetail, []string{"store", "stores", "shop", "shops", "boutique", "mall", "retail", "merchandise", "outlet"}},
	{IndustryHealthcare, []string{"hospital", "clinic", "medical", "pharmacy", "physician", "physicians", "healthcare", "urgent care"}},
	{IndustryRealEstate, []string{"realty", "real estate", "property", "properties", "broker", "brokerage", "construction", "contractor"}},
	{IndustryTechnology, []string{"software", "tech", "technology", "technologies", "computer", "computers", "digital", "app", "apps", "saas", "it services", "cybersecurity"}},
	{IndustryFoodService, []string{"restaurant", "restaurants", "cafe", "food", "dining", "catering", "bakery", "grill", "poke", "plate lunch"}},
	{IndustryTransportation, []string{"transport", "transportation", "shipping", "freight", "logistics", "delivery", "moving", "airline", "airlines", "barge"}},
	{IndustryProfessionalServices, []string{"consulting", "consultants", "accounting", "cpa", "legal", "law", "attorney", "attorneys", "marketing", "design", "engineering"}},
}

// NormalizeIndustry classifies a business from its name and description.
// The first rule with a matching keyword wins; no match yields Other.
func NormalizeIndustry(name, description string) Industry {
	text := foldText(description + " " + name)
	if text == "" {
		return IndustryOther
	}
	for _, rule := range industryRules {
		for _, kw := range rule.keywords {
			if containsWord(text, kw) {
				return rule.industry
			}
		}
	}
	return IndustryOther
}
