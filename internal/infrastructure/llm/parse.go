package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/hawaiibiz/intel/internal/domain/prospect"
	"github.com/kaptinlin/jsonrepair"
	"github.com/shopspring/decimal"
	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// analysisSchema is what a usable model reply must satisfy after repair
const analysisSchema = `{
  "type": "object",
  "required": ["score", "summary"],
  "properties": {
    "score": {"type": "number"},
    "summary": {"type": "string", "minLength": 1},
    "pain_points": {"type": "array", "items": {"type": "string"}},
    "recommended_services": {"type": "array", "items": {"type": "string"}},
    "estimated_deal_value": {"type": "number"},
    "growth_signals": {"type": "array", "items": {"type": "string"}},
    "technology_readiness": {"type": "string"},
    "outreach_strategy": {"type": "string"},
    "decision_makers": {"type": "array", "items": {"type": "string"}}
  }
}`

var errNoJSONObject = errors.New("response contains no JSON object")

type modelAnalysis struct {
	Score               float64  `json:"score"`
	Summary             string   `json:"summary"`
	PainPoints          []string `json:"pain_points"`
	RecommendedServices []string `json:"recommended_services"`
	EstimatedDealValue  float64  `json:"estimated_deal_value"`
	GrowthSignals       []string `json:"growth_signals"`
	TechnologyReadiness string   `json:"technology_readiness"`
	OutreachStrategy    string   `json:"outreach_strategy"`
	DecisionMakers      []string `json:"decision_makers"`
}

type responseParser struct {
	schema *gojsonschema.Schema
}

func newResponseParser() (*responseParser, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(analysisSchema))
	if err != nil {
		return nil, fmt.Errorf("invalid analysis schema: %w", err)
	}
	return &responseParser{schema: schema}, nil
}

// parse turns model text into an analysis. The text is untrusted: the JSON
// object is cut out, repaired, then validated before any field is read.
func (p *responseParser) parse(text string) (prospect.Analysis, error) {
	raw, err := extractObject(text)
	if err != nil {
		return prospect.Analysis{}, err
	}
	repaired, err := jsonrepair.JSONRepair(raw)
	if err != nil {
		return prospect.Analysis{}, fmt.Errorf("unrepairable JSON: %w", err)
	}

	result, err := p.schema.Validate(gojsonschema.NewStringLoader(repaired))
	if err != nil {
		return prospect.Analysis{}, fmt.Errorf("schema validation: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, len(result.Errors()))
		for i, e := range result.Errors() {
			msgs[i] = e.String()
		}
		return prospect.Analysis{}, fmt.Errorf("response does not match schema: %s", strings.Join(msgs, "; "))
	}

	var m modelAnalysis
	if err := json.Unmarshal([]byte(repaired), &m); err != nil {
		return prospect.Analysis{}, fmt.Errorf("decode analysis: %w", err)
	}
	return m.toAnalysis(), nil
}

// extractObject returns text from the first '{' to the last '}'. A reply
// cut off before its closing brace is returned to the end for repair.
func extractObject(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", errNoJSONObject
	}
	end := strings.LastIndexByte(text, '}')
	if end < start {
		return text[start:], nil
	}
	return text[start : end+1], nil
}

func (m modelAnalysis) toAnalysis() prospect.Analysis {
	score := 0
	if !math.IsNaN(m.Score) {
		score = int(math.Round(min(max(m.Score, 0), 100)))
	}
	deal := decimal.NewFromFloat(m.EstimatedDealValue).Round(2)
	if deal.IsNegative() {
		deal = decimal.Zero
	}
	return prospect.Analysis{
		Score:               score,
		Summary:             strings.TrimSpace(m.Summary),
		PainPoints:          cleanList(m.PainPoints),
		RecommendedServices: cleanList(m.RecommendedServices),
		EstimatedDealValue:  deal,
		GrowthSignals:       cleanList(m.GrowthSignals),
		TechnologyReadiness: prospect.ParseReadiness(cases.Title(language.English).String(strings.ToLower(strings.TrimSpace(m.TechnologyReadiness)))),
		OutreachStrategy:    strings.TrimSpace(m.OutreachStrategy),
		DecisionMakers:      cleanList(m.DecisionMakers),
	}
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
