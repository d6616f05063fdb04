package llm

import (
	"strconv"
	"strings"

	"github.com/hawaiibiz/intel/internal/domain/business"
)

const systemPrompt = `You are an expert business analyst specializing in the Hawaii market. ` +
	`You understand the unique challenges of island businesses, from tourism dependency to logistics complexities. ` +
	`You evaluate businesses for AI and technology consulting opportunities, always considering local culture ` +
	`and the importance of building relationships in Hawaii's tight-knit business community. ` +
	`Reply with a single JSON object and nothing else.`

const promptTemplate = `Analyze this Hawaii business for potential AI consulting opportunities:

Company: {{name}}
Island: {{island}}
Industry: {{industry}}
Description: {{description}}
Employee Count: {{employees}}
Growth Signals: {{signals}}
Website: {{website}}

We offer:
1. Data Analytics - Transform business data into actionable insights
2. Custom Chatbots - AI-powered customer service and engagement
3. Fractional CTO - Strategic technology leadership
4. HubSpot Digital Marketing - Marketing automation and CRM

Respond with JSON of this shape:
{
  "score": <0-100 based on fit and opportunity>,
  "summary": "<2-3 sentence executive summary>",
  "pain_points": ["<specific pain point>", ...],
  "recommended_services": ["<service>", ...],
  "estimated_deal_value": <annual value in USD>,
  "growth_signals": ["<signal>", ...],
  "technology_readiness": "<Low/Medium/High>",
  "outreach_strategy": "<personalized approach considering Hawaii culture and business environment>",
  "decision_makers": ["<likely title>", ...]
}

Consider Hawaii-specific factors:
- Tourism dependency and seasonality
- Inter-island business challenges
- Local vs mainland competition
- Aloha spirit in business culture
- Sustainability and environmental consciousness

Score higher for:
- Growing businesses (hiring, expanding)
- Tourism/hospitality needing analytics or automation
- Companies with outdated technology
- Businesses expanding to multiple islands
- High employee count (>50)`

func buildPrompt(b *business.Business) string {
	employees := "Unknown"
	if b.EmployeeCountEstimate != nil {
		employees = strconv.Itoa(*b.EmployeeCountEstimate)
	}
	signals := "None noted"
	if len(b.GrowthSignals) > 0 {
		signals = strings.Join(b.GrowthSignals, ", ")
	}
	return strings.NewReplacer(
		"{{name}}", b.Name,
		"{{island}}", orDefault(string(b.Island), "Unknown"),
		"{{industry}}", orDefault(string(b.Industry), "Unknown"),
		"{{description}}", orDefault(b.Description, "No description available"),
		"{{employees}}", employees,
		"{{signals}}", signals,
		"{{website}}", orDefault(b.Website, "Not provided"),
	).Replace(promptTemplate)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
