package ai

import (
	"strings"
	"text/template"
)

// PromptInput fills the advisor template. FarmerContext is pretty-printed JSON;
// History is the Human:/AI: transcript.
type PromptInput struct {
	FarmerContext string
	History       string
	Notes         string
	Question      string
}

var advisorTemplate = template.Must(template.New("advisor").Parse(`
You are a plant disease expert and agricultural advisor helping a farmer with their crops.

{{.FarmerContext}}

Chat History:
{{.History}}
{{if .Notes}}
Reference Notes:
{{.Notes}}
{{end}}
Farmer Question: {{.Question}}

Provide helpful, practical advice based on the farmer's specific situation and the plant disease.
Focus on remedies, treatment options, and preventive measures. If organic farming is used,
prioritize organic solutions. Be specific and practical with your advice.
Even if the farmer wants a cure and you are not sure, offer it as a suggestion.
If the question is not related to plant diseases, politely redirect the conversation.
`))

func RenderAdvisorPrompt(in PromptInput) string {
	var b strings.Builder
	// the template is static and PromptInput only has strings
	_ = advisorTemplate.Execute(&b, in)
	return b.String()
}
