package extractor

import (
	"fmt"
	"strings"
)

// Field names one extractable value and describes, in a single line, what the
// model should put there. Descriptions bound each value to roughly 100
// characters of output.
type Field struct {
	Name        string
	Description string
}

// Profile is a named set of fields to extract from a transcript.
type Profile struct {
	Name   string
	Fields []Field
}

// ProfileReflection captures free-topic outcomes of a reflection dialogue.
var ProfileReflection = Profile{
	Name: "reflection",
	Fields: []Field{
		{Name: "future_plans", Description: "What the user intends to do or try next, in at most 100 characters."},
		{Name: "want_to_discuss", Description: "What the user still wants to talk through with their partner, in at most 100 characters."},
	},
}

// ProfileReminder captures the positive and negative highlights to surface
// back to the user later.
var ProfileReminder = Profile{
	Name: "reminder",
	Fields: []Field{
		{Name: "Goodthing_remind", Description: "The positive thing from this report, in at most 100 characters."},
		{Name: "Badthing_remind", Description: "The negative thing from this report, in at most 100 characters."},
	},
}

const extractionSystemPrompt = `You extract short structured facts from couples'-coaching reflection transcripts.
Respond with a single flat JSON object containing exactly the requested fields and nothing else, no markdown fences.`

// Prompt renders the extraction request for this profile over a transcript.
func (p Profile) Prompt(transcript string) string {
	var b strings.Builder
	b.WriteString("Extract the following fields from the conversation below.\n\nFields:\n")
	for _, f := range p.Fields {
		fmt.Fprintf(&b, "- %q: %s\n", f.Name, f.Description)
	}
	b.WriteString("\nConversation:\n")
	b.WriteString(transcript)
	return b.String()
}
