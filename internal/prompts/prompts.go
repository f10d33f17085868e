// Package prompts builds provider prompts from named templates with keyed
// substitutions. Templates can be overridden per installation so prompt
// wording is configuration, not code.
package prompts

import (
	"fmt"
	"strings"
)

// Template names recognized by the engine
const (
	TemplateAnalyze     = "analyze"
	TemplateSummarize   = "summarize"
	TemplateDraft       = "draft"
	TemplateCustomDraft = "custom_draft"
)

// defaultTemplates ask the provider for line-labeled output so the response
// parser can extract fields without structured-output support.
var defaultTemplates = map[string]string{
	TemplateAnalyze: `Analyze the following email and respond with one field per line, using exactly these labels:
Tone: <formal|informal|neutral|urgent>
Sentiment: <positive|negative|neutral>
Urgency: <low|normal|medium|high>
Category: <short category name>
Complexity: <low|medium|high>
Summary: <one or two sentences>

Email from: {{from}}
Subject: {{subject}}

{{body}}`,

	TemplateSummarize: `Summarize the following email in 2-3 concise sentences. Respond with the summary only.

From: {{from}}
Subject: {{subject}}

{{body}}`,

	TemplateDraft: `Write a reply to the email below. Match the sender's tone and keep it concise and actionable. Respond with the reply body only, no subject line and no signature placeholders.
Generation intent: {{hint}}
{{language}}

From: {{from}}
Subject: {{subject}}

{{body}}

Conversation context:
{{context}}`,

	TemplateCustomDraft: `Revise or write a reply to the email below, following the user's instructions exactly. Respond with the reply body only.
Instructions: {{instructions}}
{{language}}

Current draft:
{{base}}

From: {{from}}
Subject: {{subject}}

{{body}}`,
}

// Engine renders named templates with {{key}} substitutions
type Engine struct {
	templates map[string]string
}

// NewEngine creates a template engine. Entries in overrides replace the
// built-in template with the same name; unknown override names are accepted
// and become addressable templates of their own.
func NewEngine(overrides map[string]string) *Engine {
	templates := make(map[string]string, len(defaultTemplates)+len(overrides))
	for name, tpl := range defaultTemplates {
		templates[name] = tpl
	}
	for name, tpl := range overrides {
		if strings.TrimSpace(tpl) == "" {
			continue
		}
		templates[name] = tpl
	}
	return &Engine{templates: templates}
}

// Render substitutes vars into the named template. Placeholders without a
// matching key are replaced with an empty string so a sparse substitution map
// never leaks template syntax into a prompt.
func (e *Engine) Render(name string, vars map[string]string) (string, error) {
	tpl, ok := e.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt template: %s", name)
	}

	out := tpl
	for key, value := range vars {
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}

	// Blank any placeholder left unbound
	for {
		start := strings.Index(out, "{{")
		if start < 0 {
			break
		}
		end := strings.Index(out[start:], "}}")
		if end < 0 {
			break
		}
		out = out[:start] + out[start+end+2:]
	}

	return strings.TrimSpace(out), nil
}
