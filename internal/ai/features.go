package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/lalith-99/sheetcrm/internal/models"
)

const (
	summaryTemperature   = 0.3
	nextStepsTemperature = 0.5
	emailTemperature     = 0.7

	maxActivities = 20
	maxHistory    = 20
)

const systemPrompt = "You are an assistant inside a small-business CRM. Be concise and factual. " +
	"Only use the information provided. Answer in Markdown."

// CompanyContext is what the model is told about one company.
type CompanyContext struct {
	Company    models.Company
	Contacts   []models.Contact
	Activities []models.Activity
	History    []models.HistoryEntry
	Types      models.ActivityTypes
}

// Result is generated text plus its HTML rendering.
type Result struct {
	Text string `json:"text"`
	HTML string `json:"html"`
}

func (s *Service) result(ctx context.Context, email, system, prompt string, temperature float64) (*Result, error) {
	text, err := s.Generate(ctx, email, system, prompt, temperature)
	if err != nil {
		return nil, err
	}
	html, err := RenderMarkdown(text)
	if err != nil {
		return nil, err
	}
	return &Result{Text: text, HTML: html}, nil
}

func (s *Service) SummarizeCompany(ctx context.Context, email string, cc CompanyContext) (*Result, error) {
	prompt := "Summarize the relationship with this company in at most five bullet points.\n\n" + describeCompany(cc)
	return s.result(ctx, email, systemPrompt, prompt, summaryTemperature)
}

func (s *Service) SuggestNextSteps(ctx context.Context, email string, cc CompanyContext) (*Result, error) {
	prompt := "Suggest up to three concrete next steps for this account, most urgent first. " +
		"Mention overdue planned activities if there are any.\n\n" + describeCompany(cc)
	return s.result(ctx, email, systemPrompt, prompt, nextStepsTemperature)
}

// EmailRequest describes the email to draft.
type EmailRequest struct {
	Contact models.Contact
	Company *models.Company
	Purpose string
	Tone    string
	Sender  string
}

func (s *Service) DraftEmail(ctx context.Context, email string, req EmailRequest) (*Result, error) {
	var b strings.Builder
	b.WriteString("Draft a short email. Start with a subject line prefixed by \"Subject:\".\n\n")
	fmt.Fprintf(&b, "Recipient: %s", req.Contact.Name)
	if req.Contact.Position != "" {
		fmt.Fprintf(&b, " (%s)", req.Contact.Position)
	}
	b.WriteString("\n")
	if req.Company != nil {
		fmt.Fprintf(&b, "Recipient company: %s\n", req.Company.Name)
	}
	if req.Sender != "" {
		fmt.Fprintf(&b, "Sender: %s\n", req.Sender)
	}
	fmt.Fprintf(&b, "Purpose: %s\n", req.Purpose)
	if req.Tone != "" {
		fmt.Fprintf(&b, "Tone: %s\n", req.Tone)
	}
	return s.result(ctx, email, systemPrompt, b.String(), emailTemperature)
}

func describeCompany(cc CompanyContext) string {
	var b strings.Builder
	c := cc.Company
	fmt.Fprintf(&b, "Company: %s\n", c.Name)
	for _, f := range []struct{ label, value string }{
		{"Industry", c.Industry},
		{"Website", c.Website},
		{"Location", strings.Trim(c.City+", "+c.Country, ", ")},
		{"Notes", c.Notes},
	} {
		if f.value != "" {
			fmt.Fprintf(&b, "%s: %s\n", f.label, f.value)
		}
	}

	if len(cc.Contacts) > 0 {
		b.WriteString("\nContacts:\n")
		for _, p := range cc.Contacts {
			fmt.Fprintf(&b, "- %s", p.Name)
			if p.Position != "" {
				fmt.Fprintf(&b, ", %s", p.Position)
			}
			b.WriteString("\n")
		}
	}

	if len(cc.Activities) > 0 {
		b.WriteString("\nActivities (newest first):\n")
		for i, a := range cc.Activities {
			if i == maxActivities {
				break
			}
			fmt.Fprintf(&b, "- %s %s [%s] %s", models.DatePrefix(a.Date), cc.Types.Label(a.Type), a.Status, a.Title)
			if a.Notes != "" {
				fmt.Fprintf(&b, ": %s", a.Notes)
			}
			b.WriteString("\n")
		}
	}

	if len(cc.History) > 0 {
		b.WriteString("\nHistory (newest first):\n")
		for i, h := range cc.History {
			if i == maxHistory {
				break
			}
			fmt.Fprintf(&b, "- %s %s\n", models.DatePrefix(h.Timestamp), h.Content)
		}
	}
	return b.String()
}
