package roadmap

import (
	"errors"
	"fmt"
)

// Days is the length of the roadmap.
const Days = 60

// ErrNoPhase is returned when a day is not covered by the phase table.
var ErrNoPhase = errors.New("no phase owns day")

var phases = []Phase{
	{Name: "Foundation", First: 1, Last: 3, Templates: []Template{
		{"Register Twilio account", "Create Twilio account, record SID/auth token, buy numbers", 30},
		{"Set up Vapi", "Create Vapi account, voice model selection, assign number", 30},
		{"WhatsApp Cloud setup", "Create app, templates, phone number & webhook", 30},
		{"Project skeleton", "Create repo, server stub, deploy plan", 20},
	}},
	{Name: "Data & GHL", First: 4, Last: 10, Templates: []Template{
		{"Define GHL custom fields", "List fields required and data types", 40},
		{"Create tags list", "Create TAGS like TRADE-, CERT-, etc", 30},
		{"Map field validation rules", "Decide regexes and constraints", 25},
		{"Build sample contact import CSV", "Prepare sample CSV with mapping", 20},
	}},
	{Name: "Integrations", First: 11, Last: 20, Templates: []Template{
		{"Setup Twilio webhooks", "Configure webhook URLs and test payloads", 30},
		{"Connect n8n/Make", "Create webhook flow and test", 40},
		{"Build webhook receivers", "Implement server endpoints to accept webhooks", 30},
		{"Test retry/backoff", "Define behavior for failures", 20},
	}},
	{Name: "Workflows", First: 21, Last: 30, Templates: []Template{
		{"Implement WhatsApp validation tree", "Phone validation and opt-in flows", 40},
		{"Implement Opt-in flow", "Opt-in confirmation messages & logging", 30},
		{"Availability checks", "Agent availability, shift mapping", 30},
		{"Tools capability checks", "Service checks for Twilio/Vapi", 25},
	}},
	{Name: "Pre-start", First: 31, Last: 40, Templates: []Template{
		{"Create pre-start pack templates", "Messages, checklist for agents", 30},
		{"24-hour flows", "Define messages for 24h cycle", 30},
		{"ETA capture", "Implement ETA capture and reminders", 25},
		{"Training scripts", "Create agent training SOPs", 30},
	}},
	{Name: "Test & Validate", First: 41, Last: 50, Templates: []Template{
		{"Persona tests", "Run 5 persona tests end-to-end", 45},
		{"Failover tests", "Simulate Twilio/Vapi failure", 40},
		{"Template approvals", "Legal & compliance review", 30},
		{"Logging & metrics", "Wire basic metrics dashboards", 30},
	}},
	{Name: "Launch & Monitor", First: 51, Last: 60, Templates: []Template{
		{"Phase roll-out plan", "Plan staged go-live", 40},
		{"Dashboard monitoring", "Set up monitoring & alerts", 30},
		{"Optimization loops", "Collect feedback and iterate", 30},
		{"Post-launch SOPs", "Oncall, incident response", 30},
	}},
}

// Phases returns a copy of the phase table.
func Phases() []Phase {
	out := make([]Phase, len(phases))
	for i, p := range phases {
		p.Templates = append([]Template(nil), p.Templates...)
		out[i] = p
	}
	return out
}

// PhaseNames lists phase names in schedule order.
func PhaseNames() []string {
	names := make([]string, len(phases))
	for i, p := range phases {
		names[i] = p.Name
	}
	return names
}

// IsPhase reports whether name is a known phase.
func IsPhase(name string) bool {
	for _, p := range phases {
		if p.Name == name {
			return true
		}
	}
	return false
}

// PhaseFor resolves the phase owning day.
func PhaseFor(day int) (Phase, error) {
	return phaseIn(phases, day)
}

func phaseIn(table []Phase, day int) (Phase, error) {
	for _, p := range table {
		if p.Contains(day) {
			return p, nil
		}
	}
	return Phase{}, fmt.Errorf("%w %d", ErrNoPhase, day)
}

// Validate checks that table covers days 1..Days contiguously and that every
// phase can schedule at least one task.
func Validate(table []Phase) error {
	next := 1
	for _, p := range table {
		if p.First != next {
			return fmt.Errorf("phase %q starts at day %d, expected %d", p.Name, p.First, next)
		}
		if p.Last < p.First {
			return fmt.Errorf("phase %q ends before it starts", p.Name)
		}
		if len(p.Templates) == 0 {
			return fmt.Errorf("phase %q has no templates", p.Name)
		}
		next = p.Last + 1
	}
	if next != Days+1 {
		return fmt.Errorf("phases cover days 1..%d, expected 1..%d", next-1, Days)
	}
	return nil
}
