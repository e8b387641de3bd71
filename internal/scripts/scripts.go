// Package scripts holds the static sales script library organised by phase.
// Phase data lives in structured values so new variants or copy blocks can be
// added without touching application logic.
package scripts

import (
	"fmt"
	"strings"

	"prodicity.app/engage/internal/phase"
)

// Template is one insertable script block.
type Template struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

// PhaseScripts is the full script set for one phase.
type PhaseScripts struct {
	Name               string
	Summary            string
	InitialMessage     string
	Probes             []Template
	NoInitiativeProbes []Template
	RelevanceContext   string
	IntroVariants      []Template
	Application        string
	CTATemplates       []string
	SocialProof        string
	CallScheduling     string
	Pricing            string
	ObjectionTactics   []Template
	Guidelines         []string
}

var library = map[phase.Phase]PhaseScripts{
	phase.BuildingRapport: {
		Name:    "Building Rapport",
		Summary: "Engage the lead, ask questions, validate their responses, and build trust.",
		InitialMessage: "hey {name}, I'm currently researching what students at {school} are working on " +
			"outside of school, like nonprofits, research, internships, or passion projects. " +
			"Are you working on any great projects or ideas?",
		Probes: []Template{
			{ID: "initial_probe", Label: "Ask About Motivation",
				Text: "What got you interested in that project/idea, especially with the high-stakes grind at {school}?"},
			{ID: "pain_probe", Label: "Ask About Barriers",
				Text: "Anything holding it back? burnout from APs, lack of direction, or fitting it around everything else"},
			{ID: "vision_probe", Label: "Ask About Vision",
				Text: "What's your goal for it? Where do you see it going in the future?"},
		},
		NoInitiativeProbes: []Template{
			{ID: "uncover_interests_probe", Label: "Uncover Interests",
				Text: "I see. What are you most excited about right now? What are your main interests outside of school?"},
			{ID: "barriers_and_vision_probe", Label: "Barriers And Vision",
				Text: "What's holding you back from exploring those interests, like busy with class or finding direction? " +
					"If you could start something meaningful, what would that look like?"},
		},
		RelevanceContext: "I'm curious to see what students are doing outside of academics, " +
			"since I'm working on building a school to optimize learning",
		Guidelines: []string{
			"Ask follow-up questions to understand their project/idea deeply OR their interests if they're not working on anything yet.",
			"Show genuine interest and validate the student's work or interests.",
			"Use the appropriate probes based on their situation - whether they have initiative or not.",
			"Keep responses short, conversational, and natural.",
		},
	},
	phase.DoingTheAsk: {
		Name:    "Selling / Doing the Ask",
		Summary: "Introduce Prodicity naturally, highlight fit, and guide toward application.",
		IntroVariants: []Template{
			{ID: "intro_variant_1", Label: "Friend Context",
				Text: "My close friend from {school} pointed me towards the students here."},
			{ID: "intro_variant_2", Label: "Success Story",
				Text: "They ran a quite successful nonprofit a few years ago."},
			{ID: "intro_variant_3", Label: "Prodicity Intro",
				Text: "From what you've told me about {their_idea_pain_vision}, it seems like Prodicity could line up well. " +
					"It's a selective fellowship for exceptional high schoolers, guided by mentors from Stanford, MIT, and " +
					"similar institutions, to achieve tangible outcomes like internships, research positions, or successful " +
					"startups/nonprofits next summer."},
			{ID: "intro_variant_4", Label: "Timeline & CTA",
				Text: "We start in early 2026 with building up towards summer goals. If that sounds like a fit, I can share the application link. Let me know"},
		},
		Application: "Sure, apply here: https://www.prodicity.org\n" +
			"Spots are limited, so if applying, aim to get it submitted by Dec 19th. " +
			"for interviews as we're finalizing applications\n",
		CTATemplates: []string{
			"If that sounds like a fit, I can share the application link. Let me know",
			"I can send over an application link if you'd be interested. Let me know",
			"If you're interested, I can share the application link",
		},
		SocialProof: "Examples:\n\n" +
			"Worked with a uk student on providing students with meaningful and impactful volunteering work " +
			"throughout London: https://equitygroupuk.org/\n\n" +
			"Interactive music sessions to improve the cognition and lives of elderly with neurodegenerative " +
			"diseases, servicing most care facilities and rehabilitation efforts throughout dallas: " +
			"https://www.musicforthemind.live/\n\n" +
			"Mental wellness for high schoolers throughout the bay especially since it's a hypercompetitive " +
			"environment which isn't that healthy for youth: https://www.linkedin.com/company/share-onnonprofit/\n\n" +
			"These are the most recent ones but yeah, our students are quite fulfilled even if what they did " +
			"was difficult since it was meaningful and had purpose",
		CallScheduling: "Again, I don't usually do this but you seem like an interesting person so if you want, " +
			"you can schedule a 10 minute call with me this Saturday morning/noon: https://calendly.com/theivanyeung/call",
		Pricing: "The application is free. If accepted, there's a program fee; it's on the premium side, " +
			"but we have financial aid and scholarships based on need. It's $485/month with a $985 initial " +
			"deposit. More details here: https://www.prodicity.org/fellowship",
		ObjectionTactics: []Template{
			{ID: "isolate_price", Label: "Isolate Price",
				Text: "If the application fee wasn't a factor, would you be ready to start this week?"},
			{ID: "isolate_fit", Label: "Isolate Fit",
				Text: "Let's pretend for a second that money isn't an issue. Do you feel like Prodicity is exactly " +
					"what you need to get your project to the next level, or are you still unsure about the value?"},
			{ID: "scale_1_to_10", Label: "Scale 1 To 10",
				Text: "On a scale of 1 to 10, how confident are you that this fellowship helps you hit your goals?"},
			{ID: "the_takeaway", Label: "The Takeaway",
				Text: "It sounds like now might simply not be the right time, and that is totally okay. " +
					"We can always reconnect next semester if your schedule opens up."},
		},
		Guidelines: []string{
			"Reference specific things the student told you about their project or pain points.",
			"Keep tone casual and understated - no hard selling.",
			"Offer the application link once they show interest.",
			"Support with social proof or a friendly CTA when appropriate.",
		},
	},
	phase.PostSelling: {
		Name:    "Post Selling",
		Summary: "The pitch is out. Handle objections, answer logistics, and keep momentum toward the application.",
		Guidelines: []string{
			"Answer questions directly using pricing, application, and social-proof scripts.",
			"Use objection tactics when the lead hesitates; never re-pitch from scratch.",
			"Keep the door open if they disengage - the takeaway often makes them chase.",
		},
	},
}

// Phases returns the available phase identifiers in a stable order.
func Phases() []phase.Phase {
	return []phase.Phase{phase.BuildingRapport, phase.DoingTheAsk, phase.PostSelling}
}

// ForPhase returns the script set for the requested phase.
func ForPhase(p phase.Phase) (PhaseScripts, bool) {
	s, ok := library[p]
	return s, ok
}

// InitialMessageTemplate returns the template for the first outreach message.
func InitialMessageTemplate() string {
	return strings.TrimSpace(library[phase.BuildingRapport].InitialMessage)
}

// Templates returns the insertable templates for a phase, for UI listing.
// The initial message is excluded: it has already been sent to every lead.
func Templates(p phase.Phase) []Template {
	s, ok := library[p]
	if !ok {
		return nil
	}

	var out []Template
	out = append(out, s.Probes...)
	out = append(out, s.NoInitiativeProbes...)
	if s.RelevanceContext != "" {
		out = append(out, Template{ID: "relevance_context", Label: "Relevance Context", Text: s.RelevanceContext})
	}
	out = append(out, s.IntroVariants...)
	if s.Application != "" {
		out = append(out, Template{ID: "application", Label: "Application Link", Text: s.Application})
	}
	if s.CallScheduling != "" {
		out = append(out, Template{ID: "call_scheduling", Label: "Call Scheduling", Text: s.CallScheduling})
	}
	if s.Pricing != "" {
		out = append(out, Template{ID: "pricing", Label: "Pricing Info", Text: s.Pricing})
	}
	if s.SocialProof != "" {
		out = append(out, Template{ID: "social_proof", Label: "Social Proof Examples", Text: s.SocialProof})
	}
	out = append(out, s.ObjectionTactics...)
	return out
}

// Lookup finds a single template by phase and id.
func Lookup(p phase.Phase, templateID string) (Template, bool) {
	for _, t := range Templates(p) {
		if t.ID == templateID {
			return t, true
		}
	}
	if templateID == "initial_message" && p == phase.BuildingRapport {
		return Template{ID: "initial_message", Label: "Initial Message", Text: InitialMessageTemplate()}, true
	}
	return Template{}, false
}

// PromptBlocks renders the phase guidance blocks injected into the composer's
// system prompt.
func PromptBlocks(p phase.Phase) []string {
	s, ok := library[p]
	if !ok {
		return nil
	}

	blocks := []string{
		fmt.Sprintf("PHASE: %s", s.Name),
		"",
		fmt.Sprintf("Goal: %s", s.Summary),
		"",
	}

	if len(s.Probes) > 0 {
		blocks = append(blocks, "Available Question Probes (if they're working on projects/ideas):")
		for i, t := range s.Probes {
			blocks = append(blocks, fmt.Sprintf("%d. %s: %s", i+1, t.Label, t.Text))
		}
		blocks = append(blocks, "")
	}
	if len(s.NoInitiativeProbes) > 0 {
		blocks = append(blocks, "Available Question Probes (if they're NOT working on anything):")
		for i, t := range s.NoInitiativeProbes {
			blocks = append(blocks, fmt.Sprintf("%d. %s: %s", i+1, t.Label, t.Text))
		}
		blocks = append(blocks, "")
	}
	if s.RelevanceContext != "" {
		blocks = append(blocks, "Context to share when relevant:", s.RelevanceContext, "")
	}
	if len(s.IntroVariants) > 0 {
		blocks = append(blocks, "Introduction Approaches:")
		for i, t := range s.IntroVariants {
			blocks = append(blocks, fmt.Sprintf("%d. %s", i+1, t.Text), "")
		}
	}
	if s.Application != "" {
		blocks = append(blocks, "When lead shows interest:", s.Application, "")
	}
	if s.SocialProof != "" {
		blocks = append(blocks, "Supporting Examples:", s.SocialProof, "")
	}
	var extra []string
	if s.CallScheduling != "" {
		extra = append(extra, "- If appropriate, offer to schedule a call: "+s.CallScheduling)
	}
	if s.Pricing != "" {
		extra = append(extra, "- If they ask about pricing: "+s.Pricing)
	}
	if len(extra) > 0 {
		blocks = append(blocks, "Additional Options:")
		blocks = append(blocks, extra...)
		blocks = append(blocks, "")
	}
	if len(s.Guidelines) > 0 {
		blocks = append(blocks, "Guidelines:")
		for _, g := range s.Guidelines {
			blocks = append(blocks, "- "+g)
		}
	}

	return blocks
}

// PhaseContext returns a concise context string for the current phase.
func PhaseContext(p phase.Phase) string {
	switch p {
	case phase.BuildingRapport:
		return "You are in the BUILDING RAPPORT phase. Your goal is to engage the lead, " +
			"ask thoughtful questions about their projects/ideas OR their interests if they're not working on anything yet, " +
			"understand their motivation, pain points, and vision. Use the appropriate question probes based on their situation. " +
			"Keep messages short, conversational, and show genuine interest."
	case phase.DoingTheAsk:
		return "You are in the SELLING/DOING THE ASK phase. Your goal is to introduce Prodicity " +
			"in a way that's relevant to what they've shared, highlight the fit, and guide them " +
			"toward the application. Reference specific things they've told you. When they show " +
			"interest, provide the application link and deadline information."
	case phase.PostSelling:
		return "You are in the POST SELLING phase. The pitch has been made. Answer questions, " +
			"handle objections with the provided tactics, and keep momentum toward the application. " +
			"Do not re-introduce Prodicity from scratch."
	}
	return fmt.Sprintf("You are in the %s phase.", p)
}
