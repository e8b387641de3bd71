package phase_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"prodicity.app/engage/internal/phase"
)

func phasePtr(p phase.Phase) *phase.Phase { return &p }

func boolPtr(b bool) *bool { return &b }

var _ = Describe("Gate", func() {
	var (
		gate *phase.Gate
		ctx  context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		gate = phase.NewGate(phase.Config{})
	})

	type row struct {
		current       *phase.Phase
		confirm       *bool
		suggested     phase.Phase
		helpRequested bool

		wantPhase     phase.Phase
		wantApproval  bool
		wantSuggested phase.Phase
		wantReady     bool
	}

	DescribeTable("transition table",
		func(r row) {
			d := gate.Decide(ctx, phase.Input{
				Current:       r.current,
				Confirm:       r.confirm,
				Suggested:     r.suggested,
				Instruction:   "do the thing",
				Reasoning:     "because",
				HelpRequested: r.helpRequested,
			})
			Expect(d.Phase).To(Equal(r.wantPhase))
			Expect(d.ApprovalRequired).To(Equal(r.wantApproval))
			if r.wantApproval {
				Expect(d.Suggested).To(Equal(r.wantSuggested))
			}
			Expect(d.ReadyForAsk).To(Equal(r.wantReady))
		},

		Entry("explicit regression out of post_selling", row{
			current:   phasePtr(phase.PostSelling),
			suggested: phase.BuildingRapport,
			wantPhase: phase.BuildingRapport,
		}),
		Entry("post_selling is sticky against doing_the_ask", row{
			current:   phasePtr(phase.PostSelling),
			suggested: phase.DoingTheAsk,
			wantPhase: phase.PostSelling,
			wantReady: true,
		}),
		Entry("post_selling is sticky against itself", row{
			current:   phasePtr(phase.PostSelling),
			suggested: phase.PostSelling,
			wantPhase: phase.PostSelling,
			wantReady: true,
		}),
		Entry("confirmation pins doing_the_ask", row{
			current:   phasePtr(phase.DoingTheAsk),
			confirm:   boolPtr(true),
			suggested: phase.BuildingRapport,
			wantPhase: phase.DoingTheAsk,
			wantReady: true,
		}),
		Entry("escalation to post_selling after the pitch", row{
			current:   phasePtr(phase.DoingTheAsk),
			suggested: phase.PostSelling,
			wantPhase: phase.PostSelling,
			wantReady: true,
		}),
		Entry("unconfirmed ask suggestion requires approval", row{
			current:       phasePtr(phase.BuildingRapport),
			suggested:     phase.DoingTheAsk,
			wantPhase:     phase.BuildingRapport,
			wantApproval:  true,
			wantSuggested: phase.DoingTheAsk,
		}),
		Entry("rejected ask suggestion still requires approval resolution", row{
			current:       phasePtr(phase.BuildingRapport),
			confirm:       boolPtr(false),
			suggested:     phase.DoingTheAsk,
			wantPhase:     phase.BuildingRapport,
			wantApproval:  true,
			wantSuggested: phase.DoingTheAsk,
		}),
		Entry("confirmed ask suggestion advances", row{
			current:   phasePtr(phase.BuildingRapport),
			confirm:   boolPtr(true),
			suggested: phase.DoingTheAsk,
			wantPhase: phase.DoingTheAsk,
			wantReady: true,
		}),
		Entry("fresh conversation adopts ask suggestion without approval", row{
			current:   nil,
			suggested: phase.DoingTheAsk,
			wantPhase: phase.DoingTheAsk,
			wantReady: true,
		}),
		Entry("rejection holds the current phase", row{
			current:   phasePtr(phase.DoingTheAsk),
			confirm:   boolPtr(false),
			suggested: phase.DoingTheAsk,
			wantPhase: phase.DoingTheAsk,
			wantReady: true,
		}),
		Entry("default adopts the suggestion", row{
			current:   phasePtr(phase.BuildingRapport),
			suggested: phase.BuildingRapport,
			wantPhase: phase.BuildingRapport,
		}),
		Entry("invalid suggestion holds the current phase", row{
			current:   phasePtr(phase.BuildingRapport),
			suggested: phase.Phase("hard_close"),
			wantPhase: phase.BuildingRapport,
		}),
		Entry("fresh conversation defaults to building_rapport", row{
			current:   nil,
			suggested: phase.Phase(""),
			wantPhase: phase.BuildingRapport,
		}),
	)

	Describe("help request bypass", func() {
		It("skips approval when the policy allows it", func() {
			gate = phase.NewGate(phase.Config{AllowHelpRequestBypass: true})
			d := gate.Decide(ctx, phase.Input{
				Current:       phasePtr(phase.BuildingRapport),
				Suggested:     phase.DoingTheAsk,
				HelpRequested: true,
			})
			Expect(d.Phase).To(Equal(phase.DoingTheAsk))
			Expect(d.ApprovalRequired).To(BeFalse())
		})

		It("is ignored when the policy is off", func() {
			d := gate.Decide(ctx, phase.Input{
				Current:       phasePtr(phase.BuildingRapport),
				Suggested:     phase.DoingTheAsk,
				HelpRequested: true,
			})
			Expect(d.ApprovalRequired).To(BeTrue())
		})
	})

	Describe("rejection instruction", func() {
		It("forces the default rapport instruction when rejection lands in building_rapport", func() {
			d := gate.Decide(ctx, phase.Input{
				Current:     phasePtr(phase.BuildingRapport),
				Confirm:     boolPtr(false),
				Suggested:   phase.BuildingRapport,
				Instruction: "pitch prodicity hard",
			})
			Expect(d.Phase).To(Equal(phase.BuildingRapport))
			Expect(d.Instruction).To(Equal(phase.DefaultRapportInstruction))
		})
	})
})

var _ = Describe("Phase", func() {
	It("parses known phases", func() {
		for _, s := range []string{"building_rapport", "doing_the_ask", "post_selling"} {
			p, err := phase.Parse(s)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(p)).To(Equal(s))
		}
	})

	It("rejects unknown phases", func() {
		_, err := phase.Parse("negotiating")
		Expect(err).To(HaveOccurred())
	})

	It("reports readiness for the ask", func() {
		Expect(phase.BuildingRapport.ReadyForAsk()).To(BeFalse())
		Expect(phase.DoingTheAsk.ReadyForAsk()).To(BeTrue())
		Expect(phase.PostSelling.ReadyForAsk()).To(BeTrue())
	})
})
