package services

import (
	"context"
	"fmt"
	"strings"

	"ideaboard/internal/llm"
)

// Completer sends a system prompt and conversation to a language model and
// returns its reply. llm.Client implements it.
type Completer interface {
	Complete(ctx context.Context, system string, turns []llm.Turn, maxTokens int) (string, error)
}

const (
	developMaxTokens   = 1024
	summarizeMaxTokens = 1500

	// finalizeAfterTurns is how many prior turns make the workshop suggest a summary.
	finalizeAfterTurns = 4
)

const developPrompt = `You are an expert product development coach helping employees develop product ideas that could benefit a wide audience. Your role is to help think through this idea as a scalable product for many users, not just the person submitting it.

When asking questions, focus on:
1. The broader market opportunity - who are the target users/customers at scale?
2. The problem being solved - is this a widespread pain point that many people face?
3. Market validation - how do we know others have this problem too?
4. Competitive landscape - what alternatives exist? What makes this different?
5. Business viability - how could this generate value for the company?
6. Scalability - how would this work for thousands or millions of users?

Important guidelines:
- Think of this as a product that would be built for external customers or a wide internal audience
- Avoid questions that assume the submitter is the only user (e.g., don't ask "what would YOU like it to do")
- Instead ask about target user segments, market size, user research, and broad use cases
- Help identify if this solves a real problem that many people have
- Be encouraging but also help stress-test the idea's broader appeal

Keep responses concise. Ask one or two questions at a time to keep the conversation focused.`

const summarizePrompt = `You are a product development expert. Based on the conversation below between a user and an AI coach about a product idea, create a comprehensive summary of the refined product idea as a scalable product for a broad audience.

Structure your summary with these sections:
- **Problem Statement**: What widespread problem does this product solve? Who experiences this pain point?
- **Target Market**: Who are the target users/customers? What's the potential market size or reach?
- **Proposed Solution**: What is the product and how does it work at scale?
- **Key Features**: Main features or capabilities (bullet points)
- **Differentiation**: What makes this different from existing alternatives?
- **Success Metrics**: How will success be measured? What KPIs matter?
- **Risks & Challenges**: Key risks, challenges, or open questions to address

Focus on the broader market opportunity, not just individual use cases. Be concise but thorough.`

// WorkshopService relays idea refinement conversations to the model. It keeps
// no state between calls and persists nothing.
type WorkshopService struct {
	llm Completer
}

func NewWorkshopService(c Completer) *WorkshopService {
	return &WorkshopService{llm: c}
}

type IdeaDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type DevelopInput struct {
	Messages    []llm.Turn `json:"messages"`
	InitialIdea *IdeaDraft `json:"initialIdea"`
}

type DevelopResult struct {
	Message string `json:"message"`
	// ShouldFinalize hints that the conversation could be summarized. The
	// caller may keep going regardless.
	ShouldFinalize bool `json:"shouldFinalize"`
}

type SummarizeInput struct {
	Messages []llm.Turn `json:"messages"`
	Idea     *IdeaDraft `json:"idea"`
}

type SummarizeResult struct {
	Summary string `json:"summary"`
}

func validateTurns(turns []llm.Turn) error {
	for _, t := range turns {
		if t.Role != llm.RoleUser && t.Role != llm.RoleAssistant {
			return ErrValidation(fmt.Sprintf("Invalid message role %q", t.Role))
		}
	}
	return nil
}

func openingTurn(idea *IdeaDraft) llm.Turn {
	return llm.Turn{
		Role: llm.RoleUser,
		Content: fmt.Sprintf("I have a product idea I'd like to develop. Here's my initial concept:\n\nTitle: %s\n\nDescription: %s\n\nPlease help me refine this idea by asking clarifying questions.",
			idea.Title, idea.Description),
	}
}

// Develop continues the conversation. An empty transcript starts one from
// the initial idea.
func (s *WorkshopService) Develop(ctx context.Context, in DevelopInput) (res *DevelopResult, err error) {
	defer func() { observeWorkshop("develop", err) }()

	turns := in.Messages
	if len(turns) == 0 {
		if in.InitialIdea == nil || strings.TrimSpace(in.InitialIdea.Title) == "" {
			return nil, ErrValidation("Conversation is empty")
		}
		turns = []llm.Turn{openingTurn(in.InitialIdea)}
	} else if err := validateTurns(turns); err != nil {
		return nil, err
	}

	reply, err := s.llm.Complete(ctx, developPrompt, turns, developMaxTokens)
	if err != nil {
		return nil, ErrUpstream("Failed to process AI request", err)
	}

	lower := strings.ToLower(reply)
	return &DevelopResult{
		Message: reply,
		ShouldFinalize: len(in.Messages) >= finalizeAfterTurns ||
			strings.Contains(lower, "problem statement") ||
			strings.Contains(lower, "summary"),
	}, nil
}

// transcript renders the conversation as "User:" and "AI Coach:" paragraphs.
func transcript(turns []llm.Turn) string {
	lines := make([]string, len(turns))
	for i, t := range turns {
		speaker := "AI Coach"
		if t.Role == llm.RoleUser {
			speaker = "User"
		}
		lines[i] = speaker + ": " + t.Content
	}
	return strings.Join(lines, "\n\n")
}

// Summarize asks the model for a structured summary of the conversation. The
// reply is returned verbatim.
func (s *WorkshopService) Summarize(ctx context.Context, in SummarizeInput) (res *SummarizeResult, err error) {
	defer func() { observeWorkshop("summarize", err) }()

	if in.Idea == nil || strings.TrimSpace(in.Idea.Title) == "" {
		return nil, ErrValidation("Original idea is required")
	}
	if err := validateTurns(in.Messages); err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf("Original Idea Title: %s\n\nOriginal Description: %s\n\nDevelopment Conversation:\n%s\n\nPlease create a structured summary of this refined product idea.",
		in.Idea.Title, in.Idea.Description, transcript(in.Messages))

	summary, err := s.llm.Complete(ctx, summarizePrompt, []llm.Turn{{Role: llm.RoleUser, Content: prompt}}, summarizeMaxTokens)
	if err != nil {
		return nil, ErrUpstream("Failed to generate summary", err)
	}
	return &SummarizeResult{Summary: summary}, nil
}
