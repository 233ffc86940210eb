// File path: internal/research/questions.go
package research

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/fieldscale/povd/internal/common"
	"github.com/fieldscale/povd/internal/llm"
	"github.com/fieldscale/povd/internal/llm/providers"
)

// Question count bounds for deep research.
const (
	MinQuestions = 6
	MaxQuestions = 8
)

// QuestionAnswer pairs one research question with its answer or the error
// that prevented one.
type QuestionAnswer struct {
	Question string
	Answer   string
	Err      error
}

// DeepResearcher generates targeted research questions about a company
// and answers them in parallel through the completion provider.
type DeepResearcher struct {
	provider    providers.Provider
	maxParallel int
}

func NewDeepResearcher(provider providers.Provider, maxParallel int) *DeepResearcher {
	if maxParallel <= 0 {
		maxParallel = 4
	}
	return &DeepResearcher{provider: provider, maxParallel: maxParallel}
}

// GenerateQuestions asks the model for 6-8 strategic research questions
// about the company. Out-of-bounds counts are tolerated with a warning as
// long as at least one question came back.
func (d *DeepResearcher) GenerateQuestions(ctx context.Context, companyName, contextHint string) ([]string, error) {
	logger := common.Logger()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Generate exactly %d-%d strategic research questions to deeply understand the company %q for business development purposes.\n\n", MinQuestions, MaxQuestions, companyName)
	sb.WriteString("Generate questions that would help a vendor understand: business model and revenue streams, current challenges and pain points, key decision makers and stakeholders, recent developments and strategic direction, industry and market position, technology stack and operational needs, growth plans, and potential vendor partnership opportunities.\n\n")
	if strings.TrimSpace(contextHint) != "" {
		fmt.Fprintf(&sb, "Known context:\n%s\n\n", contextHint)
	}
	fmt.Fprintf(&sb, "Return exactly %d-%d questions as a JSON array of strings.\n", MinQuestions, MaxQuestions)

	completion, err := d.provider.Complete(ctx, providers.Prompt{User: sb.String()})
	if err != nil {
		return nil, fmt.Errorf("generate research questions: %w", err)
	}
	var questions []string
	if err := json.Unmarshal([]byte(llm.StripCodeFences(completion.Text)), &questions); err != nil {
		return nil, fmt.Errorf("parse research questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("model returned no research questions")
	}
	if len(questions) < MinQuestions || len(questions) > MaxQuestions {
		logger.Warn("research: question count out of bounds", "expected_min", MinQuestions, "expected_max", MaxQuestions, "got", len(questions))
	}
	if len(questions) > MaxQuestions {
		questions = questions[:MaxQuestions]
	}
	return questions, nil
}

// AnswerQuestions researches every question concurrently. Per-question
// failures are recorded in place; only a fully failed batch errors.
func (d *DeepResearcher) AnswerQuestions(ctx context.Context, companyName string, questions []string) ([]QuestionAnswer, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("no questions to research")
	}
	logger := common.Logger()
	logger.Info("research: executing question fan-out", "company", companyName, "questions", len(questions))

	answers := make([]QuestionAnswer, len(questions))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(d.maxParallel)
	for i, question := range questions {
		i, question := i, question
		group.Go(func() error {
			prompt := providers.Prompt{User: fmt.Sprintf("Research the company %q and answer the following question with specific, factual, current information useful for business development:\n\n%s", companyName, question)}
			completion, err := d.provider.Complete(groupCtx, prompt)
			answers[i] = QuestionAnswer{Question: question, Answer: completion.Text, Err: err}
			return nil
		})
	}
	group.Wait()

	failed := 0
	for _, qa := range answers {
		if qa.Err != nil {
			failed++
		}
	}
	if failed == len(answers) {
		return nil, fmt.Errorf("all %d research questions failed", len(answers))
	}
	if failed > 0 {
		logger.Warn("research: some questions failed", "failed", failed, "total", len(answers))
	}
	return answers, nil
}

// Compile renders successful question/answer pairs into the context block
// appended to the background context.
func Compile(companyName string, answers []QuestionAnswer) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Deep research on %s:\n\n", companyName)
	wrote := false
	for _, qa := range answers {
		if qa.Err != nil || strings.TrimSpace(qa.Answer) == "" {
			continue
		}
		fmt.Fprintf(&sb, "Q: %s\nA: %s\n\n", qa.Question, qa.Answer)
		wrote = true
	}
	if !wrote {
		return ""
	}
	return strings.TrimSpace(sb.String())
}

// Run performs the full deep-research pass: questions, parallel answers,
// compiled context block.
func (d *DeepResearcher) Run(ctx context.Context, companyName, contextHint string) (string, error) {
	questions, err := d.GenerateQuestions(ctx, companyName, contextHint)
	if err != nil {
		return "", err
	}
	answers, err := d.AnswerQuestions(ctx, companyName, questions)
	if err != nil {
		return "", err
	}
	return Compile(companyName, answers), nil
}
