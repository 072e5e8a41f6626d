package app

import (
	"context"
	"fmt"

	"quizbank/internal/question"
)

const seedSubject = "React"

// EnsureSeedData populates the bank with a sample set of global questions
// when none exist yet. It is idempotent and safe to call on every start.
func EnsureSeedData(ctx context.Context, svc *question.Service) error {
	existing, err := svc.List(ctx, "")
	if err != nil {
		return fmt.Errorf("check seed questions: %w", err)
	}
	for _, q := range existing {
		if q.Subject == seedSubject {
			return nil
		}
	}

	if err := svc.CreateMany(ctx, sampleReactQuestions()); err != nil {
		return fmt.Errorf("seed sample questions: %w", err)
	}
	return nil
}

func sampleReactQuestions() []question.CreateInput {
	return []question.CreateInput{
		{
			QuestionText:  "Which hook lets you add state to a functional component?",
			Options:       []string{"useEffect", "useState", "useRef", "useContext"},
			CorrectAnswer: "useState",
			Subject:       seedSubject,
			Difficulty:    "Easy",
			Tags:          []string{"react", "hooks", "state"},
			Type:          question.TypeMCQ,
			Global:        true,
		},
		{
			QuestionText:  "Which hook runs after every render by default and can be used for side effects?",
			Options:       []string{"useMemo", "useCallback", "useEffect", "useLayoutEffect"},
			CorrectAnswer: "useEffect",
			Subject:       seedSubject,
			Difficulty:    "Easy",
			Tags:          []string{"react", "hooks", "lifecycle"},
			Type:          question.TypeMCQ,
			Global:        true,
		},
		{
			QuestionText:  "What is the purpose of key props when rendering lists in React?",
			Options:       []string{"To style list items", "To identify items for reconciliation", "To pass data to children", "To set tab order"},
			CorrectAnswer: "To identify items for reconciliation",
			Subject:       seedSubject,
			Difficulty:    "Medium",
			Tags:          []string{"react", "lists", "reconciliation"},
			Type:          question.TypeMCQ,
			Global:        true,
		},
		{
			QuestionText:  "Which of the following is NOT a valid way to update state in React?",
			Options:       []string{"setCount(count + 1)", "setState(prev => ({...prev, value: x}))", "state = x", "setValue(() => compute())"},
			CorrectAnswer: "state = x",
			Subject:       seedSubject,
			Difficulty:    "Easy",
			Tags:          []string{"react", "state", "best-practices"},
			Type:          question.TypeMCQ,
			Global:        true,
		},
		{
			QuestionText:  "Which hook would you use to memoize a computed value to avoid expensive recalculation?",
			Options:       []string{"useRef", "useMemo", "useCallback", "useEffect"},
			CorrectAnswer: "useMemo",
			Subject:       seedSubject,
			Difficulty:    "Medium",
			Tags:          []string{"react", "performance", "hooks"},
			Type:          question.TypeMCQ,
			Global:        true,
		},
		{
			QuestionText:  "What does React.Fragment allow you to do?",
			Options:       []string{"Attach lifecycle methods", "Return multiple elements without an extra DOM node", "Create a portal", "Persist state across renders"},
			CorrectAnswer: "Return multiple elements without an extra DOM node",
			Subject:       seedSubject,
			Difficulty:    "Easy",
			Tags:          []string{"react", "jsx", "fragments"},
			Type:          question.TypeMCQ,
			Global:        true,
		},
		{
			QuestionText:  "Which API would you use to render a component subtree into a DOM node outside the parent DOM hierarchy?",
			Options:       []string{"createPortal", "cloneElement", "hydrate", "createRoot"},
			CorrectAnswer: "createPortal",
			Subject:       seedSubject,
			Difficulty:    "Medium",
			Tags:          []string{"react", "portals", "rendering"},
			Type:          question.TypeMCQ,
			Global:        true,
		},
		{
			QuestionText:  "When should you use useCallback?",
			Options:       []string{"To persist values across renders", "To memoize a function identity between renders", "To perform side effects", "To create refs"},
			CorrectAnswer: "To memoize a function identity between renders",
			Subject:       seedSubject,
			Difficulty:    "Medium",
			Tags:          []string{"react", "hooks", "performance"},
			Type:          question.TypeMCQ,
			Global:        true,
		},
		{
			QuestionText:  "Which pattern provides a way to pass data deeply without prop drilling?",
			Options:       []string{"Higher-order components", "Render props", "Context API", "Refs"},
			CorrectAnswer: "Context API",
			Subject:       seedSubject,
			Difficulty:    "Easy",
			Tags:          []string{"react", "context", "patterns"},
			Type:          question.TypeMCQ,
			Global:        true,
		},
		{
			QuestionText:  "What will cause a component to re-render?",
			Options:       []string{"Changing props", "Changing state via setter", "Parent re-rendering (by default)", "All of the above"},
			CorrectAnswer: "All of the above",
			Subject:       seedSubject,
			Difficulty:    "Easy",
			Tags:          []string{"react", "render", "lifecycle"},
			Type:          question.TypeMCQ,
			Global:        true,
		},
	}
}
