package narration

import "fmt"

// Message variants per kind. The choice is cosmetic; exactly one message per
// kind is spoken per occurrence.

// WelcomeMessage returns one of the welcome variants for this interview.
func (c *Controller) WelcomeMessage(jobTitle string, totalQuestions int) string {
	switch c.pick(3) {
	case 0:
		return fmt.Sprintf("Hello! I'm your AI interviewer for the %s position. We'll be going through %d questions to assess your experience and skills. Feel free to take your time with each answer.", jobTitle, totalQuestions)
	case 1:
		return fmt.Sprintf("Welcome to your %s interview! I'll be asking you %d questions today. Remember, you can either speak your answers or type them.", jobTitle, totalQuestions)
	default:
		return fmt.Sprintf("Hi there! I'm excited to learn about your %s experience. We have %d questions prepared for you. Let's begin when you're ready.", jobTitle, totalQuestions)
	}
}

// TransitionMessage returns one of the between-question variants.
func (c *Controller) TransitionMessage() string {
	switch c.pick(3) {
	case 0:
		return "Thank you for that answer. Let's move on to the next question."
	case 1:
		return "Excellent. Moving forward to our next topic."
	default:
		return "Great. Let's continue with the next question."
	}
}

// CompletionMessage returns one of the end-of-interview variants.
func (c *Controller) CompletionMessage(totalQuestions int) string {
	switch c.pick(3) {
	case 0:
		return fmt.Sprintf("Thank you for completing all %d questions. I'll now analyze your responses to provide comprehensive feedback.", totalQuestions)
	case 1:
		return "That concludes our interview questions. I'll analyze your responses and prepare detailed feedback for you."
	default:
		return "Thank you for your time and thoughtful answers. I'll now process your responses and generate feedback."
	}
}

func (c *Controller) pick(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.Intn(n)
}
