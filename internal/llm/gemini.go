package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/sanath0106/mockview/internal/interview"
)

// GeminiClient implements question generation and answer analysis on top of
// the Gemini generative-language API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient constructs the client. The model defaults to
// gemini-1.5-flash when unset.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: api key missing")
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

// Close releases the underlying API client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// GenerateQuestions asks for a JSON question list tailored to the role and
// experience. Fewer than one question is treated as failure.
func (c *GeminiClient) GenerateQuestions(ctx context.Context, req interview.QuestionRequest) ([]interview.Question, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0.8)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(questionPrompt(req)))
	if err != nil {
		return nil, fmt.Errorf("gemini: generate questions: %w", err)
	}
	text, err := extractText(resp)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate questions: %w", err)
	}
	return parseQuestions(text)
}

// AnalyzeInterview asks for the full-transcript feedback payload.
func (c *GeminiClient) AnalyzeInterview(ctx context.Context, answers []interview.Answer, jobTitle, experience string) (*interview.Feedback, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0.4)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(analysisPrompt(answers, jobTitle, experience)))
	if err != nil {
		return nil, fmt.Errorf("gemini: analyze interview: %w", err)
	}
	text, err := extractText(resp)
	if err != nil {
		return nil, fmt.Errorf("gemini: analyze interview: %w", err)
	}
	return parseFeedback(text)
}

// AnalyzeAnswer returns short coaching feedback for a single answer.
func (c *GeminiClient) AnalyzeAnswer(ctx context.Context, question, answer, jobTitle, experience string) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0.4)

	prompt := fmt.Sprintf(`As an interviewer for a %s position (%s years of experience required), give brief constructive feedback on this answer.

Question: %s
Answer: %s

Respond with two or three sentences: one strength, one concrete improvement.`, jobTitle, experience, question, answer)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini: analyze answer: %w", err)
	}
	text, err := extractText(resp)
	if err != nil {
		return "", fmt.Errorf("gemini: analyze answer: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func questionPrompt(req interview.QuestionRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a technical interviewer specializing in %s.\n", req.JobTitle)
	fmt.Fprintf(&b, "Create %d technical interview questions for a candidate with %s years of experience.\n\n", questionCount(req.Experience), req.Experience)
	if req.JobDescription != "" {
		fmt.Fprintf(&b, "Job description:\n%s\n\n", req.JobDescription)
	}
	b.WriteString(`Return in JSON format:
{
  "questions": [
    {
      "id": number,
      "text": "detailed technical question",
      "category": "specific technical area",
      "difficulty": "easy/medium/hard",
      "expectedTopics": ["topic 1", "topic 2"]
    }
  ]
}

Requirements:
1. Questions should be specific to the role
2. Match difficulty to the years of experience
3. Focus on practical technical knowledge
4. Include problem-solving scenarios`)
	return b.String()
}

func analysisPrompt(answers []interview.Answer, jobTitle, experience string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "As an AI interviewer, analyze this interview for a %s position with %s years of experience requirement.\n\n", jobTitle, experience)
	b.WriteString("Interview Questions and Answers:\n")
	for i, a := range answers {
		fmt.Fprintf(&b, "\nQuestion %d: %s\nAnswer: %s\n", i+1, a.QuestionText, a.Answer)
	}
	b.WriteString(`
Provide a comprehensive analysis in the following JSON format:
{
  "feedback": {
    "answers": [
      {
        "questionId": number,
        "strengths": ["strength point 1", "strength point 2"],
        "improvements": ["improvement suggestion 1", "improvement suggestion 2"]
      }
    ],
    "overallFeedback": {
      "rating": number (0-100),
      "positivePoints": ["positive point 1", "positive point 2"],
      "improvementAreas": ["improvement area 1", "improvement area 2"],
      "summary": "Overall feedback summary"
    }
  }
}

Ensure the feedback is:
1. Constructive and professional
2. Specific to the role and experience level
3. Actionable and practical
4. Based on industry standards
5. Balanced between positive points and areas for improvement`)
	return b.String()
}

// questionCount clamps the question list size to 5..10, scaled by the
// candidate's years of experience.
func questionCount(experience string) int {
	years, err := strconv.Atoi(strings.TrimSpace(experience))
	if err != nil {
		return 5
	}
	if years < 5 {
		return 5
	}
	if years > 10 {
		return 10
	}
	return years
}

func parseQuestions(text string) ([]interview.Question, error) {
	var parsed struct {
		Questions []interview.Question `json:"questions"`
	}
	if err := json.Unmarshal([]byte(cleanJSONBlock(text)), &parsed); err != nil {
		return nil, fmt.Errorf("gemini: malformed question JSON: %w", err)
	}
	if len(parsed.Questions) == 0 {
		return nil, fmt.Errorf("gemini: no questions in response")
	}
	return parsed.Questions, nil
}

func parseFeedback(text string) (*interview.Feedback, error) {
	var parsed struct {
		Feedback *interview.Feedback `json:"feedback"`
	}
	if err := json.Unmarshal([]byte(cleanJSONBlock(text)), &parsed); err != nil {
		return nil, fmt.Errorf("gemini: malformed feedback JSON: %w", err)
	}
	if parsed.Feedback == nil {
		return nil, fmt.Errorf("gemini: no feedback in response")
	}
	return parsed.Feedback, nil
}

// extractText joins the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}
	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return strings.Join(parts, ""), nil
}

// cleanJSONBlock strips markdown code-fence wrappers the model sometimes adds.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
