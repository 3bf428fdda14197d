package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/myadmit/admit-backend/internal/model"
)

const essaySystemPrompt = "You are an expert in MBA admissions, well-versed in creating high-quality, tailored MBA " +
	"application essays that help candidates showcase their unique stories, strengths, and fit with a specific " +
	"business school. Your task is to generate persuasive, authentic essays based on the applicant's background " +
	"and stories provided below. You always return a response in strict JSON format so that it can be parsed."

const suggestionsSystemPrompt = "You are an expert in MBA admissions, well-versed in creating high-quality, " +
	"tailored MBA application essays. Provide suggestions in brief points based on the input provided."

const missingPointersNote = "\nSome questions did not receive pointers. Please provide pointers for all the questions.\n"

const defaultEssayWordLimit = 300

type brainstormAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type universityInfo struct {
	Name        string `json:"name"`
	Information string `json:"information"`
}

type programInfo struct {
	ProgramName string         `json:"programName"`
	Information string         `json:"information"`
	University  universityInfo `json:"university"`
}

// essayContext is everything about the applicant and the program that the
// prompts share.
type essayContext struct {
	PersonalInfo   map[string]string
	Education      []model.Education
	WorkExperience []model.WorkExperience
	Program        programInfo
	Brainstorm     []brainstormAnswer
}

// aiQuestion is an application question as the pointers prompt sees it.
type aiQuestion struct {
	QuestionID string          `json:"questionID"`
	Question   string          `json:"question"`
	Guidelines string          `json:"guidelines"`
	WordLimit  *int            `json:"wordLimit"`
	LimitType  model.LimitType `json:"-"`
	LimitValue *int            `json:"-"`
}

func newAIQuestion(q *model.EssayQuestion) aiQuestion {
	out := aiQuestion{
		QuestionID: q.ID.String(),
		Question:   q.Question.Question,
		Guidelines: q.Guidelines,
		LimitType:  q.LimitType,
		LimitValue: q.LimitValue,
	}
	if q.LimitType == model.LimitWord {
		out.WordLimit = q.LimitValue
	}
	return out
}

// limitText renders the limit as the essay prompt states it, or "" for none.
func (q aiQuestion) limitText() string {
	if q.LimitType == model.LimitNone || q.LimitType == "" || q.LimitValue == nil {
		return ""
	}
	return fmt.Sprintf("%d %s", *q.LimitValue, q.LimitType)
}

// pointerSet is one entry of the pointers reply, keyed by question ID.
type pointerSet struct {
	Pointers  json.RawMessage `json:"pointers"`
	WordLimit flexibleInt     `json:"wordLimit"`
}

func (p pointerSet) hasPointers() bool {
	raw := bytes.TrimSpace(p.Pointers)
	switch string(raw) {
	case "", "null", `""`, "[]", "{}", "false", "0":
		return false
	}
	return true
}

// flexibleInt accepts a JSON number or a numeric string. Anything else decodes as zero.
type flexibleInt int

func (f *flexibleInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		*f = flexibleInt(n)
		return nil
	}
	*f = 0
	return nil
}

func prettyJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "null"
	}
	return string(b)
}

func buildPointersPrompt(base string, ec *essayContext, questions []aiQuestion) string {
	var b strings.Builder
	b.WriteString(base)
	b.WriteString("\n\n**Personal Information and Test Scores:**\n")
	b.WriteString(prettyJSON(ec.PersonalInfo))
	b.WriteString("\n\n**Education Background:**\n")
	b.WriteString(prettyJSON(ec.Education))
	b.WriteString("\n\n**Professional Experience:**\n")
	b.WriteString(prettyJSON(ec.WorkExperience))
	b.WriteString("\n\n**Program Details:**\n")
	b.WriteString(prettyJSON(ec.Program))
	b.WriteString("\n\n**Brainstorm Questions and Answers:**\n")
	b.WriteString(prettyJSON(ec.Brainstorm))
	b.WriteString("\n\n**Application Questions:**\n")
	b.WriteString(prettyJSON(questions))
	return b.String()
}

func buildEssayPrompt(ec *essayContext, q aiQuestion, pointers json.RawMessage) string {
	if len(pointers) == 0 {
		pointers = json.RawMessage("null")
	}

	limitLine := ""
	if limit := q.limitText(); limit != "" {
		limitLine = fmt.Sprintf("- Adhere to the specified limit of %s. Write the essay around the limit.\n", limit)
	}

	return fmt.Sprintf(`Based on the following information and pointers, generate a detailed and personalized MBA application essay.

**Personal Information and Test Scores:**
%s

**Education Background:**
%s

**Professional Experience:**
%s

**Program Details:**
%s

**Brainstorm Questions and Answers:**
%s

**Application Question:**
"%s"

**Guidelines:**
%s

**Pointers:**
%s

**Instructions:**
- Craft a well-structured essay that incorporates the provided pointers.
%s- Ensure coherence and logical flow within the essay.
- Maintain a professional yet personal tone, highlighting key attributes such as leadership, teamwork, adaptability, and problem-solving.
- Align the essay with the target school's values and offerings.
- Avoid introducing any information not provided in the above sections.

Give the answer directly as a string without quotes. The response should be in JSON format.

**Example Response:**
`+"```json"+`
{
  "essay": "Your essay content here..."
}
`+"```"+`
`,
		prettyJSON(ec.PersonalInfo),
		prettyJSON(ec.Education),
		prettyJSON(ec.WorkExperience),
		prettyJSON(ec.Program),
		prettyJSON(ec.Brainstorm),
		q.Question,
		q.Guidelines,
		prettyJSON(pointers),
		limitLine,
	)
}

func buildRefinePrompt(ec *essayContext, q *model.EssayQuestion, aiAnswer, request string) string {
	if aiAnswer == "" {
		aiAnswer = "No AI-generated answer yet."
	}
	return fmt.Sprintf(`You are an AI assistant helping to refine essay answers for university applications.

### Brainstorm Questions and Answers:
%s

### Education:
%s

### Work Experience:
%s

### Program Details:
%s

### Original Question:
%s

### Question Guidelines:
%s

### Current AI-Generated Answer:
%s

### User Request:
%s

### Instructions:
- Modify the AI-generated answer according to the user's request.
- Ensure the refined answer maintains the same length as the original unless the user request says otherwise.
- Preserve the key points and overall structure of the original answer.
- The refined answer should be clear, concise, and align with the provided user profile and question guidelines.

### Example Response:
`+"```json"+`
{
  "refinedAnswer": "Your refined essay content here..."
}
`+"```"+`
`,
		prettyJSON(ec.Brainstorm),
		prettyJSON(ec.Education),
		prettyJSON(ec.WorkExperience),
		prettyJSON(ec.Program),
		q.Question.Question,
		orNA(q.Guidelines),
		aiAnswer,
		request,
	)
}

func buildSuggestionsPrompt(ec *essayContext, q *model.EssayQuestion, answer string) string {
	return fmt.Sprintf(`You are an AI assistant helping to provide suggestions for essay answers for university applications.

### Brainstorm Questions and Answers:
%s

### Education:
%s

### Work Experience:
%s

### Program Details:
%s

### Original Question:
%s

### Question Limits:
%s

### Question Guidelines:
%s

### Current Answer by user:
%s

### Instructions:
- Suggestions should be specific to the user's profile and the program they are applying to.
- Suggestions should be actionable and help improve the quality of the answer.
- Provide suggestions within the limits of the question.
- Provide suggestions as a list of brief and actionable points.
- Return suggestions in strict JSON format as an array.

### Example Response:
`+"```json"+`
{
  "suggestions": ["Suggestion 1", "Suggestion 2", "Suggestion 3"]
}
`+"```"+`
`,
		prettyJSON(ec.Brainstorm),
		prettyJSON(ec.Education),
		prettyJSON(ec.WorkExperience),
		prettyJSON(ec.Program),
		q.Question.Question,
		limitLine(q.LimitType, q.LimitValue),
		orNA(q.Guidelines),
		answer,
	)
}

// limitLine describes a question limit for the suggestions prompt.
func limitLine(t model.LimitType, v *int) string {
	switch {
	case t == model.LimitWord && v != nil && *v > 0:
		return fmt.Sprintf("Word Limit: %d", *v)
	case t == model.LimitChar && v != nil && *v > 0:
		return fmt.Sprintf("Character Limit: %d", *v)
	default:
		return "N/A"
	}
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
