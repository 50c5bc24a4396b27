package domain

import (
	"errors"
	"fmt"
)

// Fixed caller-visible messages.
const (
	MsgSystemUnavailable  = "System is initializing or failed. Check server logs."
	MsgKnowledgeBaseEmpty = "Knowledge base is empty. Please run the ingestion script."
	MsgNoRelevantInfo     = "I couldn't find any relevant information in my knowledge base."
	MsgNoInfoFound        = "No info found"
	MsgInvalidResume      = "Resume appears invalid or empty"
	MsgInvalidDocument    = "Invalid Document"
	MsgNoText             = "Could not extract text from file"
)

// RoadmapStatusPending is the only status a generated roadmap item may carry.
const RoadmapStatusPending = "pending"

// Interview verdicts.
const (
	VerdictSelected = "Selected"
	VerdictRejected = "Rejected"
)

// ChatReply is the free-form answer to a chat message.
type ChatReply struct {
	Response string `json:"response" yaml:"response"`
}

// RoadmapItem is one step of a preparation roadmap.
type RoadmapItem struct {
	Title       string `json:"title" yaml:"title"`
	Status      string `json:"status" yaml:"status"`
	Date        string `json:"date" yaml:"date"`
	Description string `json:"description" yaml:"description"`
}

// Recommendation pairs a missing skill with advice on acquiring it.
type Recommendation struct {
	Skill  string `json:"skill" yaml:"skill"`
	Action string `json:"action" yaml:"action"`
}

// SkillsAnalysis compares a resume against a role's requirements.
type SkillsAnalysis struct {
	PresentSkills   []string         `json:"present_skills" yaml:"present_skills"`
	MissingSkills   []string         `json:"missing_skills" yaml:"missing_skills"`
	Recommendations []Recommendation `json:"recommendations" yaml:"recommendations"`
}

// InvalidResumeAnalysis is returned when the input is not a usable resume.
func InvalidResumeAnalysis() *SkillsAnalysis {
	return &SkillsAnalysis{
		PresentSkills:   []string{},
		MissingSkills:   []string{MsgInvalidResume},
		Recommendations: []Recommendation{},
	}
}

// IsInvalidResume reports whether the analysis flags the input as not a resume.
func (s *SkillsAnalysis) IsInvalidResume() bool {
	for _, m := range s.MissingSkills {
		if m == MsgInvalidResume {
			return true
		}
	}
	return false
}

// AtsReport is an applicant-tracking-system compatibility report.
type AtsReport struct {
	AtsScore            int      `json:"ats_score" yaml:"ats_score"`
	MissingKeywords     []string `json:"missing_keywords" yaml:"missing_keywords"`
	FormattingIssues    []string `json:"formatting_issues" yaml:"formatting_issues"`
	TailoredSuggestions []string `json:"tailored_suggestions" yaml:"tailored_suggestions"`
}

// InvalidDocumentReport is returned when the input is not a usable resume.
func InvalidDocumentReport() *AtsReport {
	return &AtsReport{
		AtsScore:            0,
		MissingKeywords:     []string{},
		FormattingIssues:    []string{MsgInvalidDocument},
		TailoredSuggestions: []string{},
	}
}

// IsInvalidDocument reports whether the report flags the input as not a resume.
func (r *AtsReport) IsInvalidDocument() bool {
	for _, f := range r.FormattingIssues {
		if f == MsgInvalidDocument {
			return true
		}
	}
	return false
}

// Experience is a digest of one candidate's interview experience.
type Experience struct {
	CandidateProfile string   `json:"candidate_profile" yaml:"candidate_profile"`
	Role             string   `json:"role" yaml:"role"`
	Rounds           []string `json:"rounds" yaml:"rounds"`
	QuestionsAsked   []string `json:"questions_asked" yaml:"questions_asked"`
	Verdict          string   `json:"verdict" yaml:"verdict"`
	Tips             string   `json:"tips" yaml:"tips"`
}

// ErrorPayload is the caller-visible error shape of structured operations.
type ErrorPayload struct {
	Error string `json:"error" yaml:"error"`
	Raw   string `json:"raw,omitempty" yaml:"raw,omitempty"`
}

// PayloadFor converts an operation error into its caller-visible payload.
func PayloadFor(err error) ErrorPayload {
	var (
		parseErr *ParseError
		validErr *ValidationError
		genErr   *GenerationError
		retErr   *RetrievalError
		decErr   *DecodeError
	)

	switch {
	case err == nil:
		return ErrorPayload{}
	case errors.Is(err, ErrSystemUnavailable):
		return ErrorPayload{Error: MsgSystemUnavailable}
	case errors.Is(err, ErrIndexUnavailable):
		return ErrorPayload{Error: MsgKnowledgeBaseEmpty}
	case errors.Is(err, ErrNoResults):
		return ErrorPayload{Error: MsgNoInfoFound}
	case errors.Is(err, ErrNoText):
		return ErrorPayload{Error: MsgNoText}
	case errors.As(err, &decErr):
		return ErrorPayload{Error: decErr.Error()}
	case errors.As(err, &parseErr):
		return ErrorPayload{Error: fmt.Sprintf("LLM/Parsing Error: %v", parseErr.Err), Raw: parseErr.Raw}
	case errors.As(err, &validErr):
		return ErrorPayload{Error: "LLM/Parsing Error: " + validErr.Error(), Raw: validErr.Raw}
	case errors.As(err, &genErr):
		return ErrorPayload{Error: fmt.Sprintf("LLM/Parsing Error: %v", genErr.Err)}
	case errors.As(err, &retErr):
		return ErrorPayload{Error: fmt.Sprintf("Vector DB Error: %v", retErr.Err)}
	default:
		return ErrorPayload{Error: err.Error()}
	}
}
