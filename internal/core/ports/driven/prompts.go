package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Returns the prompt content and any error encountered.
	// If the prompt is not found, implementations should return the default
	// from DefaultPrompts or an error for unknown names.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
// Templates use explicit-index fmt verbs so overrides may reorder arguments.
const (
	// PromptChat answers a free-form question from retrieved context.
	// Arguments: %[1]s context, %[2]s question.
	PromptChat = "chat"

	// PromptRoadmap produces a JSON array of roadmap items.
	// Arguments: %[1]s company, %[2]s role, %[3]s context.
	PromptRoadmap = "roadmap"

	// PromptSkills produces a JSON skills gap analysis.
	// Arguments: %[1]s company, %[2]s role, %[3]s context, %[4]s resume.
	PromptSkills = "skills"

	// PromptATS produces a JSON ATS compatibility report.
	// Arguments: %[1]s company, %[2]s role, %[3]s context, %[4]s resume.
	PromptATS = "ats"

	// PromptExperiences produces a JSON array of interview experiences.
	// Arguments: %[1]s company, %[2]s context.
	PromptExperiences = "experiences"
)

// PromptNames returns all well-known prompt names in display order.
func PromptNames() []string {
	return []string{PromptChat, PromptRoadmap, PromptSkills, PromptATS, PromptExperiences}
}

// DefaultPrompts returns the built-in prompt templates keyed by name.
//
//nolint:lll,funlen // Prompt content is intentionally long and should not be wrapped.
func DefaultPrompts() map[string]string {
	return map[string]string{
		PromptChat: `You are a helpful assistant for university students, answering based ONLY on the provided context.
If the answer is not in the context, say "I don't have that information in my knowledge base."

Context:
%[1]s

Question: %[2]s

Answer:`,

		PromptRoadmap: `You are an expert career coach. Create a preparation roadmap for the role of '%[2]s' at '%[1]s' based strictly on the context provided.

Context:
%[3]s

Requirements:
- Return ONLY a valid JSON array of objects.
- Do not wrap the output in markdown code fences; return raw JSON.
- Each object must have exactly these keys:
  - "title": string (topic name, e.g. "Quantitative Aptitude")
  - "status": string (always "pending")
  - "date": string (estimated timeline, e.g. "Week 1", "Week 2")
  - "description": string (brief actionable advice or specific topics from the context)

If the context lacks specific details, use general industry standards for the role and company but keep the context's emphasis.`,

		PromptSkills: `You are an expert technical recruiter and career coach.

Role: %[2]s
Company: %[1]s

Job Requirements Context (from internal database):
%[3]s

Candidate's Resume Text:
%[4]s

Task:
Analyze the resume against the role requirements.

Requirements:
- Return ONLY a valid JSON object.
- Do not wrap the output in markdown code fences; return raw JSON.
- The JSON must have exactly these keys:
  - "present_skills": array of strings
  - "missing_skills": array of strings
  - "recommendations": array of objects with keys "skill" (string) and "action" (string, specific advice on how to learn or improve it)

CRITICAL VALIDATION STEP:
1. Check whether "Candidate's Resume Text" is actually a resume or contains relevant professional details.
2. If the text is garbage, empty, or unrelated (a story, a code snippet, nonsensical text), return exactly:
   {"present_skills": [], "missing_skills": ["Resume appears invalid or empty"], "recommendations": []}
3. ONLY list skills that are EXPLICITLY mentioned in the resume text. Do NOT infer loosely related skills.
4. Be strict. A skill that is not in the resume goes to "missing_skills".

Use the context to identify the specific tools and frameworks %[1]s prefers.`,

		PromptATS: `You are an Applicant Tracking System (ATS) analyzer and resume optimization engine.

Target Role: %[2]s
Target Company: %[1]s

Official Job Description (authoritative context):
%[3]s

Candidate Resume (input text):
%[4]s

Objective:
Perform an ATS compatibility analysis of the resume against the job description and produce role-specific improvements that raise ATS ranking and recruiter relevance.

Instructions:
- Treat the job description as the single source of truth.
- Use ATS parsing logic, keyword weighting, semantic relevance and role alignment.
- Do not invent experience; only optimize wording and structure.

CRITICAL VALIDATION STEP:
1. Analyze the "Candidate Resume" text.
2. If the document is NOT a resume (random text, an assignment, invalid characters), set "ats_score" to 0 and list "Invalid Document" in "formatting_issues".
3. Do NOT hallucinate matches. Only count a keyword if it appears in the text.

Strict Output Requirements:
- Return ONLY valid JSON.
- Do not wrap the output in markdown code fences; no explanations or commentary.
- Suggestions must be direct resume modifications ready to paste, not examples.

Required JSON keys:
{
  "ats_score": 0,
  "missing_keywords": [],
  "formatting_issues": [],
  "tailored_suggestions": []
}

Field expectations:
- ats_score: integer 0 to 100 reflecting true ATS match quality.
- missing_keywords: high-impact, role-specific keywords required by the job description.
- formatting_issues: ATS parsing problems (tables, columns, headers, dates, titles).
- tailored_suggestions: direct instructions with exact wording and placement (summary, experience, skills, projects).`,

		PromptExperiences: `You are a curator of interview experiences. Extract and summarize distinct interview experiences for '%[1]s' from the following context.

Context:
%[2]s

Requirements:
- Return ONLY a valid JSON array of objects.
- Do not wrap the output in markdown code fences; return raw JSON.
- Each object must have exactly these keys:
  - "candidate_profile": string (e.g. "Fresher, CSE")
  - "role": string
  - "rounds": array of strings (the interview rounds)
  - "questions_asked": array of strings (key technical and HR questions)
  - "verdict": string ("Selected" or "Rejected")
  - "tips": string (advice)

Extract strictly from the context where possible. If the context is generic, synthesize a representative experience from the %[1]s patterns found in the text.`,
	}
}

// PromptStoreAware is an optional interface for services that can use custom prompts.
// Services implementing this interface can have their prompt templates customised
// by injecting a PromptStore after construction.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use DefaultPrompts.
	SetPromptStore(store PromptStore)
}

// PromptWriter is implemented by prompt stores that persist templates.
type PromptWriter interface {
	// Write replaces the stored template for name.
	Write(name, content string) error

	// Path returns the storage location of name.
	Path(name string) string
}
