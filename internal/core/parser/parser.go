package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/prepkit/internal/core/domain"
)

const fence = "```"

// StripFences removes a single leading code fence, with or without a
// language tag, and a single trailing fence, then trims whitespace.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, fence) {
		s = stripLanguageTag(s[len(fence):])
	}
	if strings.HasSuffix(s, fence) {
		s = s[:len(s)-len(fence)]
	}
	return strings.TrimSpace(s)
}

// stripLanguageTag drops a tag such as "json" directly after an opening fence.
// The tag only counts when it is followed by whitespace, the start of a JSON
// container, or the end of input.
func stripLanguageTag(s string) string {
	i := 0
	for i < len(s) && isTagByte(s[i]) {
		i++
	}
	if i == 0 || i == len(s) {
		return s[i:]
	}
	switch s[i] {
	case '\n', '\r', ' ', '\t', '{', '[':
		return s[i:]
	}
	return s
}

func isTagByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '-', b == '_', b == '+', b == '.':
		return true
	}
	return false
}

// Decode strips fences from raw and decodes exactly one JSON value into v.
// Numbers decode as json.Number when v is an interface.
func Decode(raw string, v any) error {
	dec := json.NewDecoder(strings.NewReader(StripFences(raw)))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty response")
		}
		return &domain.ParseError{Raw: raw, Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return &domain.ParseError{Raw: raw, Err: errors.New("unexpected content after JSON value")}
	}
	return nil
}

// Roadmap parses a roadmap array. Every item's status is set to "pending".
func Roadmap(raw string) ([]domain.RoadmapItem, error) {
	items, err := decodeArray(raw)
	if err != nil {
		return nil, err
	}

	v := validator{raw: raw}
	out := make([]domain.RoadmapItem, 0, len(items))
	for i, item := range items {
		obj := v.object(item, index(i))
		if v.err != nil {
			return nil, v.err
		}
		out = append(out, domain.RoadmapItem{
			Title:       v.str(obj, index(i), "title"),
			Status:      domain.RoadmapStatusPending,
			Date:        v.str(obj, index(i), "date"),
			Description: v.str(obj, index(i), "description"),
		})
		v.present(obj, index(i), "status")
	}
	if v.err != nil {
		return nil, v.err
	}
	return out, nil
}

// Skills parses a skills analysis. An analysis that flags the resume as
// invalid is replaced by the canonical invalid-resume analysis.
func Skills(raw string) (*domain.SkillsAnalysis, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	v := validator{raw: raw}
	out := &domain.SkillsAnalysis{
		PresentSkills: v.strList(obj, "", "present_skills"),
		MissingSkills: v.strList(obj, "", "missing_skills"),
	}
	recs := v.list(obj, "", "recommendations")
	out.Recommendations = make([]domain.Recommendation, 0, len(recs))
	for i, r := range recs {
		path := "recommendations" + index(i)
		rec := v.object(r, path)
		if v.err != nil {
			break
		}
		out.Recommendations = append(out.Recommendations, domain.Recommendation{
			Skill:  v.str(rec, path, "skill"),
			Action: v.str(rec, path, "action"),
		})
	}
	if v.err != nil {
		return nil, v.err
	}

	if out.IsInvalidResume() {
		return domain.InvalidResumeAnalysis(), nil
	}
	return out, nil
}

// ATS parses an ATS report. ats_score must be a number in [0,100] and is
// rounded to the nearest integer. A report flagging "Invalid Document" always
// scores 0.
func ATS(raw string) (*domain.AtsReport, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}

	v := validator{raw: raw}
	out := &domain.AtsReport{
		AtsScore:            v.score(obj, "ats_score"),
		MissingKeywords:     v.strList(obj, "", "missing_keywords"),
		FormattingIssues:    v.strList(obj, "", "formatting_issues"),
		TailoredSuggestions: v.strList(obj, "", "tailored_suggestions"),
	}
	if v.err != nil {
		return nil, v.err
	}

	if out.IsInvalidDocument() {
		out.AtsScore = 0
	}
	return out, nil
}

// Experiences parses an interview experience array.
// verdict is matched case-insensitively against Selected and Rejected.
func Experiences(raw string) ([]domain.Experience, error) {
	items, err := decodeArray(raw)
	if err != nil {
		return nil, err
	}

	v := validator{raw: raw}
	out := make([]domain.Experience, 0, len(items))
	for i, item := range items {
		path := index(i)
		obj := v.object(item, path)
		if v.err != nil {
			return nil, v.err
		}
		out = append(out, domain.Experience{
			CandidateProfile: v.str(obj, path, "candidate_profile"),
			Role:             v.str(obj, path, "role"),
			Rounds:           v.strList(obj, path, "rounds"),
			QuestionsAsked:   v.strList(obj, path, "questions_asked"),
			Verdict:          v.verdict(obj, path),
			Tips:             v.str(obj, path, "tips"),
		})
	}
	if v.err != nil {
		return nil, v.err
	}
	return out, nil
}

// decodeArray decodes raw into a JSON array. An object with a single key
// holding an array (e.g. {"roadmap": [...]}) is unwrapped.
func decodeArray(raw string) ([]any, error) {
	var val any
	if err := Decode(raw, &val); err != nil {
		return nil, err
	}
	switch t := val.(type) {
	case []any:
		return t, nil
	case map[string]any:
		if len(t) == 1 {
			for _, inner := range t {
				if arr, ok := inner.([]any); ok {
					return arr, nil
				}
			}
		}
	}
	return nil, &domain.ValidationError{Reason: fmt.Sprintf("expected a JSON array, got %s", kindOf(val)), Raw: raw}
}

func decodeObject(raw string) (map[string]any, error) {
	var val any
	if err := Decode(raw, &val); err != nil {
		return nil, err
	}
	obj, ok := val.(map[string]any)
	if !ok {
		return nil, &domain.ValidationError{Reason: fmt.Sprintf("expected a JSON object, got %s", kindOf(val)), Raw: raw}
	}
	return obj, nil
}

func index(i int) string {
	return fmt.Sprintf("[%d]", i)
}
