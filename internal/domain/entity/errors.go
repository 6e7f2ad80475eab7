package entity

import (
	"fmt"
	"strings"
)

type MissingFieldError struct {
	Role  Role
	Index int
	Key   string
}

func (e *MissingFieldError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("missing field %q for role %s", e.Key, e.Role)
	}
	return fmt.Sprintf("missing field %q for %s host %d", e.Key, e.Role, e.Index)
}

type InvalidCountError struct {
	Role  Role
	Value string
	Limit int
}

func (e *InvalidCountError) Error() string {
	if e.Limit > 0 {
		return fmt.Sprintf("invalid %s count %q: must be an integer between 0 and %d", e.Role, e.Value, e.Limit)
	}
	return fmt.Sprintf("invalid %s count %q: must be a non-negative integer", e.Role, e.Value)
}

type InvalidFieldError struct {
	Role   Role
	Index  int
	Key    string
	Value  string
	Reason string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid %s for %s host %d (%q): %s", e.Key, e.Role, e.Index, e.Value, e.Reason)
}

// AnalysisError reports a rendered manifest that does not match its request.
type AnalysisError struct {
	Issues []ManifestIssue
}

func (e *AnalysisError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Document < 0 {
			msgs = append(msgs, issue.Message)
			continue
		}
		msgs = append(msgs, fmt.Sprintf("document %d: %s", issue.Document, issue.Message))
	}
	return "generated manifest failed analysis: " + strings.Join(msgs, "; ")
}
