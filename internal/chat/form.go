package chat

import (
	"fmt"
	"strings"
)

// PlaceholderOption is the sentinel a select field starts at. A submission
// carrying it in any field is rejected.
const PlaceholderOption = "Click to select"

// FieldSpec describes one select field of the student information form.
type FieldSpec struct {
	Key     string
	Label   string
	Options []string
}

// FormFields returns the six student attributes in their fixed order. The
// order also fixes the rendering order of the submitted digest.
func FormFields() []FieldSpec {
	return []FieldSpec{
		{Key: "Academic_read", Label: "Student Reading Performance:", Options: []string{"below average", "average", "above average"}},
		{Key: "Academic_math", Label: "Student Math Performance:", Options: []string{"below average", "average", "above average"}},
		{Key: "SRSS_I", Label: "SRSS-Internalizing Score:", Options: []string{"Low", "Moderate", "High"}},
		{Key: "SRSS_E", Label: "SRSS-Externalizing Score:", Options: []string{"Low", "Moderate", "High"}},
		{Key: "Days_missed", Label: "Number of Days Student has Missed:", Options: []string{"0-5 days", "6-10 days", "11-15 days", "16+ days"}},
		{Key: "ODRs", Label: "Number of Office Discipline Referrals Earned:", Options: []string{"0-1 referrals", "2-3 referrals", "4-5 referrals", "6+ referrals"}},
	}
}

// FormSubmission holds the selected value per field key. It is consumed
// exactly once: rendered into a prompt and discarded.
type FormSubmission struct {
	Values map[string]string
}

// Validate checks that every field is present and past the placeholder.
func (f FormSubmission) Validate() error {
	for _, field := range FormFields() {
		v := strings.TrimSpace(f.Values[field.Key])
		if v == "" || v == PlaceholderOption {
			return fmt.Errorf("field %s has no selection", field.Key)
		}
	}
	return nil
}

// Digest renders the submission as the analysis prompt sent to the model.
// Field order is fixed so the same submission always yields the same prompt.
func (f FormSubmission) Digest() string {
	var b strings.Builder
	b.WriteString("Using the uploaded intervention grid, please analyze the following student information:\n\nForm Responses:\n")
	for _, field := range FormFields() {
		fmt.Fprintf(&b, "%s: %s\n", field.Key, f.Values[field.Key])
	}
	b.WriteString("\nPlease analyze this information against the intervention grid and suggest appropriate interventions.")
	return b.String()
}
