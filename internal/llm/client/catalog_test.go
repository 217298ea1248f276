package llmclient

import (
	"testing"

	"github.com/rsherod/DCI691Build2-InterventionSearcher/internal/tester"
)

func TestKnownModel(t *testing.T) {
	tester.True(t, KnownModel(ModelFlash))
	tester.True(t, KnownModel(ModelProExp))
	tester.False(t, KnownModel("gemini-9000"))
	tester.False(t, KnownModel(""))
}

func TestDefaultModelIsListed(t *testing.T) {
	found := false
	for _, m := range Models() {
		if m == DefaultModel {
			found = true
		}
	}
	tester.True(t, found)
}
