package constants

import (
	"regexp"
	"strings"
	"testing"
)

func TestTimeFormat(t *testing.T) {
	// Check that a time zone component exists in the global time format.
	re := regexp.MustCompile("^.*0700$")
	if !re.MatchString(TimeFormatYearSecondsTZ) {
		t.Fatal("Unexpected time format - missing time zone component.")
	}
	// Check that the global regexp can match constant TimeFormatYearSeconds.
	re = regexp.MustCompile(TimeFormatYearSecondsRegex)
	if !re.MatchString(TimeFormatYearSeconds) {
		t.Fatal("Mismatch between TimeFormatYearSeconds and regexp in constant TimeFormatYearSecondsRegex.")
	}
}

func TestLoadedAtColumnNameIsUpperCase(t *testing.T) {
	// The transform upper-cases all source names so the stamp column must already be upper case.
	if LoadedAtColumnName != strings.ToUpper(LoadedAtColumnName) {
		t.Fatalf("expected upper case column name; got %v", LoadedAtColumnName)
	}
}
