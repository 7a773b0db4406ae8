package logfields

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

// TestHelperKeyNames verifies key stability; drift would break log queries.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name string
		key  string
		attr slog.Attr
	}{
		{"ListID", KeyListID, ListID(7)},
		{"HashID", KeyHashID, HashID("obj_42")},
		{"BackoffIndex", KeyBackoffIndex, BackoffIndex(3)},
		{"Delay", KeyDelayMS, Delay(5 * time.Second)},
		{"InstanceID", KeyInstanceID, InstanceID("abc")},
		{"Marked", KeyMarked, Marked(1)},
		{"Total", KeyTotal, Total(2)},
		{"Path", KeyPath, Path("/tmp/x")},
		{"Error", KeyError, Error(errors.New("boom"))},
	}
	for _, tc := range cases {
		if tc.attr.Key != tc.key {
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.key, tc.attr.Key)
		}
	}
}

func TestValues(t *testing.T) {
	if got := Delay(1500 * time.Millisecond).Value.Int64(); got != 1500 {
		t.Errorf("Delay = %d, want 1500", got)
	}
	if got := Error(nil).Value.String(); got != "" {
		t.Errorf("Error(nil) = %q", got)
	}
}
