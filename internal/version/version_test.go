package version

import (
	"strings"
	"testing"
)

func TestCurrent(t *testing.T) {
	b := Current()
	switch {
	case b.Version == "":
		t.Error("version should not be empty")
	case b.Commit == "":
		t.Error("commit should not be empty")
	case b.Date == "":
		t.Error("date should not be empty")
	}

	if b.Version != GetVersion() {
		t.Errorf("GetVersion (%s) should match Current (%s)", GetVersion(), b.Version)
	}
}

func TestString(t *testing.T) {
	s := Current().String()
	for _, part := range []string{"version=", "commit=", "date="} {
		if !strings.Contains(s, part) {
			t.Errorf("String should contain %q, got %s", part, s)
		}
	}
}

func TestUserAgent(t *testing.T) {
	if ua := UserAgent(); !strings.HasPrefix(ua, "order-gateway/") {
		t.Errorf("unexpected user agent %q", ua)
	}
}
