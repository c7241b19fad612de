package resend

import (
	"strings"
	"testing"
)

func TestRenderBody(t *testing.T) {
	body, err := renderBody([]string{"guitar", "<b>run</b>"}, 4)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"4 hours left", "<li>guitar</li>", "&lt;b&gt;run&lt;/b&gt;"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}
