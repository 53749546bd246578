package browser

import (
	"strings"
	"testing"
)

func TestClickScriptQuoting(t *testing.T) {
	s := clickScript(`button:has-text("Lookup")`)
	if !strings.Contains(s, `"button:has-text(\"Lookup\")"`) {
		t.Errorf("selector not safely quoted:\n%s", s)
	}
	if !strings.Contains(s, "el.click()") {
		t.Errorf("click call missing")
	}
}

func TestFillScriptQuoting(t *testing.T) {
	s := fillScript(`input[name="username"]`, `o'brien`)
	if !strings.Contains(s, `"o'brien"`) {
		t.Errorf("value not safely quoted:\n%s", s)
	}
	if !strings.Contains(s, "dispatchEvent") {
		t.Errorf("input events missing")
	}
}

func TestFrameHTMLScriptIndex(t *testing.T) {
	s := frameHTMLScript(3)
	if !strings.Contains(s, "frames[3]") {
		t.Errorf("frame index not rendered:\n%s", s)
	}
}

func TestSelectScriptLabel(t *testing.T) {
	s := selectScript("#claimStatusCodeId", "All Claims")
	if !strings.Contains(s, `"All Claims"`) {
		t.Errorf("label not rendered:\n%s", s)
	}
}
