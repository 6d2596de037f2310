package validation

import (
	"testing"
)

func TestValidAttachmentType(t *testing.T) {
	allowed := []string{"report.pdf", "solution.PY", "slides.pptx", "data.csv", "photo.JPEG", "site.html"}
	for _, f := range allowed {
		if !ValidAttachmentType(f) {
			t.Errorf("ValidAttachmentType(%q) = false, want true", f)
		}
	}

	rejected := []string{"malware.exe", "script.sh", "archive.tar.gz", "noextension", ""}
	for _, f := range rejected {
		if ValidAttachmentType(f) {
			t.Errorf("ValidAttachmentType(%q) = true, want false", f)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	cases := map[string]string{
		"  hello  ":        "hello",
		"with\x00null":     "withnull",
		"\x00 padded \x00": "padded",
		"clean":            "clean",
	}
	for in, want := range cases {
		if got := SanitizeString(in); got != want {
			t.Errorf("SanitizeString(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateStruct(t *testing.T) {
	type gradeRequest struct {
		Status   string `validate:"required,oneof=submitted passed failed"`
		Feedback string `validate:"max=255"`
	}

	v := NewValidator()

	if err := v.ValidateStruct(gradeRequest{Status: "passed"}); err != nil {
		t.Errorf("valid request rejected: %v", err)
	}

	err := v.ValidateStruct(gradeRequest{Status: "graded"})
	if err == nil {
		t.Fatal("invalid status accepted")
	}

	fields := FormatValidationErrors(err)
	if _, ok := fields["status"]; !ok {
		t.Errorf("formatted errors missing status field: %v", fields)
	}
}
