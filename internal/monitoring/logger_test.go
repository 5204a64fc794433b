package monitoring

import "testing"

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got string
	SetLogger(func(format string, v ...interface{}) { got = format })
	Logf("clubbed %d meters")
	if got != "clubbed %d meters" {
		t.Errorf("custom logger not called, got %q", got)
	}

	got = ""
	SetLogger(nil)
	Logf("should be dropped")
	if got != "" {
		t.Errorf("nil logger should mute output, got %q", got)
	}
}

func TestLogf_Default(t *testing.T) {
	if Logf == nil {
		t.Fatal("Logf must not be nil by default")
	}
}
