package protocol

import "testing"

func TestMessageConstants(t *testing.T) {
	want := map[string]string{
		MsgHello:      "hello",
		MsgDefine:     "define",
		MsgQuery:      "query",
		MsgValues:     "values",
		MsgWelcome:    "welcome",
		MsgDefined:    "defined",
		MsgValue:      "value",
		MsgAllocation: "allocation",
		MsgError:      "error",
	}
	for got, w := range want {
		if got != w {
			t.Fatalf("message constant = %q, want %q", got, w)
		}
	}
}

func TestVersionSanity(t *testing.T) {
	if Version <= 0 {
		t.Fatalf("Version = %d, must be > 0", Version)
	}
	if err := Validate(Hello{V: Version}); err != nil {
		t.Fatalf("hello with current version rejected: %v", err)
	}
}
