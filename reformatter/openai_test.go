package reformatter

import (
	"strings"
	"testing"
)

func TestParseResponse(t *testing.T) {
	cases := []struct {
		name, in, want string
		wantErr        bool
	}{
		{"plain", `{"formatted_text": "hello"}`, "hello", false},
		{"fenced", "```json\n{\"formatted_text\": \"hello\"}\n```", "hello", false},
		{"bare fence", "```\n{\"formatted_text\": \"hi\"}\n```", "hi", false},
		{"missing field", `{"other": "x"}`, "", true},
		{"not json", "sure, here you go!", "", true},
		{"empty value", `{"formatted_text": ""}`, "", true},
	}
	for _, tc := range cases {
		got, err := parseResponse(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("%s: expected error, got %q", tc.name, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: %v", tc.name, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"grammar_fix", "formal_tone", "casual_tone",
		"bullet_points", "paragraph", "concise", "elaborate"} {
		if _, err := ParseMode(s); err != nil {
			t.Errorf("ParseMode(%q) = %v", s, err)
		}
	}
	if _, err := ParseMode("shouty"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestModeInstructions(t *testing.T) {
	seen := map[string]Mode{}
	for _, m := range []Mode{ModeGrammarFix, ModeFormalTone, ModeCasualTone,
		ModeBulletPoints, ModeParagraph, ModeConcise, ModeElaborate} {
		ins := m.instruction()
		if strings.TrimSpace(ins) == "" {
			t.Errorf("mode %q has empty instruction", m)
		}
		if prev, dup := seen[ins]; dup {
			t.Errorf("modes %q and %q share an instruction", prev, m)
		}
		seen[ins] = m
	}
}
