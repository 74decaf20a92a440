package assistant

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestExtractJSONIsGreedy(t *testing.T) {
	span, ok := ExtractJSON("prefix {\"a\": 1} middle {\"b\": 2} suffix")
	if !ok {
		t.Fatalf("expected a span")
	}
	if span != "{\"a\": 1} middle {\"b\": 2}" {
		t.Fatalf("unexpected span %q", span)
	}
	if _, ok := ExtractJSON("no braces here"); ok {
		t.Fatalf("expected no span")
	}
	span, ok = ExtractJSON("```json\n{\n\"ideas\": []\n}\n```")
	if !ok || !strings.HasPrefix(span, "{") || !strings.HasSuffix(span, "}") {
		t.Fatalf("multiline span not found: %q", span)
	}
}

func TestDecodeIdeasTaggedResult(t *testing.T) {
	now := time.UnixMilli(42)
	cases := []struct {
		name   string
		raw    string
		status DecodeStatus
		err    error
	}{
		{"ok", validReply, DecodeOK, nil},
		{"no json", "nothing", DecodeInvalid, ErrNoJSON},
		{"two objects", `{"ideas": []} and {"x": 1}`, DecodeInvalid, ErrInvalidJSON},
		{"bad types", `{"ideas": [{"title": 5}]}`, DecodeInvalid, ErrInvalidJSON},
		{"empty materials", `{"ideas":[{"title":"a","description":"b","category":"c","difficulty":"Easy","materials":[],"inspiration":"d"}]}`, DecodeInvalid, ErrInvalidIdeas},
		{"blank material", `{"ideas":[{"title":"a","description":"b","category":"c","difficulty":"Easy","materials":[""],"inspiration":"d"}]}`, DecodeInvalid, ErrInvalidIdeas},
		{"lowercase difficulty", `{"ideas":[{"title":"a","description":"b","category":"c","difficulty":"easy","materials":["m"],"inspiration":"d"}]}`, DecodeInvalid, ErrInvalidIdeas},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DecodeIdeas(tc.raw, now)
			if got.Status != tc.status {
				t.Fatalf("status = %v, want %v (err %v)", got.Status, tc.status, got.Err)
			}
			if tc.err != nil && !errors.Is(got.Err, tc.err) {
				t.Fatalf("err = %v, want %v", got.Err, tc.err)
			}
			if tc.status == DecodeOK && (got.Err != nil || len(got.Ideas) == 0) {
				t.Fatalf("ok result without ideas: %+v", got)
			}
			if tc.status == DecodeInvalid && got.Ideas != nil {
				t.Fatalf("invalid result carries ideas: %+v", got.Ideas)
			}
		})
	}
}

func TestBuildPromptEmbedsUserText(t *testing.T) {
	p := BuildPrompt("осенний лес")
	if !strings.Contains(p, `"осенний лес"`) {
		t.Fatalf("user text missing from prompt")
	}
	for _, want := range []string{`"ideas"`, "Easy", "Medium", "Hard", "materials", "inspiration"} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}
