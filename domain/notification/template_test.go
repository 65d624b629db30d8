package notification

import (
	"strings"
	"testing"
)

func testData(count int) TemplateData {
	segments := []SharedSegment{
		{Name: "talk_split_1.mp4", URL: "https://drive.google.com/file/d/abc/view"},
		{Name: "talk_split_2.mp4", URL: "https://drive.google.com/file/d/xyz/view"},
	}[:count]
	return TemplateData{
		Greeting:   "Hi John,",
		Source:     "talk.mp4",
		Count:      count,
		Segments:   segments,
		SenderName: "Jonathan",
	}
}

func TestEmailTemplate_RenderSubject(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{1, "talk.mp4: 1 segment ready"},
		{2, "talk.mp4: 2 segments ready"},
	}

	for _, tt := range tests {
		subject, err := DefaultTemplate.RenderSubject(testData(tt.count))
		if err != nil {
			t.Fatalf("RenderSubject() error = %v", err)
		}
		if subject != tt.want {
			t.Errorf("RenderSubject() = %q, want %q", subject, tt.want)
		}
	}
}

func TestEmailTemplate_RenderPlainText(t *testing.T) {
	body, err := DefaultTemplate.RenderPlainText(testData(2))
	if err != nil {
		t.Fatalf("RenderPlainText() error = %v", err)
	}

	checks := []string{
		"Hi John,",
		"Here are the 2 segments cut from talk.mp4:",
		"talk_split_1.mp4: https://drive.google.com/file/d/abc/view\n",
		"talk_split_2.mp4: https://drive.google.com/file/d/xyz/view\n",
		"Thanks!\n~Jonathan",
	}

	for _, check := range checks {
		if !strings.Contains(body, check) {
			t.Errorf("RenderPlainText() missing %q in:\n%s", check, body)
		}
	}
}

func TestEmailTemplate_RenderPlainText_SingleSegmentNoSender(t *testing.T) {
	data := testData(1)
	data.SenderName = ""

	body, err := DefaultTemplate.RenderPlainText(data)
	if err != nil {
		t.Fatalf("RenderPlainText() error = %v", err)
	}

	if !strings.Contains(body, "Here is the segment cut from talk.mp4:") {
		t.Errorf("expected singular wording, got:\n%s", body)
	}
	if !strings.HasSuffix(body, "Thanks!") {
		t.Errorf("expected no signature, got:\n%s", body)
	}
}

func TestEmailTemplate_RenderHTML(t *testing.T) {
	data := testData(2)
	data.Segments[0].Name = "a<b>.mp4"

	body, err := DefaultTemplate.RenderHTML(data)
	if err != nil {
		t.Fatalf("RenderHTML() error = %v", err)
	}

	checks := []string{
		`<a href="https://drive.google.com/file/d/abc/view">a&lt;b&gt;.mp4</a>`,
		`<a href="https://drive.google.com/file/d/xyz/view">talk_split_2.mp4</a>`,
		"~Jonathan",
	}
	for _, check := range checks {
		if !strings.Contains(body, check) {
			t.Errorf("RenderHTML() missing %q in:\n%s", check, body)
		}
	}
}

func TestFormatGreeting(t *testing.T) {
	tests := []struct {
		name       string
		recipients []Recipient
		want       string
	}{
		{"none", nil, "Hello,"},
		{"one named", []Recipient{{Name: "John Doe", Address: "j@example.com"}}, "Hi John,"},
		{"one unnamed", []Recipient{{Address: "j@example.com"}}, "Hello,"},
		{"two named", []Recipient{{Name: "John Doe"}, {Name: "Jane"}}, "Hi John & Jane,"},
		{"two with one unnamed", []Recipient{{Name: "John"}, {Address: "x@example.com"}}, "Hello,"},
		{"three", []Recipient{{Name: "A"}, {Name: "B"}, {Name: "C"}}, "Hi everyone,"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatGreeting(tt.recipients); got != tt.want {
				t.Errorf("FormatGreeting() = %q, want %q", got, tt.want)
			}
		})
	}
}
