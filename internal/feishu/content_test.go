package feishu

import (
	"encoding/json"
	"testing"
)

func TestExtractTextText(t *testing.T) {
	t.Parallel()

	got, ok := ExtractText("text", `{"text":"hello"}`)
	if !ok || got != "hello" {
		t.Fatalf("unexpected result: %q %v", got, ok)
	}

	got, ok = ExtractText("text", `{}`)
	if !ok || got != "" {
		t.Fatalf("missing text key should yield empty string: %q %v", got, ok)
	}
}

func TestExtractTextPost(t *testing.T) {
	t.Parallel()

	content := `{"post":{"content":[[{"tag":"text","text":"line "},{"tag":"text","text":"one"}],[{"tag":"text","text":""}],[{"tag":"text","text":"line two"}]]}}`
	got, ok := ExtractText("post", content)
	if !ok {
		t.Fatal("expected post to extract")
	}
	if got != "line one\nline two" {
		t.Fatalf("unexpected post text: %q", got)
	}
}

func TestExtractTextPostWithoutBody(t *testing.T) {
	t.Parallel()

	if _, ok := ExtractText("post", `{"title":"x"}`); ok {
		t.Fatal("post without content must be dropped")
	}
}

func TestExtractTextPlaceholders(t *testing.T) {
	t.Parallel()

	cases := []struct {
		messageType string
		content     string
		want        string
	}{
		{"image", `{"image_key":"img_1"}`, "[图片]"},
		{"file", `{"file_key":"f_1","file_name":"report.pdf"}`, "[文件] report.pdf"},
		{"file", `{"file_key":"f_1"}`, "[文件]"},
		{"audio", `{"file_key":"a_1"}`, "[音频]"},
		{"video", `{"file_key":"v_1"}`, "[视频]"},
		{"media", `{"file_key":"v_1"}`, "[视频]"},
		{"interactive", `{"elements":[]}`, "[卡片消息]"},
	}
	for _, tc := range cases {
		got, ok := ExtractText(tc.messageType, tc.content)
		if !ok || got != tc.want {
			t.Fatalf("unexpected result for %s: %q %v", tc.messageType, got, ok)
		}
	}
}

func TestExtractTextDropsUnknownAndMalformed(t *testing.T) {
	t.Parallel()

	if _, ok := ExtractText("sticker", `{"sticker_id":"s_1"}`); ok {
		t.Fatal("unknown types must be dropped")
	}
	if _, ok := ExtractText("text", `not json`); ok {
		t.Fatal("malformed payloads must be dropped")
	}
}

func TestBuildTextContent(t *testing.T) {
	t.Parallel()

	content, err := BuildTextContent(`quote " and newline`)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	var parsed map[string]string
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		t.Fatalf("content is not valid JSON: %v", err)
	}
	if parsed["text"] != `quote " and newline` {
		t.Fatalf("unexpected text: %q", parsed["text"])
	}
}

func TestBuildPostContent(t *testing.T) {
	t.Parallel()

	content, err := BuildPostContent("body")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	// Outbound posts wrap the body in a locale key; inbound posts arrive
	// unwrapped, so there is no round trip through ExtractText.
	var parsed struct {
		Post struct {
			ZhCn struct {
				Content [][]map[string]string `json:"content"`
			} `json:"zh_cn"`
		} `json:"post"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		t.Fatalf("post is not valid JSON: %v", err)
	}
	sections := parsed.Post.ZhCn.Content
	if len(sections) != 1 || len(sections[0]) != 1 {
		t.Fatalf("unexpected post shape: %q", content)
	}
	if sections[0][0]["tag"] != "text" || sections[0][0]["text"] != "body" {
		t.Fatalf("unexpected post segment: %v", sections[0][0])
	}
}

func TestBuildCardContent(t *testing.T) {
	t.Parallel()

	content, err := BuildCardContent("Title", "**bold**")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	var parsed map[string]any
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		t.Fatalf("card is not valid JSON: %v", err)
	}
	if _, ok := parsed["header"]; !ok {
		t.Fatalf("card missing header: %v", parsed)
	}
}
