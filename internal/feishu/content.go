package feishu

import (
	"encoding/json"
	"fmt"
	"strings"

	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
)

// Placeholder text emitted for non-text message kinds so routing still sees
// that something arrived. The literals match what Feishu clients render.
const (
	placeholderImage = "[图片]"
	placeholderFile  = "[文件]"
	placeholderAudio = "[音频]"
	placeholderVideo = "[视频]"
	placeholderCard  = "[卡片消息]"
)

// ExtractText converts a raw Feishu message payload into routable text.
// Unknown message types and malformed payloads report ok=false so the caller
// can drop the event silently.
func ExtractText(messageType, rawContent string) (string, bool) {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(rawContent), &parsed); err != nil {
		return "", false
	}

	switch messageType {
	case larkim.MsgTypeText:
		text, _ := parsed["text"].(string)
		return text, true
	case larkim.MsgTypePost:
		return extractPostText(parsed)
	case larkim.MsgTypeImage:
		return placeholderImage, true
	case larkim.MsgTypeFile:
		if name, _ := parsed["file_name"].(string); name != "" {
			return placeholderFile + " " + name, true
		}
		return placeholderFile, true
	case larkim.MsgTypeAudio:
		return placeholderAudio, true
	case "video", larkim.MsgTypeMedia:
		return placeholderVideo, true
	case larkim.MsgTypeInteractive:
		return placeholderCard, true
	default:
		return "", false
	}
}

// extractPostText flattens a rich-text post: segments of a section join
// directly, non-empty sections join with newlines.
func extractPostText(parsed map[string]any) (string, bool) {
	post, ok := parsed["post"].(map[string]any)
	if !ok {
		return "", false
	}
	sections, ok := post["content"].([]any)
	if !ok {
		return "", false
	}
	var lines []string
	for _, rawSection := range sections {
		section, ok := rawSection.([]any)
		if !ok {
			continue
		}
		var parts []string
		for _, rawSegment := range section {
			segment, ok := rawSegment.(map[string]any)
			if !ok {
				continue
			}
			if text, _ := segment["text"].(string); text != "" {
				parts = append(parts, text)
			}
		}
		if line := strings.Join(parts, ""); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), true
}

// BuildTextContent serializes a plain text payload for the send API.
func BuildTextContent(text string) (string, error) {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return "", fmt.Errorf("marshal text content: %w", err)
	}
	return string(payload), nil
}

// BuildPostContent serializes text as a single-section rich-text post.
func BuildPostContent(text string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"post": map[string]any{
			"zh_cn": map[string]any{
				"title": "",
				"content": [][]map[string]string{
					{{"tag": "text", "text": text}},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal post content: %w", err)
	}
	return string(payload), nil
}

// BuildCardContent serializes a titled markdown card.
func BuildCardContent(title, content string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"config": map[string]any{"wide_screen_mode": true},
		"header": map[string]any{
			"title": map[string]string{"content": title, "tag": "plain_text"},
		},
		"elements": []map[string]string{
			{"tag": "markdown", "content": content},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal card content: %w", err)
	}
	return string(payload), nil
}
