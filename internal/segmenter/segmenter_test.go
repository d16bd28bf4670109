package segmenter_test

import (
	"strings"
	"testing"

	"github.com/valpere/termitran/internal/segmenter"
)

func TestSegment_ShortText(t *testing.T) {
	text := "短文本。"
	segments := segmenter.Segment(text, 100)
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	if segments[0] != text {
		t.Errorf("expected %q, got %q", text, segments[0])
	}
}

func TestSegment_Unlimited(t *testing.T) {
	text := strings.Repeat("字", 500)
	segments := segmenter.Segment(text, 0)
	if len(segments) != 1 {
		t.Errorf("expected 1 segment when maxLength=0, got %d", len(segments))
	}
}

func TestSegment_ParagraphBoundary(t *testing.T) {
	para1 := strings.Repeat("一", 30) + "。"
	para2 := strings.Repeat("二", 30) + "。"
	text := para1 + "\n\n" + para2

	segments := segmenter.Segment(text, 40)
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d: %v", len(segments), segments)
	}
	if segments[0] != para1 {
		t.Errorf("first segment should be the first paragraph, got %q", segments[0])
	}
	if segments[1] != para2 {
		t.Errorf("second segment should be the second paragraph, got %q", segments[1])
	}
}

func TestSegment_ParagraphsAccumulate(t *testing.T) {
	para := strings.Repeat("短", 10) + "。"
	text := para + "\n\n" + para + "\n\n" + para

	segments := segmenter.Segment(text, 30)
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d: %v", len(segments), segments)
	}
	// Two paragraphs plus separator fit in the first segment.
	if !strings.Contains(segments[0], "\n\n") {
		t.Errorf("first segment should hold two paragraphs: %q", segments[0])
	}
}

func TestSegment_OversizeParagraphSplitsAtSentences(t *testing.T) {
	s1 := strings.Repeat("甲", 15) + "。"
	s2 := strings.Repeat("乙", 15) + "！"
	s3 := strings.Repeat("丙", 15) + "？"
	text := s1 + s2 + s3

	segments := segmenter.Segment(text, 20)
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d: %v", len(segments), segments)
	}
	for i, want := range []string{s1, s2, s3} {
		if segments[i] != want {
			t.Errorf("segment %d: expected %q, got %q", i, want, segments[i])
		}
	}
}

func TestSegment_OversizeSentenceReturnedWhole(t *testing.T) {
	// A single sentence longer than maxLength must never be cut.
	sentence := strings.Repeat("长", 50) + "。"
	segments := segmenter.Segment(sentence, 20)
	if len(segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(segments))
	}
	if segments[0] != sentence {
		t.Errorf("oversize sentence was modified: %q", segments[0])
	}
}

func TestSegment_RuneLengths(t *testing.T) {
	// CJK text is three bytes per rune; limits must count runes.
	text := strings.Repeat("汉", 10)
	segments := segmenter.Segment(text, 10)
	if len(segments) != 1 {
		t.Errorf("10 runes within a 10-rune limit should stay whole, got %d segments", len(segments))
	}
}

func TestSegment_NoContentLost(t *testing.T) {
	paras := []string{
		"第一段。" + strings.Repeat("内容", 10),
		"第二段。" + strings.Repeat("文字", 10),
		"第三段。" + strings.Repeat("数据", 10),
	}
	text := strings.Join(paras, "\n\n")

	segments := segmenter.Segment(text, 30)
	rejoined := strings.Join(segments, "\n\n")
	for _, para := range paras {
		if !strings.Contains(rejoined, para) {
			t.Errorf("paragraph %q lost after segmentation", para)
		}
	}
}
