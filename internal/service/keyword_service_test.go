package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jumptop/ITOP/config"
)

type stubDetector struct {
	lang      string
	phrases   []string
	err       error
	gotLang   string
	detectedN int
}

func (d *stubDetector) DetectLanguage(ctx context.Context, text string) (string, error) {
	d.detectedN++
	return d.lang, nil
}

func (d *stubDetector) DetectKeyPhrases(ctx context.Context, text, language string) ([]string, error) {
	d.gotLang = language
	return d.phrases, d.err
}

type stubFilter struct {
	out []string
	err error
}

func (f stubFilter) FilterKeywords(ctx context.Context, text string, candidates []string) ([]string, error) {
	return f.out, f.err
}

func keywordCfg(lang string) *config.Config {
	return &config.Config{Keywords: config.Keywords{Language: lang}, RemoteTTL: time.Second}
}

func TestKeywordServiceUsesFilteredPhrases(t *testing.T) {
	det := &stubDetector{phrases: []string{"교착상태", "교착상태", "상호 배제", "자원"}}
	svc := NewKeywordService(det, stubFilter{out: []string{"교착상태"}}, keywordCfg("ko"))

	got := svc.Extract(context.Background(), "교착상태의 발생 조건", "")
	if len(got) != 1 || got[0] != "교착상태" {
		t.Fatalf("got %v", got)
	}
	if det.gotLang != "ko" || det.detectedN != 0 {
		t.Fatalf("language handling: lang=%q detected=%d", det.gotLang, det.detectedN)
	}
}

func TestKeywordServiceKeepsRawPhrasesWhenFilterReturnsNothing(t *testing.T) {
	det := &stubDetector{lang: "en", phrases: []string{"a", "b", "c", "d", "e", "f", "A"}}
	svc := NewKeywordService(det, stubFilter{}, keywordCfg(""))

	got := svc.Extract(context.Background(), "some text", "")
	if len(got) != 5 {
		t.Fatalf("got %v, want the first five unique phrases", got)
	}
	if det.detectedN != 1 || det.gotLang != "en" {
		t.Fatalf("language was not detected: %+v", det)
	}
}

func TestKeywordServiceFallsBackToLocalExtraction(t *testing.T) {
	text := "프로세스 스케줄링 알고리즘 프로세스"
	for name, svc := range map[string]KeywordService{
		"no detector":    NewKeywordService(nil, nil, keywordCfg("ko")),
		"detector fails": NewKeywordService(&stubDetector{err: errors.New("throttled")}, nil, keywordCfg("ko")),
		"filter fails":   NewKeywordService(&stubDetector{phrases: []string{"x"}}, stubFilter{err: errors.New("quota")}, keywordCfg("ko")),
	} {
		got := svc.Extract(context.Background(), text, "")
		if len(got) == 0 || got[0] != "프로세스" {
			t.Errorf("%s: got %v", name, got)
		}
	}

	if got := NewKeywordService(nil, nil, keywordCfg("ko")).Extract(context.Background(), "   ", ""); len(got) != 0 {
		t.Errorf("blank text: %v", got)
	}
}

func TestTruncateBytesKeepsRunes(t *testing.T) {
	got := truncateBytes("가나다", 4)
	if got != "가" {
		t.Fatalf("got %q", got)
	}
}
