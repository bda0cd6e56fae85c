package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/comprehend/types"
	"github.com/jumptop/ITOP/config"
	"github.com/jumptop/ITOP/internal/keyword"
	"github.com/rs/zerolog/log"
)

// maxPhraseBytes is the request size limit of the key-phrase service.
const maxPhraseBytes = 5000

// KeyPhraseDetector is the remote key-phrase capability.
type KeyPhraseDetector interface {
	DetectLanguage(ctx context.Context, text string) (string, error)
	DetectKeyPhrases(ctx context.Context, text, language string) ([]string, error)
}

// KeywordFilter narrows raw key phrases to the ones relevant to text.
type KeywordFilter interface {
	FilterKeywords(ctx context.Context, text string, candidates []string) ([]string, error)
}

// KeywordService never fails: remote problems fall back to the local extractor.
type KeywordService interface {
	Extract(ctx context.Context, text, languageHint string) []string
}

type keywordService struct {
	detector    KeyPhraseDetector
	filter      KeywordFilter
	defaultLang string
	timeout     time.Duration
}

func NewKeywordService(detector KeyPhraseDetector, filter KeywordFilter, cfg *config.Config) KeywordService {
	return &keywordService{
		detector:    detector,
		filter:      filter,
		defaultLang: cfg.Keywords.Language,
		timeout:     cfg.RemoteTTL,
	}
}

func (s *keywordService) Extract(ctx context.Context, text, languageHint string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return []string{}
	}
	if s.detector != nil {
		kws, err := s.remote(ctx, text, languageHint)
		if err == nil && len(kws) > 0 {
			return kws
		}
		log.Warn().Err(err).Msg("Remote keyword extraction unavailable, using local extractor")
	}
	return keyword.Extract(text, keyword.DefaultLimit)
}

func (s *keywordService) remote(ctx context.Context, text, hint string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text = truncateBytes(text, maxPhraseBytes)
	lang := hint
	if lang == "" {
		lang = s.defaultLang
	}
	if lang == "" {
		detected, err := s.detector.DetectLanguage(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("detect language: %w", err)
		}
		lang = detected
	}

	phrases, err := s.detector.DetectKeyPhrases(ctx, text, lang)
	if err != nil {
		return nil, fmt.Errorf("detect key phrases: %w", err)
	}
	phrases = dedupe(phrases)
	if len(phrases) == 0 {
		return nil, errors.New("no key phrases detected")
	}

	if s.filter != nil {
		filtered, err := s.filter.FilterKeywords(ctx, text, phrases)
		if err != nil {
			return nil, fmt.Errorf("filter keywords: %w", err)
		}
		if f := dedupe(filtered); len(f) > 0 {
			phrases = f
		}
	}
	if len(phrases) > keyword.DefaultLimit {
		phrases = phrases[:keyword.DefaultLimit]
	}
	return phrases, nil
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

type comprehendDetector struct {
	client *comprehend.Client
}

func NewComprehendDetector(awsCfg aws.Config) KeyPhraseDetector {
	return &comprehendDetector{client: comprehend.NewFromConfig(awsCfg)}
}

func (d *comprehendDetector) DetectLanguage(ctx context.Context, text string) (string, error) {
	out, err := d.client.DetectDominantLanguage(ctx, &comprehend.DetectDominantLanguageInput{
		Text: aws.String(text),
	})
	if err != nil {
		return "", err
	}
	best, bestScore := "", float32(-1)
	for _, l := range out.Languages {
		if l.LanguageCode == nil || l.Score == nil {
			continue
		}
		if *l.Score > bestScore {
			best, bestScore = *l.LanguageCode, *l.Score
		}
	}
	if best == "" {
		return "", errors.New("no dominant language")
	}
	return best, nil
}

func (d *comprehendDetector) DetectKeyPhrases(ctx context.Context, text, language string) ([]string, error) {
	out, err := d.client.DetectKeyPhrases(ctx, &comprehend.DetectKeyPhrasesInput{
		Text:         aws.String(text),
		LanguageCode: types.LanguageCode(language),
	})
	if err != nil {
		return nil, err
	}
	phrases := make([]string, 0, len(out.KeyPhrases))
	for _, p := range out.KeyPhrases {
		if p.Text != nil {
			phrases = append(phrases, *p.Text)
		}
	}
	return phrases, nil
}
