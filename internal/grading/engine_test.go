package grading

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubSemantic struct {
	verdict *SemanticVerdict
	err     error
	calls   int
}

func (s *stubSemantic) GradeAnswer(ctx context.Context, q Question, userAnswer string) (*SemanticVerdict, error) {
	s.calls++
	return s.verdict, s.err
}

func TestGradeExactMatchIgnoresCaseAndSpacing(t *testing.T) {
	e := NewEngine(nil, time.Second)
	cases := []struct{ user, answer string }{
		{"TCP/IP", "tcp/ip"},
		{"  Round   Robin ", "round robin"},
		{"세마포어", "세마포어"},
	}
	for _, tc := range cases {
		v := e.Grade(context.Background(), tc.user, Question{Text: "q", Answer: tc.answer}, Options{})
		if !v.IsCorrect || v.Score != 1 || v.Strategy != StrategyExact {
			t.Fatalf("Grade(%q, %q) = %+v, want exact correct", tc.user, tc.answer, v)
		}
		if v.Feedback != FeedbackCorrect {
			t.Fatalf("feedback = %q", v.Feedback)
		}
	}
}

func TestGradeEnumeratedOptions(t *testing.T) {
	e := NewEngine(nil, time.Second)
	example := "1. SMTP\n2. SNMP\n3. FTP\n4. ICMP"

	for _, user := range []string{"2", "snmp", "SNMP", " Snmp "} {
		v := e.Grade(context.Background(), user, Question{Text: "망 관리 프로토콜은?", Answer: "2", Example: example}, Options{})
		if !v.IsCorrect || v.Score != 1 {
			t.Fatalf("answer by number: Grade(%q) = %+v, want correct", user, v)
		}
		if v.Example != example {
			t.Fatalf("example not echoed: %q", v.Example)
		}
	}

	for _, user := range []string{"2", "snmp"} {
		v := e.Grade(context.Background(), user, Question{Text: "망 관리 프로토콜은?", Answer: "SNMP", Example: example}, Options{})
		if !v.IsCorrect {
			t.Fatalf("answer by text: Grade(%q) = %+v, want correct", user, v)
		}
	}

	v := e.Grade(context.Background(), "3", Question{Text: "q", Answer: "2", Example: example}, Options{})
	if v.IsCorrect {
		t.Fatalf("wrong option graded correct: %+v", v)
	}
}

func TestGradeAbbreviationVeto(t *testing.T) {
	sem := &stubSemantic{verdict: &SemanticVerdict{Score: 100, IsCorrect: true}}
	e := NewEngine(sem, time.Second)
	q := Question{Text: "신뢰성 있는 전송 계층 프로토콜을 영문 약어로 쓰시오.", Answer: "TCP"}

	v := e.Grade(context.Background(), "전송제어프로토콜", q, Options{Semantic: true})
	if v.IsCorrect || v.Score != AbbreviationVetoScore {
		t.Fatalf("Grade = %+v, want veto with score 0.1", v)
	}
	if v.Feedback != FeedbackAbbreviation || len(v.MissingPoints) != 1 || v.MissingPoints[0] != MissingAbbreviation {
		t.Fatalf("unexpected veto detail: %+v", v)
	}
	if sem.calls != 0 {
		t.Fatalf("semantic grader called %d times after veto", sem.calls)
	}

	q.Text = "영문약어로 쓰시오."
	if v := e.Grade(context.Background(), "tcp", q, Options{}); !v.IsCorrect {
		t.Fatalf("lowercase abbreviation should still match exactly: %+v", v)
	}
}

func TestGradeOrderedList(t *testing.T) {
	e := NewEngine(nil, time.Second)
	q := Question{Text: "순서대로 나열하시오.", Answer: "A, B, C"}

	cases := []struct {
		user string
		want bool
	}{
		{"A,B,C", true},
		{"a ， b ， c", true},
		{"B, A, C", false},
		{"A, B", false},
		{"A, B, C, D", false},
		{"A B C", true},
		{"C B A", false},
		{"B A C", false},
		{"A B", false},
	}
	for _, tc := range cases {
		v := e.Grade(context.Background(), tc.user, q, Options{})
		if v.IsCorrect != tc.want {
			t.Fatalf("Grade(%q) correct = %v, want %v (%+v)", tc.user, v.IsCorrect, tc.want, v)
		}
		if !tc.want && v.Strategy != StrategyList {
			t.Fatalf("Grade(%q) strategy = %s, want list", tc.user, v.Strategy)
		}
	}
}

func TestGradeListWithoutCommasIsPositional(t *testing.T) {
	e := NewEngine(nil, time.Second)
	q := Question{Text: "보기의 단계를 순서대로 쓰시오.", Answer: "ㄱ, ㄴ, ㄷ"}

	v := e.Grade(context.Background(), "ㄷ ㄴ ㄱ", q, Options{})
	if v.IsCorrect || v.Strategy != StrategyList {
		t.Fatalf("reversed reply graded %+v", v)
	}
	if v := e.Grade(context.Background(), "ㄱ ㄴ ㄷ", q, Options{}); !v.IsCorrect {
		t.Fatalf("ordered reply graded %+v", v)
	}
}

func TestGradeSemanticVerdictIsScaled(t *testing.T) {
	sem := &stubSemantic{verdict: &SemanticVerdict{
		Score:           85,
		MissingPoints:   []string{"문맥 교환"},
		IncorrectPoints: nil,
		Feedback:        "핵심 개념을 이해하고 있습니다.",
	}}
	e := NewEngine(sem, time.Second)
	q := Question{Text: "운영체제의 역할을 설명하시오.", Answer: "자원 관리와 사용자 인터페이스 제공"}

	v := e.Grade(context.Background(), "컴퓨터 자원을 관리하고 사용자와 하드웨어를 연결한다", q, Options{Semantic: true})
	if v.Strategy != StrategySemantic || !v.IsCorrect || v.Score != 0.85 {
		t.Fatalf("Grade = %+v, want semantic correct 0.85", v)
	}
	if v.IncorrectPoints == nil || len(v.MissingPoints) != 1 {
		t.Fatalf("points not carried: %+v", v)
	}

	sem.verdict = &SemanticVerdict{Score: 65, IsCorrect: true}
	v = e.Grade(context.Background(), "잘 모르겠다", q, Options{Semantic: true})
	if v.IsCorrect {
		t.Fatalf("score 65 must not pass: %+v", v)
	}
	if v.Feedback != FeedbackPartial {
		t.Fatalf("empty remote feedback should use tier text, got %q", v.Feedback)
	}
}

func TestGradeSemanticFailureFallsBackToLexical(t *testing.T) {
	sem := &stubSemantic{err: errors.New("deadline exceeded")}
	e := NewEngine(sem, time.Second)
	q := Question{Text: "q", Answer: "교착 상태 예방 회피 탐지 회복"}

	v := e.Grade(context.Background(), "교착 상태 예방 회피 탐지 회복 기법", q, Options{Semantic: true})
	if v.Strategy != StrategyLexical {
		t.Fatalf("strategy = %s, want lexical", v.Strategy)
	}
	if !v.IsCorrect {
		t.Fatalf("near-identical answer should pass lexically: %+v", v)
	}
	if sem.calls != 1 {
		t.Fatalf("semantic calls = %d, want 1", sem.calls)
	}
}

func TestGradeSemanticDisabledByCaller(t *testing.T) {
	sem := &stubSemantic{verdict: &SemanticVerdict{Score: 100}}
	e := NewEngine(sem, time.Second)
	v := e.Grade(context.Background(), "전혀 다른 답", Question{Text: "q", Answer: "페이지 교체 알고리즘"}, Options{Semantic: false})
	if sem.calls != 0 || v.Strategy != StrategyLexical || v.IsCorrect {
		t.Fatalf("Grade = %+v calls=%d", v, sem.calls)
	}
	if v.Feedback != FeedbackIncorrect {
		t.Fatalf("feedback = %q", v.Feedback)
	}
}

func TestGradeMissingInput(t *testing.T) {
	e := NewEngine(nil, time.Second)
	for _, tc := range []struct{ user, answer string }{{"", "TCP"}, {"   ", "TCP"}, {"TCP", ""}} {
		v := e.Grade(context.Background(), tc.user, Question{Answer: tc.answer}, Options{})
		if v.IsCorrect || v.Score != 0 || v.Feedback != FeedbackMissingInput {
			t.Fatalf("Grade(%q, %q) = %+v", tc.user, tc.answer, v)
		}
	}
}
