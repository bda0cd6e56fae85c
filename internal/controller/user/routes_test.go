package user

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jumptop/ITOP/config"
	"github.com/jumptop/ITOP/internal/auth"
	"github.com/jumptop/ITOP/internal/controller"
	"github.com/jumptop/ITOP/internal/dbtest"
	"github.com/jumptop/ITOP/internal/dto"
	"github.com/jumptop/ITOP/internal/grading"
	"github.com/jumptop/ITOP/internal/model"
	"github.com/jumptop/ITOP/internal/repository"
	"github.com/jumptop/ITOP/internal/service"
	"gorm.io/gorm"
)

type tokens map[string]*auth.Claims

func (t tokens) Verify(ctx context.Context, token string) (*auth.Claims, error) {
	if c, ok := t[token]; ok {
		return c, nil
	}
	return nil, auth.ErrInvalidToken
}

type noRevocations struct{}

func (noRevocations) Revoke(context.Context, string, time.Duration) error { return nil }
func (noRevocations) IsRevoked(context.Context, string) (bool, error)      { return false, nil }

type harness struct {
	router *gin.Engine
	db     *gorm.DB
	alice  *model.User
	bob    *model.User
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if err := controller.RegisterValidators(); err != nil {
		t.Fatal(err)
	}

	db := dbtest.New(t)
	cfg := &config.Config{
		Location:  time.UTC,
		RemoteTTL: time.Second,
		Grading:   config.Grading{SubmitConcurrency: 2},
		Assembly:  config.Assembly{KeywordSearchMultiplier: 2},
	}
	questionRepo := repository.NewQuestionRepository(db)
	userRepo := repository.NewUserRepository(db)
	attemptRepo := repository.NewTestAttemptRepository(db)
	wrongAnswers := service.NewWrongAnswerService(repository.NewWrongAnswerRepository(db), questionRepo)
	engine := grading.NewEngine(nil, time.Second)
	rnd := service.FixedRandSource(11)

	users := service.NewUserService(userRepo, cfg)
	questions := service.NewQuestionService(questionRepo, service.NewKeywordService(nil, nil, cfg), rnd)
	evaluation := service.NewEvaluationService(questionRepo, engine, wrongAnswers, cfg)
	assembly := service.NewTestAssemblyService(questionRepo, userRepo, wrongAnswers, rnd, cfg)
	submission := service.NewTestSubmissionService(questionRepo, userRepo, attemptRepo, wrongAnswers, engine, service.NewScoreConverterService(), cfg)

	h := &harness{db: db}
	for _, u := range []struct {
		name string
		dst  **model.User
	}{{"alice", &h.alice}, {"bob", &h.bob}} {
		sub := "sub-" + u.name
		user := &model.User{Username: u.name, Email: u.name + "@example.com", ExternalID: &sub}
		if err := userRepo.Create(context.Background(), user); err != nil {
			t.Fatal(err)
		}
		*u.dst = user
	}

	mw := auth.NewMiddleware(tokens{
		"alice-token": {Subject: "sub-alice", TokenUse: "access"},
		"bob-token":   {Subject: "sub-bob", TokenUse: "access"},
		"admin-token": {Subject: "sub-admin", Groups: []string{auth.AdminGroup}},
	}, noRevocations{})

	r := gin.New()
	api := r.Group("/api", mw.OptionalAuth())
	NewQuestionController(questions, evaluation, users).RegisterRoutes(api)
	NewUserTestController(assembly, submission, wrongAnswers, users).RegisterRoutes(api)
	NewProfileController(users).RegisterRoutes(r.Group("/users", mw.RequireAuth()))
	h.router = r
	return h
}

func (h *harness) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func TestQuestionRoutes(t *testing.T) {
	h := newHarness(t)
	dbtest.SeedQuestions(t, h.db, model.CategoryOS, 3, "스케줄링")

	w := h.do(t, http.MethodGet, "/api/categories", "", nil)
	if w.Code != http.StatusOK || len(decode[dto.CategoriesResponseDTO](t, w).Categories) != 9 {
		t.Fatalf("categories: %d %s", w.Code, w.Body.String())
	}

	w = h.do(t, http.MethodGet, "/api/questions?category=os&limit=2", "", nil)
	if w.Code != http.StatusOK || len(decode[[]dto.QuestionResponseDTO](t, w)) != 2 {
		t.Fatalf("list: %d %s", w.Code, w.Body.String())
	}

	if w = h.do(t, http.MethodGet, "/api/questions?category=chemistry", "", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad category: %d", w.Code)
	}
	if w = h.do(t, http.MethodGet, "/api/questions?limit=500", "", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("limit over max: %d", w.Code)
	}

	w = h.do(t, http.MethodGet, "/api/questions/os-404", "", nil)
	if w.Code != http.StatusNotFound || decode[dto.ErrorResponse](t, w).Message == "" {
		t.Fatalf("missing question: %d %s", w.Code, w.Body.String())
	}

	if w = h.do(t, http.MethodGet, "/api/random?category=os", "", nil); w.Code != http.StatusOK {
		t.Fatalf("random: %d", w.Code)
	}
}

func TestEvaluateWithTokenRecordsMiss(t *testing.T) {
	h := newHarness(t)
	dbtest.SeedQuestions(t, h.db, model.CategoryOS, 1, "")

	w := h.do(t, http.MethodPost, "/api/evaluate", "alice-token", dto.EvaluateRequestDTO{QuestionID: "os-1", Answer: "완전히 틀린 답"})
	if w.Code != http.StatusOK {
		t.Fatalf("evaluate: %d %s", w.Code, w.Body.String())
	}
	if decode[dto.EvaluateResponseDTO](t, w).IsCorrect {
		t.Fatal("graded correct")
	}

	w = h.do(t, http.MethodGet, "/api/users/"+h.alice.ID+"/wrong-answers", "alice-token", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("wrong answers: %d", w.Code)
	}
	rows := decode[[]dto.WrongAnswerResponseDTO](t, w)
	if len(rows) != 1 || rows[0].QuestionID != "os-1" {
		t.Fatalf("rows = %+v", rows)
	}

	if w = h.do(t, http.MethodPost, "/api/evaluate", "bad-token", dto.EvaluateRequestDTO{QuestionID: "os-1", Answer: "x"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("invalid token: %d", w.Code)
	}
}

func TestUserScopedRoutesRejectOtherUsers(t *testing.T) {
	h := newHarness(t)

	paths := []string{
		"/api/users/" + h.alice.ID + "/wrong-answers",
		"/api/users/" + h.alice.ID + "/test-attempts",
		"/api/users/" + h.alice.ID + "/personalized-test",
	}
	for _, p := range paths {
		if w := h.do(t, http.MethodGet, p, "bob-token", nil); w.Code != http.StatusForbidden {
			t.Errorf("bob on %s: %d", p, w.Code)
		}
		if w := h.do(t, http.MethodGet, p, "admin-token", nil); w.Code != http.StatusOK {
			t.Errorf("admin on %s: %d %s", p, w.Code, w.Body.String())
		}
	}

	body := dto.SubmitTestRequestDTO{UserID: &h.alice.ID, Answers: []dto.SubmitAnswerDTO{{QuestionID: "os-1", Answer: "x"}}}
	if w := h.do(t, http.MethodPost, "/api/submit-test", "bob-token", body); w.Code != http.StatusForbidden {
		t.Errorf("bob submitting for alice: %d", w.Code)
	}
}

func TestTestRoutes(t *testing.T) {
	h := newHarness(t)
	for _, cat := range model.Categories {
		dbtest.SeedQuestions(t, h.db, cat, 6, "")
	}

	w := h.do(t, http.MethodGet, "/api/standard-test", "", nil)
	if w.Code != http.StatusOK || decode[dto.TestResponseDTO](t, w).TotalQuestions != 20 {
		t.Fatalf("standard: %d %s", w.Code, w.Body.String())
	}

	w = h.do(t, http.MethodPost, "/api/custom-test", "", nil)
	if w.Code != http.StatusOK || decode[dto.TestResponseDTO](t, w).TotalQuestions != 20 {
		t.Fatalf("custom without body: %d %s", w.Code, w.Body.String())
	}
	two := 2
	zero := 0
	w = h.do(t, http.MethodPost, "/api/custom-test", "", dto.CustomTestRequestDTO{OSCount: &two, NetworkCount: &zero, DBCount: &zero, SQLCount: &zero, ProgramCount: &zero, AppCount: &zero})
	if w.Code != http.StatusOK || decode[dto.TestResponseDTO](t, w).TotalQuestions != 2 {
		t.Fatalf("custom: %d %s", w.Code, w.Body.String())
	}

	w = h.do(t, http.MethodGet, "/api/users/"+h.alice.ID+"/personalized-test?total_questions=10", "alice-token", nil)
	if w.Code != http.StatusOK || decode[dto.TestResponseDTO](t, w).TotalQuestions != 10 {
		t.Fatalf("personalized: %d %s", w.Code, w.Body.String())
	}
	if w = h.do(t, http.MethodGet, "/api/users/"+h.alice.ID+"/personalized-test?total_questions=3", "alice-token", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("total below minimum: %d", w.Code)
	}

	if w = h.do(t, http.MethodPost, "/api/submit-test", "", dto.SubmitTestRequestDTO{}); w.Code != http.StatusBadRequest {
		t.Fatalf("empty submission: %d", w.Code)
	}
	w = h.do(t, http.MethodPost, "/api/submit-test", "alice-token", dto.SubmitTestRequestDTO{
		UserID:  &h.alice.ID,
		Answers: []dto.SubmitAnswerDTO{{QuestionID: "os-1", Answer: "answer 1"}, {QuestionID: "db-2", Answer: "?"}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("submit: %d %s", w.Code, w.Body.String())
	}
	result := decode[dto.SubmitTestResponseDTO](t, w)
	if result.CorrectCount != 1 || result.Score != 5 || result.AttemptID == nil {
		t.Fatalf("result = %+v", result)
	}

	attemptPath := "/api/test-attempts/" + jsonNumber(*result.AttemptID)
	if w = h.do(t, http.MethodGet, attemptPath, "alice-token", nil); w.Code != http.StatusOK {
		t.Fatalf("attempt detail: %d", w.Code)
	}
	if w = h.do(t, http.MethodGet, attemptPath, "bob-token", nil); w.Code != http.StatusForbidden {
		t.Fatalf("bob reading alice's attempt: %d", w.Code)
	}
	if w = h.do(t, http.MethodGet, "/api/test-attempts/abc", "", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad attempt id: %d", w.Code)
	}
}

func jsonNumber(n uint) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestProfileRoutes(t *testing.T) {
	h := newHarness(t)

	if w := h.do(t, http.MethodPost, "/users/work-status", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: %d", w.Code)
	}
	w := h.do(t, http.MethodPost, "/users/work-status", "alice-token", nil)
	if w.Code != http.StatusOK || decode[dto.WorkStatusResponseDTO](t, w).Message != service.MsgStudyCompleted {
		t.Fatalf("work-status: %d %s", w.Code, w.Body.String())
	}

	if w = h.do(t, http.MethodPost, "/users/test-date", "alice-token", map[string]string{"test_date": "next week"}); w.Code != http.StatusBadRequest {
		t.Fatalf("bad date: %d", w.Code)
	}
	if w = h.do(t, http.MethodPost, "/users/test-date", "alice-token", dto.TestDateRequestDTO{TestDate: "2030-01-01"}); w.Code != http.StatusOK {
		t.Fatalf("test-date: %d %s", w.Code, w.Body.String())
	}

	w = h.do(t, http.MethodGet, "/users/me", "alice-token", nil)
	me := decode[dto.UserResponseDTO](t, w)
	if w.Code != http.StatusOK || me.Username != "alice" || me.ExamDate == nil || *me.ExamDate != "2030-01-01" {
		t.Fatalf("me: %d %+v", w.Code, me)
	}

	if w = h.do(t, http.MethodGet, "/users/me", "admin-token", nil); w.Code != http.StatusNotFound {
		t.Fatalf("token without local profile: %d", w.Code)
	}
}
