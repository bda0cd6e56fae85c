package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jumptop/ITOP/config"
	"github.com/jumptop/ITOP/internal/apperr"
	"github.com/jumptop/ITOP/internal/dto"
	"github.com/jumptop/ITOP/internal/model"
	"github.com/jumptop/ITOP/internal/repository"
	"github.com/rs/zerolog/log"
)

const (
	MsgStudyCompleted     = "오늘의 학습이 완료되었습니다."
	MsgStudyAlreadyMarked = "이미 오늘의 학습을 완료했습니다."
	MsgExamToday          = "시험일입니다!"
	MsgExamNotScheduled   = "시험 일정이 설정되지 않았습니다."
	dateLayout            = "2006-01-02"
)

// UserService owns the local profile of identity-provider users. Every method takes
// the token subject.
type UserService interface {
	ResolveUserID(ctx context.Context, subject string) (string, error)
	Me(ctx context.Context, subject string) (*dto.UserResponseDTO, error)
	MarkWorkStatus(ctx context.Context, subject string) (*dto.WorkStatusResponseDTO, error)
	SetTestDate(ctx context.Context, subject, date string) (*dto.DDayResponseDTO, error)
	DDay(ctx context.Context, subject string) (*dto.DDayResponseDTO, error)
}

type userService struct {
	repo repository.UserRepository
	loc  *time.Location
	now  func() time.Time
}

func NewUserService(repo repository.UserRepository, cfg *config.Config) UserService {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &userService{repo: repo, loc: loc, now: time.Now}
}

func (s *userService) find(ctx context.Context, subject string) (*model.User, error) {
	user, err := s.repo.FindByExternalID(ctx, subject)
	if err != nil {
		return nil, notFoundOr(err, "사용자를 찾을 수 없습니다.", "사용자 정보를 불러오지 못했습니다.")
	}
	return user, nil
}

func (s *userService) ResolveUserID(ctx context.Context, subject string) (string, error) {
	user, err := s.find(ctx, subject)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// dayStart is local midnight of now in the configured timezone.
func (s *userService) dayStart(now time.Time) time.Time {
	local := now.In(s.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
}

func (s *userService) Me(ctx context.Context, subject string) (*dto.UserResponseDTO, error) {
	user, err := s.find(ctx, subject)
	if err != nil {
		return nil, err
	}
	return &dto.UserResponseDTO{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		HasStudiedToday: studiedSince(user, s.dayStart(s.now())),
		LastStudyAt:     user.LastStudyAt,
		ExamDate:        formatDate(user.ExamDate),
		CreatedAt:       user.CreatedAt,
	}, nil
}

// studiedSince treats a flag set before dayStart as stale.
func studiedSince(user *model.User, dayStart time.Time) bool {
	return user.HasStudiedToday && user.LastStudyAt != nil && !user.LastStudyAt.Before(dayStart)
}

func (s *userService) MarkWorkStatus(ctx context.Context, subject string) (*dto.WorkStatusResponseDTO, error) {
	user, err := s.find(ctx, subject)
	if err != nil {
		return nil, err
	}
	now := s.now()
	marked, err := s.repo.MarkStudied(ctx, user.ID, now.UTC(), s.dayStart(now).UTC())
	if err != nil {
		log.Error().Err(err).Str("userID", user.ID).Msg("MarkWorkStatus: failed to update study flag")
		return nil, apperr.Persistence("학습 상태 저장에 실패했습니다.", err)
	}
	if !marked {
		return &dto.WorkStatusResponseDTO{HasStudiedToday: true, Message: MsgStudyAlreadyMarked}, nil
	}
	return &dto.WorkStatusResponseDTO{HasStudiedToday: true, Message: MsgStudyCompleted}, nil
}

func (s *userService) SetTestDate(ctx context.Context, subject, date string) (*dto.DDayResponseDTO, error) {
	parsed, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, apperr.Validation("날짜 형식은 YYYY-MM-DD 이어야 합니다.")
	}
	user, err := s.find(ctx, subject)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetExamDate(ctx, user.ID, parsed); err != nil {
		return nil, notFoundOr(err, "사용자를 찾을 수 없습니다.", "시험일 저장에 실패했습니다.")
	}
	user.ExamDate = &parsed
	return s.dday(user), nil
}

func (s *userService) DDay(ctx context.Context, subject string) (*dto.DDayResponseDTO, error) {
	user, err := s.find(ctx, subject)
	if err != nil {
		return nil, err
	}
	return s.dday(user), nil
}

func (s *userService) dday(user *model.User) *dto.DDayResponseDTO {
	if user.ExamDate == nil {
		return &dto.DDayResponseDTO{Message: MsgExamNotScheduled}
	}
	exam := user.ExamDate.UTC()
	examDay := time.Date(exam.Year(), exam.Month(), exam.Day(), 0, 0, 0, 0, time.UTC)
	today := s.now().In(s.loc)
	todayDay := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	days := int(examDay.Sub(todayDay).Hours() / 24)

	resp := &dto.DDayResponseDTO{ExamDate: formatDate(user.ExamDate), Days: &days}
	switch {
	case days > 0:
		resp.Message = fmt.Sprintf("시험까지 D-%d일 남았습니다.", days)
	case days == 0:
		resp.Message = MsgExamToday
	default:
		resp.Message = fmt.Sprintf("시험일로부터 %d일이 지났습니다.", -days)
	}
	return resp
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(dateLayout)
	return &s
}
