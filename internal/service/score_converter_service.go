package service

const (
	PointsPerCorrect = 5
	PassScore        = 60
)

// ScoreConverterService turns a count of correct items into exam points.
type ScoreConverterService interface {
	Points(correct bool) int
	Total(correctCount int) int
	Passed(score int) bool
}

type scoreConverterServiceImpl struct {
	perCorrect int
	passScore  int
}

func NewScoreConverterService() ScoreConverterService {
	return &scoreConverterServiceImpl{perCorrect: PointsPerCorrect, passScore: PassScore}
}

func (s *scoreConverterServiceImpl) Points(correct bool) int {
	if correct {
		return s.perCorrect
	}
	return 0
}

func (s *scoreConverterServiceImpl) Total(correctCount int) int {
	if correctCount < 0 {
		return 0
	}
	return correctCount * s.perCorrect
}

func (s *scoreConverterServiceImpl) Passed(score int) bool {
	return score >= s.passScore
}
