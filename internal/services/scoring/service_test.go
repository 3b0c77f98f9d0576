package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.service = New(DefaultConfig())
}

func (s *ServiceSuite) TestFullTimeNoHints() {
	s.Equal(1500, s.service.Points(0, 25))
}

func (s *ServiceSuite) TestOneHintHalfTime() {
	// (1500 - 150) * 12.5 / 25
	s.Equal(675, s.service.Points(1, 12.5))
}

func (s *ServiceSuite) TestThreeHintsFullTime() {
	s.Equal(300, s.service.Points(3, 25))
}

func (s *ServiceSuite) TestTwoHints() {
	s.Equal(1050, s.service.Points(2, 25))
}

func (s *ServiceSuite) TestZeroTimeLeftScoresNothing() {
	s.Equal(0, s.service.Points(0, 0))
}

func (s *ServiceSuite) TestResultIsFloored() {
	// 1500 * 1 / 25 = 60; 1500 * 0.9 / 25 = 54
	s.Equal(60, s.service.Points(0, 1))
	s.Equal(54, s.service.Points(0, 0.9))
	// 1350 * 7 / 25 = 378
	s.Equal(378, s.service.Points(1, 7))
}

func (s *ServiceSuite) TestTimeLeftIsClamped() {
	s.Equal(1500, s.service.Points(0, 99))
	s.Equal(0, s.service.Points(0, -5))
	s.Equal(0, s.service.Points(0, math.NaN()))
}

func (s *ServiceSuite) TestHintsUsedIsClamped() {
	s.Equal(s.service.Points(3, 25), s.service.Points(10, 25))
	s.Equal(s.service.Points(0, 25), s.service.Points(-2, 25))
}

func (s *ServiceSuite) TestPenalty() {
	s.Equal(0, s.service.Penalty(0))
	s.Equal(150, s.service.Penalty(1))
	s.Equal(450, s.service.Penalty(2))
	s.Equal(1200, s.service.Penalty(3))
}

func (s *ServiceSuite) TestBaseNeverNegative() {
	service := New(Config{Penalties: []int{1000, 1000}, BasePoints: 1500, RoundDuration: 10})
	s.Equal(0, service.Points(2, 10))
}

func (s *ServiceSuite) TestInvalidRoundDurationFallsBackToDefault() {
	service := New(Config{BasePoints: 100})
	s.Equal(25, service.RoundDuration())
	s.Equal(100, service.Points(0, 25))
}
