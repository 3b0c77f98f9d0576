package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/model"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.service = New()
}

func (s *ServiceSuite) writeFile(dir, name, content string) string {
	p := filepath.Join(dir, name)
	s.Require().NoError(os.WriteFile(p, []byte(content), 0o644))
	return p
}

func (s *ServiceSuite) TestIsNotLoadedByDefault() {
	s.False(s.service.IsLoaded())
	s.Equal(0, s.service.Count())
	s.Empty(s.service.Codes())
}

func (s *ServiceSuite) TestLoadRecordsSortsCodes() {
	err := s.service.LoadRecords([]model.FlagRecord{
		{Code: "japan"}, {Code: "brazil"}, {Code: "france"},
	})
	s.Require().NoError(err)

	s.True(s.service.IsLoaded())
	s.Equal([]model.FlagCode{"brazil", "france", "japan"}, s.service.Codes())
	s.Len(s.service.All(), 3)
	s.Equal(model.FlagCode("brazil"), s.service.All()[0].Code)
}

func (s *ServiceSuite) TestLoadRecordsRejectsDuplicates() {
	err := s.service.LoadRecords([]model.FlagRecord{{Code: "chad"}, {Code: "chad"}})
	s.Error(err)
	s.False(s.service.IsLoaded())
}

func (s *ServiceSuite) TestLoadRecordsRejectsEmptyCode() {
	s.Error(s.service.LoadRecords([]model.FlagRecord{{Code: ""}}))
}

func (s *ServiceSuite) TestLookup() {
	s.Require().NoError(s.service.LoadRecords([]model.FlagRecord{
		{Code: "peru", Hints: model.FlagHints{Capital: "Lima"}},
	}))

	r, err := s.service.Lookup("peru")
	s.Require().NoError(err)
	s.Equal("Lima", r.Hints.Capital)

	_, err = s.service.Lookup("atlantis")
	s.ErrorIs(err, model.ErrFlagNotFound)
}

func (s *ServiceSuite) TestCodesReturnsCopy() {
	s.Require().NoError(s.service.LoadRecords([]model.FlagRecord{{Code: "a"}, {Code: "b"}}))

	codes := s.service.Codes()
	codes[0] = "mutated"

	s.Equal(model.FlagCode("a"), s.service.Codes()[0])
}

func (s *ServiceSuite) TestLoadFileYAML() {
	dir := s.T().TempDir()
	p := s.writeFile(dir, "catalog.yaml", `
flags:
  - code: france
    image: /assets/flags/france.png
    hints:
      population: 68 million
      capital: Paris
      word_size: 6
      word_count: 1
      last_letter: e
  - code: japan
    image: /assets/flags/japan.png
`)

	s.Require().NoError(s.service.LoadFile(p))
	s.Equal(2, s.service.Count())

	r, err := s.service.Lookup("france")
	s.Require().NoError(err)
	s.Equal("/assets/flags/france.png", r.Image)
	s.Equal("Paris", r.Hints.Capital)
	s.Equal(6, r.Hints.WordSize)
	s.Require().NotNil(r.Hints.WordCount)
	s.Equal(1, *r.Hints.WordCount)

	r, err = s.service.Lookup("japan")
	s.Require().NoError(err)
	s.Nil(r.Hints.WordCount)
}

func (s *ServiceSuite) TestLoadFileJSON() {
	dir := s.T().TempDir()
	p := s.writeFile(dir, "catalog.json",
		`{"flags": [{"code": "kenya", "image": "/assets/flags/kenya.svg", "hints": {"capital": "Nairobi"}}]}`)

	s.Require().NoError(s.service.LoadFile(p))

	r, err := s.service.Lookup("kenya")
	s.Require().NoError(err)
	s.Equal("Nairobi", r.Hints.Capital)
}

func (s *ServiceSuite) TestLoadFileMissing() {
	s.Error(s.service.LoadFile(filepath.Join(s.T().TempDir(), "nope.yaml")))
}

func (s *ServiceSuite) TestLoadDir() {
	root := s.T().TempDir()
	flags := filepath.Join(root, "flags")
	s.Require().NoError(os.Mkdir(flags, 0o755))
	s.writeFile(flags, "afghanistan.png", "")
	s.writeFile(flags, "chile.svg", "")
	s.writeFile(flags, ".DS_Store", "")
	s.Require().NoError(os.Mkdir(filepath.Join(flags, "nested"), 0o755))

	hints := s.writeFile(root, "hints.json", `{"afghanistan": {"capital": "Kabul", "word_count": 0}}`)

	s.Require().NoError(s.service.LoadDir(flags, hints))
	s.Equal([]model.FlagCode{"afghanistan", "chile"}, s.service.Codes())

	r, err := s.service.Lookup("afghanistan")
	s.Require().NoError(err)
	s.Equal("/assets/flags/afghanistan.png", r.Image)
	s.Equal("Kabul", r.Hints.Capital)
	s.Require().NotNil(r.Hints.WordCount)
	s.Equal(0, *r.Hints.WordCount)

	r, err = s.service.Lookup("chile")
	s.Require().NoError(err)
	s.Equal(model.FlagHints{}, r.Hints)
}

func (s *ServiceSuite) TestLoadDirWithoutHints() {
	flags := s.T().TempDir()
	s.writeFile(flags, "togo.png", "")

	s.Require().NoError(s.service.LoadDir(flags, ""))
	s.Equal(1, s.service.Count())
}
