package factory

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/dependencies/mocks"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/model"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/services/catalog"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/services/duel"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/storage/memory"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *clockwork.FakeClock
	MockRandom *mocks.MockRandom
	Memory     *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// The hub is already running.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, catalog.New(), mockClock, mockRandom, Config{
		DuelConfig: duel.DefaultConfig(),
	}, testutil.NopLogger())
	app.Start()

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Memory:     store,
	}
}

// LoadTestCatalog loads a small catalog where every flag has all five hints
func (t *TestApp) LoadTestCatalog() error {
	codes := []string{"chile", "egypt", "fiji", "ghana", "india", "japan", "kenya", "laos"}
	records := make([]model.FlagRecord, 0, len(codes))
	for _, code := range codes {
		words := 1
		records = append(records, model.FlagRecord{
			Code:  model.FlagCode(code),
			Image: catalog.ImagePrefix + code + ".png",
			Hints: model.FlagHints{
				Population: "10 million",
				Capital:    "Capital of " + code,
				WordSize:   len(code),
				WordCount:  &words,
				LastLetter: code[len(code)-1:],
			},
		})
	}
	return t.Catalog.LoadRecords(records)
}
