package engine_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-garden/internal/config"
	"github.com/tartampluch/go-garden/internal/engine"
	"github.com/tartampluch/go-garden/internal/health"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockFetcher simulates the network layer for unit tests using `testify/mock`.
type MockFetcher struct {
	mock.Mock
}

// Fetch implements the engine.ContactFetcher interface.
func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if r := args.Get(0); r != nil {
		return r.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

var syncNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func webGenerator(t *testing.T, content string) (*engine.Generator, *MockFetcher) {
	t.Helper()
	mockFetcher := new(MockFetcher)
	mockFetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(io.NopCloser(strings.NewReader(content)), nil)

	return &engine.Generator{
		Clock:   MockClock{CurrentTime: syncNow},
		Fetcher: mockFetcher,
	}, mockFetcher
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

// -----------------------------------------------------------------------------
// Test Cases
// -----------------------------------------------------------------------------

func TestRunSync_Local_VCard(t *testing.T) {
	vcardContent := `BEGIN:VCARD
VERSION:4.0
UID:ada
FN:Ada Lovelace
X-LAST-CONTACT:2024-06-10
X-TARGET-FREQUENCY-DAYS:30
X-IMPORTANCE:high
END:VCARD
BEGIN:VCARD
VERSION:4.0
UID:grace
FN:Grace Hopper
BDAY:--0616
END:VCARD`

	gen := &engine.Generator{Clock: MockClock{CurrentTime: syncNow}}
	cfg := engine.SyncConfig{
		Mode:      config.SourceModeLocal,
		LocalPath: writeTemp(t, "contacts.vcf", vcardContent),
	}

	icsData, report, err := gen.RunSync(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, syncNow, report.GeneratedAt)
	require.Len(t, report.Entries, 2)

	// Never contacted sorts first.
	grace := report.Entries[0]
	assert.Equal(t, "Grace Hopper", grace.Contact.Name)
	assert.Equal(t, health.StatusFading, grace.Frequency.Status)
	assert.Equal(t, health.StandingMilestone, grace.Standing.Standing)
	assert.Equal(t, health.MilestoneUpcoming, grace.Standing.Milestone)
	assert.Equal(t, 1, grace.Standing.DaysUntilBirthday)

	ada := report.Entries[1]
	assert.Equal(t, health.StatusBlooming, ada.Frequency.Status)
	assert.Equal(t, 5, ada.Frequency.DaysSince)
	assert.Equal(t, health.StandingNurtured, ada.Standing.Standing)

	assert.Equal(t, 2, report.Garden.Total)
	assert.Equal(t, 1, report.Garden.Milestones)

	icsStr := string(icsData)
	assert.Contains(t, icsStr, "BEGIN:VCALENDAR")
	assert.Contains(t, icsStr, "SUMMARY:Reach out to Ada Lovelace")
	assert.Contains(t, icsStr, "UID:ada-reach-out@gogarden")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20240710", "Ada is due 30 days after June 10")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20240615", "Grace was never contacted and is due today")
	assert.Contains(t, icsStr, "SUMMARY:Birthday: Grace Hopper")
	assert.Contains(t, icsStr, "DTSTART;VALUE=DATE:20240616")
	assert.Equal(t, 3, strings.Count(icsStr, "BEGIN:VEVENT"))
	assert.NotContains(t, icsStr, "BEGIN:VALARM")
}

func TestRunSync_Local_JSONDetectedFromExtension(t *testing.T) {
	rows := `[
		{"id": "a", "name": "Thirsty", "last_contact_date": "2024-05-16T10:00:00Z", "target_frequency_days": 30},
		{"id": "b", "name": "Neglected", "last_interaction_date": "2024-04-01", "importance": "high"}
	]`

	gen := &engine.Generator{Clock: MockClock{CurrentTime: syncNow}}
	_, report, err := gen.RunSync(context.Background(), engine.SyncConfig{
		Mode:      config.SourceModeLocal,
		LocalPath: writeTemp(t, "contacts.json", rows),
	})
	require.NoError(t, err)
	require.Len(t, report.Entries, 2)

	byID := map[string]health.Assessment{}
	for _, a := range report.Entries {
		byID[a.Contact.ID] = a
	}
	assert.Equal(t, health.StatusThirsty, byID["a"].Frequency.Status)
	assert.Equal(t, 30, byID["a"].Frequency.DaysSince)
	assert.Equal(t, health.StandingNeglected, byID["b"].Standing.Standing)
	assert.Equal(t, 75, byID["b"].Standing.DaysAgo)
	assert.Equal(t, 2, report.Garden.NeedsCare)
}

func TestRunSync_Web_YAMLFormatOverride(t *testing.T) {
	gen, mockFetcher := webGenerator(t, "- name: Yaml Friend\n  last_contact: 2024-06-14\n")

	_, report, err := gen.RunSync(context.Background(), engine.SyncConfig{
		Mode:   config.SourceModeWeb,
		Format: config.FormatYAML,
		WebURL: "https://example.com/export",
	})
	require.NoError(t, err)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, "Yaml Friend", report.Entries[0].Contact.Name)
	assert.Equal(t, 1, report.Entries[0].Frequency.DaysSince)
	mockFetcher.AssertExpectations(t)
}

func TestRunSync_Web_PassesCredentials(t *testing.T) {
	mockFetcher := new(MockFetcher)
	mockFetcher.On("Fetch", mock.Anything, "https://dav.example.com/book.vcf", "me", "secret").
		Return(io.NopCloser(strings.NewReader("")), nil)

	gen := &engine.Generator{Clock: MockClock{CurrentTime: syncNow}, Fetcher: mockFetcher}
	icsData, report, err := gen.RunSync(context.Background(), engine.SyncConfig{
		Mode:    config.SourceModeWeb,
		WebURL:  "https://dav.example.com/book.vcf",
		WebUser: "me",
		WebPass: "secret",
	})

	require.NoError(t, err)
	assert.Equal(t, config.StubVCalendar, string(icsData), "Empty source yields the stub calendar")
	assert.Empty(t, report.Entries)
	assert.Equal(t, 0, report.Garden.Total)
	mockFetcher.AssertExpectations(t)
}

func TestRunSync_Web_NetworkError(t *testing.T) {
	mockFetcher := new(MockFetcher)
	expectedErr := errors.New("network unreachable")
	mockFetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, expectedErr)

	gen := &engine.Generator{
		Clock:   MockClock{CurrentTime: syncNow},
		Fetcher: mockFetcher,
	}

	icsData, report, err := gen.RunSync(context.Background(), engine.SyncConfig{
		Mode:   config.SourceModeWeb,
		WebURL: "http://bad-url.com",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Contains(t, err.Error(), config.ErrSourceRead)
	assert.Nil(t, icsData)
	assert.Empty(t, report.Entries)
}

func TestRunSync_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name    string
		gen     *engine.Generator
		cfg     engine.SyncConfig
		wantErr string
	}{
		{"Empty local path", &engine.Generator{}, engine.SyncConfig{Mode: config.SourceModeLocal}, config.ErrLocalPathEmpty},
		{"Empty web URL", &engine.Generator{}, engine.SyncConfig{Mode: config.SourceModeWeb}, config.ErrWebURLEmpty},
		{"Missing fetcher", &engine.Generator{}, engine.SyncConfig{Mode: config.SourceModeWeb, WebURL: "http://x"}, config.ErrFetcherMissing},
		{"Unknown mode", &engine.Generator{}, engine.SyncConfig{Mode: "ftp"}, config.ErrModeUnsupport},
		{"Missing file", &engine.Generator{}, engine.SyncConfig{Mode: config.SourceModeLocal, LocalPath: filepath.Join(os.TempDir(), "go-garden-missing.vcf")}, config.ErrSourceRead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.gen.RunSync(context.Background(), tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRunSync_WithReminders(t *testing.T) {
	gen, _ := webGenerator(t, "BEGIN:VCARD\nVERSION:3.0\nFN:Alarm Test\nBDAY:1990-06-20\nEND:VCARD")

	icsData, _, err := gen.RunSync(context.Background(), engine.SyncConfig{
		Mode:            config.SourceModeWeb,
		WebURL:          "http://test.local",
		ReminderTrigger: "-PT30M",
	})
	require.NoError(t, err)

	icsStr := string(icsData)
	assert.Equal(t, 2, strings.Count(icsStr, "BEGIN:VALARM"), "Reach-out and birthday events both carry the alarm")
	assert.Contains(t, icsStr, "TRIGGER:-PT30M")
	assert.Contains(t, icsStr, "ACTION:DISPLAY")
}

func TestRunSync_LocalizedLabels(t *testing.T) {
	gen, _ := webGenerator(t, `[{"name": "Drifter", "last_contact_date": "2024-05-01", "importance": "medium"}]`)
	gen.FormatLabel = func(messageID string, data map[string]interface{}, count interface{}) string {
		if data == nil {
			return "[" + messageID + "]"
		}
		return fmt.Sprintf("[%s:%v:%v]", messageID, data[config.TemplateKeyDays], count)
	}
	gen.FormatSummary = func(messageID, name string) string {
		return messageID + " " + name
	}

	icsData, report, err := gen.RunSync(context.Background(), engine.SyncConfig{
		Mode:   config.SourceModeWeb,
		Format: config.FormatJSON,
		WebURL: "http://test.local/rows",
	})
	require.NoError(t, err)
	require.Len(t, report.Entries, 1)

	entry := report.Entries[0]
	assert.Equal(t, "["+config.TKeyStatusThirsty+"]", entry.Frequency.Label)
	assert.Equal(t, "["+config.TKeyStandingDrifting+":45:45]", entry.Standing.Label)
	assert.Contains(t, string(icsData), "SUMMARY:"+config.TKeyEvtReachOut+" Drifter")
}

func TestRunSync_CustomPolicy(t *testing.T) {
	gen, _ := webGenerator(t, `[{"name": "Weekly", "last_contact_date": "2024-06-03"}]`)
	gen.Policy = health.Policy{DefaultFrequencyDays: 7}

	_, report, err := gen.RunSync(context.Background(), engine.SyncConfig{
		Mode:   config.SourceModeWeb,
		Format: config.FormatJSON,
		WebURL: "http://test.local",
	})
	require.NoError(t, err)
	require.Len(t, report.Entries, 1)
	// 12 days at a 7 day cadence is past 150%.
	assert.Equal(t, health.StatusFading, report.Entries[0].Frequency.Status)
}

func TestRunSync_VCardDateFormats(t *testing.T) {
	tests := []struct {
		name      string
		bdayValue string
		expectEvt bool
	}{
		{"ISO8601 Standard", "1990-10-25", true},
		{"Basic Format", "19901025", true},
		{"RFC3339", "1990-10-25T00:00:00Z", true},
		{"Truncated (Month-Day)", "--10-25", true},
		{"Truncated Basic", "--1025", true},
		{"Garbage Data", "not-a-date", false},
		{"Empty Date", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := "BEGIN:VCARD\nVERSION:3.0\nFN:Test\nBDAY:" + tt.bdayValue + "\nEND:VCARD"
			gen, _ := webGenerator(t, content)

			ics, report, err := gen.RunSync(context.Background(), engine.SyncConfig{Mode: config.SourceModeWeb, WebURL: "http://x"})
			require.NoError(t, err)
			require.Len(t, report.Entries, 1, "Contacts without a usable birthday are still evaluated")

			hasBirthday := strings.Contains(string(ics), "SUMMARY:Birthday: Test")
			assert.Equal(t, tt.expectEvt, hasBirthday)
			if tt.expectEvt {
				assert.Contains(t, string(ics), "DTSTART;VALUE=DATE:20241025")
			}
		})
	}
}

func TestRunSync_LeapDayBirthday(t *testing.T) {
	gen, _ := webGenerator(t, "BEGIN:VCARD\nVERSION:3.0\nFN:Leap Baby\nBDAY:2000-02-29\nEND:VCARD")
	gen.Clock = MockClock{CurrentTime: time.Date(2025, 2, 27, 9, 0, 0, 0, time.UTC)}

	_, report, err := gen.RunSync(context.Background(), engine.SyncConfig{Mode: config.SourceModeWeb, WebURL: "http://x"})
	require.NoError(t, err)
	require.Len(t, report.Entries, 1)

	entry := report.Entries[0]
	require.NotNil(t, entry.NextBirthday)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), *entry.NextBirthday)
	assert.Equal(t, health.StandingMilestone, entry.Standing.Standing)
	assert.Equal(t, 2, entry.Standing.DaysUntilBirthday)
}

func TestRunSync_StableUIDWithoutCardUID(t *testing.T) {
	content := "BEGIN:VCARD\nVERSION:3.0\nFN:No Uid\nBDAY:--0704\nEND:VCARD"

	genA, _ := webGenerator(t, content)
	genB, _ := webGenerator(t, content)
	_, first, err := genA.RunSync(context.Background(), engine.SyncConfig{Mode: config.SourceModeWeb, WebURL: "http://x"})
	require.NoError(t, err)
	_, second, err := genB.RunSync(context.Background(), engine.SyncConfig{Mode: config.SourceModeWeb, WebURL: "http://x"})
	require.NoError(t, err)

	assert.Equal(t, first.Entries[0].Contact.ID, second.Entries[0].Contact.ID)
	assert.Equal(t, health.StableID("No Uid", "--07-04"), first.Entries[0].Contact.ID)
}

func TestRunSync_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &engine.Generator{
		Clock: MockClock{CurrentTime: syncNow},
	}

	_, _, err := gen.RunSync(ctx, engine.SyncConfig{
		Mode:      config.SourceModeLocal,
		LocalPath: writeTemp(t, "cancel.vcf", ""),
	})

	require.Error(t, err)
	assert.Equal(t, context.Canceled, err, "Should return context canceled error")
}
