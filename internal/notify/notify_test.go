package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/nick/grantlink/internal/models"
)

func mkMatch(i int, score int) models.Match {
	return models.Match{
		ID:             uuid.New(),
		Source:         models.SourceGrantsGov,
		SourceRecordID: fmt.Sprintf("G%d", i),
		Score:          score,
		GrantTitle:     fmt.Sprintf("Grant %d", i),
		GrantLink:      fmt.Sprintf("https://example.com/%d", i),
		Status:         models.MatchStatusNew,
	}
}

func TestBuildDigestEmpty(t *testing.T) {
	if d := BuildDigest(models.Profile{Email: "a@b.c"}, nil, ""); d != nil {
		t.Errorf("expected nil digest for no matches, got %+v", d)
	}
}

func TestBuildDigestCapsAtTen(t *testing.T) {
	var matches []models.Match
	for i := 0; i < 14; i++ {
		matches = append(matches, mkMatch(i, 90-i))
	}

	d := BuildDigest(models.Profile{Email: "a@b.c", OrganizationName: "Acme Org"}, matches, "https://grantlink.dev")
	if d == nil {
		t.Fatal("expected digest")
	}
	if len(d.MatchIDs) != 10 {
		t.Errorf("expected 10 listed matches, got %d", len(d.MatchIDs))
	}
	if !strings.Contains(d.Subject, "14 new grant matches") {
		t.Errorf("subject should count all matches: %q", d.Subject)
	}
	if !strings.Contains(d.Subject, "Acme Org") {
		t.Errorf("subject should name the organization: %q", d.Subject)
	}
	if !strings.Contains(d.HTML, "Plus 4 more matches") {
		t.Error("overflow summary missing from body")
	}
	if !strings.Contains(d.HTML, "https://grantlink.dev/matches") {
		t.Error("dashboard link missing from body")
	}
}

func TestBuildDigestTruncatesDescription(t *testing.T) {
	m := mkMatch(1, 80)
	m.GrantDescription = strings.Repeat("word ", 100)

	d := BuildDigest(models.Profile{Email: "a@b.c"}, []models.Match{m}, "")
	if d == nil {
		t.Fatal("expected digest")
	}
	if strings.Contains(d.HTML, strings.Repeat("word ", 60)) {
		t.Error("description was not truncated")
	}
}

func TestBuildDigestSanitizesHTML(t *testing.T) {
	m := mkMatch(1, 80)
	m.GrantTitle = `Grant <script>alert("x")</script> One`

	d := BuildDigest(models.Profile{Email: "a@b.c"}, []models.Match{m}, "")
	if strings.Contains(d.HTML, "<script>") {
		t.Error("script tag survived sanitization")
	}
}

type fakeStore struct {
	profiles []models.Profile
	matches  map[uuid.UUID][]models.Match
	sent     map[uuid.UUID][]uuid.UUID
	logged   int
	listErr  error
}

func (f *fakeStore) ListProfilesForMatching(ctx context.Context, frequency string) ([]models.Profile, error) {
	return f.profiles, nil
}

func (f *fakeStore) ListMatches(ctx context.Context, profileID uuid.UUID, status string, limit int) ([]models.Match, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.matches[profileID], nil
}

func (f *fakeStore) MarkMatchesSent(ctx context.Context, profileID uuid.UUID, matchIDs []uuid.UUID) error {
	if f.sent == nil {
		f.sent = make(map[uuid.UUID][]uuid.UUID)
	}
	f.sent[profileID] = matchIDs
	return nil
}

func (f *fakeStore) LogNotification(ctx context.Context, profileID uuid.UUID, matchCount int, subject string) error {
	f.logged++
	return nil
}

type recordingSender struct {
	sent    []string
	sendErr error
}

func (s *recordingSender) Send(ctx context.Context, to, subject, html string) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, to)
	return nil
}

func TestDispatchSendsAndMarks(t *testing.T) {
	withMatches := models.Profile{ID: uuid.New(), Email: "busy@example.com"}
	quiet := models.Profile{ID: uuid.New(), Email: "quiet@example.com"}

	store := &fakeStore{
		profiles: []models.Profile{withMatches, quiet},
		matches: map[uuid.UUID][]models.Match{
			withMatches.ID: {mkMatch(1, 80), mkMatch(2, 60)},
		},
	}
	sender := &recordingSender{}
	d := &Dispatcher{Store: store, Sender: sender}

	stats, err := d.Dispatch(context.Background(), "weekly")
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}

	if stats.ProfilesChecked != 2 || stats.DigestsSent != 1 || stats.Failures != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if len(sender.sent) != 1 || sender.sent[0] != "busy@example.com" {
		t.Errorf("unexpected recipients: %v", sender.sent)
	}
	if len(store.sent[withMatches.ID]) != 2 {
		t.Errorf("expected 2 matches marked sent, got %d", len(store.sent[withMatches.ID]))
	}
	if store.logged != 1 {
		t.Errorf("expected 1 notification logged, got %d", store.logged)
	}
}

func TestDispatchDeliveryFailureLeavesMatchesNew(t *testing.T) {
	profile := models.Profile{ID: uuid.New(), Email: "busy@example.com"}
	store := &fakeStore{
		profiles: []models.Profile{profile},
		matches:  map[uuid.UUID][]models.Match{profile.ID: {mkMatch(1, 80)}},
	}
	sender := &recordingSender{sendErr: errors.New("smtp down")}
	d := &Dispatcher{Store: store, Sender: sender}

	stats, err := d.Dispatch(context.Background(), "weekly")
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if stats.Failures != 1 || stats.DigestsSent != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if len(store.sent) != 0 {
		t.Error("matches must not be marked sent after delivery failure")
	}
}

func TestResendSenderMockMode(t *testing.T) {
	s := NewResendSender("", "from@example.com")
	if err := s.Send(context.Background(), "to@example.com", "subject", "<p>hi</p>"); err != nil {
		t.Errorf("mock mode should succeed without a key: %v", err)
	}
}
