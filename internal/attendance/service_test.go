package attendance

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"timeclock-backend/internal/events"
)

// ===== test doubles =====

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

type fakeDirectory struct {
	byBadge map[string]*Employee
	byID    map[uint]*Employee
	err     error
}

func (d *fakeDirectory) ResolveByBadge(_ context.Context, badge string) (*Employee, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.byBadge[badge], nil
}

func (d *fakeDirectory) ResolveByID(_ context.Context, id uint) (*Employee, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.byID[id], nil
}

// fakeLedger keeps events in memory, newest last.
type fakeLedger struct {
	rows      []Attendance
	nextID    uint64
	insertErr error
}

func (l *fakeLedger) MostRecent(_ context.Context, employeeID uint) (*Attendance, error) {
	for i := len(l.rows) - 1; i >= 0; i-- {
		if l.rows[i].EmployeeID == employeeID {
			a := l.rows[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (l *fakeLedger) ExistsOnDate(_ context.Context, employeeID uint, date string) (bool, error) {
	for _, a := range l.rows {
		if a.EmployeeID == employeeID && a.AttendanceDate == date {
			return true, nil
		}
	}
	return false, nil
}

func (l *fakeLedger) Insert(_ context.Context, a *Attendance) (*Attendance, error) {
	if l.insertErr != nil {
		return nil, l.insertErr
	}
	l.nextID++
	out := *a
	out.AttendanceID = l.nextID
	out.AttendanceDate = a.RegisteredAt.UTC().Format(DateLayout)
	l.rows = append(l.rows, out)
	return &out, nil
}

func (l *fakeLedger) GetByID(_ context.Context, id uint64) (*Attendance, error) {
	for i := range l.rows {
		if l.rows[i].AttendanceID == id {
			a := l.rows[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (l *fakeLedger) Update(_ context.Context, a *Attendance) error {
	for i := range l.rows {
		if l.rows[i].AttendanceID == a.AttendanceID {
			l.rows[i] = *a
			return nil
		}
	}
	return ErrNotFound("attendance not found")
}

func (l *fakeLedger) List(_ context.Context, _ ListQuery) ([]Attendance, int64, error) {
	return l.rows, int64(len(l.rows)), nil
}

func (l *fakeLedger) AreaTotals(_ context.Context, _, _ time.Time) ([]AreaTotalRow, error) {
	return nil, nil
}

func (l *fakeLedger) Ranking(_ context.Context, _, _ time.Time, _ int) ([]EmployeeRankRow, error) {
	return nil, nil
}

type capturePublisher struct{ topics []string }

func (p *capturePublisher) Publish(_ context.Context, topic string, _ any) error {
	p.topics = append(p.topics, topic)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

var _ events.Publisher = (*capturePublisher)(nil)

func newTestService(now time.Time) (*Service, *fakeLedger, *fakeDirectory, *fakeClock, *capturePublisher) {
	ledger := &fakeLedger{}
	dir := &fakeDirectory{
		byBadge: map[string]*Employee{
			"B1": {ID: 1, Name: "Maria Silva", AreaID: 2, AreaName: "TI", Active: true},
			"B2": {ID: 2, Name: "Jose Souza", AreaID: 3, AreaName: "RH", Active: false},
		},
		byID: map[uint]*Employee{
			1: {ID: 1, Name: "Maria Silva", AreaID: 2, AreaName: "TI", Active: true},
			2: {ID: 2, Name: "Jose Souza", AreaID: 3, AreaName: "RH", Active: false},
		},
	}
	clock := &fakeClock{now: now}
	pub := &capturePublisher{}
	svc := &Service{ledger: ledger, directory: dir, pub: pub, clock: clock}
	return svc, ledger, dir, clock, pub
}

func day1(hh, mm int) time.Time {
	return time.Date(2025, 3, 10, hh, mm, 0, 0, time.UTC)
}

// ===== RegisterByBadge =====

func TestRegisterByBadge_FirstEverIsEntry(t *testing.T) {
	svc, ledger, _, _, pub := newTestService(day1(8, 0))

	out := svc.RegisterByBadge(context.Background(), "B1", nil, 5)
	if !out.Success {
		t.Fatalf("outcome not successful: %+v", out)
	}
	if out.Kind != KindEntry {
		t.Errorf("kind = %s, want entry", out.Kind)
	}
	if out.EmployeeID != 1 || out.EmployeeName != "Maria Silva" || out.AreaName != "TI" {
		t.Errorf("employee fields = %+v", out)
	}
	if out.AttendanceID == 0 {
		t.Error("attendance id not assigned")
	}
	if out.RegisteredAt == nil || !out.RegisteredAt.Equal(day1(8, 0)) {
		t.Errorf("registered_at = %v", out.RegisteredAt)
	}
	if len(ledger.rows) != 1 || ledger.rows[0].Method != MethodBadge || !ledger.rows[0].Validated {
		t.Errorf("stored event = %+v", ledger.rows)
	}
	// Both the firehose topic and the per-area topic get the event.
	want := []string{events.TopicRegistered, events.TopicAreaRegistered(2)}
	if len(pub.topics) != 2 || pub.topics[0] != want[0] || pub.topics[1] != want[1] {
		t.Errorf("published topics = %v, want %v", pub.topics, want)
	}
}

func TestRegisterByBadge_UnknownBadge(t *testing.T) {
	svc, ledger, _, _, pub := newTestService(day1(8, 0))

	out := svc.RegisterByBadge(context.Background(), "nope", nil, 5)
	if out.Success {
		t.Fatal("unknown badge should not succeed")
	}
	if out.FailureKind != FailureUnknownBadge {
		t.Errorf("failure kind = %s", out.FailureKind)
	}
	if len(ledger.rows) != 0 {
		t.Error("no event should be created")
	}
	if len(pub.topics) != 0 {
		t.Error("nothing should be published")
	}
}

func TestRegisterByBadge_InactiveEmployee(t *testing.T) {
	svc, ledger, _, _, _ := newTestService(day1(8, 0))

	out := svc.RegisterByBadge(context.Background(), "B2", nil, 5)
	if out.Success || out.FailureKind != FailureInactiveEmployee {
		t.Errorf("outcome = %+v", out)
	}
	if len(ledger.rows) != 0 {
		t.Error("no event should be created")
	}
}

func TestRegisterByBadge_TooSoonAndBoundary(t *testing.T) {
	svc, ledger, _, clock, _ := newTestService(day1(8, 0))

	if out := svc.RegisterByBadge(context.Background(), "B1", nil, 5); !out.Success {
		t.Fatalf("first registration failed: %+v", out)
	}

	// 3 minutes later: rejected, no new event, display name carried for the UI.
	clock.now = day1(8, 3)
	out := svc.RegisterByBadge(context.Background(), "B1", nil, 5)
	if out.Success || out.FailureKind != FailureTooSoon {
		t.Fatalf("outcome = %+v", out)
	}
	if out.EmployeeName != "Maria Silva" {
		t.Errorf("too-soon outcome should carry the display name, got %q", out.EmployeeName)
	}
	if len(ledger.rows) != 1 {
		t.Error("too-soon must not create an event")
	}

	// Exactly the interval: accepted.
	clock.now = day1(8, 5)
	if out := svc.RegisterByBadge(context.Background(), "B1", nil, 5); !out.Success {
		t.Errorf("registration at exactly the interval should succeed: %+v", out)
	}
}

func TestRegisterByBadge_SameDaySequence(t *testing.T) {
	svc, _, _, clock, _ := newTestService(day1(8, 0))

	want := []Kind{KindEntry, KindExit, KindBreakIn, KindExit, KindBreakIn}
	for i, w := range want {
		clock.now = day1(8, 0).Add(time.Duration(i) * time.Hour)
		out := svc.RegisterByBadge(context.Background(), "B1", nil, 5)
		if !out.Success {
			t.Fatalf("registration %d failed: %+v", i, out)
		}
		if out.Kind != w {
			t.Errorf("registration %d kind = %s, want %s", i, out.Kind, w)
		}
	}
}

func TestRegisterByBadge_NewDayResetsToEntry(t *testing.T) {
	svc, _, _, clock, _ := newTestService(day1(8, 0))

	// Day 1: entry then exit.
	svc.RegisterByBadge(context.Background(), "B1", nil, 5)
	clock.now = day1(17, 0)
	if out := svc.RegisterByBadge(context.Background(), "B1", nil, 5); out.Kind != KindExit {
		t.Fatalf("day1 second kind = %s", out.Kind)
	}

	// Day 2: entry again even though the last event was an exit.
	clock.now = day1(8, 0).AddDate(0, 0, 1)
	out := svc.RegisterByBadge(context.Background(), "B1", nil, 5)
	if !out.Success || out.Kind != KindEntry {
		t.Errorf("day2 outcome = %+v, want entry", out)
	}
}

// The worked example: Day1 08:00 entry, 08:03 too soon, 13:00 exit,
// 13:30 break_in, Day2 08:00 entry.
func TestRegisterByBadge_FullScenario(t *testing.T) {
	svc, _, _, clock, _ := newTestService(day1(8, 0))
	ctx := context.Background()

	steps := []struct {
		at          time.Time
		wantSuccess bool
		wantKind    Kind
		wantFailure FailureKind
	}{
		{day1(8, 0), true, KindEntry, ""},
		{day1(8, 3), false, "", FailureTooSoon},
		{day1(13, 0), true, KindExit, ""},
		{day1(13, 30), true, KindBreakIn, ""},
		{day1(8, 0).AddDate(0, 0, 1), true, KindEntry, ""},
	}
	for i, st := range steps {
		clock.now = st.at
		out := svc.RegisterByBadge(ctx, "B1", nil, 5)
		if out.Success != st.wantSuccess {
			t.Fatalf("step %d success = %v, want %v (%+v)", i, out.Success, st.wantSuccess, out)
		}
		if st.wantSuccess && out.Kind != st.wantKind {
			t.Errorf("step %d kind = %s, want %s", i, out.Kind, st.wantKind)
		}
		if !st.wantSuccess && out.FailureKind != st.wantFailure {
			t.Errorf("step %d failure = %s, want %s", i, out.FailureKind, st.wantFailure)
		}
	}
}

func TestRegisterByBadge_ManualLastEventYieldsEntry(t *testing.T) {
	svc, ledger, _, clock, _ := newTestService(day1(9, 0))

	// A same-day manual event is outside the ping-pong cycle: next is entry.
	ledger.Insert(context.Background(), &Attendance{
		EmployeeID: 1, Kind: KindManual, Method: MethodManual,
		RegisteredAt: day1(8, 0), Validated: true,
	})
	clock.now = day1(9, 0)
	out := svc.RegisterByBadge(context.Background(), "B1", nil, 5)
	if !out.Success || out.Kind != KindEntry {
		t.Errorf("outcome = %+v, want entry", out)
	}
}

func TestRegisterByBadge_DirectoryFailure(t *testing.T) {
	svc, ledger, dir, _, _ := newTestService(day1(8, 0))
	dir.err = errors.New("connection refused")

	out := svc.RegisterByBadge(context.Background(), "B1", nil, 5)
	if out.Success || out.FailureKind != FailureInternal {
		t.Errorf("outcome = %+v", out)
	}
	// The caller gets a retry message, not the underlying error text.
	if out.Message != "internal error, please try again" {
		t.Errorf("message = %q", out.Message)
	}
	if len(ledger.rows) != 0 {
		t.Error("no event should be created")
	}
}

func TestRegisterByBadge_InsertFailure(t *testing.T) {
	svc, ledger, _, _, pub := newTestService(day1(8, 0))
	ledger.insertErr = errors.New("deadlock")

	out := svc.RegisterByBadge(context.Background(), "B1", nil, 5)
	if out.Success || out.FailureKind != FailureInternal {
		t.Errorf("outcome = %+v", out)
	}
	if len(pub.topics) != 0 {
		t.Error("failed registration must not be published")
	}
}

// ===== RegisterManual =====

func TestRegisterManual_Success(t *testing.T) {
	svc, ledger, _, _, pub := newTestService(day1(10, 0))

	note := "forgot badge"
	out := svc.RegisterManual(context.Background(), 1, KindExit, &note, "admin")
	if !out.Success || out.Kind != KindExit {
		t.Fatalf("outcome = %+v", out)
	}
	if len(ledger.rows) != 1 {
		t.Fatal("event not stored")
	}
	got := ledger.rows[0]
	if got.Method != MethodManual {
		t.Errorf("method = %s", got.Method)
	}
	if got.OriginDevice == nil || *got.OriginDevice != "manual - admin" {
		t.Errorf("origin device = %v", got.OriginDevice)
	}
	if got.Note == nil || *got.Note != "forgot badge" {
		t.Errorf("note = %v", got.Note)
	}
	if len(pub.topics) != 2 {
		t.Errorf("published topics = %v", pub.topics)
	}
}

func TestRegisterManual_EmployeeNotFound(t *testing.T) {
	svc, ledger, _, _, _ := newTestService(day1(10, 0))

	out := svc.RegisterManual(context.Background(), 99, KindEntry, nil, "admin")
	if out.Success || out.FailureKind != FailureEmployeeNotFound {
		t.Errorf("outcome = %+v", out)
	}
	if len(ledger.rows) != 0 {
		t.Error("no event should be created")
	}
}

func TestRegisterManual_InactiveEmployee(t *testing.T) {
	svc, _, _, _, _ := newTestService(day1(10, 0))

	out := svc.RegisterManual(context.Background(), 2, KindEntry, nil, "admin")
	if out.Success || out.FailureKind != FailureInactiveEmployee {
		t.Errorf("outcome = %+v", out)
	}
}

func TestRegisterManual_SkipsIntervalGuard(t *testing.T) {
	svc, _, _, clock, _ := newTestService(day1(8, 0))

	if out := svc.RegisterByBadge(context.Background(), "B1", nil, 5); !out.Success {
		t.Fatalf("badge registration failed: %+v", out)
	}
	// One minute later a manual entry still goes through.
	clock.now = day1(8, 1)
	out := svc.RegisterManual(context.Background(), 1, KindExit, nil, "admin")
	if !out.Success {
		t.Errorf("manual registration should skip the interval guard: %+v", out)
	}
}

// ===== Validate =====

func TestValidate_MissingIDReturnsFalse(t *testing.T) {
	svc, ledger, _, _, _ := newTestService(day1(8, 0))

	if svc.Validate(context.Background(), 123, false, nil) {
		t.Error("validate on a missing id should return false")
	}
	if len(ledger.rows) != 0 {
		t.Error("nothing should be mutated")
	}
}

func TestValidate_FlipsFlagAndNote(t *testing.T) {
	svc, ledger, _, _, _ := newTestService(day1(8, 0))

	out := svc.RegisterByBadge(context.Background(), "B1", nil, 5)
	note := "reader glitch, rejected on review"
	if !svc.Validate(context.Background(), out.AttendanceID, false, &note) {
		t.Fatal("validate failed")
	}

	got := ledger.rows[0]
	if got.Validated {
		t.Error("validated flag not flipped")
	}
	if got.Note == nil || *got.Note != note {
		t.Errorf("note = %v", got.Note)
	}
	// Kind and timestamp stay untouched.
	if got.Kind != KindEntry || !got.RegisteredAt.Equal(day1(8, 0)) {
		t.Errorf("immutable fields changed: %+v", got)
	}
}

func TestValidate_EmptyNoteKeepsExisting(t *testing.T) {
	svc, ledger, _, _, _ := newTestService(day1(8, 0))

	note := "original"
	out := svc.RegisterManual(context.Background(), 1, KindEntry, &note, "admin")
	empty := ""
	if !svc.Validate(context.Background(), out.AttendanceID, true, &empty) {
		t.Fatal("validate failed")
	}
	if got := ledger.rows[0]; got.Note == nil || *got.Note != "original" {
		t.Errorf("note = %v, want original kept", got.Note)
	}
}

// ===== Stats argument validation =====

func TestStats_RejectsBadRange(t *testing.T) {
	svc, _, _, _, _ := newTestService(day1(8, 0))

	for _, req := range []StatsRequest{
		{From: "2025-03-10", To: "garbage"},
		{From: "garbage", To: "2025-03-10"},
		{From: "2025-03-10", To: "2025-03-01"},
	} {
		if _, err := svc.Stats(context.Background(), req); err == nil {
			t.Errorf("Stats(%+v) should fail", req)
		}
	}
}

func TestToHTTPStatus(t *testing.T) {
	for _, tc := range []struct {
		err  error
		want int
	}{
		{ErrInvalid("x"), 400},
		{ErrNotFound("x"), 404},
		{&APIError{Code: CodeConflict, Message: "x"}, 409},
		{ErrInternal("x"), 500},
		{fmt.Errorf("plain"), 500},
	} {
		if got := toHTTPStatus(tc.err); got != tc.want {
			t.Errorf("toHTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
