package admin

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDirectorySearch(t *testing.T) {
	d := NewDirectory(SeedUsers())
	tests := []struct {
		term string
		want int
	}{
		{"", 5},
		{"alex", 1},
		{"SKY.NET", 1},
		{"leadoptions", 2},
		{"nobody", 0},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			if got := len(d.Search(tt.term)); got != tt.want {
				t.Errorf("Search(%q) = %d users, want %d", tt.term, got, tt.want)
			}
		})
	}
}

func TestDirectoryCRUD(t *testing.T) {
	d := NewDirectory(SeedUsers())

	u, err := d.Get(2)
	if err != nil {
		t.Fatalf("Get(2) err = %v", err)
	}
	u.Status = "Active"
	u.Balance = decimal.NewFromInt(99)
	if err := d.Update(u); err != nil {
		t.Fatalf("Update() err = %v", err)
	}
	if got, _ := d.Get(2); got.Status != "Active" || !got.Balance.Equal(decimal.NewFromInt(99)) {
		t.Errorf("after update = %+v", got)
	}

	u.Name = " "
	if err := d.Update(u); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("blank name err = %v", err)
	}
	if err := d.Update(User{ID: 42, Name: "x", Email: "y"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown id err = %v", err)
	}

	if err := d.Delete(3); err != nil {
		t.Fatalf("Delete(3) err = %v", err)
	}
	if _, err := d.Get(3); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(3) after delete err = %v", err)
	}
	if err := d.Delete(3); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete(3) err = %v", err)
	}
}

func TestAuditLogs(t *testing.T) {
	u := SeedUsers()[4]
	logs := AuditLogs(u)
	if len(logs) != 5 {
		t.Fatalf("len = %d, want 5", len(logs))
	}
	if logs[1].PerformedBy != "Michael Burry" {
		t.Errorf("trade log performedBy = %q", logs[1].PerformedBy)
	}
	if logs[3].Details != "Role changed to VIP Trader" {
		t.Errorf("role log = %q", logs[3].Details)
	}
}

func TestQueueResolve(t *testing.T) {
	q := NewQueue(SeedRequests())

	d, err := q.Resolve(102, Reject)
	if err != nil {
		t.Fatalf("Resolve(102) err = %v", err)
	}
	if d.Request.User != "Sarah Connor" || d.Action != Reject {
		t.Errorf("decision = %+v", d)
	}
	if len(q.Pending()) != 2 {
		t.Errorf("pending = %d, want 2", len(q.Pending()))
	}
	if _, err := q.Resolve(102, Approve); !errors.Is(err, ErrNotFound) {
		t.Errorf("resolving twice err = %v", err)
	}
	if _, err := q.Resolve(101, "escalate"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad action err = %v", err)
	}
	if len(q.Decisions()) != 1 {
		t.Errorf("decisions = %d, want 1", len(q.Decisions()))
	}
}

func TestToggles(t *testing.T) {
	s := NewSystem()
	if got := s.Toggles(); got.Maintenance || got.WithdrawalsPaused || !got.RegistrationsOpen {
		t.Errorf("defaults = %+v", got)
	}
	got, err := s.Toggle("maintenance")
	if err != nil || !got.Maintenance {
		t.Errorf("Toggle(maintenance) = %+v, %v", got, err)
	}
	got, _ = s.Toggle("registrationsOpen")
	if got.RegistrationsOpen {
		t.Error("registrationsOpen did not flip")
	}
	if _, err := s.Toggle("darkMode"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("unknown toggle err = %v", err)
	}
}

func TestBroadcasterLifecycle(t *testing.T) {
	var mu sync.Mutex
	var delivered []string
	b := NewBroadcaster(func(msg string) {
		mu.Lock()
		delivered = append(delivered, msg)
		mu.Unlock()
	})
	b.SendingFor = 20 * time.Millisecond
	b.SuccessFor = 20 * time.Millisecond

	if err := b.Send("   "); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("blank Send() err = %v", err)
	}
	if err := b.Send(" Markets close early today "); err != nil {
		t.Fatalf("Send() err = %v", err)
	}
	if b.Status() != BroadcastSending {
		t.Errorf("status = %s, want sending", b.Status())
	}
	if err := b.Send("again"); !errors.Is(err, ErrBroadcastBusy) {
		t.Errorf("Send() while sending err = %v", err)
	}

	waitFor(t, func() bool { return b.Status() == BroadcastSuccess })
	waitFor(t, func() bool { return b.Status() == BroadcastIdle })

	mu.Lock()
	defer mu.Unlock()
	if len(delivered) != 1 || delivered[0] != "Markets close early today" {
		t.Errorf("delivered = %v", delivered)
	}
	if b.Last() != "Markets close early today" {
		t.Errorf("Last() = %q", b.Last())
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestTrainingSaveAndDelete(t *testing.T) {
	tr := NewTraining(SeedTraining())
	tr.now = func() time.Time { return time.UnixMilli(1700000000000) }

	added, err := tr.Save(TrainingItem{Question: "Is there a mobile app?", Answer: "Yes, on iOS and Android."})
	if err != nil {
		t.Fatalf("Save() err = %v", err)
	}
	if added.Category != "General" || added.ID != 1700000000000 {
		t.Errorf("added = %+v", added)
	}
	if tr.Items()[0].ID != added.ID {
		t.Error("new item not prepended")
	}

	second, _ := tr.Save(TrainingItem{Question: "q", Answer: "a", Category: "Misc"})
	if second.ID == added.ID {
		t.Error("two items saved in the same millisecond share an id")
	}

	added.Answer = "Only on iOS."
	if _, err := tr.Save(added); err != nil {
		t.Fatalf("edit err = %v", err)
	}
	if got := tr.Filter("General"); len(got) != 1 || got[0].Answer != "Only on iOS." {
		t.Errorf("Filter(General) = %+v", got)
	}

	if _, err := tr.Save(TrainingItem{Question: "q"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("missing answer err = %v", err)
	}
	if _, err := tr.Save(TrainingItem{ID: 9, Question: "q", Answer: "a"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("edit unknown err = %v", err)
	}

	if err := tr.Delete(2); err != nil {
		t.Fatalf("Delete(2) err = %v", err)
	}
	if err := tr.Delete(2); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete(2) err = %v", err)
	}
}

func TestTrainingCategories(t *testing.T) {
	tr := NewTraining(SeedTraining())
	got := tr.Categories()
	want := []string{"All", "Account Security", "Trading", "Verification", "Withdrawals"}
	if len(got) != len(want) {
		t.Fatalf("Categories() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Categories()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if n := len(tr.Filter("All")); n != 4 {
		t.Errorf("Filter(All) = %d, want 4", n)
	}
	if n := len(tr.Filter("Trading")); n != 1 {
		t.Errorf("Filter(Trading) = %d, want 1", n)
	}
}

func TestTrainingMatch(t *testing.T) {
	tr := NewTraining(SeedTraining())
	tests := []struct {
		q      string
		wantID int64
		wantOK bool
	}{
		{"How do I reset my password", 1, true},
		{"how long do withdrawls take?", 2, true},
		{"why is my kyc pending", 4, true},
		{"what's the weather like in Lisbon", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.q, func(t *testing.T) {
			got, ok := tr.Match(tt.q, 0.3)
			if ok != tt.wantOK {
				t.Fatalf("Match(%q) ok = %v, want %v", tt.q, ok, tt.wantOK)
			}
			if ok && got.ID != tt.wantID {
				t.Errorf("Match(%q) = item %d, want %d", tt.q, got.ID, tt.wantID)
			}
		})
	}
}

func TestBroadcasterOldTimerKeepsNewSuccess(t *testing.T) {
	b := NewBroadcaster(nil)
	b.SendingFor = 100 * time.Millisecond
	b.SuccessFor = 600 * time.Millisecond

	if err := b.Send("first"); err != nil {
		t.Fatalf("Send(first) err = %v", err)
	}
	waitFor(t, func() bool { return b.Status() == BroadcastSuccess })

	sent := time.Now()
	if err := b.Send("second"); err != nil {
		t.Fatalf("Send(second) during success err = %v", err)
	}
	waitFor(t, func() bool { return b.Status() == BroadcastSuccess })

	// the first broadcast's idle timer has fired by now, the second's has not
	time.Sleep(time.Until(sent.Add(650 * time.Millisecond)))
	if got := b.Status(); got != BroadcastSuccess {
		t.Errorf("status = %s, want success until the second broadcast's timer", got)
	}
	waitFor(t, func() bool { return b.Status() == BroadcastIdle })
}

func TestTrainingMatchCountsCharacters(t *testing.T) {
	tr := NewTraining([]TrainingItem{{ID: 1, Question: "dépôt", Answer: "Deposits clear in minutes.", Category: "Deposits"}})

	// two edits over five characters
	if _, ok := tr.Match("depot", 0.3); ok {
		t.Error("Match(depot, 0.3) matched at ratio 0.4")
	}
	if got, ok := tr.Match("depot", 0.4); !ok || got.ID != 1 {
		t.Errorf("Match(depot, 0.4) = %+v, %v", got, ok)
	}
}
