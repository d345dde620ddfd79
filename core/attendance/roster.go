package attendance

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/ministerio-jovenes/asistencia/core"
	"github.com/ministerio-jovenes/asistencia/core/member"
)

type (
	MemberLister interface {
		QueryByGroup(ctx context.Context, groupID int) ([]member.Member, error)
	}

	RecordStore interface {
		QueryRecords(ctx context.Context, date core.Date, groupID int) ([]Record, error)
		BulkTake(ctx context.Context, bt BulkTake) error
	}

	Entry struct {
		member.Member
		Initials  string `json:"initials"`
		IsPresent bool   `json:"is_present"`
	}

	// Snapshot is a consistent copy of the view state.
	Snapshot struct {
		GroupID      int       `json:"group_id"`
		Date         core.Date `json:"date"`
		Search       string    `json:"search"`
		Roster       []Entry   `json:"roster"`
		Filtered     []Entry   `json:"filtered"`
		PresentCount int       `json:"present_count"`
		AbsentCount  int       `json:"absent_count"`
		PendingCount int       `json:"pending_count"`
		Saving       bool      `json:"saving"`
	}
)

// View merges the recorded attendance of a (group, date) with the operator's pending marks.
// Pending marks survive date changes within a group and are cleared by a group change or a
// successful save.
type View struct {
	members MemberLister
	records RecordStore
	logger  core.Logger

	mu      sync.Mutex
	seq     uint64 // current request token
	groupID int    // selected group
	date    core.Date
	search  string
	pending map[int]struct{}
	saving  bool

	// roster and the (group, date) it was built for
	roster      []Entry
	rosterGroup int
	rosterDate  core.Date
	loaded      bool
}

func NewView(members MemberLister, records RecordStore, logger core.Logger) *View {
	return &View{
		members: members,
		records: records,
		logger:  logger,
		pending: make(map[int]struct{}),
	}
}

// Load fetches the members of groupID and the records of (date, groupID) concurrently, then
// rebuilds the roster. When a newer Load was issued meanwhile, the result is discarded and
// ErrSuperseded is returned. On error, the previous roster stays in place.
func (v *View) Load(ctx context.Context, groupID int, date core.Date) (Snapshot, error) {
	v.mu.Lock()
	v.seq++
	token := v.seq
	v.groupID = groupID
	v.date = date
	v.mu.Unlock()

	var (
		members []member.Member
		records []Record
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		members, err = v.members.QueryByGroup(gctx, groupID)
		return errors.Wrap(err, "loading group members")
	})
	g.Go(func() (err error) {
		records, err = v.records.QueryRecords(gctx, date, groupID)
		return errors.Wrap(err, "loading attendance records")
	})
	err := g.Wait()

	v.mu.Lock()
	defer v.mu.Unlock()

	if token != v.seq {
		v.logger.Debug("discarding stale roster load", map[string]interface{}{"group_id": groupID, "date": date.String()})
		if err != nil {
			return Snapshot{}, err
		}
		return Snapshot{}, ErrSuperseded
	}
	if err != nil {
		return Snapshot{}, err
	}

	// pending marks belong to the installed roster's group
	if v.loaded && groupID != v.rosterGroup {
		v.pending = make(map[int]struct{})
	}
	v.roster = buildRoster(members, records, v.pending)
	v.rosterGroup = groupID
	v.rosterDate = date
	v.loaded = true
	return v.snapshot(), nil
}

// Reload runs Load again for the current selection.
func (v *View) Reload(ctx context.Context) (Snapshot, error) {
	v.mu.Lock()
	groupID, date := v.groupID, v.date
	v.mu.Unlock()

	if groupID == 0 {
		return Snapshot{}, ErrNoRoster
	}
	return v.Load(ctx, groupID, date)
}

// buildRoster marks a member present when recorded or pending.
// Inactive members only show up when they have a record for the date.
func buildRoster(members []member.Member, records []Record, pending map[int]struct{}) []Entry {
	recorded := make(map[int]bool, len(records))
	for _, rec := range records {
		recorded[rec.MemberID] = true
	}

	roster := make([]Entry, 0, len(members))
	for _, mem := range members {
		if !mem.IsActive && !recorded[mem.ID] {
			continue
		}
		_, isPending := pending[mem.ID]
		roster = append(roster, Entry{
			Member:    mem,
			Initials:  core.Initials(mem.Name),
			IsPresent: recorded[mem.ID] || isPending,
		})
	}
	return roster
}

// Toggle flips the presence of one roster member. No gateway call is made.
func (v *View) Toggle(memberID int) (Entry, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for i := range v.roster {
		if v.roster[i].ID != memberID {
			continue
		}
		entry := &v.roster[i]
		entry.IsPresent = !entry.IsPresent
		if entry.IsPresent {
			v.pending[memberID] = struct{}{}
		} else {
			delete(v.pending, memberID)
		}
		return *entry, nil
	}
	return Entry{}, ErrNotInRoster
}

// Save sends every present roster member as one batch. A call made while another save is in
// flight is dropped with ErrSaveInProgress. Success clears the pending marks; failure leaves
// them and the roster untouched.
func (v *View) Save(ctx context.Context, createdBy string) (int, error) {
	v.mu.Lock()
	if v.saving {
		v.mu.Unlock()
		return 0, ErrSaveInProgress
	}
	if !v.loaded {
		v.mu.Unlock()
		return 0, ErrNoRoster
	}
	bt := BulkTake{
		MemberIDs: make([]int, 0, len(v.roster)),
		Date:      v.rosterDate,
		GroupID:   v.rosterGroup,
		CreatedBy: createdBy,
	}
	for _, entry := range v.roster {
		if entry.IsPresent {
			bt.MemberIDs = append(bt.MemberIDs, entry.ID)
		}
	}
	v.saving = true
	v.mu.Unlock()

	err := v.records.BulkTake(ctx, bt)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.saving = false
	if err != nil {
		return 0, errors.Wrap(err, "saving attendance")
	}
	v.pending = make(map[int]struct{})
	return len(bt.MemberIDs), nil
}

func (v *View) SetSearch(query string) Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.search = query
	return v.snapshot()
}

func (v *View) Filtered() []Entry {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filtered()
}

func (v *View) PresentCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.presentCount()
}

func (v *View) AbsentCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.roster) - v.presentCount()
}

func (v *View) Pending() []int {
	v.mu.Lock()
	defer v.mu.Unlock()
	ids := make([]int, 0, len(v.pending))
	for id := range v.pending {
		ids = append(ids, id)
	}
	return ids
}

func (v *View) Saving() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.saving
}

func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshot()
}

func (v *View) snapshot() Snapshot {
	present := v.presentCount()
	roster := make([]Entry, len(v.roster))
	copy(roster, v.roster)
	return Snapshot{
		GroupID:      v.rosterGroup,
		Date:         v.rosterDate,
		Search:       v.search,
		Roster:       roster,
		Filtered:     v.filtered(),
		PresentCount: present,
		AbsentCount:  len(v.roster) - present,
		PendingCount: len(v.pending),
		Saving:       v.saving,
	}
}

func (v *View) filtered() []Entry {
	res := make([]Entry, 0, len(v.roster))
	for _, entry := range v.roster {
		if core.ContainsFold(entry.Name, v.search) {
			res = append(res, entry)
		}
	}
	return res
}

func (v *View) presentCount() int {
	var n int
	for _, entry := range v.roster {
		if entry.IsPresent {
			n++
		}
	}
	return n
}
