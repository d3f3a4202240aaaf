package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/hackathon-portal/events"
	"github.com/Dosada05/hackathon-portal/models"
	"github.com/Dosada05/hackathon-portal/repositories"
	"github.com/Dosada05/hackathon-portal/storage"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func strPtr(s string) *string { return &s }

// --- teams ---

type fakeTeamRepo struct {
	mu      sync.Mutex
	teams   map[string]*models.Team
	listErr error
}

func newFakeTeamRepo(teams ...*models.Team) *fakeTeamRepo {
	r := &fakeTeamRepo{teams: make(map[string]*models.Team)}
	for _, t := range teams {
		if t.Submissions == nil {
			t.Submissions = []models.Submission{}
		}
		if t.Members == nil {
			t.Members = []models.TeamMember{}
		}
		r.teams[t.TeamID] = t
	}
	return r
}

func cloneTeam(t *models.Team) *models.Team {
	c := *t
	c.Submissions = make([]models.Submission, len(t.Submissions))
	for i, s := range t.Submissions {
		s.Files = append([]models.SubmissionFile(nil), s.Files...)
		c.Submissions[i] = s
	}
	c.Members = append([]models.TeamMember(nil), t.Members...)
	c.Mentor = nil
	return &c
}

func (r *fakeTeamRepo) get(id string) *models.Team {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.teams[id]; ok {
		return cloneTeam(t)
	}
	return nil
}

func (r *fakeTeamRepo) Create(_ context.Context, team *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[team.TeamID]; ok {
		return repositories.ErrTeamIDConflict
	}
	for _, t := range r.teams {
		if t.TeamName == team.TeamName {
			return repositories.ErrTeamNameConflict
		}
	}
	team.CreatedAt = testNow
	team.UpdatedAt = testNow
	r.teams[team.TeamID] = cloneTeam(team)
	return nil
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id string) (*models.Team, error) {
	if t := r.get(id); t != nil {
		return t, nil
	}
	return nil, repositories.ErrTeamNotFound
}

func (r *fakeTeamRepo) List(_ context.Context, f repositories.TeamFilter) ([]*models.Team, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Team{}
	for _, t := range r.teams {
		if f.Category != nil && t.Category != *f.Category {
			continue
		}
		if f.IsActive != nil && t.IsActive != *f.IsActive {
			continue
		}
		if f.MentorID != nil && derefString(t.MentorID) != *f.MentorID {
			continue
		}
		if f.WithoutMentor && t.HasMentor() {
			continue
		}
		out = append(out, cloneTeam(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out, nil
}

func (r *fakeTeamRepo) Update(_ context.Context, team *models.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.teams[team.TeamID]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	cur.TeamName = team.TeamName
	cur.Category = team.Category
	cur.IsActive = team.IsActive
	cur.Rank = team.Rank
	cur.Members = append([]models.TeamMember(nil), team.Members...)
	return nil
}

func (r *fakeTeamRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(r.teams, id)
	return nil
}

// Mutate сериализует изменения так же, как FOR UPDATE; exec в фейке всегда nil.
func (r *fakeTeamRepo) Mutate(ctx context.Context, id string, fn repositories.TeamMutation) (*models.Team, error) {
	r.mu.Lock()
	cur, ok := r.teams[id]
	if !ok {
		r.mu.Unlock()
		return nil, repositories.ErrTeamNotFound
	}
	work := cloneTeam(cur)
	r.mu.Unlock()

	if err := fn(ctx, nil, work); err != nil {
		return nil, err
	}
	models.SortSubmissions(work.Submissions)

	r.mu.Lock()
	r.teams[id] = cloneTeam(work)
	r.mu.Unlock()
	return work, nil
}

func (r *fakeTeamRepo) UpsertMany(_ context.Context, teams []*models.Team) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	created, updated := 0, 0
	for _, t := range teams {
		if cur, ok := r.teams[t.TeamID]; ok {
			cur.TeamName = t.TeamName
			cur.Category = t.Category
			cur.Members = t.Members
			updated++
			continue
		}
		r.teams[t.TeamID] = cloneTeam(t)
		created++
	}
	return created, updated, nil
}

func (r *fakeTeamRepo) CountByMentor(_ context.Context, _ repositories.SQLExecutor, mentorID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.teams {
		if derefString(t.MentorID) == mentorID {
			n++
		}
	}
	return n, nil
}

// --- mentors ---

type fakeMentorRepo struct {
	mu      sync.Mutex
	mentors map[string]*models.Mentor
	teams   *fakeTeamRepo
}

func newFakeMentorRepo(teams *fakeTeamRepo, mentors ...*models.Mentor) *fakeMentorRepo {
	r := &fakeMentorRepo{mentors: make(map[string]*models.Mentor), teams: teams}
	for _, m := range mentors {
		r.mentors[m.MentorID] = m
	}
	return r
}

func (r *fakeMentorRepo) withCount(ctx context.Context, m *models.Mentor) *models.Mentor {
	c := *m
	c.Expertise = append([]string(nil), m.Expertise...)
	if r.teams != nil {
		c.TeamCount, _ = r.teams.CountByMentor(ctx, nil, m.MentorID)
	}
	return &c
}

func (r *fakeMentorRepo) Create(_ context.Context, m *models.Mentor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.mentors[m.MentorID]; ok {
		return repositories.ErrMentorIDConflict
	}
	m.CreatedAt = testNow
	c := *m
	r.mentors[m.MentorID] = &c
	return nil
}

func (r *fakeMentorRepo) GetByID(ctx context.Context, id string) (*models.Mentor, error) {
	r.mu.Lock()
	m, ok := r.mentors[id]
	r.mu.Unlock()
	if !ok {
		return nil, repositories.ErrMentorNotFound
	}
	return r.withCount(ctx, m), nil
}

func (r *fakeMentorRepo) GetForUpdate(ctx context.Context, _ repositories.SQLExecutor, id string) (*models.Mentor, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeMentorRepo) List(ctx context.Context) ([]*models.Mentor, error) {
	r.mu.Lock()
	ids := make([]string, 0, len(r.mentors))
	for id := range r.mentors {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	sort.Strings(ids)

	out := make([]*models.Mentor, 0, len(ids))
	for _, id := range ids {
		m, _ := r.GetByID(ctx, id)
		out = append(out, m)
	}
	return out, nil
}

func (r *fakeMentorRepo) Update(_ context.Context, m *models.Mentor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.mentors[m.MentorID]; !ok {
		return repositories.ErrMentorNotFound
	}
	c := *m
	r.mentors[m.MentorID] = &c
	return nil
}

func (r *fakeMentorRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.mentors[id]; !ok {
		return repositories.ErrMentorNotFound
	}
	delete(r.mentors, id)
	return nil
}

// --- users ---

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Email]; ok {
		return repositories.ErrUserEmailConflict
	}
	r.nextID++
	u.ID = r.nextID
	u.CreatedAt = testNow
	c := *u
	r.users[u.Email] = &c
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			c := *u
			return &c, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[email]; ok {
		c := *u
		return &c, nil
	}
	return nil, repositories.ErrUserNotFound
}

// --- feedback ---

type fakeFeedbackRepo struct {
	mu    sync.Mutex
	items []*models.Feedback
}

func (r *fakeFeedbackRepo) Create(_ context.Context, fb *models.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fb.ID = len(r.items) + 1
	fb.CreatedAt = testNow
	c := *fb
	r.items = append(r.items, &c)
	return nil
}

func (r *fakeFeedbackRepo) ListByTeam(_ context.Context, teamID string) ([]*models.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*models.Feedback{}
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].TeamID == teamID {
			out = append(out, r.items[i])
		}
	}
	return out, nil
}

func (r *fakeFeedbackRepo) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items), nil
}

// --- leaderboard ---

type fakeLeaderboardRepo struct {
	entries []models.LeaderboardEntry
	ranks   map[string]models.TeamRank
	teams   *fakeTeamRepo
	err     error
	listErr error
}

func (r *fakeLeaderboardRepo) Replace(_ context.Context, entries []models.LeaderboardEntry, ranks map[string]models.TeamRank) error {
	if r.err != nil {
		return r.err
	}
	r.entries = append([]models.LeaderboardEntry(nil), entries...)
	r.ranks = ranks
	if r.teams != nil {
		r.teams.mu.Lock()
		for _, t := range r.teams.teams {
			t.Rank = ranks[t.TeamName]
		}
		r.teams.mu.Unlock()
	}
	return nil
}

func (r *fakeLeaderboardRepo) List(context.Context) ([]models.LeaderboardEntry, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return append([]models.LeaderboardEntry(nil), r.entries...), nil
}

// --- storage ---

type fakeUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	failOn  string
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{objects: make(map[string][]byte)}
}

func (u *fakeUploader) Upload(_ context.Context, key, _ string, reader io.Reader, _ int64) (*storage.UploadResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if u.failOn != "" && strings.Contains(string(data), u.failOn) {
		return nil, errors.New("bucket unavailable")
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.objects[key] = data
	return &storage.UploadResult{Key: key, Location: "https://cdn.test/" + key, Size: int64(len(data))}, nil
}

func (u *fakeUploader) Delete(_ context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.objects, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string { return "https://cdn.test/" + key }

func (u *fakeUploader) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.objects)
}

// --- events ---

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingNotifier struct {
	mu    sync.Mutex
	teams []string
}

func (n *recordingNotifier) Refresh(_ context.Context, team *models.Team) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.teams = append(n.teams, team.TeamID)
}

// failingStore имитирует недоступный Redis.
type failingStore struct{}

func (failingStore) MarkRead(context.Context, string, ...string) error {
	return fmt.Errorf("dial tcp: connection refused")
}

func (failingStore) ReadIDs(context.Context, string) (map[string]bool, error) {
	return nil, fmt.Errorf("dial tcp: connection refused")
}
