package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/talentpoint-hq/candidate-profile-api/internal/domain"
	idempotencyport "github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/idempotency"
	profilerepoport "github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/profilerepo"
	resumerepoport "github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/resumerepo"
	workstatusrepoport "github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/workstatusrepo"
)

type CleanupFunc = func()

// ProfileRepoHarness wraps a repository under test together with an
// implementation-specific seeding hook (profile creation is out of scope for
// the repository interface itself).
type ProfileRepoHarness struct {
	Repo    profilerepoport.Repository
	Seed    func(t *testing.T, p profilerepoport.Profile)
	Cleanup CleanupFunc
}

// ResumeRepoHarness wraps a resume repository with seeding plus a reader for
// the slug copies held by cross-reference rows.
type ResumeRepoHarness struct {
	Repo          resumerepoport.Repository
	Seed          func(t *testing.T, res resumerepoport.Resume)
	ReferenceSlug func(t *testing.T, id domain.ResumeID) (string, bool)
	Cleanup       CleanupFunc
}

type ProfileRepoFactory func(t *testing.T) ProfileRepoHarness
type WorkStatusRepoFactory func(t *testing.T) (workstatusrepoport.Repository, CleanupFunc)
type ResumeRepoFactory func(t *testing.T) ResumeRepoHarness
type IdemStoreFactory func(t *testing.T) (idempotencyport.Store, CleanupFunc)

func RunProfileRepo(t *testing.T, newHarness ProfileRepoFactory) {
	t.Helper()
	ctx := context.Background()

	h := newHarness(t)
	if h.Cleanup != nil {
		t.Cleanup(h.Cleanup)
	}

	if _, err := h.Repo.GetBySubject(ctx, "auth0|absent"); !errors.Is(err, profilerepoport.ErrNotFound) {
		t.Fatalf("GetBySubject absent: err=%v, want ErrNotFound", err)
	}

	cols, err := h.Repo.Columns(ctx)
	if err != nil {
		t.Fatalf("Columns: %v", err)
	}
	for _, c := range profilerepoport.BaseColumns {
		if !cols.Has(c) {
			t.Fatalf("Columns missing base column %q", c)
		}
	}

	now := time.Unix(1000, 0).UTC()
	bio := "initial bio"
	company := "Acme"
	birthday := time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)
	sub := domain.SubjectID("auth0|contract")
	h.Seed(t, profilerepoport.Profile{
		Subject:   sub,
		Email:     "contract@example.com",
		FirstName: "Ana",
		LastName:  "Lim",
		FullName:  "Ana Lim",
		Bio:       &bio,
		Company:   &company,
		Birthday:  &birthday,
		CreatedAt: now,
		UpdatedAt: now,
	})

	got, err := h.Repo.GetBySubject(ctx, sub)
	if err != nil {
		t.Fatalf("GetBySubject: %v", err)
	}
	if got.FirstName != "Ana" || got.LastName != "Lim" || got.FullName != "Ana Lim" {
		t.Fatalf("unexpected names: %+v", got)
	}
	if got.Email != "contract@example.com" {
		t.Fatalf("email=%q", got.Email)
	}
	if got.Bio == nil || *got.Bio != "initial bio" {
		t.Fatalf("bio=%v", got.Bio)
	}
	if cols.Has("company") && (got.Company == nil || *got.Company != "Acme") {
		t.Fatalf("company=%v", got.Company)
	}
	if cols.Has("birthday") && (got.Birthday == nil || !got.Birthday.Equal(birthday)) {
		t.Fatalf("birthday=%v", got.Birthday)
	}

	// Full update through the repository interface. The write stamp is the
	// caller's to set and must be persisted as given.
	updated := got
	updated.FirstName = "Maria"
	updated.FullName = "Maria Lim"
	newBio := "updated bio"
	updated.Bio = &newBio
	updated.Completed = true
	updated.UpdatedAt = time.Unix(2000, 0).UTC()

	out, err := h.Repo.Update(ctx, updated, cols)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if out.FirstName != "Maria" || out.FullName != "Maria Lim" {
		t.Fatalf("updated names: %+v", out)
	}
	if out.Bio == nil || *out.Bio != "updated bio" {
		t.Fatalf("updated bio=%v", out.Bio)
	}
	if cols.Has("completed_data") && !out.Completed {
		t.Fatalf("completed not persisted")
	}
	if !out.UpdatedAt.Equal(updated.UpdatedAt) {
		t.Fatalf("UpdatedAt=%v, want %v", out.UpdatedAt, updated.UpdatedAt)
	}

	reread, err := h.Repo.GetBySubject(ctx, sub)
	if err != nil {
		t.Fatalf("GetBySubject after update: %v", err)
	}
	if reread.FirstName != "Maria" {
		t.Fatalf("update not visible on re-read: %+v", reread)
	}

	// Update of a missing subject reports not-found without creating a row.
	missing := updated
	missing.Subject = "auth0|nobody"
	if _, err := h.Repo.Update(ctx, missing, cols); !errors.Is(err, profilerepoport.ErrNotFound) {
		t.Fatalf("Update absent: err=%v, want ErrNotFound", err)
	}
}

func RunWorkStatusRepo(t *testing.T, newRepo WorkStatusRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	sub := domain.SubjectID("auth0|ws")
	if _, err := repo.GetBySubject(ctx, sub); !errors.Is(err, workstatusrepoport.ErrNotFound) {
		t.Fatalf("GetBySubject absent: err=%v, want ErrNotFound", err)
	}

	pos := "Backend Engineer"
	if err := repo.Upsert(ctx, sub, &pos); err != nil {
		t.Fatalf("Upsert create: %v", err)
	}
	ws, err := repo.GetBySubject(ctx, sub)
	if err != nil {
		t.Fatalf("GetBySubject: %v", err)
	}
	if ws.CurrentPosition == nil || *ws.CurrentPosition != pos {
		t.Fatalf("currentPosition=%v", ws.CurrentPosition)
	}

	// Second upsert with nil clears the mirrored position.
	if err := repo.Upsert(ctx, sub, nil); err != nil {
		t.Fatalf("Upsert clear: %v", err)
	}
	ws2, err := repo.GetBySubject(ctx, sub)
	if err != nil {
		t.Fatalf("GetBySubject after clear: %v", err)
	}
	if ws2.CurrentPosition != nil {
		t.Fatalf("currentPosition=%v, want nil", *ws2.CurrentPosition)
	}
	if !ws2.CreatedAt.Equal(ws.CreatedAt) {
		t.Fatalf("CreatedAt changed on upsert: %v -> %v", ws.CreatedAt, ws2.CreatedAt)
	}
}

func RunResumeRepo(t *testing.T, newHarness ResumeRepoFactory) {
	t.Helper()
	ctx := context.Background()

	h := newHarness(t)
	if h.Cleanup != nil {
		t.Cleanup(h.Cleanup)
	}

	sub := domain.SubjectID("auth0|resumes")
	if _, err := h.Repo.GetLatestBySubject(ctx, sub); !errors.Is(err, resumerepoport.ErrNotFound) {
		t.Fatalf("GetLatestBySubject absent: err=%v, want ErrNotFound", err)
	}

	older := resumerepoport.Resume{
		ID:        domain.ResumeID(uuid.NewString()),
		Subject:   sub,
		Slug:      "ana-lim-01",
		UpdatedAt: time.Unix(1000, 0).UTC(),
	}
	newer := resumerepoport.Resume{
		ID:        domain.ResumeID(uuid.NewString()),
		Subject:   sub,
		Slug:      "ana-lim-02",
		UpdatedAt: time.Unix(2000, 0).UTC(),
	}
	h.Seed(t, older)
	h.Seed(t, newer)

	latest, err := h.Repo.GetLatestBySubject(ctx, sub)
	if err != nil {
		t.Fatalf("GetLatestBySubject: %v", err)
	}
	if latest.ID != newer.ID {
		t.Fatalf("latest=%q, want %q", latest.ID, newer.ID)
	}

	// A slug is taken when another live resume holds it; a resume never
	// collides with itself.
	taken, err := h.Repo.SlugTaken(ctx, "ana-lim-01", newer.ID)
	if err != nil {
		t.Fatalf("SlugTaken: %v", err)
	}
	if !taken {
		t.Fatalf("expected ana-lim-01 taken by res-old")
	}
	taken, err = h.Repo.SlugTaken(ctx, "ana-lim-02", newer.ID)
	if err != nil {
		t.Fatalf("SlugTaken self: %v", err)
	}
	if taken {
		t.Fatalf("resume must not collide with its own slug")
	}

	if err := h.Repo.UpdateSlug(ctx, domain.ResumeID(uuid.NewString()), "x"); !errors.Is(err, resumerepoport.ErrNotFound) {
		t.Fatalf("UpdateSlug absent: err=%v, want ErrNotFound", err)
	}
	if err := h.Repo.UpdateSlug(ctx, newer.ID, "maria-lim-02"); err != nil {
		t.Fatalf("UpdateSlug: %v", err)
	}
	latest, err = h.Repo.GetLatestBySubject(ctx, sub)
	if err != nil {
		t.Fatalf("GetLatestBySubject after UpdateSlug: %v", err)
	}
	if latest.Slug != "maria-lim-02" {
		t.Fatalf("slug=%q", latest.Slug)
	}

	if err := h.Repo.UpdateReferences(ctx, newer.ID, "maria-lim-02"); err != nil {
		t.Fatalf("UpdateReferences: %v", err)
	}
	if h.ReferenceSlug != nil {
		slug, ok := h.ReferenceSlug(t, newer.ID)
		if !ok || slug != "maria-lim-02" {
			t.Fatalf("reference slug=%q ok=%v", slug, ok)
		}
	}
}

func RunIdempotencyStore(t *testing.T, newStore IdemStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	fp := idempotencyport.Fingerprint{
		Key:      "k-1",
		Subject:  domain.SubjectID("auth0|idem"),
		Method:   "PATCH",
		Route:    "/v1/profile",
		BodyHash: "",
	}
	if _, ok, err := store.Get(ctx, fp); err != nil || ok {
		t.Fatalf("Get miss: ok=%v err=%v", ok, err)
	}

	rec := idempotencyport.Record{
		StatusCode:  0,
		ContentType: "text/plain",
		Body:        []byte("hash-abc"),
		CreatedAt:   time.Unix(123, 0).UTC(),
	}
	if err := store.Put(ctx, fp, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if string(got.Body) != "hash-abc" || got.ContentType != "text/plain" || got.StatusCode != 0 {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Overwrite semantics.
	rec2 := rec
	rec2.Body = []byte("hash-def")
	if err := store.Put(ctx, fp, rec2); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, ok, err = store.Get(ctx, fp)
	if err != nil || !ok || string(got.Body) != "hash-def" {
		t.Fatalf("expected overwritten record, got ok=%v err=%v body=%q", ok, err, string(got.Body))
	}

	// Fingerprint dimensions are discriminating: a different body hash misses.
	fp2 := fp
	fp2.BodyHash = "other"
	if _, ok, err := store.Get(ctx, fp2); err != nil || ok {
		t.Fatalf("Get different hash: ok=%v err=%v", ok, err)
	}
}
