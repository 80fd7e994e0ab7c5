package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	memclock "github.com/talentpoint-hq/candidate-profile-api/internal/adapters/memory/clock"
	memidempotency "github.com/talentpoint-hq/candidate-profile-api/internal/adapters/memory/idempotency"
	memidentity "github.com/talentpoint-hq/candidate-profile-api/internal/adapters/memory/identity"
	memnotifier "github.com/talentpoint-hq/candidate-profile-api/internal/adapters/memory/notifier"
	memprofilerepo "github.com/talentpoint-hq/candidate-profile-api/internal/adapters/memory/profilerepo"
	memresumerepo "github.com/talentpoint-hq/candidate-profile-api/internal/adapters/memory/resumerepo"
	memworkstatusrepo "github.com/talentpoint-hq/candidate-profile-api/internal/adapters/memory/workstatusrepo"
	"github.com/talentpoint-hq/candidate-profile-api/internal/app/profiles"
	"github.com/talentpoint-hq/candidate-profile-api/internal/domain"
	"github.com/talentpoint-hq/candidate-profile-api/internal/platform/auth/tokenverifier"
	"github.com/talentpoint-hq/candidate-profile-api/internal/platform/config"
	"github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/idempotency"
	"github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/profilerepo"
)

const testHMACSecret = "test-secret"

type routerFixture struct {
	handler  http.Handler
	profiles *memprofilerepo.Repo
}

func newTestRouter(t *testing.T) routerFixture {
	t.Helper()

	authCfg := config.AuthConfig{
		Mode:       config.AuthModeJWT,
		Issuer:     "test-iss",
		Audience:   "test-aud",
		HMACSecret: testHMACSecret,
		ClockSkew:  time.Minute,
	}
	v, err := tokenverifier.New(authCfg)
	if err != nil {
		t.Fatalf("tokenverifier.New: %v", err)
	}

	clk := memclock.NewManualClock(time.Unix(100, 0).UTC())
	repo := memprofilerepo.NewRepo()
	svc := profiles.NewService(
		repo,
		memworkstatusrepo.NewRepo(),
		memresumerepo.NewRepo(),
		memidentity.NewProvider(),
		memnotifier.NewNotifier(),
		clk,
		nil,
	)
	api := NewServer(svc, memidempotency.NewStore(), clk, nil)
	h := NewRouter(api, NewAuthMiddleware(v))

	return routerFixture{handler: h, profiles: repo}
}

func mintToken(t *testing.T, subject string) string {
	t.Helper()

	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": "test-iss",
		"aud": "test-aud",
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(10 * time.Minute).Unix(),
	})
	signed, err := tok.SignedString([]byte(testHMACSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func seedProfile(repo *memprofilerepo.Repo, subject string) {
	repo.Seed(profilerepo.Profile{
		Subject:   domain.SubjectID(subject),
		Email:     "jose@example.com",
		FirstName: "Jose",
		LastName:  "Santos",
		FullName:  "Jose Santos",
		CreatedAt: time.Unix(50, 0).UTC(),
		UpdatedAt: time.Unix(50, 0).UTC(),
	})
}

func TestGetProfile_Unauthorized_WithoutToken(t *testing.T) {
	t.Parallel()

	fx := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestGetProfile_NotFound_404(t *testing.T) {
	t.Parallel()

	fx := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, "auth0|missing"))
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var er errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if er.Error.Code != "PROFILE_NOT_FOUND" {
		t.Fatalf("code=%q", er.Error.Code)
	}
}

func TestGetProfile_OK(t *testing.T) {
	t.Parallel()

	fx := newTestRouter(t)
	seedProfile(fx.profiles, "auth0|jose")

	req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, "auth0|jose"))
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp getProfileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Profile.FullName != "Jose Santos" {
		t.Fatalf("fullName=%q", resp.Profile.FullName)
	}
	if string(resp.Profile.Email) != "jose@example.com" {
		t.Fatalf("email=%q", resp.Profile.Email)
	}
}

func TestUpdateProfile_MalformedJSON_400(t *testing.T) {
	t.Parallel()

	fx := newTestRouter(t)
	seedProfile(fx.profiles, "auth0|jose")

	req := httptest.NewRequest(http.MethodPatch, "/v1/profile", bytes.NewBufferString(`{"firstName":`))
	req.Header.Set("Authorization", "Bearer "+mintToken(t, "auth0|jose"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestUpdateProfile_NullFirstName_422(t *testing.T) {
	t.Parallel()

	fx := newTestRouter(t)
	seedProfile(fx.profiles, "auth0|jose")

	req := httptest.NewRequest(http.MethodPatch, "/v1/profile", bytes.NewBufferString(`{"firstName":null}`))
	req.Header.Set("Authorization", "Bearer "+mintToken(t, "auth0|jose"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var er errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if er.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("code=%q", er.Error.Code)
	}
}

func TestUpdateProfile_PartialUpdate_KeepsUnspecifiedFields(t *testing.T) {
	t.Parallel()

	fx := newTestRouter(t)
	seedProfile(fx.profiles, "auth0|jose")
	authz := "Bearer " + mintToken(t, "auth0|jose")

	// Set a bio first.
	req := httptest.NewRequest(http.MethodPatch, "/v1/profile", bytes.NewBufferString(`{"bio":"hello"}`))
	req.Header.Set("Authorization", authz)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	// A later update that omits bio must not clear it.
	req2 := httptest.NewRequest(http.MethodPatch, "/v1/profile", bytes.NewBufferString(`{"location":"Manila"}`))
	req2.Header.Set("Authorization", authz)
	rec2 := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec2.Code, rec2.Body.String())
	}

	var resp updateProfileResponse
	if err := json.Unmarshal(rec2.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Profile.Bio == nil || *resp.Profile.Bio != "hello" {
		t.Fatalf("bio=%v, want kept", resp.Profile.Bio)
	}
	if resp.Profile.Location == nil || *resp.Profile.Location != "Manila" {
		t.Fatalf("location=%v", resp.Profile.Location)
	}
}

func TestUpdateProfile_NullClearsField(t *testing.T) {
	t.Parallel()

	fx := newTestRouter(t)
	seedProfile(fx.profiles, "auth0|jose")
	authz := "Bearer " + mintToken(t, "auth0|jose")

	req := httptest.NewRequest(http.MethodPatch, "/v1/profile", bytes.NewBufferString(`{"phone":"+63 900 000 0000"}`))
	req.Header.Set("Authorization", authz)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	req2 := httptest.NewRequest(http.MethodPatch, "/v1/profile", bytes.NewBufferString(`{"phone":null}`))
	req2.Header.Set("Authorization", authz)
	rec2 := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec2.Code, rec2.Body.String())
	}

	var resp updateProfileResponse
	if err := json.Unmarshal(rec2.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Profile.Phone != nil {
		t.Fatalf("phone=%v, want cleared", *resp.Profile.Phone)
	}
}

func TestUpdateProfile_NameChange_RecomputesFullName(t *testing.T) {
	t.Parallel()

	fx := newTestRouter(t)
	seedProfile(fx.profiles, "auth0|jose")

	req := httptest.NewRequest(http.MethodPatch, "/v1/profile", bytes.NewBufferString(`{"firstName":"  Maria  ","lastName":"Clara"}`))
	req.Header.Set("Authorization", "Bearer "+mintToken(t, "auth0|jose"))
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}

	var resp updateProfileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Profile.FirstName != "Maria" {
		t.Fatalf("firstName=%q", resp.Profile.FirstName)
	}
	if resp.Profile.FullName != "Maria Clara" {
		t.Fatalf("fullName=%q", resp.Profile.FullName)
	}
}

func TestUpdateProfile_IdempotentReplayAndConflictOnReuse(t *testing.T) {
	t.Parallel()

	fx := newTestRouter(t)
	seedProfile(fx.profiles, "auth0|jose")
	authz := "Bearer " + mintToken(t, "auth0|jose")

	body := `{"bio":"first write"}`
	req := httptest.NewRequest(http.MethodPatch, "/v1/profile", bytes.NewBufferString(body))
	req.Header.Set("Authorization", authz)
	req.Header.Set("Idempotency-Key", "key-1")
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first status=%d body=%s", rec.Code, rec.Body.String())
	}

	// Same key, same body: replay of the stored response.
	req2 := httptest.NewRequest(http.MethodPatch, "/v1/profile", bytes.NewBufferString(body))
	req2.Header.Set("Authorization", authz)
	req2.Header.Set("Idempotency-Key", "key-1")
	rec2 := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusOK {
		t.Fatalf("replay status=%d body=%s", rec2.Code, rec2.Body.String())
	}
	if rec.Body.String() != rec2.Body.String() {
		t.Fatalf("replayed body differs:\n%s\nvs\n%s", rec.Body.String(), rec2.Body.String())
	}

	// Same key, different body: rejected.
	req3 := httptest.NewRequest(http.MethodPatch, "/v1/profile", bytes.NewBufferString(`{"bio":"other write"}`))
	req3.Header.Set("Authorization", authz)
	req3.Header.Set("Idempotency-Key", "key-1")
	rec3 := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec3, req3)
	if rec3.Code != http.StatusConflict {
		t.Fatalf("reuse status=%d body=%s", rec3.Code, rec3.Body.String())
	}
	var er errorResponse
	if err := json.Unmarshal(rec3.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if er.Error.Code != "IDEMPOTENCY_KEY_REUSE" {
		t.Fatalf("code=%q", er.Error.Code)
	}
}

// flakyIdemStore fails writes matching failPut while delegating everything
// else to the wrapped store.
type flakyIdemStore struct {
	idempotency.Store
	failPut func(fp idempotency.Fingerprint) bool
}

func (s flakyIdemStore) Put(ctx context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	if s.failPut != nil && s.failPut(fp) {
		return errors.New("idempotency store unavailable")
	}
	return s.Store.Put(ctx, fp, rec)
}

func newFlakyIdemRouter(t *testing.T, failPut func(fp idempotency.Fingerprint) bool) routerFixture {
	t.Helper()

	clk := memclock.NewManualClock(time.Unix(100, 0).UTC())
	repo := memprofilerepo.NewRepo()
	svc := profiles.NewService(
		repo,
		memworkstatusrepo.NewRepo(),
		memresumerepo.NewRepo(),
		memidentity.NewProvider(),
		memnotifier.NewNotifier(),
		clk,
		nil,
	)
	store := flakyIdemStore{Store: memidempotency.NewStore(), failPut: failPut}
	h := NewRouter(NewServer(svc, store, clk, nil), NewDevAuthMiddleware("dev|local"))
	return routerFixture{handler: h, profiles: repo}
}

func TestUpdateProfile_FingerprintStoreFailure_FailsRequest(t *testing.T) {
	t.Parallel()

	// The fingerprint write backs the key-reuse guard; losing it must not be
	// silent.
	fx := newFlakyIdemRouter(t, func(fp idempotency.Fingerprint) bool { return fp.BodyHash == "" })
	seedProfile(fx.profiles, "dev|local")

	req := httptest.NewRequest(http.MethodPatch, "/v1/profile", bytes.NewBufferString(`{"bio":"x"}`))
	req.Header.Set("Idempotency-Key", "key-1")
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	// The failure happened before the update; nothing was applied.
	p, err := fx.profiles.GetBySubject(context.Background(), "dev|local")
	if err != nil {
		t.Fatalf("GetBySubject: %v", err)
	}
	if p.Bio != nil {
		t.Fatalf("bio=%q, want untouched", *p.Bio)
	}
}

func TestUpdateProfile_ResponseStoreFailure_StillSucceeds(t *testing.T) {
	t.Parallel()

	// Once the update is committed, a lost response record only costs the
	// replay.
	fx := newFlakyIdemRouter(t, func(fp idempotency.Fingerprint) bool { return fp.BodyHash != "" })
	seedProfile(fx.profiles, "dev|local")

	req := httptest.NewRequest(http.MethodPatch, "/v1/profile", bytes.NewBufferString(`{"bio":"kept"}`))
	req.Header.Set("Idempotency-Key", "key-1")
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var resp updateProfileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Profile.Bio == nil || *resp.Profile.Bio != "kept" {
		t.Fatalf("bio=%v", resp.Profile.Bio)
	}
}

func TestHealthz_NoAuthRequired(t *testing.T) {
	t.Parallel()

	fx := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	fx.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestDevAuthMiddleware_UsesDebugSubjectHeader(t *testing.T) {
	t.Parallel()

	clk := memclock.NewManualClock(time.Unix(100, 0).UTC())
	repo := memprofilerepo.NewRepo()
	svc := profiles.NewService(
		repo,
		memworkstatusrepo.NewRepo(),
		memresumerepo.NewRepo(),
		memidentity.NewProvider(),
		memnotifier.NewNotifier(),
		clk,
		nil,
	)
	h := NewRouter(NewServer(svc, memidempotency.NewStore(), clk, nil), NewDevAuthMiddleware("dev|local"))
	seedProfile(repo, "dev|other")

	req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
	req.Header.Set("X-Debug-Subject", "dev|other")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}
