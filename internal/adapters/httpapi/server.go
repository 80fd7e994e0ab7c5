package httpapi

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/talentpoint-hq/candidate-profile-api/internal/app/profiles"
	"github.com/talentpoint-hq/candidate-profile-api/internal/domain"
	platformclock "github.com/talentpoint-hq/candidate-profile-api/internal/platform/clock"
	clockport "github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/clock"
	"github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/idempotency"
)

const profileRoute = "/v1/profile"

// maxBodyBytes bounds PATCH payloads; profile updates are small JSON objects.
const maxBodyBytes = 1 << 20

// Server is the HTTP adapter implementation for the profile endpoints.
type Server struct {
	Profiles *profiles.Service
	Idem     idempotency.Store
	Clk      clockport.Clock
	Log      *zap.Logger
}

func NewServer(profilesSvc *profiles.Service, idem idempotency.Store, clk clockport.Clock, log *zap.Logger) *Server {
	if clk == nil {
		clk = platformclock.NewSystemClock()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		Profiles: profilesSvc,
		Idem:     idem,
		Clk:      clk,
		Log:      log,
	}
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	sub, ok := SubjectFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing subject", nil)
		return
	}

	p, err := s.Profiles.GetProfile(r.Context(), domain.SubjectID(sub))
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, getProfileResponse{Profile: toProfileDTO(p)})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	sub, ok := SubjectFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing subject", nil)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "failed to read request body", nil)
		return
	}

	var req profileUpdateRequest
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "BAD_REQUEST", "malformed JSON body", map[string]any{
			"error": err.Error(),
		})
		return
	}

	// Idempotency handling:
	// - Replay the stored response for same actor+key+route+bodyHash.
	// - Reject same actor+key+route with a different bodyHash (409).
	bodyHash := hashBody(body)
	idemKey := idempotency.Key(strings.TrimSpace(r.Header.Get("Idempotency-Key")))
	if s.Idem != nil && idemKey != "" {
		metaFP := idempotency.Fingerprint{
			Key:      idemKey,
			Subject:  domain.SubjectID(sub),
			Method:   http.MethodPatch,
			Route:    profileRoute,
			BodyHash: "",
		}
		if meta, ok, err := s.Idem.Get(r.Context(), metaFP); err != nil {
			s.writeAppError(w, r, err)
			return
		} else if ok {
			if string(meta.Body) != bodyHash {
				writeError(w, r, http.StatusConflict, "IDEMPOTENCY_KEY_REUSE", "idempotency key reuse with different payload", nil)
				return
			}
		} else {
			// A lost fingerprint write would disable the key-reuse guard for
			// later retries, so it fails the request.
			if err := s.Idem.Put(r.Context(), metaFP, idempotency.Record{
				StatusCode:  0,
				ContentType: "text/plain",
				Body:        []byte(bodyHash),
				CreatedAt:   s.Clk.Now().UTC(),
			}); err != nil {
				s.writeAppError(w, r, err)
				return
			}
		}

		respFP := metaFP
		respFP.BodyHash = bodyHash
		if rec, ok, err := s.Idem.Get(r.Context(), respFP); err != nil {
			s.writeAppError(w, r, err)
			return
		} else if ok && rec.StatusCode == http.StatusOK && strings.HasPrefix(rec.ContentType, "application/json") {
			w.Header().Set("Content-Type", rec.ContentType)
			w.WriteHeader(rec.StatusCode)
			_, _ = w.Write(rec.Body)
			return
		}
	}

	result, err := s.Profiles.UpdateProfile(r.Context(), domain.SubjectID(sub), req.toInput())
	if err != nil {
		s.writeAppError(w, r, err)
		return
	}

	resp := updateProfileResponse{
		Profile:     toProfileDTO(result.Profile),
		SlugChanged: result.SlugChanged,
	}
	if result.SlugChanged {
		slug := result.NewSlug
		resp.NewSlug = &slug
	}

	// Store successful response for replay.
	if s.Idem != nil && idemKey != "" {
		respFP := idempotency.Fingerprint{
			Key:      idemKey,
			Subject:  domain.SubjectID(sub),
			Method:   http.MethodPatch,
			Route:    profileRoute,
			BodyHash: bodyHash,
		}
		if b, err := json.Marshal(resp); err == nil {
			// The update is committed; a lost response record only costs the
			// replay, so the failure is logged and the response still served.
			if err := s.Idem.Put(r.Context(), respFP, idempotency.Record{
				StatusCode:  http.StatusOK,
				ContentType: "application/json",
				Body:        b,
				CreatedAt:   s.Clk.Now().UTC(),
			}); err != nil {
				s.Log.Warn("idempotency response store failed",
					zap.String("key", string(idemKey)),
					zap.Error(err))
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	if ae := (*profiles.Error)(nil); errors.As(err, &ae) {
		writeError(w, r, ae.Status, ae.Code, ae.Message, ae.Details)
		return
	}
	writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func hashBody(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
