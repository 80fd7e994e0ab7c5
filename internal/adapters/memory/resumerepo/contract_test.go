package resumerepo

import (
	"testing"

	"github.com/talentpoint-hq/candidate-profile-api/internal/adapters/contracttest"
	"github.com/talentpoint-hq/candidate-profile-api/internal/domain"
	resumerepoport "github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/resumerepo"
)

func TestContract_ResumeRepo(t *testing.T) {
	contracttest.RunResumeRepo(t, func(t *testing.T) contracttest.ResumeRepoHarness {
		t.Helper()
		repo := NewRepo()
		return contracttest.ResumeRepoHarness{
			Repo: repo,
			Seed: func(t *testing.T, res resumerepoport.Resume) {
				t.Helper()
				repo.Seed(res)
			},
			ReferenceSlug: func(t *testing.T, id domain.ResumeID) (string, bool) {
				t.Helper()
				return repo.ReferenceSlug(id)
			},
		}
	})
}
