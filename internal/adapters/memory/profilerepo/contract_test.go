package profilerepo

import (
	"testing"

	"github.com/talentpoint-hq/candidate-profile-api/internal/adapters/contracttest"
	profilerepoport "github.com/talentpoint-hq/candidate-profile-api/internal/ports/out/profilerepo"
)

func TestContract_ProfileRepo(t *testing.T) {
	contracttest.RunProfileRepo(t, func(t *testing.T) contracttest.ProfileRepoHarness {
		t.Helper()
		repo := NewRepo()
		return contracttest.ProfileRepoHarness{
			Repo: repo,
			Seed: func(t *testing.T, p profilerepoport.Profile) {
				t.Helper()
				repo.Seed(p)
			},
		}
	})
}
