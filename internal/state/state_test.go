package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/webclipper/internal/domain"
)

func TestNewStartsOnRoot(t *testing.T) {
	st := New()
	pathname, _, ok := st.CurrentClip()
	assert.Equal(t, "/", pathname)
	assert.False(t, ok)
}

func TestCurrentClipFollowsRoute(t *testing.T) {
	st := New()
	st.SetClip("/editor", domain.TextClip("hello"))
	st.SetClip("/plugins/screenshot", domain.Clip{Image: &domain.ImageClip{DataURL: "data:,", Width: 1, Height: 1}})

	assert.Equal(t, "/", st.Pathname())
	st.SetRoute("/editor")
	assert.Equal(t, "/editor", st.Pathname())
	pathname, clip, ok := st.CurrentClip()
	require.True(t, ok)
	assert.Equal(t, "/editor", pathname)
	assert.Equal(t, "hello", clip.Text)

	st.SetRoute("/plugins/screenshot")
	_, clip, ok = st.CurrentClip()
	require.True(t, ok)
	assert.True(t, clip.IsImage())
}

func TestRecordRunOverwritesPreviousRun(t *testing.T) {
	st := New()

	st.RecordRun("uploadimage", "run-1", "/editor", "first")
	st.RecordRun("uploadimage", "run-2", "/editor", "second")
	st.RecordRun("pagelink", "run-3", "/editor", nil)

	rec, ok := st.Run("uploadimage")
	require.True(t, ok)
	assert.Equal(t, "run-2", rec.RunID)
	assert.Equal(t, "second", rec.Result)
	assert.Len(t, st.Snapshot().ExtensionRuns, 2)
}

func TestRecordRunWithClipReplacesRouteClip(t *testing.T) {
	st := New()
	st.SetClip("/editor", domain.TextClip("before"))

	st.RecordRun("uploadimage", "run-1", "/editor", domain.TextClip("after"))

	assert.Equal(t, "after", st.Snapshot().Clipper.ClipperData["/editor"].Text)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	st := New()
	st.SetAccounts([]domain.Account{{ID: "a", Type: "yuque", Info: map[string]string{"access_token": "t"}}}, "a")
	st.SetClip("/img", domain.Clip{Image: &domain.ImageClip{Width: 10}})

	snap := st.Snapshot()
	snap.UserPreference.Accounts[0].Info["access_token"] = "mutated"
	snap.Clipper.ClipperData["/img"].Image.Width = 99

	again := st.Snapshot()
	assert.Equal(t, "t", again.UserPreference.Accounts[0].Info["access_token"])
	assert.Equal(t, 10, again.Clipper.ClipperData["/img"].Image.Width)
}

func TestCurrentAccountFallsBackToDefault(t *testing.T) {
	st := New()
	st.SetAccounts([]domain.Account{
		{ID: "a", Type: "yuque"},
		{ID: "b", Type: "github"},
	}, "b")

	acc, ok := st.CurrentAccount()
	require.True(t, ok)
	assert.Equal(t, "b", acc.ID)
	assert.Equal(t, "github", st.CurrentAccountType())

	st.SetDefaultAccountID("a")
	assert.Equal(t, "yuque", st.CurrentAccountType())

	// Removing the current account moves selection to the new default.
	st.SetAccounts([]domain.Account{{ID: "b", Type: "github"}}, "b")
	assert.Equal(t, "github", st.CurrentAccountType())
}

func TestVerificationFlow(t *testing.T) {
	st := New()
	st.StartVerification("yuque", map[string]string{"access_token": "t"})

	f := st.InitializeForm()
	assert.True(t, f.Visible)
	assert.True(t, f.Verifying)

	st.VerificationFailed()
	f = st.InitializeForm()
	assert.False(t, f.Verifying)
	assert.False(t, f.Verified)
	assert.Equal(t, "yuque", f.Type, "form survives a failed verification")
	assert.Equal(t, "t", f.Info["access_token"])

	st.VerificationSucceeded(domain.UserInfo{Name: "n"}, []domain.Repository{{ID: "r1"}, {ID: "r2"}})
	f = st.InitializeForm()
	assert.True(t, f.Verified)
	require.NotNil(t, f.UserInfo)
	assert.Equal(t, "n", f.UserInfo.Name)
	assert.Equal(t, "r1", f.DefaultRepositoryID)

	st.ResetInitializeForm()
	assert.False(t, st.InitializeForm().Visible)
}

func TestStartVerificationClearsPreviousResult(t *testing.T) {
	st := New()
	st.StartVerification("yuque", map[string]string{"access_token": "a"})
	st.VerificationSucceeded(domain.UserInfo{Login: "a"}, []domain.Repository{{ID: "repoA"}})

	st.StartVerification("yuque", map[string]string{"access_token": "b"})
	f := st.InitializeForm()
	assert.Nil(t, f.UserInfo)
	assert.Empty(t, f.Repositories)
	assert.Empty(t, f.DefaultRepositoryID)

	st.VerificationSucceeded(domain.UserInfo{Login: "b"}, []domain.Repository{{ID: "repoB"}})
	assert.Equal(t, "repoB", st.InitializeForm().DefaultRepositoryID)
}

func TestVerificationKeepsKnownRepository(t *testing.T) {
	st := New()
	st.StartVerification("yuque", nil)
	st.SetFormDefaultRepository("r2")
	st.VerificationSucceeded(domain.UserInfo{}, []domain.Repository{{ID: "r1"}, {ID: "r2"}})
	assert.Equal(t, "r2", st.InitializeForm().DefaultRepositoryID)

	st.SetFormDefaultRepository("gone")
	st.VerificationSucceeded(domain.UserInfo{}, []domain.Repository{{ID: "r1"}})
	assert.Equal(t, "r1", st.InitializeForm().DefaultRepositoryID)
}

func TestHydrate(t *testing.T) {
	st := New()
	st.Hydrate(domain.Preferences{
		Accounts:         []domain.Account{{ID: "a", Type: "yuque"}},
		DefaultAccountID: "a",
		DefaultPluginID:  "uploadimage",
		ShowLineNumber:   true,
	})

	snap := st.Snapshot()
	assert.Equal(t, "a", snap.Clipper.CurrentAccountID)
	assert.Equal(t, "uploadimage", snap.UserPreference.DefaultPluginID)
	assert.True(t, snap.UserPreference.ShowLineNumber)
	assert.False(t, snap.UserPreference.LiveRendering)
}
