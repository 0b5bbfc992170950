package community

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trendlotto/invest/internal/database"
)

func testRepo(t *testing.T) (*Repository, int64, int64) {
	t.Helper()
	db, err := database.New(database.Config{
		Path: filepath.Join(t.TempDir(), "app.db"),
		Name: "app",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })

	var ids []int64
	for _, name := range []string{"alice", "bob"} {
		res, err := db.Exec(`
			INSERT INTO users (username, hashed_password, membership, created_at)
			VALUES (?, 'x', 'basic', ?)
		`, name, time.Now().Unix())
		require.NoError(t, err)
		id, err := res.LastInsertId()
		require.NoError(t, err)
		ids = append(ids, id)
	}

	return NewRepository(db.Conn(), zerolog.Nop()), ids[0], ids[1]
}

func TestCommentsNewestFirst(t *testing.T) {
	repo, alice, _ := testRepo(t)

	_, err := repo.AddComment(alice, "005930", "first")
	require.NoError(t, err)
	_, err = repo.AddComment(alice, "005930", "second")
	require.NoError(t, err)
	_, err = repo.AddComment(alice, "000660", "other ticker")
	require.NoError(t, err)

	comments, err := repo.ListComments("005930", 50)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].Content)
	assert.Equal(t, "first", comments[1].Content)
	assert.Equal(t, "alice", comments[0].Username)
}

func TestVoteUpsertReplacesChoice(t *testing.T) {
	repo, alice, bob := testRepo(t)

	require.NoError(t, repo.CastVote(alice, "005930", VoteBuy))
	require.NoError(t, repo.CastVote(bob, "005930", VoteSell))

	tally, err := repo.VoteTally("005930")
	require.NoError(t, err)
	assert.Equal(t, Tally{Buy: 1, Sell: 1}, *tally)

	// Changing a vote replaces the previous choice.
	require.NoError(t, repo.CastVote(alice, "005930", VoteHold))

	tally, err = repo.VoteTally("005930")
	require.NoError(t, err)
	assert.Equal(t, Tally{Sell: 1, Hold: 1}, *tally)
}

func TestVoteTallyEmptyTicker(t *testing.T) {
	repo, _, _ := testRepo(t)

	tally, err := repo.VoteTally("999999")
	require.NoError(t, err)
	assert.Equal(t, Tally{}, *tally)
}
