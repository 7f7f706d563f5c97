package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"message-service/internal/models"
)

func TestCriteriaIsImmutable(t *testing.T) {
	base := NewCriteria().WithType(models.MessageTypeDirect)
	withSender := base.WithSenderID("alice")

	assert.Equal(t, "", base.SenderID())
	assert.Equal(t, "alice", withSender.SenderID())

	ids := []string{"bob"}
	c := base.WithTargetIDs(ids...)
	ids[0] = "mallory"
	assert.Equal(t, []string{"bob"}, c.TargetIDs())

	got := c.TargetIDs()
	got[0] = "eve"
	assert.Equal(t, []string{"bob"}, c.TargetIDs())
}

func TestCriteriaMode(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     Mode
	}{
		{"sender and single target", NewCriteria().WithSenderID("a").WithTargetIDs("b").WithType(models.MessageTypeDirect), ModeConversation},
		{"sender without type", NewCriteria().WithSenderID("a").WithTargetIDs("b"), ModeConversation},
		{"sender and many targets", NewCriteria().WithSenderID("a").WithTargetIDs("b", "c"), ModeConversation},
		{"no sender", NewCriteria().WithTargetIDs("g").WithType(models.MessageTypeGroup), ModeDirected},
		{"sender without target", NewCriteria().WithSenderID("a"), ModeDirected},
		{"group ignores sender", NewCriteria().WithSenderID("a").WithTargetIDs("g").WithType(models.MessageTypeGroup), ModeDirected},
		{"empty", NewCriteria(), ModeDirected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.criteria.Mode())
		})
	}
}

func TestConversationIsSymmetric(t *testing.T) {
	ab := Conversation("a", "b", models.MessageTypeDirect)
	ba := Conversation("b", "a", models.MessageTypeDirect)

	assert.Equal(t, ClauseConversation, ab.Kind)
	assert.Equal(t, ab.SQL, ba.SQL)
	assert.Equal(t, []any{"a", "b", "DIRECT", "b", "a", "DIRECT"}, ab.Args)
	assert.Equal(t, []any{"b", "a", "DIRECT", "a", "b", "DIRECT"}, ba.Args)
}

func TestBuildConversation(t *testing.T) {
	c := NewCriteria().WithSenderID("alice").WithTargetIDs("bob").WithType(models.MessageTypeDirect)

	spec := Build(c, nil)
	require.Equal(t, ModeConversation, spec.Mode)
	require.Len(t, spec.Clauses, 2)
	assert.Equal(t, ClauseLive, spec.Clauses[0].Kind)
	assert.Equal(t, ClauseConversation, spec.Clauses[1].Kind)
	assert.False(t, spec.Has(ClauseTargetIn))
	assert.False(t, spec.Has(ClauseType))

	q, args, err := spec.ToSQL()
	require.NoError(t, err)
	assert.Contains(t, q, "WHERE m.deleted_at IS NULL AND ((m.sender_id = ?")
	assert.True(t, strings.HasSuffix(q, "ORDER BY m.created_at ASC"))
	assert.Equal(t, []any{"alice", "bob", "DIRECT", "bob", "alice", "DIRECT"}, args)
	assert.Equal(t, 6, strings.Count(q, "?"))
}

func TestBuildConversationUsesFirstTargetOnly(t *testing.T) {
	c := NewCriteria().WithSenderID("alice").WithTargetIDs("bob", "carol")

	_, args, err := Build(c, nil).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, []any{"alice", "bob", "DIRECT", "bob", "alice", "DIRECT"}, args)
}

func TestBuildDirected(t *testing.T) {
	c := NewCriteria().WithTargetIDs("g1", "g2").WithType(models.MessageTypeGroup)

	spec := Build(c, nil)
	require.Equal(t, ModeDirected, spec.Mode)
	assert.True(t, spec.Has(ClauseLive))
	assert.True(t, spec.Has(ClauseTargetIn))
	assert.True(t, spec.Has(ClauseType))
	assert.False(t, spec.Has(ClauseConversation))

	q, args, err := spec.ToSQL()
	require.NoError(t, err)
	assert.Contains(t, q, "m.target_id IN (?, ?)")
	assert.Contains(t, q, "m.type = ?")
	assert.Equal(t, []any{"g1", "g2", "GROUP"}, args)
}

func TestBuildGroupIgnoresSender(t *testing.T) {
	withSender := NewCriteria().WithSenderID("someone").WithTargetIDs("g").WithType(models.MessageTypeGroup)
	withoutSender := NewCriteria().WithTargetIDs("g").WithType(models.MessageTypeGroup)

	q1, args1, err := Build(withSender, nil).ToSQL()
	require.NoError(t, err)
	q2, args2, err := Build(withoutSender, nil).ToSQL()
	require.NoError(t, err)

	assert.Equal(t, q2, q1)
	assert.Equal(t, args2, args1)
}

func TestBuildDegenerate(t *testing.T) {
	spec := Build(NewCriteria().WithType(models.MessageTypeDirect), nil)

	q, args, err := spec.ToSQL()
	require.NoError(t, err)
	assert.Contains(t, q, "WHERE m.deleted_at IS NULL AND m.type = ?")
	assert.NotContains(t, q, "IN (")
	assert.Equal(t, []any{"DIRECT"}, args)

	q, args, err = Build(NewCriteria(), nil).ToSQL()
	require.NoError(t, err)
	assert.Contains(t, q, "WHERE m.deleted_at IS NULL\n")
	assert.Empty(t, args)
}

func TestBuildSort(t *testing.T) {
	c := NewCriteria().WithTargetIDs("g")

	q, _, err := Build(c, &Sort{Column: SortBySenderName, Asc: false}).ToSQL()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(q, "ORDER BY u.username DESC"))

	q, _, err = Build(c, &Sort{Column: SortColumn("1; DROP TABLE messages"), Asc: true}).ToSQL()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(q, "ORDER BY m.created_at ASC"))
}

func TestParseSortColumn(t *testing.T) {
	col, err := ParseSortColumn(" Create_Date ")
	require.NoError(t, err)
	assert.Equal(t, SortByCreateDate, col)

	_, err = ParseSortColumn("m.content")
	assert.ErrorIs(t, err, ErrInvalidSortColumn)
}
