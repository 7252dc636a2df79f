package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreDescriptor(t *testing.T) {
	assert.Equal(t, DescIdentical, ScoreDescriptor("(I)V", "(I)V"))
	assert.Equal(t, DescSameShape, ScoreDescriptor("(Ljava/lang/String;I)V", "(La;I)V"))
	assert.Equal(t, DescIncompatible, ScoreDescriptor("(I)V", "(J)V"))
	assert.Equal(t, DescUnknown, ScoreDescriptor("", "I"))
	assert.Equal(t, "same_shape", DescSameShape.String())
}

func TestRankCandidates(t *testing.T) {
	pool := []Member{
		{Name: "targetField", Desc: "I"},
		{Name: "targetFeld", Desc: "J"},
		{Name: "other", Desc: "I"},
	}

	ranked := RankCandidates(Member{Name: "targetField", Desc: "I"}, pool)
	require.Len(t, ranked, 3)
	assert.Equal(t, "targetField", ranked.Best().Member.Name)
	assert.InDelta(t, 1.0, ranked[0].CombinedScore, 1e-9)
	assert.Equal(t, "targetFeld", ranked[1].Member.Name)
	assert.Len(t, ranked.Top(2), 2)
	assert.Nil(t, CandidateList(nil).Best())
}

func TestSuggest(t *testing.T) {
	pool := []Member{
		{Name: "method_1001", Desc: "()V"},
		{Name: "method_1002", Desc: "()V"},
		{Name: "field_77", Desc: "I"},
		{Name: "unrelated", Desc: "(Ljava/lang/Object;)Z"},
	}

	got := Suggest(Member{Name: "method_1003", Desc: "()V"}, pool, 2)
	assert.Equal(t, []string{"method_1001()V", "method_1002()V"}, got)

	got = Suggest(Member{Name: "field_78"}, pool, 3)
	assert.Equal(t, []string{"field_77:I"}, got)

	assert.Nil(t, Suggest(Member{Name: "zzzz"}, pool, 3))
	assert.Nil(t, Suggest(Member{Name: "method_1003"}, nil, 3))
}
