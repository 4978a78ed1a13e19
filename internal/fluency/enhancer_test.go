package fluency

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddConnectors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single sentence", "جملة واحدة.", "جملة واحدة."},
		{"two sentences", "أولى. ثانية.", "أولى. ثانية."},
		{"three sentences", "أولى. ثانية. ثالثة", "أولى. أيضاً، ثانية. ثالثة"},
		{"already connected", "أولى. كذلك ثانية. ثالثة", "أولى. كذلك ثانية. ثالثة"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddConnectors(tt.in))
		})
	}
}

func TestRemoveRedundancy(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"the the cat", "the cat"},
		{"نظام نظام ذكي", "نظام ذكي"},
		{"مرحباً مرحباً بك", "مرحباً بك"},
		{"theme the", "theme the"},
		{"no repeats here", "no repeats here"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, RemoveRedundancy(tt.in))
		})
	}
}

func TestImproveClarity(t *testing.T) {
	assert.Equal(t, "نص.", ImproveClarity("نص"))
	assert.Equal(t, "نص؟", ImproveClarity("نص؟"))
	assert.Equal(t, "نص!", ImproveClarity("  نص!  "))
	assert.Equal(t, "نص 😊", ImproveClarity("نص 😊"))
	assert.Equal(t, "كلمة ثم كلمة.", ImproveClarity("كلمة   ثم كلمة"))
	assert.Equal(t, "", ImproveClarity("   "))
}

func TestAdjustTone(t *testing.T) {
	assert.Equal(t, "شكراً", AdjustTone("شكراً 😊", StyleFormal))
	assert.Equal(t, "أهلاً! كيف يمكنني مساعدتك؟", AdjustTone("أهلاً! 🌟 كيف يمكنني مساعدتك؟", StyleFormal))
	assert.Equal(t, "شكراً. 😊", AdjustTone("شكراً.", StyleFriendly))
	assert.Equal(t, "العفو 😊", AdjustTone("العفو 😊", StyleFriendly))
	assert.Equal(t, "شكراً.", AdjustTone("شكراً.", StyleInformal))
}

func TestScores(t *testing.T) {
	assert.InDelta(t, 0.7, ClarityScore("قصير"), 1e-9)
	assert.InDelta(t, 1.0, ClarityScore("هذه جملة واضحة بطول مناسب للقياس."), 1e-9)
	assert.InDelta(t, 0.8, ClarityScore("هذه جملة جملة فيها تكرار واضح."), 1e-9)

	assert.InDelta(t, 0.5, FluencyScore("بدون روابط"), 1e-9)
	assert.InDelta(t, 0.6, FluencyScore("أولى. أيضاً، ثانية"), 1e-9)
}

func TestEnhance(t *testing.T) {
	e := NewEnhancer(nil)

	res := e.Enhance("نظام ذكاء اصطناعي. ثلاث نظريات. لا يستخدم شبكات عصبية", StyleFormal)
	assert.Equal(t, "نظام ذكاء اصطناعي. أيضاً، ثلاث نظريات. لا يستخدم شبكات عصبية.", res.Enhanced)
	assert.Greater(t, res.LengthChange, 0)
	assert.InDelta(t, 0.6, res.Fluency, 1e-9)
	assert.GreaterOrEqual(t, res.Clarity, 0.5)
	assert.LessOrEqual(t, res.Clarity, 1.0)

	friendly := e.Enhance("فهمت", StyleFriendly)
	assert.Equal(t, "فهمت. 😊", friendly.Enhanced)
	assert.Equal(t, "فهمت", friendly.Original)
}

func TestParseStyleAndDetail(t *testing.T) {
	style, err := ParseStyle("formal")
	require.NoError(t, err)
	assert.Equal(t, StyleFormal, style)
	_, err = ParseStyle("poetic")
	assert.Error(t, err)

	level, err := ParseDetailLevel(" brief ")
	require.NoError(t, err)
	assert.Equal(t, DetailBrief, level)
	_, err = ParseDetailLevel("endless")
	assert.Error(t, err)
}

func TestApplyDetail(t *testing.T) {
	text := "الجملة الأولى. الجملة الثانية؟ الثالثة!"

	assert.Equal(t, "الجملة الأولى.", ApplyDetail(text, DetailBrief))
	assert.Equal(t, text, ApplyDetail(text, DetailMedium))

	detailed := ApplyDetail(text, DetailDetailed)
	assert.True(t, strings.HasSuffix(detailed, FollowUp))
	assert.Equal(t, detailed, ApplyDetail(detailed, DetailComprehensive))

	assert.Equal(t, "سؤال؟", ApplyDetail("سؤال؟ بقية", DetailBrief))
	assert.Equal(t, "بدون علامة", ApplyDetail("بدون علامة", DetailBrief))
	assert.Equal(t, "", ApplyDetail("", DetailDetailed))
}
