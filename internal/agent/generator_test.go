package agent

import (
	"context"
	"testing"

	"github.com/baserah/baserah/internal/inference"
	"github.com/baserah/baserah/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedPicker int

func (p fixedPicker) Pick(n int) int { return int(p) % n }

func TestCandidatesFallBackToStatement(t *testing.T) {
	tpl := DefaultTemplates()

	assert.Equal(t, tpl.Plain[models.IntentStatement], tpl.Candidates("question_unknown", nil))
	assert.Equal(t, tpl.Plain[models.IntentQuestionWhat], tpl.Candidates(models.IntentQuestionWhat, nil))
	assert.Equal(t, tpl.WithKeyword[models.IntentQuestionWhat], tpl.Candidates(models.IntentQuestionWhat, []string{"بصيرة"}))
	assert.Equal(t, tpl.Plain[models.IntentGreeting], tpl.Candidates(models.IntentGreeting, []string{"مرحباً"}))

	for _, intent := range models.AllIntents {
		assert.GreaterOrEqual(t, len(tpl.Plain[intent]), 2, intent)
	}
}

func TestFill(t *testing.T) {
	assert.Equal(t, "سؤال جيد عن بصيرة, نظام.", Fill("سؤال جيد عن {keywords}.", []string{"بصيرة", "نظام"}))
	assert.Equal(t, "بدون متغيرات", Fill("بدون متغيرات", []string{"x"}))
}

func TestOverrideTemplates(t *testing.T) {
	tpl := DefaultTemplates()
	tpl.Override(map[string][]string{"greeting": {"هلا"}, "statement": nil}, map[string][]string{"request": {"طلب {keywords}"}})

	assert.Equal(t, []string{"هلا"}, tpl.Plain[models.IntentGreeting])
	assert.Len(t, tpl.Plain[models.IntentStatement], 2)
	assert.Equal(t, []string{"طلب {keywords}"}, tpl.Candidates(models.IntentRequest, []string{"ساعدني"}))
}

func TestRandPickerIsSeeded(t *testing.T) {
	a, b := NewRandPicker(7), NewRandPicker(7)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Pick(5), b.Pick(5))
	}
	assert.Zero(t, a.Pick(1))
	assert.Zero(t, a.Pick(0))
}

func TestGenerateWithoutReasonerUsesTemplates(t *testing.T) {
	rig := newTestRig(t, 10)

	g := NewGenerator(rig.scorer, nil, nil, WithPicker(fixedPicker(1)))
	resp := g.Generate(context.Background(), "من صنعك؟")

	assert.Equal(t, models.IntentQuestionCreator, resp.Intent)
	assert.Equal(t, models.MethodTemplate, resp.Method)
	assert.Equal(t, DefaultTemplates().Plain[models.IntentQuestionCreator][1], resp.Text)
	assert.Equal(t, resp.Text, resp.Generated)
}

func TestGenerateKnowledgeGate(t *testing.T) {
	rig := newTestRig(t, 10)
	reasoner := inference.NewReasoner(rig.engine.Knowledge(), nil, nil)

	strict := DefaultGeneratorConfig()
	strict.KnowledgeThreshold = 0.99
	resp := NewGenerator(rig.scorer, strict, nil, WithReasoner(reasoner), WithPicker(fixedPicker(0))).
		Generate(context.Background(), "من صنعك؟")
	assert.Equal(t, models.MethodTemplate, resp.Method)

	narrow := DefaultGeneratorConfig()
	narrow.KnowledgeIntents = []models.Intent{models.IntentQuestionWhat}
	resp = NewGenerator(rig.scorer, narrow, nil, WithReasoner(reasoner), WithPicker(fixedPicker(0))).
		Generate(context.Background(), "من صنعك؟")
	assert.Equal(t, models.MethodTemplate, resp.Method)

	resp = NewGenerator(rig.scorer, narrow, nil, WithReasoner(reasoner)).
		Generate(context.Background(), "ما هو بصيرة؟")
	assert.Equal(t, models.IntentQuestionWhat, resp.Intent)
	assert.Equal(t, models.MethodKnowledge, resp.Method)
	assert.Contains(t, resp.Text, "نظام ذكاء اصطناعي")
}

func TestGenerateRecordsTurn(t *testing.T) {
	rig := newTestRig(t, 10)

	resp := rig.engine.generator.Generate(context.Background(), "شكراً")
	turns := rig.history.All()
	require.Len(t, turns, 1)

	assert.Equal(t, "شكراً", turns[0].Input)
	assert.Equal(t, resp.Text, turns[0].Output)
	assert.Equal(t, models.IntentGratitude, turns[0].Intent)
	assert.Equal(t, models.MethodTemplate, turns[0].Method)
	assert.InDelta(t, 1.0, turns[0].Scores[models.IntentGratitude], 1e-9)
}

func TestGenerateConfiguredTemplates(t *testing.T) {
	rig := newTestRig(t, 10)

	cfg := DefaultGeneratorConfig()
	cfg.Templates = map[string][]string{"gratitude": {"لا شكر على واجب"}}
	resp := NewGenerator(rig.scorer, cfg, nil).Generate(context.Background(), "شكراً")

	assert.Equal(t, "لا شكر على واجب", resp.Text)
}
