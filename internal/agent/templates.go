package agent

import (
	"strings"

	"github.com/baserah/baserah/internal/models"
)

// KeywordsPlaceholder is replaced by the utterance keywords in keyword templates
const KeywordsPlaceholder = "{keywords}"

// Templates holds the canned replies per intent. Keyword templates are used
// instead of the plain ones when the utterance has keywords.
type Templates struct {
	Plain       map[models.Intent][]string
	WithKeyword map[models.Intent][]string
}

// DefaultTemplates returns the built-in replies
func DefaultTemplates() *Templates {
	return &Templates{
		Plain: map[models.Intent][]string{
			models.IntentGreeting: {
				"أهلاً وسهلاً! كيف يمكنني مساعدتك؟ 🌟",
				"مرحباً! أنا بصيرة، نظام ذكاء اصطناعي ثوري. كيف يمكنني خدمتك؟",
			},
			models.IntentQuestionIdentity: {
				"أنا بصيرة، نظام ذكاء اصطناعي ثوري مبني على معادلات رياضية بدون شبكات عصبية.",
				"بصيرة هو نظام ذكاء اصطناعي فريد يعتمد على النظريات الرياضية الثورية.",
			},
			models.IntentQuestionCreator: {
				"أنا من تطوير المبتكر باسل يحيى عبدالله، الذي ابتكر نظاماً ذكياً فريداً.",
				"مطوري هو باسل يحيى عبدالله، مبتكر النظريات الثورية الثلاث.",
			},
			models.IntentQuestionHow: {
				"أعمل من خلال نظام متكامل: الدماغ (خبير-مستكشف)، المعادلات التكيفية، الذاكرة، التفكير، والذكاء العاطفي.",
				"آلية عملي تعتمد على المعادلات الرياضية والاستنباط المنطقي بدلاً من الشبكات العصبية.",
			},
			models.IntentQuestionWhat: {
				"سؤال مثير للاهتمام! يمكنك سؤالي عن: هويتي، مطوري، كيفية عملي، أو النظريات الثورية.",
				"أحتاج مزيداً من التفاصيل لأجيب بدقة. ماذا تريد أن تعرف بالتحديد؟",
			},
			models.IntentGratitude: {
				"العفو! سعيد بمساعدتك 😊",
				"على الرحب والسعة! هل لديك أسئلة أخرى؟",
			},
			models.IntentStatement: {
				"فهمت. شكراً على المعلومة.",
				"مثير للاهتمام! أخبرني المزيد.",
			},
			models.IntentRequest: {
				"سأحاول مساعدتك في ذلك.",
				"دعني أرى ما يمكنني فعله.",
			},
		},
		WithKeyword: map[models.Intent][]string{
			models.IntentQuestionWhat: {
				"بخصوص {keywords}، هذا موضوع مثير للاهتمام. دعني أستنبط الإجابة...",
				"سؤال جيد عن {keywords}. أستخدم نظام الخبير-المستكشف للإجابة.",
			},
		},
	}
}

// Override replaces the templates of every intent present in plain or withKeyword
func (t *Templates) Override(plain, withKeyword map[string][]string) {
	for intent, list := range plain {
		if len(list) > 0 {
			t.Plain[models.Intent(intent)] = list
		}
	}
	for intent, list := range withKeyword {
		if len(list) > 0 {
			t.WithKeyword[models.Intent(intent)] = list
		}
	}
}

// Candidates returns the templates for intent, falling back to statement
func (t *Templates) Candidates(intent models.Intent, keywords []string) []string {
	if len(keywords) > 0 {
		if list := t.WithKeyword[intent]; len(list) > 0 {
			return list
		}
	}
	if list := t.Plain[intent]; len(list) > 0 {
		return list
	}
	return t.Plain[models.IntentStatement]
}

// Fill substitutes the keyword placeholder
func Fill(template string, keywords []string) string {
	if !strings.Contains(template, KeywordsPlaceholder) {
		return template
	}
	return strings.ReplaceAll(template, KeywordsPlaceholder, strings.Join(keywords, ", "))
}
