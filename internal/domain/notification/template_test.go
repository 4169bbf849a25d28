package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     TemplateData
		want     string
	}{
		{
			name:     "substitutes known placeholders",
			template: "Payment of {{amount}} {{currency}} received",
			data:     TemplateData{"amount": "1500.00", "currency": "SAR"},
			want:     "Payment of 1500.00 SAR received",
		},
		{
			name:     "leaves unknown placeholders intact",
			template: "Hello {{name}}, project {{project}} updated",
			data:     TemplateData{"name": "Omar"},
			want:     "Hello Omar, project {{project}} updated",
		},
		{
			name:     "empty value renders empty string",
			template: "Ref: {{ref}}.",
			data:     TemplateData{"ref": ""},
			want:     "Ref: .",
		},
		{
			name:     "nil data leaves template unchanged",
			template: "Budget {{budget}} exceeded",
			data:     nil,
			want:     "Budget {{budget}} exceeded",
		},
		{
			name:     "repeated placeholder substituted everywhere",
			template: "{{user}} assigned {{user}} as reviewer",
			data:     TemplateData{"user": "fatimah"},
			want:     "fatimah assigned fatimah as reviewer",
		},
		{
			name:     "no placeholders passes through",
			template: "System maintenance tonight",
			data:     TemplateData{"unused": "x"},
			want:     "System maintenance tonight",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.template, tt.data))
		})
	}
}

func TestNewTemplate(t *testing.T) {
	tpl, err := NewTemplate(TypePaymentCompleted, "Payment completed",
		"Payment {{id}} completed",
		"Your payment {{id}} for {{amount}} completed.",
		"Payment {{id}} completed",
		"Payment {{id}} for {{amount}} completed")
	require.NoError(t, err)

	assert.Equal(t, TypePaymentCompleted, tpl.Type)
	assert.NotEqual(t, "", tpl.ID.String())
}

func TestNewTemplateValidation(t *testing.T) {
	_, err := NewTemplate(Type("BOGUS"), "t", "s", "b", "s", "i")
	assert.ErrorIs(t, err, ErrInvalidType)

	_, err = NewTemplate(TypePaymentCreated, "", "s", "b", "s", "i")
	assert.ErrorIs(t, err, ErrTemplateTitleRequired)
}

func TestTemplateRenderChannels(t *testing.T) {
	tpl, err := NewTemplate(TypeBudgetWarning, "Budget warning",
		"Budget {{name}} at {{pct}}%",
		"Budget {{name}} has reached {{pct}}% of its limit.",
		"Budget {{name}}: {{pct}}% used",
		"Budget {{name}} has reached {{pct}}% of its limit.")
	require.NoError(t, err)

	data := TemplateData{"name": "Q3-Ops", "pct": "85"}
	assert.Equal(t, "Budget Q3-Ops at 85%", tpl.RenderEmailSubject(data))
	assert.Equal(t, "Budget Q3-Ops has reached 85% of its limit.", tpl.RenderEmailBody(data))
	assert.Equal(t, "Budget Q3-Ops: 85% used", tpl.RenderSMS(data))
	assert.Equal(t, "Budget Q3-Ops has reached 85% of its limit.", tpl.RenderInApp(data))
	assert.Equal(t, "Budget warning", tpl.RenderTitle(data))
}
