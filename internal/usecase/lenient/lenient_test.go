package lenient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type verdict struct {
	IsRelevant  bool   `json:"is_relevant"`
	HasBlocker  bool   `json:"has_blocker"`
	Description string `json:"blocker_description"`
}

func TestFirstObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		found bool
	}{
		{"plain", `{"a":1}`, `{"a":1}`, true},
		{"surrounding prose", `Here is the analysis: {"a":1} Hope this helps!`, `{"a":1}`, true},
		{"nested", `x {"a":{"b":[1,2]}} y {"c":3}`, `{"a":{"b":[1,2]}}`, true},
		{"brace inside string", `{"a":"close } early"}`, `{"a":"close } early"}`, true},
		{"escaped quote", `{"a":"say \"}\" now"}`, `{"a":"say \"}\" now"}`, true},
		{"unbalanced then balanced", `{ broken and {"ok":true}`, `{"ok":true}`, true},
		{"none", `no json here`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FirstObject(tt.input)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFirstArray(t *testing.T) {
	got, ok := FirstArray(`Questions: ["What is late?", "When [roughly] done?"] thanks`)
	require.True(t, ok)
	assert.Equal(t, `["What is late?", "When [roughly] done?"]`, got)
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences("  {\"a\":1}  "))
}

func TestDecodeObject_ProseAroundJSON(t *testing.T) {
	reply := `Here is the analysis: {"is_relevant": true, "has_blocker": true, "blocker_description": "waiting for API keys"} Hope this helps!`

	res := DecodeObject(reply, verdict{IsRelevant: true}, "is_relevant", "has_blocker")

	assert.False(t, res.Fallback)
	assert.NoError(t, res.Err)
	assert.True(t, res.Value.HasBlocker)
	assert.Equal(t, "waiting for API keys", res.Value.Description)
}

func TestDecodeObject_Idempotent(t *testing.T) {
	reply := "```json\n{\"is_relevant\": false, \"has_blocker\": false}\n```"

	first := DecodeObject(reply, verdict{IsRelevant: true}, "is_relevant")
	second := DecodeObject(reply, verdict{IsRelevant: true}, "is_relevant")

	assert.Equal(t, first, second)
	assert.False(t, first.Value.IsRelevant)
}

func TestDecodeObject_MissingRequiredKeepsDefaults(t *testing.T) {
	res := DecodeObject(`{"has_blocker": true}`, verdict{IsRelevant: true}, "is_relevant", "has_blocker")

	assert.True(t, res.Fallback)
	assert.Error(t, res.Err)
	assert.True(t, res.Value.IsRelevant)
	assert.True(t, res.Value.HasBlocker)
}

func TestDecodeObject_Unparseable(t *testing.T) {
	def := verdict{IsRelevant: true}

	for _, reply := range []string{"", "I could not decide.", `{"is_relevant": tru`, `{"is_relevant": "yes"}`} {
		res := DecodeObject(reply, def)
		assert.True(t, res.Fallback, reply)
		assert.Error(t, res.Err, reply)
		assert.Equal(t, def, res.Value, reply)
	}
}

func TestDecodeArray(t *testing.T) {
	items, err := DecodeArray[string](`Sure! ["a", "b"]`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, items)

	_, err = DecodeArray[string](`nothing`)
	assert.ErrorIs(t, err, ErrNoJSON)
}

func TestBulletLines(t *testing.T) {
	reply := `Action items:
- Unblock PROJ-42 with DevOps
* Check in with Dana
12. Re-plan the sprint
Not a bullet
3) not a numbered bullet either`

	assert.Equal(t, []string{
		"Unblock PROJ-42 with DevOps",
		"Check in with Dana",
		"Re-plan the sprint",
	}, BulletLines(reply))
}

func TestQuestionLines(t *testing.T) {
	reply := "Here you go\n  What is blocking the migration?  \n\nWhen will it land?\nThanks"
	assert.Equal(t, []string{"What is blocking the migration?", "When will it land?"}, QuestionLines(reply))
}

func TestNonEmptyLines(t *testing.T) {
	reply := "1. How is PROJ-1 going?\n\n- \"Any new blockers?\"\nAnything else"
	assert.Equal(t, []string{"How is PROJ-1 going?", "Any new blockers?", "Anything else"}, NonEmptyLines(reply))
}

func TestStrings(t *testing.T) {
	res := Strings(`["Pair on PROJ-42", "Move PROJ-7 to next sprint"]`, nil)
	assert.False(t, res.Fallback)
	assert.Len(t, res.Value, 2)

	res = Strings("1. Pair on PROJ-42\n2. Re-estimate", nil)
	assert.True(t, res.Fallback)
	assert.Equal(t, []string{"Pair on PROJ-42", "Re-estimate"}, res.Value)

	res = Strings("no idea", []string{"Review sprint status manually."})
	assert.True(t, res.Fallback)
	assert.Equal(t, []string{"Review sprint status manually."}, res.Value)
}
