package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type teamRequest struct {
	Team           string `validate:"required,max=255,teamname"`
	Aggressiveness int    `validate:"omitempty,min=1,max=10"`
}

func TestValidate(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(teamRequest{Team: "Core Team"}))
	assert.NoError(t, v.Validate(teamRequest{Team: "apollo_web-2", Aggressiveness: 10}))
	assert.Error(t, v.Validate(teamRequest{}))
	assert.Error(t, v.Validate(teamRequest{Team: "../etc"}))
	assert.Error(t, v.Validate(teamRequest{Team: "Core", Aggressiveness: 11}))
}
