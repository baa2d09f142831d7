package call

// StartCallRequest represents the request to start a standup call
type StartCallRequest struct {
	Team           string `json:"team" validate:"required,max=255,teamname"`
	Aggressiveness int    `json:"aggressiveness,omitempty" validate:"omitempty,min=1,max=10"`
}

// TriggerRequest is the body the external scheduler signs and posts
type TriggerRequest struct {
	Team           string `json:"team" validate:"required,max=255,teamname"`
	Aggressiveness int    `json:"aggressiveness,omitempty" validate:"omitempty,min=1,max=10"`
	ScheduledFor   string `json:"scheduled_for,omitempty"`
}
