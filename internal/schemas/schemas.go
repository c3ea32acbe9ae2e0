// Package schemas holds the request and response contracts of the API.
// Requests are validated with go-playground/validator before any
// persistence happens. Entity responses reuse the model types directly;
// the models' JSON tags already exclude sensitive columns (the password
// hash is never serialized).
package schemas

import "encoding/json"

// RegisterRequest is the payload for POST /auth/register.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Password  string `json:"password" validate:"required,min=8,max=100"`
	FirstName string `json:"first_name" validate:"omitempty,max=100"`
	LastName  string `json:"last_name" validate:"omitempty,max=100"`
}

// LoginRequest is the form-encoded payload for POST /auth/login. The
// username field also accepts an email address.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// Token is the response of a successful login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // seconds
}

// UserUpdateRequest is the partial-update payload for PUT /users/me.
// Pointer fields distinguish "omitted" from "set"; an omitted field is
// left untouched.
type UserUpdateRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	Username  *string `json:"username" validate:"omitempty,min=3,max=50"`
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	IsActive  *bool   `json:"is_active"`
}

// Fields returns the set fields as a column map for the lenient
// partial-update path of the repository layer.
func (r *UserUpdateRequest) Fields() map[string]any {
	fields := make(map[string]any)
	if r.Email != nil {
		fields["email"] = *r.Email
	}
	if r.Username != nil {
		fields["username"] = *r.Username
	}
	if r.FirstName != nil {
		fields["first_name"] = *r.FirstName
	}
	if r.LastName != nil {
		fields["last_name"] = *r.LastName
	}
	if r.IsActive != nil {
		fields["is_active"] = *r.IsActive
	}
	return fields
}

// OrderItemRequest is one line of an order request.
type OrderItemRequest struct {
	BotID    string `json:"bot_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"omitempty,gte=1"`
}

// OrderCreateRequest is the payload for POST /orders. The total is
// computed server-side from the referenced bots, never taken from the
// client.
type OrderCreateRequest struct {
	Items []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ReviewCreateRequest is the payload for POST /bots/:id/reviews.
type ReviewCreateRequest struct {
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	ReviewText string `json:"review_text" validate:"omitempty,max=5000"`
}

// ExecutionCreateRequest is the payload for POST /bots/:id/executions.
// InputParameters is opaque JSON handed to the bot as-is.
type ExecutionCreateRequest struct {
	InputParameters json.RawMessage `json:"input_parameters"`
}

// ExecutionStatusUpdateRequest is the payload for
// PATCH /executions/:id/status.
type ExecutionStatusUpdateRequest struct {
	Status       string          `json:"status" validate:"required"`
	OutputData   json.RawMessage `json:"output_data"`
	ErrorMessage string          `json:"error_message"`
	ContainerID  string          `json:"container_id"`
}

// DownloadResponse is returned by POST /bots/:id/download.
type DownloadResponse struct {
	BotID       string `json:"bot_id"`
	DownloadURL string `json:"download_url"`
}
