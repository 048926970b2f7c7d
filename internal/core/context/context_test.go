package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsElevated(t *testing.T) {
	tests := []struct {
		name string
		user *UserContext
		want bool
	}{
		{name: "anonymous", user: nil, want: false},
		{name: "plain operator", user: &UserContext{UserID: "u1", Roles: []string{"warehouse"}}, want: false},
		{name: "admin role", user: &UserContext{UserID: "u2", Roles: []string{"sales", RoleAdmin}}, want: true},
		{name: "admin flag", user: &UserContext{UserID: "u3", IsAdmin: true}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.user != nil {
				ctx = WithUser(ctx, tt.user)
			}
			assert.Equal(t, tt.want, IsElevated(ctx))
		})
	}
}

func TestNewTraceContext(t *testing.T) {
	tc := NewTraceContext("trace-1", "")
	assert.Equal(t, "trace-1", tc.TraceID)
	assert.NotEmpty(t, tc.RequestID)

	ctx := WithTrace(context.Background(), tc)
	assert.Equal(t, "trace-1", GetTraceID(ctx))
	assert.Equal(t, tc.RequestID, GetRequestID(ctx))
	assert.Empty(t, GetTraceID(context.Background()))
}
