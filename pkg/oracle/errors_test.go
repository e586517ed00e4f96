package oracle

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransport(t *testing.T) {
	te := &TransportError{Err: errors.New("boom"), StatusCode: 500, Retryable: true}
	assert.True(t, IsTransport(te))
	assert.True(t, IsTransport(fmt.Errorf("wrapped: %w", te)))
	assert.False(t, IsTransport(errors.New("plain")))
	assert.False(t, IsTransport(nil))
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"retryable transport", &TransportError{Err: errors.New("overloaded"), StatusCode: 529, Retryable: true}, true},
		{"auth transport", &TransportError{Err: errors.New("bad key"), StatusCode: 401, Retryable: false}, false},
		{"wrapped retryable", fmt.Errorf("outer: %w", &TransportError{Err: errors.New("x"), Retryable: true}), true},
		{"plain error", errors.New("nope"), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsRetryable(tc.err))
		})
	}
}

func TestIsRetryableStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 529} {
		assert.True(t, isRetryableStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 400, 401, 403, 404, 413} {
		assert.False(t, isRetryableStatus(code), "status %d", code)
	}
}

func TestIsTransientNetwork(t *testing.T) {
	assert.True(t, isTransientNetwork(syscall.ECONNRESET))
	assert.True(t, isTransientNetwork(errors.New("read tcp: connection reset by peer")))
	assert.True(t, isTransientNetwork(errors.New("dial tcp: i/o timeout")))
	assert.False(t, isTransientNetwork(errors.New("invalid request")))
	assert.False(t, isTransientNetwork(nil))
}

func TestClassifyTransport_Network(t *testing.T) {
	err := classifyTransport(errors.New("dial tcp: i/o timeout"))
	assert.True(t, IsTransport(err))
	assert.True(t, IsRetryable(err))

	err = classifyTransport(errors.New("invalid api key"))
	assert.True(t, IsTransport(err))
	assert.False(t, IsRetryable(err))
}

func TestMessageResponse_Text(t *testing.T) {
	resp := &MessageResponse{Content: []ContentBlock{
		{Type: "text", Text: "hello "},
		{Type: "tool_use", Text: "ignored"},
		{Type: "text", Text: "world"},
	}}
	assert.Equal(t, "hello world", resp.Text())
}

func TestNewUserImage_Shape(t *testing.T) {
	msg := NewUserImage("image/jpeg", []byte{0xff, 0xd8}, "describe")
	assert.Equal(t, "user", msg.Role)
	assert.Len(t, msg.Parts, 2)
	assert.Equal(t, "image", msg.Parts[0].Type)
	assert.Equal(t, "image/jpeg", msg.Parts[0].MediaType)
	assert.Equal(t, "text", msg.Parts[1].Type)
}

func TestWithRateLimit_CancelledContext(t *testing.T) {
	c := &sdkClient{}
	WithRateLimit(0.0001, 1)(c)
	// Burn the single burst token so the next wait must block.
	ctx := context.Background()
	_ = c.limiter.Wait(ctx)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err := c.limiter.Wait(cancelled)
	assert.Error(t, err)
}
