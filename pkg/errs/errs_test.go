package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "wrapped ocr", err: fmt.Errorf("image: %w", ErrCapabilityUnavailable), want: "photo text recognition"},
		{name: "template", err: fmt.Errorf("x: %w", ErrTemplateNotFound), want: "template could not be found"},
		{name: "corrupt", err: ErrCorruptDocument, want: "could not be read"},
		{name: "network", err: fmt.Errorf("getFile: %w", ErrNetworkFailure), want: "network problem"},
		{name: "unknown", err: errors.New("boom"), want: "Something went wrong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.want == "" {
				assert.Empty(t, UserMessage(tt.err))
				return
			}
			assert.Contains(t, UserMessage(tt.err), tt.want)
		})
	}
}
